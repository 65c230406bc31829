package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/hrdiaspora/diaspora-service/internal/domain"
	"github.com/hrdiaspora/diaspora-service/internal/export"
)

// ExportService renders report workbooks and optionally archives them.
type ExportService struct {
	reports  *ReportService
	archiver *export.Archiver
	logger   *zap.Logger
}

// ExportResult is a generated workbook. ArchiveKey is empty when archiving
// is disabled.
type ExportResult struct {
	FileName   string
	Data       []byte
	ArchiveKey string
}

// NewExportService constructs the service. archiver may be nil.
func NewExportService(reports *ReportService, archiver *export.Archiver, logger *zap.Logger) *ExportService {
	return &ExportService{reports: reports, archiver: archiver, logger: nopLogger(logger)}
}

// Export builds the workbook for the range.
func (s *ExportService) Export(ctx context.Context, group domain.PeriodGroup, rng domain.DateRange) (*ExportResult, error) {
	var (
		bundle export.Bundle
		err    error
	)
	if bundle.Summary, err = s.reports.Summary(ctx, rng); err != nil {
		return nil, err
	}
	if bundle.Periods, err = s.reports.DiasporasByPeriod(ctx, group, rng); err != nil {
		return nil, err
	}
	if bundle.Purposes, err = s.reports.ProgressByPurpose(ctx, "", rng); err != nil {
		return nil, err
	}
	if bundle.Offices, err = s.reports.ReferralsByOffice(ctx, rng); err != nil {
		return nil, err
	}

	data, err := export.BuildWorkbook(bundle)
	if err != nil {
		return nil, err
	}
	result := &ExportResult{
		FileName: fmt.Sprintf("diaspora-report_%s_%s.xlsx", rng.FromString(), rng.ToString()),
		Data:     data,
	}
	if s.archiver != nil {
		key, err := s.archiver.Archive(ctx, result.FileName, data)
		if err != nil {
			s.logger.Error("archive report export", zap.String("file", result.FileName), zap.Error(err))
			return nil, err
		}
		result.ArchiveKey = key
		s.logger.Info("report export archived", zap.String("key", key))
	}
	return result, nil
}

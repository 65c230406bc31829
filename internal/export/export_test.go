package export

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/hrdiaspora/diaspora-service/internal/domain"
)

func TestBuildWorkbookWritesEverySheet(t *testing.T) {
	data, err := BuildWorkbook(Bundle{
		Summary: &domain.Summary{
			From: "2024-01-01", To: "2024-01-31", TotalDiasporas: 1, ActiveCases: 1,
			ReferralsByStatus: []domain.StatusCount{{Status: "SENT", Count: 1}},
		},
		Periods: &domain.PeriodReport{Group: domain.PeriodMonthly, Rows: []domain.PeriodCount{{Period: "2024-01-01", Count: 1}}},
		Offices: &domain.OfficeLoadReport{ByStatus: []domain.OfficeStatusCount{
			{OfficeID: "o2", OfficeName: "Investment Office", OfficeCode: "HRO-INV", Status: "COMPLETED", Count: 1},
		}},
	})
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{SheetSummary, SheetPeriods, SheetPurposes, SheetOffices}, f.GetSheetList())

	total, err := f.GetCellValue(SheetSummary, "B4")
	require.NoError(t, err)
	assert.Equal(t, "1", total)

	period, err := f.GetCellValue(SheetPeriods, "A2")
	require.NoError(t, err)
	assert.Equal(t, "2024-01-01", period)

	code, err := f.GetCellValue(SheetOffices, "B2")
	require.NoError(t, err)
	assert.Equal(t, "HRO-INV", code)
}

type fakePutter struct {
	input *s3.PutObjectInput
	body  []byte
	err   error
}

func (f *fakePutter) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.input = in
	f.body, _ = io.ReadAll(in.Body)
	return &s3.PutObjectOutput{}, f.err
}

func TestArchiverUploadsUnderPrefix(t *testing.T) {
	putter := &fakePutter{}
	a := NewArchiver(putter, "reports", "/exports/")

	key, err := a.Archive(context.Background(), "report.xlsx", []byte("xlsx"))

	require.NoError(t, err)
	assert.Equal(t, "exports/report.xlsx", key)
	assert.Equal(t, "reports", aws.ToString(putter.input.Bucket))
	assert.Equal(t, ContentType, aws.ToString(putter.input.ContentType))
	assert.Equal(t, []byte("xlsx"), putter.body)
}

func TestArchiverWrapsUploadErrors(t *testing.T) {
	a := NewArchiver(&fakePutter{err: errors.New("denied")}, "reports", "")

	_, err := a.Archive(context.Background(), "report.xlsx", nil)

	assert.ErrorContains(t, err, "upload report.xlsx")
}

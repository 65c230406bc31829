// Package seed loads demonstration data through the application services.
package seed

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/hrdiaspora/diaspora-service/internal/clock"
	"github.com/hrdiaspora/diaspora-service/internal/domain"
	"github.com/hrdiaspora/diaspora-service/internal/service"
	apperrors "github.com/hrdiaspora/diaspora-service/pkg/util"
)

// DemoPassword is the password of every seeded account.
const DemoPassword = "Pass12345!"

// ErrAlreadySeeded is returned when the demo offices already exist.
var ErrAlreadySeeded = errors.New("demo data already present")

// Result counts what was created.
type Result struct {
	Offices   int
	Diasporas int
	Purposes  int
	Cases     int
	Referrals int
}

type officeDef struct {
	name string
	code string
	typ  domain.OfficeType
}

var offices = []officeDef{
	{"Harari Diaspora Office", "HRO-DIAS", domain.OfficeTypeDiaspora},
	{"Investment Bureau", "HRO-INV", domain.OfficeTypeInvestment},
	{"City Land Management", "HRO-LAND", domain.OfficeTypeLand},
	{"Nigid / Trade License", "HRO-NIGID", domain.OfficeTypeNigid},
	{"Regional ICT Office", "HRO-ICT", domain.OfficeTypeOther},
}

type personDef struct {
	username, email, first, last string
	country, city                string
	phone, passport, idNumber    string
}

var people = []personDef{
	{"lensa.m", "lensa.m@example.com", "Lensa", "Mohammed", "UAE", "Dubai", "+251911000101", "ETP10001", "DD-0001"},
	{"yonas.t", "yonas.t@example.com", "Yonas", "Tesfaye", "USA", "Washington", "+251911000102", "ETP10002", "DD-0002"},
	{"hanna.a", "hanna.a@example.com", "Hanna", "Abdella", "UK", "London", "+251911000103", "ETP10003", "DD-0003"},
	{"michael.k", "michael.k@example.com", "Michael", "Kedir", "Saudi Arabia", "Riyadh", "+251911000104", "ETP10004", "DD-0004"},
	{"samira.b", "samira.b@example.com", "Samira", "Beker", "Kenya", "Nairobi", "+251911000105", "ETP10005", "DD-0005"},
}

// registration ages in days relative to the seed time, spread over months.
var registeredDaysAgo = []int{125, 95, 65, 35, 10}

var (
	purposeTypes = []domain.PurposeType{
		domain.PurposeTypeInvestment, domain.PurposeTypeTourism, domain.PurposeTypeFamily,
		domain.PurposeTypeStudy, domain.PurposeTypeCharityNGO,
	}
	purposeStatuses = []domain.PurposeStatus{
		domain.PurposeStatusSubmitted, domain.PurposeStatusUnderReview, domain.PurposeStatusApproved,
		domain.PurposeStatusRejected, domain.PurposeStatusOnHold,
	}
	caseStages = []domain.CaseStage{
		domain.CaseStageIntake, domain.CaseStageScreening, domain.CaseStageReferral,
		domain.CaseStageProcessing, domain.CaseStageCompleted,
	}
	caseStatuses = []domain.CaseStatus{
		domain.CaseStatusActive, domain.CaseStatusActive, domain.CaseStatusPaused,
		domain.CaseStatusActive, domain.CaseStatusDone,
	}
	// referral i ends in referralPaths[i]; each path is valid under strict rules.
	referralPaths = [][]domain.ReferralStatus{
		nil,
		{domain.ReferralStatusReceived},
		{domain.ReferralStatusReceived, domain.ReferralStatusInProgress},
		{domain.ReferralStatusReceived, domain.ReferralStatusInProgress, domain.ReferralStatusCompleted},
		{domain.ReferralStatusReceived, domain.ReferralStatusInProgress, domain.ReferralStatusRejected},
	}
	referralTargets = []int{1, 2, 3, 1, 2}
)

// Run creates five records of each kind. The clock is moved while seeding so
// registrations are spread over several months; it ends at now.
func Run(ctx context.Context, svc *service.Services, clk *clock.Fixed, now time.Time, logger *zap.Logger) (Result, error) {
	var res Result
	actor := service.SystemActor

	clk.Set(now)
	officeIDs := make([]string, 0, len(offices))
	for _, def := range offices {
		contact := strings.ToLower(def.code) + "@example.com"
		office, err := svc.Offices.Create(ctx, service.OfficeInput{
			Name:         def.name,
			Code:         def.code,
			Type:         def.typ,
			ContactEmail: &contact,
		})
		if apperrors.HasCode(err, apperrors.CodeAlreadyExists) {
			return res, ErrAlreadySeeded
		}
		if err != nil {
			return res, fmt.Errorf("office %s: %w", def.code, err)
		}
		officeIDs = append(officeIDs, office.ID)
		res.Offices++
	}
	home := officeIDs[0]

	for i, person := range people {
		registeredAt := now.AddDate(0, 0, -registeredDaysAgo[i])
		clk.Set(registeredAt)

		profile, err := svc.Diasporas.Register(ctx, actor, diasporaRegistration(i, person, home, now))
		if err != nil {
			return res, fmt.Errorf("diaspora %s: %w", person.username, err)
		}
		res.Diasporas++

		if _, err := svc.Purposes.Create(ctx, actor, purposeFor(i, profile)); err != nil {
			return res, fmt.Errorf("purpose for %s: %w", person.username, err)
		}
		res.Purposes++

		opened, err := svc.Cases.OpenCase(ctx, actor, profile.ID)
		if err != nil {
			return res, fmt.Errorf("case for %s: %w", person.username, err)
		}
		res.Cases++
		if err := walkCase(ctx, svc.Cases, opened.ID, i); err != nil {
			return res, err
		}

		clk.Set(registeredAt.Add(24 * time.Hour))
		if err := walkReferral(ctx, svc.Referrals, clk, opened.ID, home, officeIDs[referralTargets[i]], i, now); err != nil {
			return res, err
		}
		res.Referrals++
		logger.Info("seeded diaspora", zap.String("username", person.username), zap.String("code", profile.DiasporaCode))
	}
	clk.Set(now)
	return res, nil
}

func diasporaRegistration(i int, p personDef, office string, now time.Time) service.RegistrationInput {
	gender := domain.GenderMale
	stay := "2 weeks"
	if i%2 == 1 {
		gender = domain.GenderFemale
		stay = "1 month"
	}
	dob := time.Date(1990+i, time.Month(1+i%12), 10+i, 0, 0, 0, 0, time.UTC)
	arrival := now.AddDate(0, 0, -(5 + i))
	address := fmt.Sprintf("Harar, Subcity %d", i+1)
	contactName := fmt.Sprintf("Contact %d", i+1)
	contactPhone := fmt.Sprintf("+2519000000%d", i+1)
	city := p.city
	phone := p.phone
	passport := p.passport
	idNumber := p.idNumber
	optIn := true
	return service.RegistrationInput{
		Username:  p.username,
		Email:     p.email,
		FirstName: p.first,
		LastName:  p.last,
		Password:  DemoPassword,
		Profile: service.DiasporaInput{
			Gender:                &gender,
			DOB:                   &dob,
			PrimaryPhone:          phone,
			Whatsapp:              &phone,
			CountryOfResidence:    p.country,
			CityOfResidence:       &city,
			ArrivalDate:           &arrival,
			ExpectedStayDuration:  &stay,
			IsReturnee:            i%2 == 1,
			PreferredLanguage:     "English",
			CommunicationOptIn:    &optIn,
			AddressLocal:          &address,
			EmergencyContactName:  &contactName,
			EmergencyContactPhone: &contactPhone,
			PassportNo:            &passport,
			IDNumber:              &idNumber,
			OwnerOfficeID:         &office,
		},
	}
}

func purposeFor(i int, profile *domain.DiasporaProfile) service.PurposeInput {
	input := service.PurposeInput{
		DiasporaID:  profile.ID,
		Type:        purposeTypes[i],
		Description: fmt.Sprintf("%s purpose for %s", purposeTypes[i], profile.Identity.FullName),
		Status:      purposeStatuses[i],
	}
	if purposeTypes[i] == domain.PurposeTypeInvestment {
		sector, sub, kind, currency, note := "Manufacturing", "Light Industry", "New Company", "ETB", "Industrial park"
		capital, land := 1000000.0, 1.5
		jobs := 25
		input.Sector = &sector
		input.SubSector = &sub
		input.InvestmentType = &kind
		input.EstimatedCapital = &capital
		input.Currency = &currency
		input.JobsExpected = &jobs
		input.LandRequirement = true
		input.LandSize = &land
		input.PreferredLocationNote = &note
	}
	return input
}

// walkCase moves a fresh case forward one stage at a time.
func walkCase(ctx context.Context, cases *service.CaseService, id string, i int) error {
	for _, stage := range caseStages[1 : i+1] {
		if _, _, err := cases.AdvanceStage(ctx, service.SystemActor, id, stage); err != nil {
			return fmt.Errorf("case %s stage %s: %w", id, stage, err)
		}
	}
	if caseStatuses[i] != domain.CaseStatusActive {
		if _, err := cases.SetOverallStatus(ctx, service.SystemActor, id, caseStatuses[i]); err != nil {
			return fmt.Errorf("case %s status: %w", id, err)
		}
	}
	return nil
}

func walkReferral(ctx context.Context, referrals *service.ReferralService, clk *clock.Fixed, caseID, from, to string, i int, now time.Time) error {
	due := now.AddDate(0, 0, 7-i)
	ref, err := referrals.Create(ctx, service.SystemActor, service.ReferralInput{
		CaseID:       caseID,
		FromOfficeID: from,
		ToOfficeID:   to,
		Reason:       fmt.Sprintf("Automated referral #%d", i+1),
		Checklist:    map[string]any{"checklist": []string{"ID Copy", "Passport", "Application Form"}[:2+i%2]},
		SLADueAt:     &due,
	})
	if err != nil {
		return fmt.Errorf("referral for case %s: %w", caseID, err)
	}
	for _, status := range referralPaths[i] {
		clk.Advance(time.Hour)
		if status == domain.ReferralStatusReceived {
			_, err = referrals.MarkReceived(ctx, service.SystemActor, ref.ID)
		} else {
			var completedAt *time.Time
			if status.Terminal() {
				at := clk.Now()
				completedAt = &at
			}
			_, err = referrals.Advance(ctx, service.SystemActor, ref.ID, status, completedAt)
		}
		if err != nil {
			return fmt.Errorf("referral %s to %s: %w", ref.ID, status, err)
		}
	}
	return nil
}

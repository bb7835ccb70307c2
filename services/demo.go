package services

import (
	"context"
	"time"

	"esgportal/models"
	"esgportal/session"

	"go.uber.org/zap"
)

// Reserved report ids that always render the sample report.
const (
	DemoReportID       = "demo"
	DemoSampleReportID = "demo-sample"
)

const (
	demoUserID    = "00000000-0000-4000-8000-00000000de30"
	demoEmail     = "demo@esgportal.app"
	demoCompanyID = "00000000-0000-4000-8000-0000000c0de0"
)

// DemoUser is the fixed synthetic identity used in demo mode. It may never
// check out or write billing data.
func DemoUser() models.Identity {
	return models.Identity{ID: demoUserID, Email: demoEmail, Demo: true}
}

// DemoProfile is the profile shown for DemoUser.
func DemoProfile() models.UserProfile {
	company := demoCompanyID
	return models.UserProfile{
		ID:        demoUserID,
		Email:     demoEmail,
		CompanyID: &company,
		Role:      models.RoleUser,
		Tier:      models.TierFree,
		CreatedAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

// IsDemoReportID reports whether id is one of the reserved demo report ids.
func IsDemoReportID(id string) bool {
	return id == DemoReportID || id == DemoSampleReportID
}

// DemoMode decides when anonymous visitors get the demo identity.
type DemoMode struct {
	oracle  session.Oracle
	enabled bool
	log     *zap.Logger
}

func NewDemoMode(oracle session.Oracle, enabled bool, log *zap.Logger) *DemoMode {
	return &DemoMode{oracle: oracle, enabled: enabled, log: log}
}

// IsAuthenticated reports whether the client has a session. Lookup errors
// count as not authenticated.
func (d *DemoMode) IsAuthenticated(ctx context.Context, clientID string) bool {
	if clientID == "" {
		return false
	}
	snap, err := d.oracle.CurrentSession(ctx, clientID)
	if err != nil {
		d.log.Debug("session lookup failed, treating as anonymous", zap.Error(err))
		return false
	}
	return snap.Authenticated()
}

// ShouldUseDemoMode is always true for the reserved report ids. Otherwise, when
// demo mode is enabled, it is true for every visitor without a session.
// reportID may be empty.
func (d *DemoMode) ShouldUseDemoMode(ctx context.Context, clientID, reportID string) bool {
	if IsDemoReportID(reportID) {
		return true
	}
	if !d.enabled {
		return false
	}
	return !d.IsAuthenticated(ctx, clientID)
}

var sampleTemplate = &models.QuestionnaireTemplate{
	ID:           "sample-esrs",
	Jurisdiction: "EU",
	Version:      "esrs-2024",
	Name:         "ESRS Climate Disclosure",
	Questions: []models.Question{
		{Key: "scope1", Section: "Emissions", Prompt: "Gross Scope 1 emissions (tCO2e)"},
		{Key: "scope2", Section: "Emissions", Prompt: "Gross location-based Scope 2 emissions (tCO2e)"},
		{Key: "targets", Section: "Targets", Prompt: "Describe your emission reduction targets"},
		{Key: "governance", Section: "Governance", Prompt: "How does the board oversee climate risk?"},
	},
	CreatedAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
}

var sampleAnswers = map[string]string{
	"scope1":  "12,480",
	"scope2":  "3,215.50",
	"targets": "Reduce absolute Scope 1 and 2 emissions 42% by 2030 against a 2022 baseline.",
}

// SampleDisclosure is the read-only report shown in demo mode.
func SampleDisclosure() (*models.Disclosure, error) {
	const title = "Sample Co. Climate Report 2024"
	narrative, err := RenderNarrative(sampleTemplate, title, sampleAnswers)
	if err != nil {
		return nil, err
	}
	return &models.Disclosure{
		ID:           DemoSampleReportID,
		UserID:       demoUserID,
		TemplateID:   sampleTemplate.ID,
		Jurisdiction: sampleTemplate.Jurisdiction,
		Title:        title,
		Narrative:    narrative,
		CreatedAt:    sampleTemplate.CreatedAt,
	}, nil
}

package usecase

import (
	"context"
	"testing"

	"jobtrail-backend/internal/tracker/domain"
	"jobtrail-backend/pkg/ai"

	authdomain "jobtrail-backend/internal/auth/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestIngester(repos testRepos) *Ingester {
	// Rules-only classification, no calendar integration.
	return NewIngester(
		repos.companies, repos.contacts, repos.applications,
		repos.messages, repos.events, repos.calendarEvents,
		ai.NewEmailClassifier(nil), nil,
	)
}

func count(t *testing.T, db *gorm.DB, model interface{}) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(model).Count(&n).Error)
	return n
}

func TestIngest_ResolvesEntitiesAndAdvancesStatus(t *testing.T) {
	db := newTestDB(t)
	repos := newTestRepos(db)
	ingester := newTestIngester(repos)
	user := &authdomain.User{ID: "user-1", Email: "me@example.com"}

	gm := gmailMessage("gm-1",
		"Jane Recruiter <jane@acme.com>",
		"Interview for Backend Engineer",
		"We'd like to invite you to a phone screen next week.")

	require.NoError(t, ingester.Ingest(context.Background(), user, gm))

	var company domain.Company
	require.NoError(t, db.Where("domain = ?", "acme.com").First(&company).Error)
	assert.Equal(t, "Acme", company.Name)

	var contact domain.Contact
	require.NoError(t, db.Where("email = ?", "jane@acme.com").First(&contact).Error)
	assert.Equal(t, "Jane Recruiter", contact.Name)
	assert.Equal(t, company.ID, contact.CompanyID)

	var app domain.Application
	require.NoError(t, db.Where("user_id = ?", "user-1").First(&app).Error)
	assert.Equal(t, company.ID, app.CompanyID)
	assert.Equal(t, "Backend Engineer", app.RoleTitle)
	assert.Equal(t, domain.StatusInterviewScheduled, app.Status)
	assert.NotNil(t, app.AppliedAt)
	assert.NotNil(t, app.LastEmailAt)
	assert.NotNil(t, app.LastStatusChangeAt)

	msg, err := repos.messages.FindByGmailID("gm-1")
	require.NoError(t, err)
	require.NotNil(t, msg)
	assert.Equal(t, "interview_invite", msg.Classification)
	assert.Equal(t, app.ID, msg.ApplicationID)
	cm, ok := msg.Metadata.Classification()
	require.True(t, ok)
	assert.Equal(t, "rules", cm.Source)

	events, err := repos.events.ListByApplication(app.ID)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, domain.EventTypeEmailIngested, events[0].EventType)
}

func TestIngest_IdempotentOnProviderID(t *testing.T) {
	db := newTestDB(t)
	repos := newTestRepos(db)
	ingester := newTestIngester(repos)
	user := &authdomain.User{ID: "user-1"}

	gm := gmailMessage("gm-1",
		"Jane Recruiter <jane@acme.com>",
		"Interview for Backend Engineer",
		"We'd like to invite you to a phone screen next week.")

	require.NoError(t, ingester.Ingest(context.Background(), user, gm))
	require.NoError(t, ingester.Ingest(context.Background(), user, gm))

	assert.EqualValues(t, 1, count(t, db, &domain.Message{}))
	assert.EqualValues(t, 1, count(t, db, &domain.Application{}))
	assert.EqualValues(t, 1, count(t, db, &domain.Company{}))
	assert.EqualValues(t, 1, count(t, db, &domain.Contact{}))
	// The audit trail appends on every ingestion.
	assert.EqualValues(t, 2, count(t, db, &domain.ApplicationEvent{}))
}

func TestIngest_RejectionSetsTerminalStatus(t *testing.T) {
	db := newTestDB(t)
	repos := newTestRepos(db)
	ingester := newTestIngester(repos)
	user := &authdomain.User{ID: "user-1"}

	gm := gmailMessage("gm-2",
		"no-reply@bigco.com",
		"Your application",
		"We regret to inform you that we are not moving forward.")

	require.NoError(t, ingester.Ingest(context.Background(), user, gm))

	var app domain.Application
	require.NoError(t, db.Where("user_id = ?", "user-1").First(&app).Error)
	assert.Equal(t, domain.StatusRejected, app.Status)
}

func TestIngest_NonPipelineLabelLeavesStatus(t *testing.T) {
	db := newTestDB(t)
	repos := newTestRepos(db)
	ingester := newTestIngester(repos)
	user := &authdomain.User{ID: "user-1"}

	gm := gmailMessage("gm-3",
		"updates@acme.com",
		"Quarterly newsletter",
		"Here is what we shipped this quarter.")

	require.NoError(t, ingester.Ingest(context.Background(), user, gm))

	var app domain.Application
	require.NoError(t, db.Where("user_id = ?", "user-1").First(&app).Error)
	assert.Equal(t, domain.StatusApplied, app.Status)
	assert.Nil(t, app.LastStatusChangeAt)
	assert.NotNil(t, app.LastEmailAt)

	msg, err := repos.messages.FindByGmailID("gm-3")
	require.NoError(t, err)
	require.NotNil(t, msg)
	assert.Equal(t, "other", msg.Classification)
}

func TestIngest_UnknownSenderFallsBack(t *testing.T) {
	db := newTestDB(t)
	repos := newTestRepos(db)
	ingester := newTestIngester(repos)
	user := &authdomain.User{ID: "user-1"}

	gm := gmailMessage("gm-4", "MAILER-DAEMON", "Delivery status", "Could not deliver.")
	require.NoError(t, ingester.Ingest(context.Background(), user, gm))

	var company domain.Company
	require.NoError(t, db.First(&company).Error)
	assert.Equal(t, "Unknown", company.Name)
	assert.Equal(t, "", company.Domain)
}

func TestIngest_NoPayload(t *testing.T) {
	db := newTestDB(t)
	repos := newTestRepos(db)
	ingester := newTestIngester(repos)
	user := &authdomain.User{ID: "user-1"}

	err := ingester.Ingest(context.Background(), user, nil)
	assert.Error(t, err)
	assert.EqualValues(t, 0, count(t, db, &domain.Message{}))
}

package usecase

import (
	"encoding/base64"
	"fmt"
	"testing"
	"time"

	"jobtrail-backend/internal/tracker/domain"
	"jobtrail-backend/internal/tracker/repository"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	gmailapi "google.golang.org/api/gmail/v1"
)

// newTestDB opens an isolated in-memory database per test.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&domain.Company{},
		&domain.Contact{},
		&domain.Application{},
		&domain.Message{},
		&domain.ApplicationEvent{},
		&domain.CalendarEvent{},
	))
	return db
}

type testRepos struct {
	companies      repository.CompanyRepository
	contacts       repository.ContactRepository
	applications   repository.ApplicationRepository
	messages       repository.MessageRepository
	events         repository.EventRepository
	calendarEvents repository.CalendarEventRepository
}

func newTestRepos(db *gorm.DB) testRepos {
	return testRepos{
		companies:      repository.NewCompanyRepository(db),
		contacts:       repository.NewContactRepository(db),
		applications:   repository.NewApplicationRepository(db),
		messages:       repository.NewMessageRepository(db),
		events:         repository.NewEventRepository(db),
		calendarEvents: repository.NewCalendarEventRepository(db),
	}
}

// gmailMessage builds a single-part text/plain provider message.
func gmailMessage(id, from, subject, body string) *gmailapi.Message {
	return &gmailapi.Message{
		Id:           id,
		ThreadId:     "thread-" + id,
		Snippet:      body,
		InternalDate: time.Now().UnixMilli(),
		Payload: &gmailapi.MessagePart{
			MimeType: "text/plain",
			Headers: []*gmailapi.MessagePartHeader{
				{Name: "From", Value: from},
				{Name: "To", Value: "me@example.com"},
				{Name: "Subject", Value: subject},
			},
			Body: &gmailapi.MessagePartBody{
				Data: base64.URLEncoding.EncodeToString([]byte(body)),
			},
		},
	}
}

// seedMessage creates company, application and message rows for one user.
func seedMessage(t *testing.T, repos testRepos, userID, gmailID string) *domain.Message {
	t.Helper()
	company, err := repos.companies.FindOrCreate("acme.com", "Acme")
	require.NoError(t, err)
	contact, err := repos.contacts.FindOrCreate("jane@acme.com", "Jane", company.ID)
	require.NoError(t, err)
	app, err := repos.applications.FindOrCreate(userID, company.ID, "Backend Engineer")
	require.NoError(t, err)

	msg := &domain.Message{
		ApplicationID:  app.ID,
		ContactID:      contact.ID,
		GmailMessageID: gmailID,
		Subject:        "Interview for Backend Engineer",
		Classification: "interview_invite",
		InternalTS:     time.Now(),
		Metadata:       domain.Metadata{},
	}
	require.NoError(t, repos.messages.Create(msg))
	return msg
}

package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"regexp"
	"strings"
	"time"

	authdomain "jobtrail-backend/internal/auth/domain"
	"jobtrail-backend/internal/tracker/domain"
	"jobtrail-backend/internal/tracker/repository"
	"jobtrail-backend/pkg/ai"
	"jobtrail-backend/pkg/calendar"
	"jobtrail-backend/pkg/gmail"

	gmailapi "google.golang.org/api/gmail/v1"
)

const maxRoleTitleLen = 120

// CalendarWriter is the single calendar capability the pipeline consumes.
type CalendarWriter interface {
	CreateEvent(ctx context.Context, user *authdomain.User, start, end time.Time, summary, location, description string) (string, error)
}

// Ingester turns one fetched provider message into company, contact,
// application, message and audit-event rows. The whole path is idempotent on
// the provider message id: re-ingesting updates rather than duplicates, with
// the exception of the audit trail, which appends on every ingestion.
type Ingester struct {
	companies      repository.CompanyRepository
	contacts       repository.ContactRepository
	applications   repository.ApplicationRepository
	messages       repository.MessageRepository
	events         repository.EventRepository
	calendarEvents repository.CalendarEventRepository
	classifier     *ai.EmailClassifier
	calendar       CalendarWriter
	now            func() time.Time
}

func NewIngester(
	companies repository.CompanyRepository,
	contacts repository.ContactRepository,
	applications repository.ApplicationRepository,
	messages repository.MessageRepository,
	events repository.EventRepository,
	calendarEvents repository.CalendarEventRepository,
	classifier *ai.EmailClassifier,
	calendarWriter CalendarWriter,
) *Ingester {
	return &Ingester{
		companies:      companies,
		contacts:       contacts,
		applications:   applications,
		messages:       messages,
		events:         events,
		calendarEvents: calendarEvents,
		classifier:     classifier,
		calendar:       calendarWriter,
		now:            time.Now,
	}
}

// Ingest processes one full Gmail message for a user.
func (in *Ingester) Ingest(ctx context.Context, user *authdomain.User, gm *gmailapi.Message) error {
	if gm == nil || gm.Payload == nil {
		return fmt.Errorf("message %q has no payload", messageID(gm))
	}

	subject := gmail.Header(gm.Payload.Headers, "Subject")
	from := gmail.Header(gm.Payload.Headers, "From")
	to := gmail.Header(gm.Payload.Headers, "To")
	body := gmail.ExtractText(gm.Payload)

	result := in.classifier.Classify(ctx, subject+"\n"+body)

	company, err := in.companies.FindOrCreate(senderDomain(from), companyName(from))
	if err != nil {
		return fmt.Errorf("upsert company: %w", err)
	}
	contact, err := in.contacts.FindOrCreate(senderEmail(from), senderName(from), company.ID)
	if err != nil {
		return fmt.Errorf("upsert contact: %w", err)
	}
	app, err := in.applications.FindOrCreate(user.ID, company.ID, roleTitle(subject, body))
	if err != nil {
		return fmt.Errorf("upsert application: %w", err)
	}

	if result.Label == "interview_invite" || result.Label == "oa" {
		in.maybeCreateCalendarEvent(ctx, user, app, result.Label, subject, body)
	}

	if err := in.upsertMessage(user, app, contact, gm, subject, from, to, result); err != nil {
		return err
	}

	now := in.now()
	app.LastEmailAt = &now
	if status, ok := domain.StatusForClassification(result.Label); ok {
		app.Status = status
		app.LastStatusChangeAt = &now
	}
	if err := in.applications.Update(app); err != nil {
		return fmt.Errorf("update application: %w", err)
	}

	event := &domain.ApplicationEvent{
		ApplicationID: app.ID,
		EventType:     domain.EventTypeEmailIngested,
		Payload:       eventPayload(result, subject),
		OccurredAt:    now,
	}
	if err := in.events.Append(event); err != nil {
		return fmt.Errorf("append event: %w", err)
	}
	return nil
}

// upsertMessage creates or updates the message row, merging the
// classification sub-object into whatever metadata the row already carries.
func (in *Ingester) upsertMessage(user *authdomain.User, app *domain.Application, contact *domain.Contact, gm *gmailapi.Message, subject, from, to string, result ai.Classification) error {
	existing, err := in.messages.FindByGmailID(gm.Id)
	if err != nil {
		return fmt.Errorf("find message: %w", err)
	}

	now := in.now()
	metadata := domain.Metadata{}
	if existing != nil {
		metadata = existing.Metadata
	}
	metadata = metadata.WithClassification(domain.ClassificationMeta{
		Source:     result.Source,
		Confidence: result.Confidence,
		Raw:        result.Raw,
		UpdatedAt:  &now,
	})

	msg := existing
	if msg == nil {
		msg = &domain.Message{GmailMessageID: gm.Id}
	}
	msg.ApplicationID = app.ID
	msg.ContactID = contact.ID
	msg.GmailThreadID = gm.ThreadId
	msg.FromAddr = from
	msg.ToAddr = to
	msg.Subject = subject
	msg.Snippet = gm.Snippet
	msg.Classification = result.Label
	msg.InternalTS = time.UnixMilli(gm.InternalDate)
	msg.Metadata = metadata

	if existing == nil {
		if err := in.messages.Create(msg); err != nil {
			return fmt.Errorf("create message: %w", err)
		}
		return nil
	}
	if err := in.messages.Update(msg); err != nil {
		return fmt.Errorf("update message: %w", err)
	}
	return nil
}

// maybeCreateCalendarEvent best-effort schedules the interview/assessment
// slot when a time range can be parsed out of the text. Parse and API
// failures only skip the event, they never fail the ingestion.
func (in *Ingester) maybeCreateCalendarEvent(ctx context.Context, user *authdomain.User, app *domain.Application, label, subject, body string) {
	if in.calendar == nil {
		return
	}
	start, end := calendar.ExtractTimeRange(subject + "\n" + body)
	if start == nil || end == nil {
		return
	}

	summary := "Interview: " + subject
	eventType := "interview"
	if label == "oa" {
		summary = "Online Assessment: " + subject
		eventType = "oa"
	}

	eventID, err := in.calendar.CreateEvent(ctx, user, *start, *end, summary, "", "Auto-created from email")
	if err != nil {
		log.Printf("[INGEST] calendar event skipped for app %s: %v", app.ID, err)
		return
	}

	record := &domain.CalendarEvent{
		ApplicationID: app.ID,
		GoogleEventID: eventID,
		EventType:     eventType,
		StartsAt:      *start,
		EndsAt:        *end,
		Notes:         summary,
	}
	if err := in.calendarEvents.Create(record); err != nil {
		log.Printf("[INGEST] failed to record calendar event for app %s: %v", app.ID, err)
	}
}

func eventPayload(result ai.Classification, subject string) domain.Metadata {
	md := domain.Metadata{}
	put := func(key string, v interface{}) {
		if raw, err := json.Marshal(v); err == nil {
			md[key] = raw
		}
	}
	put("classification", result.Label)
	put("source", result.Source)
	put("subject", subject)
	if result.Confidence != nil {
		put("confidence", *result.Confidence)
	}
	return md
}

func messageID(gm *gmailapi.Message) string {
	if gm == nil {
		return ""
	}
	return gm.Id
}

// --- sender and role heuristics ---

var (
	domainPattern      = regexp.MustCompile(`@([A-Za-z0-9.-]+)`)
	addrSpecPattern    = regexp.MustCompile(`<([^>]+)>`)
	bareEmailPattern   = regexp.MustCompile(`(?i)[A-Z0-9._%+-]+@[A-Z0-9.-]+\.[A-Z]{2,}`)
	displayNamePattern = regexp.MustCompile(`^([^<]+)<`)
	subjectRolePattern = regexp.MustCompile(`(?i)(?:for|role|position)\s*:?\s*(.+)$`)
	bodyRolePattern    = regexp.MustCompile(`(?i)position\s*:?\s*(.+)`)
)

// senderDomain extracts the lower-cased domain of the sender address, or ""
// when the header carries no address.
func senderDomain(from string) string {
	if m := domainPattern.FindStringSubmatch(from); m != nil {
		return strings.ToLower(m[1])
	}
	return ""
}

// companyName derives a display name from the sender domain: first label,
// capitalized. "Unknown" when no domain could be extracted.
func companyName(from string) string {
	d := senderDomain(from)
	if d == "" {
		return "Unknown"
	}
	label := strings.SplitN(d, ".", 2)[0]
	if label == "" {
		return "Unknown"
	}
	return strings.ToUpper(label[:1]) + label[1:]
}

// senderEmail prefers the addr-spec inside angle brackets, falling back to a
// bare address match anywhere in the header.
func senderEmail(from string) string {
	if m := addrSpecPattern.FindStringSubmatch(from); m != nil {
		return m[1]
	}
	return bareEmailPattern.FindString(from)
}

// senderName is the display text preceding the angle bracket, trimmed.
func senderName(from string) string {
	if m := displayNamePattern.FindStringSubmatch(from); m != nil {
		return strings.TrimSpace(m[1])
	}
	return ""
}

// roleTitle captures the role from a "for/role/position: X" subject pattern,
// then a "position: X" body pattern, truncated to a bounded length.
func roleTitle(subject, body string) string {
	if m := subjectRolePattern.FindStringSubmatch(subject); m != nil {
		return truncate(strings.TrimSpace(m[1]), maxRoleTitleLen)
	}
	if m := bodyRolePattern.FindStringSubmatch(body); m != nil {
		return truncate(strings.TrimSpace(firstLine(m[1])), maxRoleTitleLen)
	}
	return ""
}

func firstLine(s string) string {
	if idx := strings.IndexByte(s, '\n'); idx >= 0 {
		return s[:idx]
	}
	return s
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}

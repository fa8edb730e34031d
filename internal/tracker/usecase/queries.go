package usecase

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"jobtrail-backend/internal/tracker/domain"
	"jobtrail-backend/internal/tracker/repository"
	"jobtrail-backend/pkg/ai"
	"jobtrail-backend/pkg/fuzzy"
)

// ErrValidation marks bad reviewer input; the delivery layer maps it to 422.
var ErrValidation = errors.New("invalid input")

// FinalizeInput is a reviewer's manual classification verdict.
type FinalizeInput struct {
	Classification string   `json:"classification" binding:"required"`
	ClassifiedBy   string   `json:"classified_by" binding:"required"`
	Confidence     *float64 `json:"confidence,omitempty"`
	Reason         string   `json:"reason,omitempty"`
	RawResponse    string   `json:"raw_response,omitempty"`
}

// SummaryInsights aggregates per-user application counts.
type SummaryInsights struct {
	Totals struct {
		Applications int64 `json:"applications"`
		Replied      int64 `json:"replied"`
		Rejected     int64 `json:"rejected"`
		Offer        int64 `json:"offer"`
	} `json:"totals"`
	ResponseRate float64 `json:"response_rate"`
}

// TrackerUsecase serves the reviewer-facing surface: listings, manual
// classification finalize, insights.
type TrackerUsecase struct {
	applications repository.ApplicationRepository
	messages     repository.MessageRepository
	events       repository.EventRepository
	now          func() time.Time
}

func NewTrackerUsecase(
	applications repository.ApplicationRepository,
	messages repository.MessageRepository,
	events repository.EventRepository,
) *TrackerUsecase {
	return &TrackerUsecase{
		applications: applications,
		messages:     messages,
		events:       events,
		now:          time.Now,
	}
}

func (u *TrackerUsecase) ListMessages(userID, classification string, limit, offset int) ([]*domain.Message, error) {
	return u.messages.ListByUser(userID, classification, clampLimit(limit), clampOffset(offset))
}

// FinalizeClassification applies a reviewer's verdict: merges the
// classification sub-object, advances the application status, and clears any
// triage claim regardless of who holds it.
func (u *TrackerUsecase) FinalizeClassification(userID, messageID string, input FinalizeInput) (*domain.Message, error) {
	label, ok := ai.ValidLabel(input.Classification)
	if !ok {
		return nil, fmt.Errorf("%w: unknown classification %q", ErrValidation, input.Classification)
	}
	source := input.ClassifiedBy
	if source != "llm" && source != "rules" {
		return nil, fmt.Errorf("%w: classified_by must be llm or rules", ErrValidation)
	}
	if input.Confidence != nil && (*input.Confidence < 0 || *input.Confidence > 1) {
		return nil, fmt.Errorf("%w: confidence out of range", ErrValidation)
	}

	msg, err := u.messages.FindByIDForUser(userID, messageID)
	if err != nil {
		return nil, err
	}
	if msg == nil {
		return nil, ErrMessageNotFound
	}

	now := u.now()
	metadata := msg.Metadata.WithClassification(domain.ClassificationMeta{
		Source:     source,
		Confidence: input.Confidence,
		Reason:     input.Reason,
		Raw:        input.RawResponse,
		UpdatedAt:  &now,
	})
	// Finalization always releases the triage claim.
	metadata = metadata.WithoutTriage()

	msg.Classification = label
	msg.Metadata = metadata
	if err := u.messages.Update(msg); err != nil {
		return nil, err
	}

	if status, ok := domain.StatusForClassification(label); ok {
		app, err := u.applications.FindByIDForUser(userID, msg.ApplicationID)
		if err != nil {
			return nil, err
		}
		if app != nil {
			app.Status = status
			app.LastStatusChangeAt = &now
			if err := u.applications.Update(app); err != nil {
				return nil, err
			}
		}
	}
	return msg, nil
}

// searchWindow bounds how many recent messages a search ranks over.
const searchWindow = 200

// SearchMessages fuzzy-ranks the user's recent messages against a free-text
// query. Subject, company, sender and snippet all contribute to the score.
func (u *TrackerUsecase) SearchMessages(userID, query string, limit int) ([]*domain.Message, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("%w: search query required", ErrValidation)
	}

	candidates, err := u.messages.ListByUser(userID, "", searchWindow, 0)
	if err != nil {
		return nil, err
	}

	type scored struct {
		msg   *domain.Message
		score float64
	}
	matches := make([]scored, 0, len(candidates))
	for _, msg := range candidates {
		company := ""
		if msg.Application != nil && msg.Application.Company != nil {
			company = msg.Application.Company.Name
		}
		if s := fuzzy.ScoreMessage(query, msg.Subject, company, msg.FromAddr, msg.Snippet); s > 0 {
			matches = append(matches, scored{msg: msg, score: s})
		}
	}
	// Ties keep recency order from the listing.
	sort.SliceStable(matches, func(i, j int) bool { return matches[i].score > matches[j].score })

	limit = clampLimit(limit)
	if len(matches) > limit {
		matches = matches[:limit]
	}
	out := make([]*domain.Message, 0, len(matches))
	for _, m := range matches {
		out = append(out, m.msg)
	}
	return out, nil
}

func (u *TrackerUsecase) ListApplications(userID, status string, limit, offset int) ([]*domain.Application, error) {
	return u.applications.ListByUser(userID, status, clampLimit(limit), clampOffset(offset))
}

// ApplicationDetail is an application plus its evidence trail.
type ApplicationDetail struct {
	*domain.Application
	Messages []*domain.Message          `json:"messages"`
	Events   []*domain.ApplicationEvent `json:"application_events"`
}

func (u *TrackerUsecase) GetApplication(userID, id string) (*ApplicationDetail, error) {
	app, err := u.applications.FindByIDForUser(userID, id)
	if err != nil {
		return nil, err
	}
	if app == nil {
		return nil, nil
	}

	msgs, err := u.messages.ListByApplication(app.ID)
	if err != nil {
		return nil, err
	}
	events, err := u.events.ListByApplication(app.ID)
	if err != nil {
		return nil, err
	}
	return &ApplicationDetail{Application: app, Messages: msgs, Events: events}, nil
}

func (u *TrackerUsecase) InsightsSummary(userID string) (*SummaryInsights, error) {
	counts, err := u.applications.CountByStatus(userID)
	if err != nil {
		return nil, err
	}

	var out SummaryInsights
	for status, n := range counts {
		out.Totals.Applications += n
		switch status {
		case domain.StatusRejected:
			out.Totals.Rejected += n
		case domain.StatusOffer:
			out.Totals.Offer += n
		}
		for _, replied := range domain.RepliedStatuses {
			if status == replied {
				out.Totals.Replied += n
			}
		}
	}
	if out.Totals.Applications > 0 {
		out.ResponseRate = float64(out.Totals.Replied) / float64(out.Totals.Applications)
	}
	return &out, nil
}

func (u *TrackerUsecase) CompanyLeaderboard(userID string) ([]repository.CompanyReplyRate, error) {
	return u.applications.Leaderboard(userID, 25)
}

func clampLimit(limit int) int {
	if limit < 1 {
		return 50
	}
	if limit > 100 {
		return 100
	}
	return limit
}

func clampOffset(offset int) int {
	if offset < 0 {
		return 0
	}
	return offset
}

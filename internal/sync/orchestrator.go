package sync

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	authdomain "jobtrail-backend/internal/auth/domain"
	authrepo "jobtrail-backend/internal/auth/repository"
	"jobtrail-backend/pkg/gmail"

	gmailapi "google.golang.org/api/gmail/v1"
)

// MailProvider is the mail listing/fetch capability the orchestrator drives.
// Implementations must surface gmail.ErrAuthExpired distinctly from
// transient failures.
type MailProvider interface {
	ListMessages(ctx context.Context, user *authdomain.User, query, pageToken string, maxResults int64) (*gmail.MessagePage, error)
	GetMessage(ctx context.Context, user *authdomain.User, id string) (*gmailapi.Message, error)
}

// TokenRefresher forces a new access token from the user's refresh token.
type TokenRefresher interface {
	Refresh(ctx context.Context, user *authdomain.User) (*gmail.RefreshedToken, error)
}

// Ingester consumes one fetched message.
type Ingester interface {
	Ingest(ctx context.Context, user *authdomain.User, gm *gmailapi.Message) error
}

const (
	maxResultsPerPage = 50
	maxAttempts       = 3
	backoffBase       = 2 * time.Second
	backoffCap        = 30 * time.Second
)

// baseSubjectQuery narrows the poll to job-search traffic before anything is
// fetched.
const baseSubjectQuery = `subject:(applied OR application OR interview OR "online assessment" OR OA OR HackerRank OR Codility OR CodeSignal OR Karat OR "next steps" OR offer OR regret)`

// Orchestrator runs one user's poll: build the watermark query, follow
// pagination, recover from auth expiry exactly once per run, retry transient
// failures with bounded backoff, and hand each fetched message to the
// ingester. The watermark only advances after a fully successful run, so a
// failed run reprocesses the same window — safe because ingestion is
// idempotent.
type Orchestrator struct {
	provider  MailProvider
	refresher TokenRefresher
	ingester  Ingester
	users     authrepo.UserRepository
	lookback  time.Duration

	sleep func(time.Duration)
	now   func() time.Time
}

func NewOrchestrator(provider MailProvider, refresher TokenRefresher, ingester Ingester, users authrepo.UserRepository, lookback time.Duration) *Orchestrator {
	if lookback <= 0 {
		lookback = time.Hour
	}
	return &Orchestrator{
		provider:  provider,
		refresher: refresher,
		ingester:  ingester,
		users:     users,
		lookback:  lookback,
		sleep:     time.Sleep,
		now:       time.Now,
	}
}

// SyncUser runs one poll for one user. Page fetch and per-message processing
// are sequential; concurrency exists only across users, at the scheduler.
func (o *Orchestrator) SyncUser(ctx context.Context, userID string) error {
	user, err := o.users.FindByID(userID)
	if err != nil {
		return err
	}
	if user == nil {
		return fmt.Errorf("unknown user %s", userID)
	}
	if !user.Syncable() {
		log.Printf("[SYNC] user=%s has no refresh token, skipping", userID)
		return nil
	}

	runStart := o.now()

	// Never synced means a bounded lookback, not a full-mailbox backfill.
	after := runStart.Add(-o.lookback)
	if user.LastSyncedAt != nil {
		after = *user.LastSyncedAt
	}
	query := fmt.Sprintf("label:INBOX after:%d %s", after.Unix(), baseSubjectQuery)

	refreshed := false
	pageToken := ""
	for {
		page, err := o.listPage(ctx, user, query, pageToken, &refreshed)
		if err != nil {
			return err
		}

		for _, ref := range page.Refs {
			// A fetch failure that survived the recovery policies means the
			// run cannot see the full window. Abort without advancing the
			// watermark so the next run re-fetches it.
			gm, err := o.fetchRef(ctx, user, ref.ID, &refreshed)
			if err != nil {
				return fmt.Errorf("fetch message %s: %w", ref.ID, err)
			}
			// One malformed message must not halt the page.
			if err := o.ingester.Ingest(ctx, user, gm); err != nil {
				log.Printf("[SYNC] user=%s message=%s skipped: %v", user.ID, ref.ID, err)
			}
		}

		pageToken = page.NextPageToken
		if pageToken == "" {
			break
		}
	}

	// Advance to the run's start, not per-message timestamps, so messages
	// landing out of order inside the poll window are not gapped.
	if err := o.users.UpdateWatermark(user.ID, runStart); err != nil {
		return fmt.Errorf("update watermark: %w", err)
	}
	log.Printf("[SYNC] user=%s completed, watermark=%s", user.ID, runStart.Format(time.RFC3339))
	return nil
}

func (o *Orchestrator) listPage(ctx context.Context, user *authdomain.User, query, pageToken string, refreshed *bool) (*gmail.MessagePage, error) {
	var page *gmail.MessagePage
	err := o.withRecovery(ctx, user, refreshed, func() error {
		var err error
		page, err = o.provider.ListMessages(ctx, user, query, pageToken, maxResultsPerPage)
		return err
	})
	return page, err
}

func (o *Orchestrator) fetchRef(ctx context.Context, user *authdomain.User, id string, refreshed *bool) (*gmailapi.Message, error) {
	var gm *gmailapi.Message
	err := o.withRecovery(ctx, user, refreshed, func() error {
		var err error
		gm, err = o.provider.GetMessage(ctx, user, id)
		return err
	})
	return gm, err
}

// withRecovery applies both error policies to one request: on auth expiry a
// single forced refresh for the whole run, then the identical request again;
// on transient failure up to maxAttempts total tries with exponential
// backoff. Exhaustion and repeated auth failure are fatal for the run.
func (o *Orchestrator) withRecovery(ctx context.Context, user *authdomain.User, refreshed *bool, call func() error) error {
	attempts := 0
	for {
		err := call()
		if err == nil {
			return nil
		}

		if errors.Is(err, gmail.ErrAuthExpired) {
			if *refreshed {
				return fmt.Errorf("auth expired after refresh: %w", err)
			}
			log.Printf("[SYNC] user=%s auth expired, forcing token refresh", user.ID)
			if rerr := o.refreshTokens(ctx, user); rerr != nil {
				return rerr
			}
			*refreshed = true
			continue
		}

		attempts++
		log.Printf("[SYNC] user=%s transient error (attempt %d): %v", user.ID, attempts, err)
		if attempts >= maxAttempts {
			return fmt.Errorf("giving up after %d attempts: %w", attempts, err)
		}
		o.sleep(backoffDelay(attempts))
	}
}

func (o *Orchestrator) refreshTokens(ctx context.Context, user *authdomain.User) error {
	token, err := o.refresher.Refresh(ctx, user)
	if err != nil {
		return fmt.Errorf("token refresh: %w", err)
	}
	if err := o.users.UpdateTokens(user.ID, token.AccessToken, token.ExpiresAt); err != nil {
		return fmt.Errorf("persist refreshed token: %w", err)
	}
	user.GoogleAccessToken = token.AccessToken
	user.TokenExpiresAt = &token.ExpiresAt
	return nil
}

func backoffDelay(attempt int) time.Duration {
	delay := backoffBase << (attempt - 1)
	if delay > backoffCap {
		return backoffCap
	}
	return delay
}

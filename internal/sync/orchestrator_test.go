package sync

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	authdomain "jobtrail-backend/internal/auth/domain"
	"jobtrail-backend/pkg/gmail"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gmailapi "google.golang.org/api/gmail/v1"
)

type fakeProvider struct {
	listFn  func(query, pageToken string) (*gmail.MessagePage, error)
	getFn   func(id string) (*gmailapi.Message, error)
	queries []string
}

func (f *fakeProvider) ListMessages(ctx context.Context, user *authdomain.User, query, pageToken string, maxResults int64) (*gmail.MessagePage, error) {
	f.queries = append(f.queries, query)
	return f.listFn(query, pageToken)
}

func (f *fakeProvider) GetMessage(ctx context.Context, user *authdomain.User, id string) (*gmailapi.Message, error) {
	if f.getFn != nil {
		return f.getFn(id)
	}
	return &gmailapi.Message{Id: id}, nil
}

type fakeRefresher struct {
	calls int
	err   error
}

func (f *fakeRefresher) Refresh(ctx context.Context, user *authdomain.User) (*gmail.RefreshedToken, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return &gmail.RefreshedToken{AccessToken: "fresh", ExpiresAt: time.Now().Add(time.Hour)}, nil
}

type fakeIngester struct {
	ingested []string
	failFor  map[string]error
}

func (f *fakeIngester) Ingest(ctx context.Context, user *authdomain.User, gm *gmailapi.Message) error {
	if err, ok := f.failFor[gm.Id]; ok {
		return err
	}
	f.ingested = append(f.ingested, gm.Id)
	return nil
}

type fakeUserRepo struct {
	user       *authdomain.User
	watermark  *time.Time
	newToken   string
	tokenCalls int
}

func (f *fakeUserRepo) Create(u *authdomain.User) error            { return nil }
func (f *fakeUserRepo) Update(u *authdomain.User) error            { return nil }
func (f *fakeUserRepo) FindByEmail(string) (*authdomain.User, error) { return nil, nil }
func (f *fakeUserRepo) FindByID(id string) (*authdomain.User, error) {
	if f.user != nil && f.user.ID == id {
		return f.user, nil
	}
	return nil, nil
}
func (f *fakeUserRepo) UpdateTokens(userID, accessToken string, expiresAt time.Time) error {
	f.newToken = accessToken
	f.tokenCalls++
	return nil
}
func (f *fakeUserRepo) UpdateWatermark(userID string, syncedAt time.Time) error {
	f.watermark = &syncedAt
	return nil
}
func (f *fakeUserRepo) FindSyncable() ([]*authdomain.User, error) {
	return []*authdomain.User{f.user}, nil
}

func testUser() *authdomain.User {
	return &authdomain.User{ID: "u1", Email: "me@example.com", GoogleAccessToken: "old", GoogleRefreshToken: "rt"}
}

func newTestOrchestrator(provider *fakeProvider, refresher *fakeRefresher, ingester *fakeIngester, users *fakeUserRepo) *Orchestrator {
	o := NewOrchestrator(provider, refresher, ingester, users, time.Hour)
	o.sleep = func(time.Duration) {}
	return o
}

func page(token string, ids ...string) *gmail.MessagePage {
	refs := make([]gmail.MessageRef, 0, len(ids))
	for _, id := range ids {
		refs = append(refs, gmail.MessageRef{ID: id})
	}
	return &gmail.MessagePage{Refs: refs, NextPageToken: token}
}

func TestSyncUser_PaginatesAndAdvancesWatermark(t *testing.T) {
	provider := &fakeProvider{
		listFn: func(query, pageToken string) (*gmail.MessagePage, error) {
			if pageToken == "" {
				return page("p2", "m1", "m2"), nil
			}
			return page("", "m3"), nil
		},
	}
	ingester := &fakeIngester{}
	users := &fakeUserRepo{user: testUser()}
	o := newTestOrchestrator(provider, &fakeRefresher{}, ingester, users)

	runStart := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
	o.now = func() time.Time { return runStart }

	require.NoError(t, o.SyncUser(context.Background(), "u1"))
	assert.Equal(t, []string{"m1", "m2", "m3"}, ingester.ingested)
	require.NotNil(t, users.watermark)
	assert.True(t, users.watermark.Equal(runStart))
}

func TestSyncUser_QueryUsesWatermark(t *testing.T) {
	lastSync := time.Date(2026, 8, 31, 9, 0, 0, 0, time.UTC)
	user := testUser()
	user.LastSyncedAt = &lastSync

	provider := &fakeProvider{
		listFn: func(query, pageToken string) (*gmail.MessagePage, error) { return page(""), nil },
	}
	users := &fakeUserRepo{user: user}
	o := newTestOrchestrator(provider, &fakeRefresher{}, &fakeIngester{}, users)

	require.NoError(t, o.SyncUser(context.Background(), "u1"))
	require.Len(t, provider.queries, 1)
	query := provider.queries[0]
	assert.Contains(t, query, "label:INBOX")
	assert.Contains(t, query, fmt.Sprintf("after:%d", lastSync.Unix()))
	assert.Contains(t, query, "subject:(")
}

func TestSyncUser_AuthExpiredRefreshesOnceAndRetries(t *testing.T) {
	calls := 0
	provider := &fakeProvider{
		listFn: func(query, pageToken string) (*gmail.MessagePage, error) {
			calls++
			if calls == 1 {
				return nil, fmt.Errorf("list: %w", gmail.ErrAuthExpired)
			}
			return page("", "m1"), nil
		},
	}
	refresher := &fakeRefresher{}
	ingester := &fakeIngester{}
	users := &fakeUserRepo{user: testUser()}
	o := newTestOrchestrator(provider, refresher, ingester, users)

	require.NoError(t, o.SyncUser(context.Background(), "u1"))
	assert.Equal(t, 1, refresher.calls)
	assert.Equal(t, 1, users.tokenCalls)
	assert.Equal(t, "fresh", users.newToken)
	assert.Equal(t, "fresh", users.user.GoogleAccessToken)
	assert.Equal(t, []string{"m1"}, ingester.ingested)
}

func TestSyncUser_SecondAuthErrorIsFatal(t *testing.T) {
	provider := &fakeProvider{
		listFn: func(query, pageToken string) (*gmail.MessagePage, error) {
			return nil, fmt.Errorf("list: %w", gmail.ErrAuthExpired)
		},
	}
	refresher := &fakeRefresher{}
	users := &fakeUserRepo{user: testUser()}
	o := newTestOrchestrator(provider, refresher, &fakeIngester{}, users)

	err := o.SyncUser(context.Background(), "u1")
	require.Error(t, err)
	assert.ErrorIs(t, err, gmail.ErrAuthExpired)
	assert.Equal(t, 1, refresher.calls, "only one forced refresh per run")
	assert.Nil(t, users.watermark, "failed run must not advance the watermark")
}

func TestSyncUser_TransientErrorsRetryWithBackoff(t *testing.T) {
	calls := 0
	provider := &fakeProvider{
		listFn: func(query, pageToken string) (*gmail.MessagePage, error) {
			calls++
			if calls < 3 {
				return nil, errors.New("rate limited")
			}
			return page("", "m1"), nil
		},
	}
	users := &fakeUserRepo{user: testUser()}
	o := NewOrchestrator(provider, &fakeRefresher{}, &fakeIngester{}, users, time.Hour)

	var slept []time.Duration
	o.sleep = func(d time.Duration) { slept = append(slept, d) }

	require.NoError(t, o.SyncUser(context.Background(), "u1"))
	assert.Equal(t, 3, calls)
	assert.Equal(t, []time.Duration{2 * time.Second, 4 * time.Second}, slept)
	assert.NotNil(t, users.watermark)
}

func TestSyncUser_TransientErrorsExhaustAttempts(t *testing.T) {
	calls := 0
	provider := &fakeProvider{
		listFn: func(query, pageToken string) (*gmail.MessagePage, error) {
			calls++
			return nil, errors.New("rate limited")
		},
	}
	users := &fakeUserRepo{user: testUser()}
	o := newTestOrchestrator(provider, &fakeRefresher{}, &fakeIngester{}, users)

	err := o.SyncUser(context.Background(), "u1")
	require.Error(t, err)
	assert.Equal(t, maxAttempts, calls)
	assert.Nil(t, users.watermark)
}

func TestSyncUser_FetchExhaustionIsFatal(t *testing.T) {
	gets := 0
	provider := &fakeProvider{
		listFn: func(query, pageToken string) (*gmail.MessagePage, error) {
			return page("", "m1", "m2"), nil
		},
		getFn: func(id string) (*gmailapi.Message, error) {
			gets++
			return nil, errors.New("rate limited")
		},
	}
	ingester := &fakeIngester{}
	users := &fakeUserRepo{user: testUser()}
	o := newTestOrchestrator(provider, &fakeRefresher{}, ingester, users)

	err := o.SyncUser(context.Background(), "u1")
	require.Error(t, err)
	assert.Equal(t, maxAttempts, gets, "abort on the first unfetchable message")
	assert.Empty(t, ingester.ingested)
	assert.Nil(t, users.watermark, "unfetched messages must stay inside the window")
}

func TestSyncUser_FetchAuthErrorAfterRefreshIsFatal(t *testing.T) {
	provider := &fakeProvider{
		listFn: func(query, pageToken string) (*gmail.MessagePage, error) {
			return page("", "m1"), nil
		},
		getFn: func(id string) (*gmailapi.Message, error) {
			return nil, fmt.Errorf("get: %w", gmail.ErrAuthExpired)
		},
	}
	refresher := &fakeRefresher{}
	users := &fakeUserRepo{user: testUser()}
	o := newTestOrchestrator(provider, refresher, &fakeIngester{}, users)

	err := o.SyncUser(context.Background(), "u1")
	require.Error(t, err)
	assert.ErrorIs(t, err, gmail.ErrAuthExpired)
	assert.Equal(t, 1, refresher.calls, "only one forced refresh per run")
	assert.Nil(t, users.watermark, "dead credentials must not advance the watermark")
}

func TestSyncUser_PerMessageFailureIsIsolated(t *testing.T) {
	provider := &fakeProvider{
		listFn: func(query, pageToken string) (*gmail.MessagePage, error) {
			return page("", "good1", "bad", "good2"), nil
		},
	}
	ingester := &fakeIngester{failFor: map[string]error{"bad": errors.New("malformed payload")}}
	users := &fakeUserRepo{user: testUser()}
	o := newTestOrchestrator(provider, &fakeRefresher{}, ingester, users)

	require.NoError(t, o.SyncUser(context.Background(), "u1"))
	assert.Equal(t, []string{"good1", "good2"}, ingester.ingested)
	assert.NotNil(t, users.watermark, "isolated failures still complete the run")
}

func TestSyncUser_SkipsUnsyncableUser(t *testing.T) {
	user := testUser()
	user.GoogleRefreshToken = ""
	provider := &fakeProvider{
		listFn: func(query, pageToken string) (*gmail.MessagePage, error) {
			t.Fatal("must not list for unsyncable user")
			return nil, nil
		},
	}
	users := &fakeUserRepo{user: user}
	o := newTestOrchestrator(provider, &fakeRefresher{}, &fakeIngester{}, users)

	require.NoError(t, o.SyncUser(context.Background(), "u1"))
	assert.Empty(t, provider.queries)
	assert.Nil(t, users.watermark)
}

func TestBackoffDelay_Capped(t *testing.T) {
	assert.Equal(t, 2*time.Second, backoffDelay(1))
	assert.Equal(t, 4*time.Second, backoffDelay(2))
	assert.Equal(t, 8*time.Second, backoffDelay(3))
	assert.Equal(t, 30*time.Second, backoffDelay(10))
}

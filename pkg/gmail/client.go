package gmail

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	authdomain "jobtrail-backend/internal/auth/domain"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	gmailapi "google.golang.org/api/gmail/v1"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

// ErrAuthExpired signals that the user's access token was rejected. The sync
// orchestrator handles it with exactly one forced refresh per run; it is
// distinct from transient I/O failure, which is retried with backoff.
var ErrAuthExpired = errors.New("gmail: authorization expired")

// MessageRef is a lightweight pointer to a provider message.
type MessageRef struct {
	ID string
}

// MessagePage is one page of a message listing.
type MessagePage struct {
	Refs          []MessageRef
	NextPageToken string
}

// RefreshedToken is the outcome of a forced token refresh.
type RefreshedToken struct {
	AccessToken string
	ExpiresAt   time.Time
}

type Client struct {
	clientID     string
	clientSecret string
}

func NewClient(clientID, clientSecret string) *Client {
	return &Client{
		clientID:     clientID,
		clientSecret: clientSecret,
	}
}

// service builds a Gmail service on the user's current access token. The
// token source is static on purpose: auth expiry must surface as
// ErrAuthExpired so the orchestrator controls the refresh, rather than the
// transport refreshing silently mid-run.
func (c *Client) service(ctx context.Context, user *authdomain.User) (*gmailapi.Service, error) {
	token := &oauth2.Token{
		AccessToken: user.GoogleAccessToken,
		TokenType:   "Bearer",
	}
	httpClient := oauth2.NewClient(ctx, oauth2.StaticTokenSource(token))

	srv, err := gmailapi.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("unable to create Gmail service: %w", err)
	}
	return srv, nil
}

// ListMessages returns one page of message refs matching the query.
func (c *Client) ListMessages(ctx context.Context, user *authdomain.User, query, pageToken string, maxResults int64) (*MessagePage, error) {
	srv, err := c.service(ctx, user)
	if err != nil {
		return nil, err
	}

	call := srv.Users.Messages.List("me").Q(query).MaxResults(maxResults)
	if pageToken != "" {
		call = call.PageToken(pageToken)
	}

	resp, err := call.Context(ctx).Do()
	if err != nil {
		return nil, classifyError(err)
	}

	page := &MessagePage{NextPageToken: resp.NextPageToken}
	for _, m := range resp.Messages {
		page.Refs = append(page.Refs, MessageRef{ID: m.Id})
	}
	return page, nil
}

// GetMessage fetches one full message, body tree included.
func (c *Client) GetMessage(ctx context.Context, user *authdomain.User, id string) (*gmailapi.Message, error) {
	srv, err := c.service(ctx, user)
	if err != nil {
		return nil, err
	}

	msg, err := srv.Users.Messages.Get("me", id).Format("full").Context(ctx).Do()
	if err != nil {
		return nil, classifyError(err)
	}
	return msg, nil
}

// Refresh forces a token refresh from the user's refresh token and returns
// the new access token pair. Persisting it is the caller's job.
func (c *Client) Refresh(ctx context.Context, user *authdomain.User) (*RefreshedToken, error) {
	if user.GoogleRefreshToken == "" {
		return nil, fmt.Errorf("no refresh token for user %s", user.ID)
	}

	config := &oauth2.Config{
		ClientID:     c.clientID,
		ClientSecret: c.clientSecret,
		Endpoint:     google.Endpoint,
	}
	// Expired-now token forces the source to hit the token endpoint.
	seed := &oauth2.Token{
		RefreshToken: user.GoogleRefreshToken,
		Expiry:       time.Now().Add(-time.Minute),
	}

	token, err := config.TokenSource(ctx, seed).Token()
	if err != nil {
		return nil, fmt.Errorf("token refresh failed: %w", err)
	}
	return &RefreshedToken{
		AccessToken: token.AccessToken,
		ExpiresAt:   token.Expiry,
	}, nil
}

// classifyError maps provider 401s to ErrAuthExpired and leaves everything
// else to the transient retry path.
func classifyError(err error) error {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) && apiErr.Code == http.StatusUnauthorized {
		return fmt.Errorf("%w: %v", ErrAuthExpired, err)
	}
	return err
}

package calendar

import (
	"context"
	"fmt"
	"time"

	authdomain "jobtrail-backend/internal/auth/domain"

	"golang.org/x/oauth2"
	calendarapi "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"
)

// Writer creates events on the user's primary calendar. Failures here are
// never fatal to ingestion; callers log and move on.
type Writer struct {
	clientID     string
	clientSecret string
}

func NewWriter(clientID, clientSecret string) *Writer {
	return &Writer{
		clientID:     clientID,
		clientSecret: clientSecret,
	}
}

// CreateEvent inserts an event and returns the provider's event id.
func (w *Writer) CreateEvent(ctx context.Context, user *authdomain.User, start, end time.Time, summary, location, description string) (string, error) {
	token := &oauth2.Token{
		AccessToken: user.GoogleAccessToken,
		TokenType:   "Bearer",
	}
	httpClient := oauth2.NewClient(ctx, oauth2.StaticTokenSource(token))

	srv, err := calendarapi.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return "", fmt.Errorf("unable to create Calendar service: %w", err)
	}

	event := &calendarapi.Event{
		Summary:     summary,
		Location:    location,
		Description: description,
		Start:       &calendarapi.EventDateTime{DateTime: start.Format(time.RFC3339)},
		End:         &calendarapi.EventDateTime{DateTime: end.Format(time.RFC3339)},
	}

	created, err := srv.Events.Insert("primary", event).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("unable to insert event: %w", err)
	}
	return created.Id, nil
}

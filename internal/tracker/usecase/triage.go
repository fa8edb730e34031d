package usecase

import (
	"errors"
	"time"

	"jobtrail-backend/internal/tracker/domain"
	"jobtrail-backend/internal/tracker/repository"
)

// ClaimTTL bounds how long a reviewer may sit on a claim before anyone else
// can silently take it over.
const ClaimTTL = 10 * time.Minute

// ErrClaimConflict is the expected outcome when another reviewer holds an
// active claim. It is a normal result, not a failure.
var ErrClaimConflict = errors.New("triage claim held by another reviewer")

// ErrMessageNotFound is returned when the message does not exist or belongs
// to another user.
var ErrMessageNotFound = errors.New("message not found")

// TriageUsecase manages the optimistic reviewer claim stored in the message
// metadata. The check is read-then-conditionally-write: acceptable because a
// claim request is a single human action per message.
type TriageUsecase struct {
	messages repository.MessageRepository
	now      func() time.Time
}

func NewTriageUsecase(messages repository.MessageRepository) *TriageUsecase {
	return &TriageUsecase{
		messages: messages,
		now:      time.Now,
	}
}

// Claim grants the requester exclusive triage of a message. Granted when no
// claim exists, the requester already holds it, or the existing claim is
// stale (older than ClaimTTL). On grant the triage sub-object is overwritten
// with the requester's identity and the current time.
func (u *TriageUsecase) Claim(userID, messageID, requester string) (*domain.TriageClaim, error) {
	msg, err := u.messages.FindByIDForUser(userID, messageID)
	if err != nil {
		return nil, err
	}
	if msg == nil {
		return nil, ErrMessageNotFound
	}

	now := u.now()
	if existing, ok := msg.Metadata.Triage(); ok {
		held := existing.InProgress &&
			existing.ClaimedBy != "" &&
			existing.ClaimedBy != requester &&
			now.Sub(existing.ClaimedAt) < ClaimTTL
		if held {
			return nil, ErrClaimConflict
		}
	}

	claim := domain.TriageClaim{
		InProgress: true,
		ClaimedBy:  requester,
		ClaimedAt:  now,
	}
	if err := u.messages.UpdateMetadata(msg.ID, msg.Metadata.WithTriage(claim)); err != nil {
		return nil, err
	}
	return &claim, nil
}

package repository

import (
	"errors"
	"time"

	"jobtrail-backend/internal/tracker/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type messageRepository struct {
	db *gorm.DB
}

func NewMessageRepository(db *gorm.DB) MessageRepository {
	return &messageRepository{db: db}
}

func (r *messageRepository) FindByGmailID(gmailMessageID string) (*domain.Message, error) {
	var msg domain.Message
	err := r.db.Where("gmail_message_id = ?", gmailMessageID).First(&msg).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &msg, nil
}

func (r *messageRepository) Create(msg *domain.Message) error {
	if msg.ID == "" {
		msg.ID = uuid.New().String()
	}
	msg.CreatedAt = time.Now()
	msg.UpdatedAt = time.Now()
	return r.db.Create(msg).Error
}

func (r *messageRepository) Update(msg *domain.Message) error {
	msg.UpdatedAt = time.Now()
	return r.db.Save(msg).Error
}

// UpdateMetadata rewrites only the metadata document. Callers are expected to
// have merged into the freshly loaded document so unrelated keys survive.
func (r *messageRepository) UpdateMetadata(id string, md domain.Metadata) error {
	return r.db.Model(&domain.Message{}).Where("id = ?", id).
		Updates(map[string]interface{}{
			"metadata":   md,
			"updated_at": time.Now(),
		}).Error
}

func (r *messageRepository) FindByIDForUser(userID, id string) (*domain.Message, error) {
	var msg domain.Message
	err := r.db.Preload("Application").Preload("Contact").
		Joins("JOIN applications ON applications.id = messages.application_id").
		Where("messages.id = ? AND applications.user_id = ?", id, userID).
		First(&msg).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &msg, nil
}

func (r *messageRepository) ListByUser(userID, classification string, limit, offset int) ([]*domain.Message, error) {
	var msgs []*domain.Message
	query := r.db.Preload("Application").Preload("Application.Company").Preload("Contact").
		Joins("JOIN applications ON applications.id = messages.application_id").
		Where("applications.user_id = ?", userID)
	if classification != "" {
		query = query.Where("messages.classification = ?", classification)
	}
	err := query.Order("messages.internal_ts DESC").Limit(limit).Offset(offset).Find(&msgs).Error
	return msgs, err
}

func (r *messageRepository) ListByApplication(applicationID string) ([]*domain.Message, error) {
	var msgs []*domain.Message
	err := r.db.Where("application_id = ?", applicationID).
		Order("internal_ts ASC").Find(&msgs).Error
	return msgs, err
}

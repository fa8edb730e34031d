package repository

import (
	"errors"
	"sort"
	"time"

	"jobtrail-backend/internal/tracker/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type applicationRepository struct {
	db *gorm.DB
}

func NewApplicationRepository(db *gorm.DB) ApplicationRepository {
	return &applicationRepository{db: db}
}

// FindOrCreate resolves the application thread for (user, company, role).
// New threads start in "applied" with applied_at set; existing threads come
// back untouched.
func (r *applicationRepository) FindOrCreate(userID, companyID, roleTitle string) (*domain.Application, error) {
	var app domain.Application
	err := r.db.Where("user_id = ? AND company_id = ? AND role_title = ?", userID, companyID, roleTitle).
		First(&app).Error
	if err == nil {
		return &app, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	now := time.Now()
	app = domain.Application{
		ID:        uuid.New().String(),
		UserID:    userID,
		CompanyID: companyID,
		RoleTitle: roleTitle,
		Status:    domain.StatusApplied,
		AppliedAt: &now,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := r.db.Create(&app).Error; err != nil {
		var existing domain.Application
		findErr := r.db.Where("user_id = ? AND company_id = ? AND role_title = ?", userID, companyID, roleTitle).
			First(&existing).Error
		if findErr == nil {
			return &existing, nil
		}
		return nil, err
	}
	return &app, nil
}

func (r *applicationRepository) Update(app *domain.Application) error {
	app.UpdatedAt = time.Now()
	return r.db.Save(app).Error
}

func (r *applicationRepository) FindByIDForUser(userID, id string) (*domain.Application, error) {
	var app domain.Application
	err := r.db.Preload("Company").Where("id = ? AND user_id = ?", id, userID).First(&app).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &app, nil
}

func (r *applicationRepository) ListByUser(userID string, status string, limit, offset int) ([]*domain.Application, error) {
	var apps []*domain.Application
	query := r.db.Preload("Company").Where("user_id = ?", userID)
	if status != "" {
		query = query.Where("status = ?", status)
	}
	err := query.Order("updated_at DESC").Limit(limit).Offset(offset).Find(&apps).Error
	return apps, err
}

func (r *applicationRepository) CountByStatus(userID string) (map[domain.ApplicationStatus]int64, error) {
	type row struct {
		Status domain.ApplicationStatus
		Count  int64
	}
	var rows []row
	err := r.db.Model(&domain.Application{}).
		Select("status, count(*) as count").
		Where("user_id = ?", userID).
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[domain.ApplicationStatus]int64, len(rows))
	for _, r := range rows {
		counts[r.Status] = r.Count
	}
	return counts, nil
}

// Leaderboard ranks company domains by reply rate for one user.
func (r *applicationRepository) Leaderboard(userID string, top int) ([]CompanyReplyRate, error) {
	type row struct {
		Domain  string
		Replies int
		Total   int
	}
	var rows []row
	err := r.db.Model(&domain.Application{}).
		Select("companies.domain as domain, "+
			"sum(CASE WHEN applications.status IN ? THEN 1 ELSE 0 END) as replies, "+
			"count(*) as total", domain.RepliedStatuses).
		Joins("JOIN companies ON companies.id = applications.company_id").
		Where("applications.user_id = ?", userID).
		Group("companies.domain").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	out := make([]CompanyReplyRate, 0, len(rows))
	for _, rw := range rows {
		rate := 0.0
		if rw.Total > 0 {
			rate = float64(rw.Replies) / float64(rw.Total)
		}
		out = append(out, CompanyReplyRate{Domain: rw.Domain, Replies: rw.Replies, Total: rw.Total, Rate: rate})
	}
	// Highest reply rate first.
	sort.Slice(out, func(i, j int) bool { return out[i].Rate > out[j].Rate })
	if top > 0 && len(out) > top {
		out = out[:top]
	}
	return out, nil
}

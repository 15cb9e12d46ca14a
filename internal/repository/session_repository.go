package repository

import (
	"neonclub_backend/internal/model"

	"gorm.io/gorm"
)

type SessionRepository struct {
	DB *gorm.DB
}

func NewSessionRepository(db *gorm.DB) *SessionRepository {
	return &SessionRepository{DB: db}
}

func (r *SessionRepository) Create(session *model.Session) error {
	return r.DB.Create(session).Error
}

func (r *SessionRepository) Save(session *model.Session) error {
	return r.DB.Save(session).Error
}

func (r *SessionRepository) FindByID(id uint) (*model.Session, error) {
	var session model.Session
	err := r.DB.First(&session, id).Error
	if err != nil {
		return nil, err
	}
	return &session, nil
}

// ListForUser 作为学员或导师参与的全部预约
func (r *SessionRepository) ListForUser(userID uint, status model.SessionStatus) ([]model.Session, error) {
	q := r.DB.Where("(user_id = ? OR mentor_id = ?)", userID, userID)
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var sessions []model.Session
	err := q.Order("scheduled_at ASC").Find(&sessions).Error
	return sessions, err
}

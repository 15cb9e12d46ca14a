package service

import (
	"errors"
	"fmt"
	"neonclub_backend/internal/model"
	"neonclub_backend/internal/repository"
	"neonclub_backend/internal/util"
	"neonclub_backend/pkg/logger"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type SessionService struct {
	SessionRepo *repository.SessionRepository
	UserRepo    *repository.UserRepository
}

func NewSessionService(sessionRepo *repository.SessionRepository, userRepo *repository.UserRepository) *SessionService {
	return &SessionService{SessionRepo: sessionRepo, UserRepo: userRepo}
}

type BookSessionInput struct {
	MentorID        uint      `json:"mentorId" binding:"required"`
	Topic           string    `json:"topic" binding:"required,max=255"`
	ScheduledAt     time.Time `json:"scheduledAt" binding:"required"`
	DurationMinutes int       `json:"durationMinutes" binding:"omitempty,min=15,max=240"`
	Notes           string    `json:"notes"`
}

// Book 同一导师同一开始时间只能有一个 booked 状态的预约，由唯一索引保证
func (s *SessionService) Book(userID uint, in BookSessionInput) (*model.Session, error) {
	mentor, err := s.UserRepo.FindByID(in.MentorID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrMentorNotFound
		}
		return nil, err
	}
	if mentor.Role != model.Mentor || mentor.Disabled {
		return nil, util.ErrMentorNotFound
	}
	if !in.ScheduledAt.After(time.Now()) {
		return nil, util.ErrSessionInPast
	}

	duration := in.DurationMinutes
	if duration == 0 {
		duration = 30
	}
	session := &model.Session{
		MentorID:        mentor.ID,
		UserID:          userID,
		Topic:           in.Topic,
		ScheduledAt:     in.ScheduledAt.UTC(),
		DurationMinutes: duration,
		Status:          model.SessionBooked,
		Notes:           in.Notes,
	}
	if err := s.SessionRepo.Create(session); err != nil {
		if util.IsDuplicateKey(err) {
			return nil, util.ErrSlotTaken
		}
		return nil, fmt.Errorf("book session: %w", err)
	}

	logger.Log.Info("session booked",
		zap.Uint("sessionId", session.ID),
		zap.Uint("mentorId", mentor.ID),
		zap.Uint("userId", userID),
		zap.Time("scheduledAt", session.ScheduledAt),
	)
	return session, nil
}

func (s *SessionService) ListMine(userID uint, status model.SessionStatus) ([]model.Session, error) {
	return s.SessionRepo.ListForUser(userID, status)
}

func (s *SessionService) find(id uint) (*model.Session, error) {
	session, err := s.SessionRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrSessionNotFound
		}
		return nil, err
	}
	return session, nil
}

// Cancel 预约双方均可取消
func (s *SessionService) Cancel(claims *util.Claims, id uint) (*model.Session, error) {
	session, err := s.find(id)
	if err != nil {
		return nil, err
	}
	if !session.IsParticipant(claims.UserID) && !claims.IsAdmin() {
		return nil, util.ErrSessionNotFound
	}
	if session.Status != model.SessionBooked {
		return nil, util.ErrSessionNotBooked
	}
	session.Status = model.SessionCancelled
	if err := s.SessionRepo.Save(session); err != nil {
		return nil, err
	}
	return session, nil
}

// Complete 仅导师本人可以结束预约
func (s *SessionService) Complete(claims *util.Claims, id uint, notes string) (*model.Session, error) {
	session, err := s.find(id)
	if err != nil {
		return nil, err
	}
	if session.MentorID != claims.UserID && !claims.IsAdmin() {
		return nil, util.ErrPermissionDenied
	}
	if session.Status != model.SessionBooked {
		return nil, util.ErrSessionNotBooked
	}
	session.Status = model.SessionCompleted
	if notes != "" {
		session.Notes = notes
	}
	if err := s.SessionRepo.Save(session); err != nil {
		return nil, err
	}
	return session, nil
}

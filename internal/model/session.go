package model

import (
	"time"

	"gorm.io/gorm"
)

type SessionStatus string

const (
	SessionBooked    SessionStatus = "booked"
	SessionCancelled SessionStatus = "cancelled"
	SessionCompleted SessionStatus = "completed"
)

// Session 导师一对一辅导预约
// swagger:model Session
type Session struct {
	BaseModel
	MentorID        uint          `gorm:"not null;uniqueIndex:idx_session_slot,priority:1" json:"mentorId"`
	ScheduledAt     time.Time     `gorm:"not null;uniqueIndex:idx_session_slot,priority:2" json:"scheduledAt"`
	BookedMarker    *bool         `gorm:"uniqueIndex:idx_session_slot,priority:3" json:"-"`
	UserID          uint          `gorm:"not null;index" json:"userId"`
	Topic           string        `gorm:"size:255" json:"topic"`
	DurationMinutes int           `gorm:"default:30" json:"durationMinutes"`
	Status          SessionStatus `gorm:"size:20;default:'booked'" json:"status"`
	Notes           string        `gorm:"type:text" json:"notes,omitempty"`
}

func (Session) TableName() string {
	return "sessions"
}

func (s *Session) BeforeSave(tx *gorm.DB) error {
	s.BookedMarker = marker(s.Status == SessionBooked)
	return nil
}

func (s *Session) IsParticipant(userID uint) bool {
	return s.UserID == userID || s.MentorID == userID
}

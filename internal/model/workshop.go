package model

import (
	"time"

	"gorm.io/datatypes"
)

// swagger:model Workshop
type Workshop struct {
	BaseModel
	Title           string                      `gorm:"size:255;not null" json:"title"`
	Description     string                      `gorm:"type:text" json:"description"`
	StartsAt        time.Time                   `gorm:"index" json:"startsAt"`
	DurationMinutes int                         `gorm:"default:60" json:"durationMinutes"`
	Capacity        int                         `gorm:"default:0" json:"capacity"` // 0 表示不限
	RegisteredCount int                         `gorm:"default:0" json:"registeredCount"`
	Price           float64                     `gorm:"default:0" json:"price"`
	Thumbnail       string                      `gorm:"size:255" json:"thumbnail"`
	InstructorID    uint                        `gorm:"index" json:"instructorId"`
	Venue           datatypes.JSON              `json:"venue,omitempty"`
	Materials       datatypes.JSONSlice[string] `json:"materials"`
	Published       bool                        `gorm:"index" json:"published"`
}

func (Workshop) TableName() string {
	return "workshops"
}

func (w *Workshop) IsFree() bool {
	return w.Price <= 0
}

func (w *Workshop) SeatsLeft() int {
	if w.Capacity <= 0 {
		return -1
	}
	left := w.Capacity - w.RegisteredCount
	if left < 0 {
		return 0
	}
	return left
}

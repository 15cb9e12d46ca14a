package model

import "time"

type EventKind string

const (
	EventKindEvent      EventKind = "event"
	EventKindConference EventKind = "conference"
)

func (k EventKind) Valid() bool {
	return k == EventKindEvent || k == EventKindConference
}

// Event covers both events and conferences; Kind decides which purchase item type it maps to.
// swagger:model Event
type Event struct {
	BaseModel
	Kind            EventKind `gorm:"size:20;index;not null" json:"kind"`
	Title           string    `gorm:"size:255;not null" json:"title"`
	Description     string    `gorm:"type:text" json:"description"`
	StartsAt        time.Time `gorm:"index" json:"startsAt"`
	EndsAt          time.Time `json:"endsAt"`
	Location        string    `gorm:"size:255" json:"location"`
	Price           float64   `gorm:"default:0" json:"price"`
	Capacity        int       `gorm:"default:0" json:"capacity"`
	RegisteredCount int       `gorm:"default:0" json:"registeredCount"`
	OrganizerID     uint      `gorm:"index" json:"organizerId"`
	Published       bool      `gorm:"index" json:"published"`
}

func (Event) TableName() string {
	return "events"
}

func (e *Event) IsFree() bool {
	return e.Price <= 0
}

func (e *Event) ItemType() ItemType {
	if e.Kind == EventKindConference {
		return ItemConference
	}
	return ItemEvent
}

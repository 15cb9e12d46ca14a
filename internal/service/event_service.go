package service

import (
	"errors"
	"neonclub_backend/internal/model"
	"neonclub_backend/internal/repository"
	"neonclub_backend/internal/util"
	"strings"
	"time"

	"gorm.io/gorm"
)

type EventService struct {
	EventRepo *repository.EventRepository
}

func NewEventService(eventRepo *repository.EventRepository) *EventService {
	return &EventService{EventRepo: eventRepo}
}

type EventInput struct {
	Kind        string    `json:"kind" binding:"required,eventkind"`
	Title       string    `json:"title" binding:"required,max=255"`
	Description string    `json:"description"`
	StartsAt    time.Time `json:"startsAt" binding:"required"`
	EndsAt      time.Time `json:"endsAt" binding:"required,gtfield=StartsAt"`
	Location    string    `json:"location"`
	Price       float64   `json:"price" binding:"gte=0"`
	Capacity    int       `json:"capacity" binding:"gte=0"`
}

func (s *EventService) ListEvents(kind model.EventKind, upcoming bool, page, limit int) ([]model.Event, int64, error) {
	return s.EventRepo.List(kind, upcoming, page, limit)
}

func (s *EventService) GetEvent(id uint) (*model.Event, error) {
	event, err := s.EventRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrEventNotFound
		}
		return nil, err
	}
	return event, nil
}

func (s *EventService) CreateEvent(claims *util.Claims, in EventInput) (*model.Event, error) {
	event := &model.Event{
		Kind:        model.EventKind(in.Kind),
		Title:       strings.TrimSpace(in.Title),
		Description: in.Description,
		StartsAt:    in.StartsAt,
		EndsAt:      in.EndsAt,
		Location:    in.Location,
		Price:       in.Price,
		Capacity:    in.Capacity,
		OrganizerID: claims.UserID,
		Published:   true,
	}
	if err := s.EventRepo.Create(event); err != nil {
		return nil, err
	}
	return event, nil
}

func (s *EventService) DeleteEvent(id uint) error {
	if _, err := s.GetEvent(id); err != nil {
		return err
	}
	return s.EventRepo.Delete(id)
}

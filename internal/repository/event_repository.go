package repository

import (
	"neonclub_backend/internal/model"
	"time"

	"gorm.io/gorm"
)

type EventRepository struct {
	DB *gorm.DB
}

func NewEventRepository(db *gorm.DB) *EventRepository {
	return &EventRepository{DB: db}
}

func (r *EventRepository) WithTx(tx *gorm.DB) *EventRepository {
	return &EventRepository{DB: tx}
}

func (r *EventRepository) List(kind model.EventKind, upcomingOnly bool, page, limit int) ([]model.Event, int64, error) {
	q := r.DB.Model(&model.Event{}).Where("published = ?", true)
	if kind != "" {
		q = q.Where("kind = ?", kind)
	}
	if upcomingOnly {
		q = q.Where("ends_at >= ?", time.Now())
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var events []model.Event
	err := q.Order("starts_at ASC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&events).Error
	return events, total, err
}

func (r *EventRepository) FindByID(id uint) (*model.Event, error) {
	var event model.Event
	err := r.DB.First(&event, id).Error
	if err != nil {
		return nil, err
	}
	return &event, nil
}

func (r *EventRepository) Create(event *model.Event) error {
	return r.DB.Create(event).Error
}

func (r *EventRepository) Delete(id uint) error {
	return r.DB.Delete(&model.Event{}, id).Error
}

func (r *EventRepository) Reserve(id uint) (bool, error) {
	res := r.DB.Model(&model.Event{}).
		Where("id = ? AND (capacity <= 0 OR registered_count < capacity)", id).
		Update("registered_count", gorm.Expr("registered_count + 1"))
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *EventRepository) Release(id uint) error {
	return r.DB.Model(&model.Event{}).
		Where("id = ? AND registered_count > 0", id).
		Update("registered_count", gorm.Expr("registered_count - 1")).
		Error
}

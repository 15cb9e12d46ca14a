package repository

import (
	"neonclub_backend/internal/model"
	"time"

	"gorm.io/gorm"
)

type WorkshopRepository struct {
	DB *gorm.DB
}

func NewWorkshopRepository(db *gorm.DB) *WorkshopRepository {
	return &WorkshopRepository{DB: db}
}

func (r *WorkshopRepository) WithTx(tx *gorm.DB) *WorkshopRepository {
	return &WorkshopRepository{DB: tx}
}

func (r *WorkshopRepository) List(upcomingOnly, includeHidden bool, page, limit int) ([]model.Workshop, int64, error) {
	q := r.DB.Model(&model.Workshop{})
	if !includeHidden {
		q = q.Where("published = ?", true)
	}
	if upcomingOnly {
		q = q.Where("starts_at >= ?", time.Now())
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var workshops []model.Workshop
	err := q.Order("starts_at ASC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&workshops).Error
	return workshops, total, err
}

func (r *WorkshopRepository) FindByID(id uint) (*model.Workshop, error) {
	var workshop model.Workshop
	err := r.DB.First(&workshop, id).Error
	if err != nil {
		return nil, err
	}
	return &workshop, nil
}

func (r *WorkshopRepository) FindByIDs(ids []uint) ([]model.Workshop, error) {
	var workshops []model.Workshop
	if len(ids) == 0 {
		return workshops, nil
	}
	err := r.DB.Where("id IN ?", ids).Order("starts_at ASC").Find(&workshops).Error
	return workshops, err
}

func (r *WorkshopRepository) Create(workshop *model.Workshop) error {
	return r.DB.Create(workshop).Error
}

func (r *WorkshopRepository) Update(workshop *model.Workshop) error {
	return r.DB.Save(workshop).Error
}

func (r *WorkshopRepository) Delete(id uint) error {
	return r.DB.Delete(&model.Workshop{}, id).Error
}

// Reserve 原子占用一个名额；名额已满时返回 false
func (r *WorkshopRepository) Reserve(id uint) (bool, error) {
	res := r.DB.Model(&model.Workshop{}).
		Where("id = ? AND (capacity <= 0 OR registered_count < capacity)", id).
		Update("registered_count", gorm.Expr("registered_count + 1"))
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *WorkshopRepository) Release(id uint) error {
	return r.DB.Model(&model.Workshop{}).
		Where("id = ? AND registered_count > 0", id).
		Update("registered_count", gorm.Expr("registered_count - 1")).
		Error
}

package repository

import (
	"neonclub_backend/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ProgressRepository struct {
	DB *gorm.DB
}

func NewProgressRepository(db *gorm.DB) *ProgressRepository {
	return &ProgressRepository{DB: db}
}

func (r *ProgressRepository) WithTx(tx *gorm.DB) *ProgressRepository {
	return &ProgressRepository{DB: tx}
}

func (r *ProgressRepository) Find(userID, courseID uint) (*model.UserProgress, error) {
	var progress model.UserProgress
	err := r.DB.Preload("Lessons").
		Where("user_id = ? AND course_id = ?", userID, courseID).
		First(&progress).Error
	if err != nil {
		return nil, err
	}
	return &progress, nil
}

// FindForUpdate 在事务内加行锁读取（sqlite 忽略 FOR UPDATE）
func (r *ProgressRepository) FindForUpdate(userID, courseID uint) (*model.UserProgress, error) {
	var progress model.UserProgress
	q := r.DB
	if r.DB.Dialector.Name() != "sqlite" {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	err := q.Where("user_id = ? AND course_id = ?", userID, courseID).First(&progress).Error
	if err != nil {
		return nil, err
	}
	if err := r.DB.Where("user_progress_id = ?", progress.ID).Find(&progress.Lessons).Error; err != nil {
		return nil, err
	}
	return &progress, nil
}

// Create 并发首次访问时以唯一索引为准，冲突由调用方重新读取
func (r *ProgressRepository) Create(progress *model.UserProgress) error {
	return r.DB.Create(progress).Error
}

func (r *ProgressRepository) Save(progress *model.UserProgress) error {
	return r.DB.Omit(clause.Associations).Save(progress).Error
}

func (r *ProgressRepository) SaveLesson(lesson *model.LessonProgress) error {
	return r.DB.Save(lesson).Error
}

func (r *ProgressRepository) CreateLessons(lessons []model.LessonProgress) error {
	if len(lessons) == 0 {
		return nil
	}
	return r.DB.Create(&lessons).Error
}

func (r *ProgressRepository) ListByUser(userID uint) ([]model.UserProgress, error) {
	var list []model.UserProgress
	err := r.DB.Preload("Lessons").
		Where("user_id = ?", userID).
		Order("updated_at DESC").
		Find(&list).Error
	return list, err
}

// PercentByCourse 返回 courseID -> 进度百分比
func (r *ProgressRepository) PercentByCourse(userID uint, courseIDs []uint) (map[uint]int, error) {
	result := make(map[uint]int, len(courseIDs))
	if len(courseIDs) == 0 {
		return result, nil
	}
	var rows []model.UserProgress
	err := r.DB.Select("course_id", "progress").
		Where("user_id = ? AND course_id IN ?", userID, courseIDs).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, p := range rows {
		result[p.CourseID] = p.Progress
	}
	return result, nil
}

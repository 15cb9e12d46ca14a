package repository

import (
	"errors"
	"neonclub_backend/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CourseRepository struct {
	DB *gorm.DB
}

func NewCourseRepository(db *gorm.DB) *CourseRepository {
	return &CourseRepository{DB: db}
}

func (r *CourseRepository) WithTx(tx *gorm.DB) *CourseRepository {
	return &CourseRepository{DB: tx}
}

type CourseFilter struct {
	Query         string
	Category      string
	InstructorID  uint
	IncludeHidden bool
	Page          int
	Limit         int
}

func (r *CourseRepository) List(f CourseFilter) ([]model.Course, int64, error) {
	q := r.DB.Model(&model.Course{})
	if !f.IncludeHidden {
		q = q.Where("published = ?", true)
	}
	if f.Query != "" {
		like := "%" + f.Query + "%"
		q = q.Where("(title LIKE ? OR description LIKE ?)", like, like)
	}
	if f.Category != "" {
		q = q.Where("category = ?", f.Category)
	}
	if f.InstructorID != 0 {
		q = q.Where("instructor_id = ?", f.InstructorID)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var courses []model.Course
	err := q.Order("created_at DESC").
		Offset((f.Page - 1) * f.Limit).
		Limit(f.Limit).
		Find(&courses).Error
	return courses, total, err
}

func (r *CourseRepository) FindByID(id uint) (*model.Course, error) {
	var course model.Course
	err := r.DB.First(&course, id).Error
	if err != nil {
		return nil, err
	}
	return &course, nil
}

// FindWithLessons 课时按 order 升序
func (r *CourseRepository) FindWithLessons(id uint) (*model.Course, error) {
	var course model.Course
	err := r.DB.Preload("Lessons", func(db *gorm.DB) *gorm.DB {
		return db.Order("sort_order ASC, id ASC")
	}).First(&course, id).Error
	if err != nil {
		return nil, err
	}
	return &course, nil
}

func (r *CourseRepository) FindByIDs(ids []uint) ([]model.Course, error) {
	var courses []model.Course
	if len(ids) == 0 {
		return courses, nil
	}
	err := r.DB.Where("id IN ?", ids).Find(&courses).Error
	return courses, err
}

func (r *CourseRepository) Create(course *model.Course) error {
	return r.DB.Create(course).Error
}

func (r *CourseRepository) Update(course *model.Course) error {
	return r.DB.Omit(clause.Associations).Save(course).Error
}

func (r *CourseRepository) Delete(id uint) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("course_id = ?", id).Delete(&model.Lesson{}).Error; err != nil {
			return err
		}
		return tx.Delete(&model.Course{}, id).Error
	})
}

// IncrementEnrollment delta 可为负（退款）
func (r *CourseRepository) IncrementEnrollment(id uint, delta int) error {
	return r.DB.Model(&model.Course{}).
		Where("id = ?", id).
		Update("enrollment_count", gorm.Expr("CASE WHEN enrollment_count + ? < 0 THEN 0 ELSE enrollment_count + ? END", delta, delta)).
		Error
}

func (r *CourseRepository) FindLesson(courseID, lessonID uint) (*model.Lesson, error) {
	var lesson model.Lesson
	err := r.DB.Where("course_id = ? AND id = ?", courseID, lessonID).First(&lesson).Error
	if err != nil {
		return nil, err
	}
	return &lesson, nil
}

func (r *CourseRepository) NextLessonOrder(courseID uint) (int, error) {
	var maxOrder *int
	err := r.DB.Model(&model.Lesson{}).
		Where("course_id = ?", courseID).
		Select("MAX(sort_order)").
		Scan(&maxOrder).Error
	if err != nil {
		return 0, err
	}
	if maxOrder == nil {
		return 1, nil
	}
	return *maxOrder + 1, nil
}

func (r *CourseRepository) CreateLesson(lesson *model.Lesson) error {
	return r.DB.Create(lesson).Error
}

func (r *CourseRepository) UpdateLesson(lesson *model.Lesson) error {
	return r.DB.Save(lesson).Error
}

func (r *CourseRepository) DeleteLesson(courseID, lessonID uint) error {
	return r.DB.Where("course_id = ? AND id = ?", courseID, lessonID).Delete(&model.Lesson{}).Error
}

// UpsertRating 写入评分后在同一事务内重算课程平均分
func (r *CourseRepository) UpsertRating(userID, courseID uint, rating int) (*model.Course, error) {
	var course model.Course
	err := r.DB.Transaction(func(tx *gorm.DB) error {
		var existing model.CourseRating
		err := tx.Where("user_id = ? AND course_id = ?", userID, courseID).First(&existing).Error
		switch {
		case err == nil:
			existing.Rating = rating
			if err := tx.Save(&existing).Error; err != nil {
				return err
			}
		case errors.Is(err, gorm.ErrRecordNotFound):
			if err := tx.Create(&model.CourseRating{UserID: userID, CourseID: courseID, Rating: rating}).Error; err != nil {
				return err
			}
		default:
			return err
		}

		var agg struct {
			Avg   float64
			Count int
		}
		if err := tx.Model(&model.CourseRating{}).
			Where("course_id = ?", courseID).
			Select("COALESCE(AVG(rating), 0) AS avg, COUNT(*) AS count").
			Scan(&agg).Error; err != nil {
			return err
		}

		if err := tx.Model(&model.Course{}).Where("id = ?", courseID).Updates(map[string]interface{}{
			"rating":       agg.Avg,
			"rating_count": agg.Count,
		}).Error; err != nil {
			return err
		}
		return tx.First(&course, courseID).Error
	})
	if err != nil {
		return nil, err
	}
	return &course, nil
}

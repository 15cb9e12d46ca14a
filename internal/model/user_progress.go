package model

import "time"

// swagger:model UserProgress
type UserProgress struct {
	BaseModel
	UserID          uint             `gorm:"not null;uniqueIndex:idx_progress_user_course" json:"userId"`
	CourseID        uint             `gorm:"not null;uniqueIndex:idx_progress_user_course" json:"courseId"`
	CurrentLessonID *uint            `json:"currentLessonId"`
	Progress        int              `gorm:"default:0" json:"progress"`
	CompletedAt     *time.Time       `json:"completedAt,omitempty"`
	Lessons         []LessonProgress `gorm:"foreignKey:UserProgressID" json:"lessons"`
}

func (UserProgress) TableName() string {
	return "user_progress"
}

// swagger:model LessonProgress
type LessonProgress struct {
	BaseModel
	UserProgressID uint       `gorm:"not null;uniqueIndex:idx_lesson_progress" json:"-"`
	LessonID       uint       `gorm:"not null;uniqueIndex:idx_lesson_progress" json:"lessonId"`
	Completed      bool       `gorm:"default:false" json:"completed"`
	CompletedAt    *time.Time `json:"completedAt,omitempty"`
	TimeSpent      int        `gorm:"default:0" json:"timeSpent"` // 秒
}

func (LessonProgress) TableName() string {
	return "lesson_progress"
}

package model

import "time"

// swagger:model Course
type Course struct {
	BaseModel
	Title           string   `gorm:"size:255;not null" json:"title"`
	Description     string   `gorm:"type:text" json:"description"`
	Price           float64  `gorm:"default:0" json:"price"`
	Thumbnail       string   `gorm:"size:255" json:"thumbnail"`
	Category        string   `gorm:"size:100;index" json:"category"`
	Level           string   `gorm:"size:50" json:"level"`
	InstructorID    uint     `gorm:"index" json:"instructorId"`
	EnrollmentCount int      `gorm:"default:0" json:"enrollmentCount"`
	Rating          float64  `gorm:"default:0" json:"rating"`
	RatingCount     int      `gorm:"default:0" json:"ratingCount"`
	Published       bool     `gorm:"index" json:"published"`
	Lessons         []Lesson `gorm:"foreignKey:CourseID" json:"lessons,omitempty"`
}

func (Course) TableName() string {
	return "courses"
}

func (c *Course) IsFree() bool {
	return c.Price <= 0
}

// swagger:model Lesson
type Lesson struct {
	BaseModel
	CourseID    uint    `gorm:"index;not null" json:"courseId"`
	Title       string  `gorm:"size:255;not null" json:"title"`
	Description string  `gorm:"type:text" json:"description"`
	VideoURL    string  `gorm:"size:500" json:"videoUrl"`
	Thumbnail   string  `gorm:"size:255" json:"thumbnail"`
	Duration    float64 `gorm:"default:0" json:"duration"` // 秒
	Order       int     `gorm:"column:sort_order;default:0" json:"order"`
}

func (Lesson) TableName() string {
	return "lessons"
}

// CourseRating 每个用户对课程只保留一条评分
type CourseRating struct {
	BaseModel
	UserID   uint `gorm:"uniqueIndex:idx_rating_user_course" json:"userId"`
	CourseID uint `gorm:"uniqueIndex:idx_rating_user_course" json:"courseId"`
	Rating   int  `gorm:"not null" json:"rating"`
}

func (CourseRating) TableName() string {
	return "course_ratings"
}

// MyCourse 已购课程及学习进度
type MyCourse struct {
	Course      Course     `json:"course"`
	PurchasedAt *time.Time `json:"purchasedAt"`
	Progress    int        `json:"progress"`
}

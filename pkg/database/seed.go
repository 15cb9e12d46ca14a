package database

import (
	"errors"
	"fmt"
	"log"
	"neonclub_backend/internal/model"
	"os"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gopkg.in/yaml.v3"
	"gorm.io/gorm"
)

// SeedFile 目录初始数据，结构与 configs/seed.yaml 一致
type SeedFile struct {
	Mentors []struct {
		Name     string `yaml:"name"`
		Email    string `yaml:"email"`
		Password string `yaml:"password"`
		Role     string `yaml:"role"`
	} `yaml:"mentors"`
	Courses []struct {
		Title       string  `yaml:"title"`
		Description string  `yaml:"description"`
		Price       float64 `yaml:"price"`
		Category    string  `yaml:"category"`
		Level       string  `yaml:"level"`
		Thumbnail   string  `yaml:"thumbnail"`
		Instructor  string  `yaml:"instructor"`
		Lessons     []struct {
			Title    string  `yaml:"title"`
			VideoURL string  `yaml:"video_url"`
			Duration float64 `yaml:"duration"`
		} `yaml:"lessons"`
	} `yaml:"courses"`
	Workshops []struct {
		Title           string    `yaml:"title"`
		Description     string    `yaml:"description"`
		StartsAt        time.Time `yaml:"starts_at"`
		DurationMinutes int       `yaml:"duration_minutes"`
		Capacity        int       `yaml:"capacity"`
		Price           float64   `yaml:"price"`
		Instructor      string    `yaml:"instructor"`
		Materials       []string  `yaml:"materials"`
	} `yaml:"workshops"`
	Events []struct {
		Kind     string    `yaml:"kind"`
		Title    string    `yaml:"title"`
		StartsAt time.Time `yaml:"starts_at"`
		EndsAt   time.Time `yaml:"ends_at"`
		Location string    `yaml:"location"`
		Price    float64   `yaml:"price"`
		Capacity int       `yaml:"capacity"`
	} `yaml:"events"`
}

func LoadSeedFile(path string) (*SeedFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var seed SeedFile
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return nil, fmt.Errorf("parse seed file: %w", err)
	}
	return &seed, nil
}

// Seed 按标题/邮箱去重，重复执行不会产生重复数据
func Seed(db *gorm.DB, seed *SeedFile) error {
	return db.Transaction(func(tx *gorm.DB) error {
		instructors := map[string]uint{}

		for _, m := range seed.Mentors {
			var user model.User
			err := tx.Where("email = ?", m.Email).First(&user).Error
			if errors.Is(err, gorm.ErrRecordNotFound) {
				hashed, err := bcrypt.GenerateFromPassword([]byte(m.Password), bcrypt.DefaultCost)
				if err != nil {
					return err
				}
				role := model.UserRole(m.Role)
				if role == "" {
					role = model.Mentor
				}
				user = model.User{Name: m.Name, Email: m.Email, Password: string(hashed), Role: role}
				if err := tx.Create(&user).Error; err != nil {
					return err
				}
			} else if err != nil {
				return err
			}
			instructors[m.Email] = user.ID
		}

		for _, c := range seed.Courses {
			var count int64
			tx.Model(&model.Course{}).Where("title = ?", c.Title).Count(&count)
			if count > 0 {
				continue
			}
			course := model.Course{
				Title:        c.Title,
				Description:  c.Description,
				Price:        c.Price,
				Category:     c.Category,
				Level:        c.Level,
				Thumbnail:    c.Thumbnail,
				InstructorID: instructors[c.Instructor],
				Published:    true,
			}
			for i, l := range c.Lessons {
				course.Lessons = append(course.Lessons, model.Lesson{
					Title:    l.Title,
					VideoURL: l.VideoURL,
					Duration: l.Duration,
					Order:    i + 1,
				})
			}
			if err := tx.Create(&course).Error; err != nil {
				return err
			}
		}

		for _, w := range seed.Workshops {
			var count int64
			tx.Model(&model.Workshop{}).Where("title = ?", w.Title).Count(&count)
			if count > 0 {
				continue
			}
			workshop := model.Workshop{
				Title:           w.Title,
				Description:     w.Description,
				StartsAt:        w.StartsAt,
				DurationMinutes: w.DurationMinutes,
				Capacity:        w.Capacity,
				Price:           w.Price,
				InstructorID:    instructors[w.Instructor],
				Materials:       w.Materials,
				Published:       true,
			}
			if err := tx.Create(&workshop).Error; err != nil {
				return err
			}
		}

		for _, e := range seed.Events {
			var count int64
			tx.Model(&model.Event{}).Where("title = ?", e.Title).Count(&count)
			if count > 0 {
				continue
			}
			kind := model.EventKind(e.Kind)
			if kind == "" {
				kind = model.EventKindEvent
			}
			event := model.Event{
				Kind:      kind,
				Title:     e.Title,
				StartsAt:  e.StartsAt,
				EndsAt:    e.EndsAt,
				Location:  e.Location,
				Price:     e.Price,
				Capacity:  e.Capacity,
				Published: true,
			}
			if err := tx.Create(&event).Error; err != nil {
				return err
			}
		}

		log.Printf("Seeded %d mentors, %d courses, %d workshops, %d events",
			len(seed.Mentors), len(seed.Courses), len(seed.Workshops), len(seed.Events))
		return nil
	})
}

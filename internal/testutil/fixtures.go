package testutil

import (
	"fmt"
	"testing"
	"time"

	"neonclub_backend/internal/model"
	"neonclub_backend/internal/util"

	"gorm.io/gorm"
)

func SeedUser(tb testing.TB, db *gorm.DB, email string, role model.UserRole) *model.User {
	tb.Helper()
	u := &model.User{
		Name:     "Test " + string(role),
		Email:    email,
		Password: "hashed",
		Role:     role,
	}
	if err := db.Create(u).Error; err != nil {
		tb.Fatalf("seed user: %v", err)
	}
	return u
}

// SeedCourse creates a published course with the given number of lessons, ordered 1..n.
func SeedCourse(tb testing.TB, db *gorm.DB, instructorID uint, price float64, lessons int) *model.Course {
	tb.Helper()
	c := &model.Course{
		Title:        fmt.Sprintf("Course %.0f", price),
		Price:        price,
		InstructorID: instructorID,
		Published:    true,
	}
	for i := 1; i <= lessons; i++ {
		c.Lessons = append(c.Lessons, model.Lesson{Title: fmt.Sprintf("Lesson %d", i), Order: i})
	}
	if err := db.Create(c).Error; err != nil {
		tb.Fatalf("seed course: %v", err)
	}
	return c
}

func SeedWorkshop(tb testing.TB, db *gorm.DB, instructorID uint, price float64, capacity int) *model.Workshop {
	tb.Helper()
	w := &model.Workshop{
		Title:        "Wound care workshop",
		StartsAt:     time.Now().Add(72 * time.Hour),
		Capacity:     capacity,
		Price:        price,
		InstructorID: instructorID,
		Published:    true,
	}
	if err := db.Create(w).Error; err != nil {
		tb.Fatalf("seed workshop: %v", err)
	}
	return w
}

func SeedEvent(tb testing.TB, db *gorm.DB, kind model.EventKind, price float64, capacity int) *model.Event {
	tb.Helper()
	start := time.Now().Add(24 * time.Hour)
	e := &model.Event{
		Kind:      kind,
		Title:     "Nursing " + string(kind),
		StartsAt:  start,
		EndsAt:    start.Add(3 * time.Hour),
		Price:     price,
		Capacity:  capacity,
		Published: true,
	}
	if err := db.Create(e).Error; err != nil {
		tb.Fatalf("seed event: %v", err)
	}
	return e
}

func Claims(u *model.User) *util.Claims {
	return &util.Claims{UserID: u.ID, Role: u.Role, Email: u.Email}
}

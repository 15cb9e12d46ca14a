package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"neonclub_backend/internal/model"
	"neonclub_backend/internal/repository"
	"neonclub_backend/internal/testutil"
	"neonclub_backend/internal/util"

	"gorm.io/gorm"
)

func TestCompletionPercent(t *testing.T) {
	tests := []struct {
		completed, total, want int
	}{
		{0, 0, 0},
		{0, 3, 0},
		{1, 3, 33},
		{2, 3, 67},
		{3, 3, 100},
		{1, 8, 13},
	}
	for _, tt := range tests {
		if got := CompletionPercent(tt.completed, tt.total); got != tt.want {
			t.Errorf("CompletionPercent(%d, %d) = %d, want %d", tt.completed, tt.total, got, tt.want)
		}
	}
}

func lessonsOf(ids ...uint) []model.Lesson {
	out := make([]model.Lesson, len(ids))
	for i, id := range ids {
		out[i] = model.Lesson{BaseModel: model.BaseModel{ID: id}, Order: i + 1}
	}
	return out
}

func progressWith(done ...uint) *model.UserProgress {
	p := &model.UserProgress{}
	for _, id := range done {
		p.Lessons = append(p.Lessons, model.LessonProgress{LessonID: id, Completed: true})
	}
	return p
}

func TestRecomputeAdvancesCurrentLesson(t *testing.T) {
	lessons := lessonsOf(10, 20, 30, 40)
	now := time.Now()

	tests := []struct {
		name     string
		done     []uint
		toggled  uint
		current  uint
		progress int
	}{
		{"next after toggled", []uint{10}, 10, 20, 25},
		{"skips completed lessons", []uint{10, 20}, 10, 30, 50},
		{"wraps to first uncompleted", []uint{40, 30}, 40, 10, 50},
		{"stays on last when all done", []uint{10, 20, 30, 40}, 20, 40, 100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := progressWith(tt.done...)
			Recompute(p, lessons, tt.toggled, now)
			if p.Progress != tt.progress {
				t.Fatalf("progress = %d, want %d", p.Progress, tt.progress)
			}
			if p.CurrentLessonID == nil || *p.CurrentLessonID != tt.current {
				t.Fatalf("current = %v, want %d", p.CurrentLessonID, tt.current)
			}
		})
	}
}

func TestRecomputeIgnoresRemovedLessons(t *testing.T) {
	p := progressWith(10, 99)
	Recompute(p, lessonsOf(10, 20), 0, time.Now())
	if p.Progress != 50 {
		t.Fatalf("progress = %d, want 50", p.Progress)
	}
	if p.CurrentLessonID != nil {
		t.Fatalf("current moved without a toggle: %v", *p.CurrentLessonID)
	}
}

func TestRecomputeKeepsCompletedAt(t *testing.T) {
	first := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	p := progressWith(10)
	Recompute(p, lessonsOf(10), 10, first)
	if p.CompletedAt == nil || !p.CompletedAt.Equal(first) {
		t.Fatalf("completedAt = %v, want %v", p.CompletedAt, first)
	}

	p.Lessons[0].Completed = false
	Recompute(p, lessonsOf(10), 10, first.Add(time.Hour))
	if p.Progress != 0 {
		t.Fatalf("progress = %d, want 0", p.Progress)
	}
	if p.CompletedAt == nil || !p.CompletedAt.Equal(first) {
		t.Fatalf("completedAt changed to %v", p.CompletedAt)
	}
}

func newProgressFixture(t *testing.T, lessons int) (*gorm.DB, *ProgressService, *util.Claims, *model.Course) {
	t.Helper()
	db := testutil.DB(t)
	mentor := testutil.SeedUser(t, db, "mentor@neon.test", model.Mentor)
	nurse := testutil.SeedUser(t, db, "nurse@neon.test", model.Nurse)
	course := testutil.SeedCourse(t, db, mentor.ID, 0, lessons)
	svc := NewProgressService(
		db,
		repository.NewProgressRepository(db),
		repository.NewCourseRepository(db),
		repository.NewPurchaseRepository(db),
	)
	return db, svc, testutil.Claims(nurse), course
}

func TestProgressRequiresCompletedPurchase(t *testing.T) {
	_, svc, claims, course := newProgressFixture(t, 2)

	if _, err := svc.GetProgress(claims, course.ID); !errors.Is(err, util.ErrNotEnrolled) {
		t.Fatalf("err = %v, want ErrNotEnrolled", err)
	}
}

func TestCompleteLessonFlow(t *testing.T) {
	db, svc, claims, course := newProgressFixture(t, 3)
	ctx := context.Background()
	if _, err := newPurchaseService(db).Purchase(ctx, claims.UserID, model.ItemCourse, course.ID, PurchaseRequest{}); err != nil {
		t.Fatalf("purchase: %v", err)
	}
	l1, l2, l3 := course.Lessons[0].ID, course.Lessons[1].ID, course.Lessons[2].ID

	p, err := svc.GetProgress(claims, course.ID)
	if err != nil {
		t.Fatalf("GetProgress: %v", err)
	}
	if p.Progress != 0 || p.CurrentLessonID == nil || *p.CurrentLessonID != l1 || len(p.Lessons) != 3 {
		t.Fatalf("initial progress = %+v", p)
	}

	steps := []struct {
		lesson    uint
		completed bool
		progress  int
		current   uint
	}{
		{l1, true, 33, l2},
		{l3, true, 67, l2},
		{l2, true, 100, l3},
		{l1, false, 67, l1},
	}
	for i, step := range steps {
		completed := step.completed
		p, err = svc.CompleteLesson(ctx, claims, course.ID, step.lesson, LessonCompletionInput{Completed: &completed, TimeSpent: 60})
		if err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
		if p.Progress != step.progress {
			t.Fatalf("step %d: progress = %d, want %d", i, p.Progress, step.progress)
		}
		if p.CurrentLessonID == nil || *p.CurrentLessonID != step.current {
			t.Fatalf("step %d: current = %v, want %d", i, p.CurrentLessonID, step.current)
		}
	}
	if p.CompletedAt == nil {
		t.Fatal("completedAt cleared after un-completing a lesson")
	}

	var lp model.LessonProgress
	if err := db.Where("user_progress_id = ? AND lesson_id = ?", p.ID, l1).First(&lp).Error; err != nil {
		t.Fatalf("load lesson progress: %v", err)
	}
	if lp.TimeSpent != 120 {
		t.Fatalf("time spent = %d, want 120", lp.TimeSpent)
	}
}

func TestCompleteLessonRejectsForeignLesson(t *testing.T) {
	db, svc, claims, course := newProgressFixture(t, 1)
	other := testutil.SeedCourse(t, db, course.InstructorID, 0, 1)
	ctx := context.Background()
	if _, err := newPurchaseService(db).Purchase(ctx, claims.UserID, model.ItemCourse, course.ID, PurchaseRequest{}); err != nil {
		t.Fatalf("purchase: %v", err)
	}

	_, err := svc.CompleteLesson(ctx, claims, course.ID, other.Lessons[0].ID, LessonCompletionInput{})
	if !errors.Is(err, util.ErrLessonNotFound) {
		t.Fatalf("err = %v, want ErrLessonNotFound", err)
	}
}

func TestGetProgressSyncsNewLessons(t *testing.T) {
	db, svc, claims, course := newProgressFixture(t, 2)
	ctx := context.Background()
	if _, err := newPurchaseService(db).Purchase(ctx, claims.UserID, model.ItemCourse, course.ID, PurchaseRequest{}); err != nil {
		t.Fatalf("purchase: %v", err)
	}
	if _, err := svc.CompleteLesson(ctx, claims, course.ID, course.Lessons[0].ID, LessonCompletionInput{}); err != nil {
		t.Fatalf("complete: %v", err)
	}

	extra := model.Lesson{CourseID: course.ID, Title: "Bonus", Order: 3}
	if err := db.Create(&extra).Error; err != nil {
		t.Fatalf("add lesson: %v", err)
	}

	p, err := svc.GetProgress(claims, course.ID)
	if err != nil {
		t.Fatalf("GetProgress: %v", err)
	}
	if len(p.Lessons) != 3 {
		t.Fatalf("lesson entries = %d, want 3", len(p.Lessons))
	}
	if p.Progress != 33 {
		t.Fatalf("progress = %d, want 33", p.Progress)
	}
}

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

func newCourseService(db *gorm.DB) *CourseService {
	return NewCourseService(
		repository.NewCourseRepository(db),
		repository.NewPurchaseRepository(db),
		repository.NewProgressRepository(db),
		nil,
		NewCatalogCache(nil, 0),
	)
}

func buyCourse(t *testing.T, db *gorm.DB, userID, courseID uint) *model.Purchase {
	t.Helper()
	p, err := newPurchaseService(db).Purchase(context.Background(), userID, model.ItemCourse, courseID, PurchaseRequest{
		PaymentMethod: model.PaymentCard,
		PaymentID:     "pay_1",
	})
	if err != nil {
		t.Fatalf("purchase course %d: %v", courseID, err)
	}
	return p
}

func TestRateCourseRequiresPurchase(t *testing.T) {
	db := testutil.DB(t)
	mentor := testutil.SeedUser(t, db, "mentor@neon.test", model.Mentor)
	nurse := testutil.SeedUser(t, db, "nurse@neon.test", model.Nurse)
	course := testutil.SeedCourse(t, db, mentor.ID, 200, 1)
	svc := newCourseService(db)

	if _, err := svc.RateCourse(context.Background(), nurse.ID, course.ID, 5); !errors.Is(err, util.ErrNotEnrolled) {
		t.Fatalf("err = %v, want ErrNotEnrolled", err)
	}

	// 待支付订单不算已购
	if _, err := newPurchaseService(db).Purchase(context.Background(), nurse.ID, model.ItemCourse, course.ID, PurchaseRequest{
		PaymentMethod: model.PaymentUPI,
	}); err != nil {
		t.Fatalf("pending purchase: %v", err)
	}
	if _, err := svc.RateCourse(context.Background(), nurse.ID, course.ID, 5); !errors.Is(err, util.ErrNotEnrolled) {
		t.Fatalf("pending purchase: err = %v, want ErrNotEnrolled", err)
	}

	if _, err := svc.RateCourse(context.Background(), nurse.ID, 9999, 5); !errors.Is(err, util.ErrCourseNotFound) {
		t.Fatalf("missing course: err = %v, want ErrCourseNotFound", err)
	}
}

func TestRateCourseUpsertsAndRecomputesAverage(t *testing.T) {
	db := testutil.DB(t)
	mentor := testutil.SeedUser(t, db, "mentor@neon.test", model.Mentor)
	a := testutil.SeedUser(t, db, "a@neon.test", model.Nurse)
	b := testutil.SeedUser(t, db, "b@neon.test", model.Nurse)
	course := testutil.SeedCourse(t, db, mentor.ID, 0, 1)
	buyCourse(t, db, a.ID, course.ID)
	buyCourse(t, db, b.ID, course.ID)
	svc := newCourseService(db)
	ctx := context.Background()

	if _, err := svc.RateCourse(ctx, a.ID, course.ID, 5); err != nil {
		t.Fatalf("rate a: %v", err)
	}
	got, err := svc.RateCourse(ctx, b.ID, course.ID, 3)
	if err != nil {
		t.Fatalf("rate b: %v", err)
	}
	if got.Rating != 4 || got.RatingCount != 2 {
		t.Fatalf("rating = %v (%d), want 4 (2)", got.Rating, got.RatingCount)
	}

	got, err = svc.RateCourse(ctx, a.ID, course.ID, 1)
	if err != nil {
		t.Fatalf("re-rate a: %v", err)
	}
	if got.Rating != 2 || got.RatingCount != 2 {
		t.Fatalf("after re-rate rating = %v (%d), want 2 (2)", got.Rating, got.RatingCount)
	}

	var rows int64
	if err := db.Model(&model.CourseRating{}).Where("course_id = ?", course.ID).Count(&rows).Error; err != nil {
		t.Fatal(err)
	}
	if rows != 2 {
		t.Fatalf("rating rows = %d, want 2", rows)
	}
}

func TestMyCoursesListsCompletedPurchasesWithProgress(t *testing.T) {
	db := testutil.DB(t)
	mentor := testutil.SeedUser(t, db, "mentor@neon.test", model.Mentor)
	nurse := testutil.SeedUser(t, db, "nurse@neon.test", model.Nurse)
	other := testutil.SeedUser(t, db, "other@neon.test", model.Nurse)
	older := testutil.SeedCourse(t, db, mentor.ID, 0, 2)
	pending := testutil.SeedCourse(t, db, mentor.ID, 300, 1)
	newer := testutil.SeedCourse(t, db, mentor.ID, 100, 1)
	notMine := testutil.SeedCourse(t, db, mentor.ID, 50, 1)

	first := buyCourse(t, db, nurse.ID, older.ID)
	buyCourse(t, db, nurse.ID, newer.ID)
	buyCourse(t, db, other.ID, notMine.ID)
	if _, err := newPurchaseService(db).Purchase(context.Background(), nurse.ID, model.ItemCourse, pending.ID, PurchaseRequest{
		PaymentMethod: model.PaymentWallet,
	}); err != nil {
		t.Fatalf("pending purchase: %v", err)
	}

	if err := db.Model(&model.Purchase{}).Where("id = ?", first.ID).
		Update("completed_at", time.Now().Add(-2*time.Hour)).Error; err != nil {
		t.Fatal(err)
	}
	if err := db.Create(&model.UserProgress{UserID: nurse.ID, CourseID: older.ID, Progress: 50}).Error; err != nil {
		t.Fatal(err)
	}

	mine, err := newCourseService(db).MyCourses(nurse.ID)
	if err != nil {
		t.Fatalf("MyCourses: %v", err)
	}
	if len(mine) != 2 {
		t.Fatalf("len = %d, want 2: %+v", len(mine), mine)
	}
	if mine[0].Course.ID != newer.ID || mine[1].Course.ID != older.ID {
		t.Fatalf("order = [%d %d], want [%d %d]", mine[0].Course.ID, mine[1].Course.ID, newer.ID, older.ID)
	}
	if mine[0].Progress != 0 || mine[1].Progress != 50 {
		t.Fatalf("progress = [%d %d], want [0 50]", mine[0].Progress, mine[1].Progress)
	}
	if mine[1].PurchasedAt == nil {
		t.Fatal("purchasedAt missing")
	}
}

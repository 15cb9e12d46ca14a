package service

import (
	"context"
	"errors"
	"testing"

	"neonclub_backend/internal/config"
	"neonclub_backend/internal/model"
	"neonclub_backend/internal/repository"
	"neonclub_backend/internal/testutil"
	"neonclub_backend/internal/util"

	"gorm.io/gorm"
)

func newPurchaseService(db *gorm.DB) *PurchaseService {
	return NewPurchaseService(
		db,
		repository.NewPurchaseRepository(db),
		repository.NewCourseRepository(db),
		repository.NewWorkshopRepository(db),
		repository.NewEventRepository(db),
		NewCouponService(config.DefaultCoupons),
		NewCatalogCache(nil, 0),
	)
}

func countPurchases(t *testing.T, db *gorm.DB, userID uint, status model.PurchaseStatus) int64 {
	t.Helper()
	var n int64
	if err := db.Model(&model.Purchase{}).Where("user_id = ? AND status = ?", userID, status).Count(&n).Error; err != nil {
		t.Fatalf("count purchases: %v", err)
	}
	return n
}

func TestPurchaseFreeCourseIgnoresPaymentFields(t *testing.T) {
	db := testutil.DB(t)
	mentor := testutil.SeedUser(t, db, "mentor@neon.test", model.Mentor)
	nurse := testutil.SeedUser(t, db, "nurse@neon.test", model.Nurse)
	course := testutil.SeedCourse(t, db, mentor.ID, 0, 2)
	svc := newPurchaseService(db)

	p, err := svc.Purchase(context.Background(), nurse.ID, model.ItemCourse, course.ID, PurchaseRequest{
		PaymentMethod: model.PaymentCard,
		PaymentID:     "pay_123",
		CouponCode:    "NEON100",
	})
	if err != nil {
		t.Fatalf("Purchase: %v", err)
	}
	if p.PaymentMethod != model.PaymentFree || p.PaymentID != model.PaymentFree {
		t.Fatalf("payment = %q/%q, want free/free", p.PaymentMethod, p.PaymentID)
	}
	if p.Status != model.PurchaseCompleted || p.Amount != 0 || p.CompletedAt == nil {
		t.Fatalf("unexpected purchase: status=%s amount=%v completedAt=%v", p.Status, p.Amount, p.CompletedAt)
	}
	if p.CouponCode != "" {
		t.Fatalf("coupon recorded on free item: %q", p.CouponCode)
	}

	var reloaded model.Course
	db.First(&reloaded, course.ID)
	if reloaded.EnrollmentCount != 1 {
		t.Fatalf("enrollment = %d, want 1", reloaded.EnrollmentCount)
	}
}

func TestPurchaseDuplicateReturnsAlreadyPurchased(t *testing.T) {
	db := testutil.DB(t)
	mentor := testutil.SeedUser(t, db, "mentor@neon.test", model.Mentor)
	nurse := testutil.SeedUser(t, db, "nurse@neon.test", model.Nurse)
	course := testutil.SeedCourse(t, db, mentor.ID, 0, 1)
	svc := newPurchaseService(db)
	ctx := context.Background()

	if _, err := svc.Purchase(ctx, nurse.ID, model.ItemCourse, course.ID, PurchaseRequest{}); err != nil {
		t.Fatalf("first purchase: %v", err)
	}
	_, err := svc.Purchase(ctx, nurse.ID, model.ItemCourse, course.ID, PurchaseRequest{})
	if !errors.Is(err, util.ErrAlreadyPurchased) {
		t.Fatalf("second purchase err = %v, want ErrAlreadyPurchased", err)
	}

	if n := countPurchases(t, db, nurse.ID, model.PurchaseCompleted); n != 1 {
		t.Fatalf("completed purchases = %d, want 1", n)
	}
	var reloaded model.Course
	db.First(&reloaded, course.ID)
	if reloaded.EnrollmentCount != 1 {
		t.Fatalf("enrollment = %d, want 1 after rejected duplicate", reloaded.EnrollmentCount)
	}
}

func TestPurchasePaidRequiresPaymentMethod(t *testing.T) {
	db := testutil.DB(t)
	mentor := testutil.SeedUser(t, db, "mentor@neon.test", model.Mentor)
	nurse := testutil.SeedUser(t, db, "nurse@neon.test", model.Nurse)
	course := testutil.SeedCourse(t, db, mentor.ID, 999, 1)
	svc := newPurchaseService(db)

	_, err := svc.Purchase(context.Background(), nurse.ID, model.ItemCourse, course.ID, PurchaseRequest{})
	if !errors.Is(err, util.ErrPaymentMethodMissing) {
		t.Fatalf("err = %v, want ErrPaymentMethodMissing", err)
	}
}

func TestPurchaseCouponReducesAmount(t *testing.T) {
	db := testutil.DB(t)
	mentor := testutil.SeedUser(t, db, "mentor@neon.test", model.Mentor)
	nurse := testutil.SeedUser(t, db, "nurse@neon.test", model.Nurse)
	course := testutil.SeedCourse(t, db, mentor.ID, 500, 1)
	svc := newPurchaseService(db)

	p, err := svc.Purchase(context.Background(), nurse.ID, model.ItemCourse, course.ID, PurchaseRequest{
		PaymentMethod: model.PaymentUPI,
		PaymentID:     "upi_1",
		CouponCode:    "nurse50",
	})
	if err != nil {
		t.Fatalf("Purchase: %v", err)
	}
	if p.OriginalAmount != 500 || p.Amount != 450 || p.CouponCode != "NURSE50" {
		t.Fatalf("got original=%v amount=%v coupon=%q", p.OriginalAmount, p.Amount, p.CouponCode)
	}
}

func TestPurchaseInvalidCouponWritesNothing(t *testing.T) {
	db := testutil.DB(t)
	mentor := testutil.SeedUser(t, db, "mentor@neon.test", model.Mentor)
	nurse := testutil.SeedUser(t, db, "nurse@neon.test", model.Nurse)
	course := testutil.SeedCourse(t, db, mentor.ID, 500, 1)
	svc := newPurchaseService(db)

	_, err := svc.Purchase(context.Background(), nurse.ID, model.ItemCourse, course.ID, PurchaseRequest{
		PaymentMethod: model.PaymentCard,
		CouponCode:    "NOPE",
	})
	if !errors.Is(err, util.ErrInvalidCoupon) {
		t.Fatalf("err = %v, want ErrInvalidCoupon", err)
	}
	var n int64
	db.Model(&model.Purchase{}).Count(&n)
	if n != 0 {
		t.Fatalf("purchases = %d, want 0", n)
	}
}

func TestPendingPurchasesDoNotCollideUntilConfirmed(t *testing.T) {
	db := testutil.DB(t)
	mentor := testutil.SeedUser(t, db, "mentor@neon.test", model.Mentor)
	nurse := testutil.SeedUser(t, db, "nurse@neon.test", model.Nurse)
	course := testutil.SeedCourse(t, db, mentor.ID, 250, 1)
	svc := newPurchaseService(db)
	ctx := context.Background()
	req := PurchaseRequest{PaymentMethod: model.PaymentWallet}

	first, err := svc.Purchase(ctx, nurse.ID, model.ItemCourse, course.ID, req)
	if err != nil {
		t.Fatalf("first pending: %v", err)
	}
	second, err := svc.Purchase(ctx, nurse.ID, model.ItemCourse, course.ID, req)
	if err != nil {
		t.Fatalf("second pending: %v", err)
	}
	if first.Status != model.PurchasePending || second.Status != model.PurchasePending {
		t.Fatalf("statuses = %s/%s, want pending", first.Status, second.Status)
	}

	if _, err := svc.Confirm(ctx, nurse.ID, first.ID, "wallet_1"); err != nil {
		t.Fatalf("confirm first: %v", err)
	}
	if _, err := svc.Confirm(ctx, nurse.ID, second.ID, "wallet_2"); !errors.Is(err, util.ErrAlreadyPurchased) {
		t.Fatalf("confirm second err = %v, want ErrAlreadyPurchased", err)
	}

	if n := countPurchases(t, db, nurse.ID, model.PurchaseCompleted); n != 1 {
		t.Fatalf("completed = %d, want 1", n)
	}
	if n := countPurchases(t, db, nurse.ID, model.PurchasePending); n != 1 {
		t.Fatalf("pending = %d, want 1", n)
	}
}

func TestConfirmRejectsOtherUsers(t *testing.T) {
	db := testutil.DB(t)
	mentor := testutil.SeedUser(t, db, "mentor@neon.test", model.Mentor)
	nurse := testutil.SeedUser(t, db, "nurse@neon.test", model.Nurse)
	other := testutil.SeedUser(t, db, "other@neon.test", model.Nurse)
	course := testutil.SeedCourse(t, db, mentor.ID, 250, 1)
	svc := newPurchaseService(db)
	ctx := context.Background()

	p, err := svc.Purchase(ctx, nurse.ID, model.ItemCourse, course.ID, PurchaseRequest{PaymentMethod: model.PaymentCard})
	if err != nil {
		t.Fatalf("Purchase: %v", err)
	}
	if _, err := svc.Confirm(ctx, other.ID, p.ID, "x"); !errors.Is(err, util.ErrPurchaseNotFound) {
		t.Fatalf("err = %v, want ErrPurchaseNotFound", err)
	}
}

func TestWorkshopCapacityRollsBackPurchase(t *testing.T) {
	db := testutil.DB(t)
	mentor := testutil.SeedUser(t, db, "mentor@neon.test", model.Mentor)
	first := testutil.SeedUser(t, db, "a@neon.test", model.Nurse)
	second := testutil.SeedUser(t, db, "b@neon.test", model.Nurse)
	workshop := testutil.SeedWorkshop(t, db, mentor.ID, 0, 1)
	svc := newPurchaseService(db)
	ctx := context.Background()

	if _, err := svc.Purchase(ctx, first.ID, model.ItemWorkshop, workshop.ID, PurchaseRequest{}); err != nil {
		t.Fatalf("first seat: %v", err)
	}
	_, err := svc.Purchase(ctx, second.ID, model.ItemWorkshop, workshop.ID, PurchaseRequest{})
	if !errors.Is(err, util.ErrWorkshopFull) {
		t.Fatalf("err = %v, want ErrWorkshopFull", err)
	}

	var n int64
	db.Model(&model.Purchase{}).Where("user_id = ?", second.ID).Count(&n)
	if n != 0 {
		t.Fatalf("rejected purchase persisted: %d rows", n)
	}
	var reloaded model.Workshop
	db.First(&reloaded, workshop.ID)
	if reloaded.RegisteredCount != 1 {
		t.Fatalf("registered = %d, want 1", reloaded.RegisteredCount)
	}
}

func TestRefundReleasesSeatAndAllowsRepurchase(t *testing.T) {
	db := testutil.DB(t)
	mentor := testutil.SeedUser(t, db, "mentor@neon.test", model.Mentor)
	nurse := testutil.SeedUser(t, db, "nurse@neon.test", model.Nurse)
	workshop := testutil.SeedWorkshop(t, db, mentor.ID, 300, 1)
	svc := newPurchaseService(db)
	ctx := context.Background()
	req := PurchaseRequest{PaymentMethod: model.PaymentCard, PaymentID: "card_1"}

	p, err := svc.Purchase(ctx, nurse.ID, model.ItemWorkshop, workshop.ID, req)
	if err != nil {
		t.Fatalf("Purchase: %v", err)
	}

	refunded, err := svc.UpdateStatus(ctx, p.ID, model.PurchaseRefunded)
	if err != nil {
		t.Fatalf("refund: %v", err)
	}
	if refunded.RefundedAt == nil {
		t.Fatal("refundedAt not set")
	}
	var reloaded model.Workshop
	db.First(&reloaded, workshop.ID)
	if reloaded.RegisteredCount != 0 {
		t.Fatalf("registered = %d after refund, want 0", reloaded.RegisteredCount)
	}

	if _, err := svc.Purchase(ctx, nurse.ID, model.ItemWorkshop, workshop.ID, req); err != nil {
		t.Fatalf("repurchase after refund: %v", err)
	}

	if _, err := svc.UpdateStatus(ctx, p.ID, model.PurchaseCompleted); !errors.Is(err, util.ErrInvalidTransition) {
		t.Fatalf("refunded -> completed err = %v, want ErrInvalidTransition", err)
	}
}

func TestEventPurchaseUsesEventKind(t *testing.T) {
	db := testutil.DB(t)
	nurse := testutil.SeedUser(t, db, "nurse@neon.test", model.Nurse)
	conf := testutil.SeedEvent(t, db, model.EventKindConference, 0, 0)
	svc := newPurchaseService(db)
	ctx := context.Background()

	if _, err := svc.Purchase(ctx, nurse.ID, model.ItemEvent, conf.ID, PurchaseRequest{}); !errors.Is(err, util.ErrEventNotFound) {
		t.Fatalf("kind mismatch err = %v, want ErrEventNotFound", err)
	}
	p, err := svc.Purchase(ctx, nurse.ID, model.ItemConference, conf.ID, PurchaseRequest{})
	if err != nil {
		t.Fatalf("Purchase conference: %v", err)
	}
	if p.ItemType != model.ItemConference {
		t.Fatalf("item type = %s", p.ItemType)
	}
}

func TestPurchaseUnpublishedCourseNotFound(t *testing.T) {
	db := testutil.DB(t)
	mentor := testutil.SeedUser(t, db, "mentor@neon.test", model.Mentor)
	nurse := testutil.SeedUser(t, db, "nurse@neon.test", model.Nurse)
	course := testutil.SeedCourse(t, db, mentor.ID, 0, 1)
	db.Model(course).Update("published", false)
	svc := newPurchaseService(db)

	_, err := svc.Purchase(context.Background(), nurse.ID, model.ItemCourse, course.ID, PurchaseRequest{})
	if !errors.Is(err, util.ErrCourseNotFound) {
		t.Fatalf("err = %v, want ErrCourseNotFound", err)
	}
}

func TestPurchasePaymentFieldsCheckedOnlyForPaidItems(t *testing.T) {
	db := testutil.DB(t)
	mentor := testutil.SeedUser(t, db, "mentor@neon.test", model.Mentor)
	nurse := testutil.SeedUser(t, db, "nurse@neon.test", model.Nurse)
	free := testutil.SeedCourse(t, db, mentor.ID, 0, 1)
	paid := testutil.SeedCourse(t, db, mentor.ID, 400, 1)
	svc := newPurchaseService(db)
	ctx := context.Background()

	p, err := svc.Purchase(ctx, nurse.ID, model.ItemCourse, free.ID, PurchaseRequest{PaymentMethod: "bitcoin"})
	if err != nil {
		t.Fatalf("free purchase: %v", err)
	}
	if p.PaymentMethod != model.PaymentFree || p.Status != model.PurchaseCompleted {
		t.Fatalf("free purchase = %s/%s", p.PaymentMethod, p.Status)
	}

	if _, err := svc.Purchase(ctx, nurse.ID, model.ItemCourse, paid.ID, PurchaseRequest{PaymentMethod: "bitcoin"}); !errors.Is(err, util.ErrInvalidPaymentMethod) {
		t.Fatalf("err = %v, want ErrInvalidPaymentMethod", err)
	}
	if n := countPurchases(t, db, nurse.ID, model.PurchasePending); n != 0 {
		t.Fatalf("pending rows = %d, want 0", n)
	}
}

func TestConfirmAndUpdateStatusUseRequestContext(t *testing.T) {
	db := testutil.DB(t)
	mentor := testutil.SeedUser(t, db, "mentor@neon.test", model.Mentor)
	nurse := testutil.SeedUser(t, db, "nurse@neon.test", model.Nurse)
	course := testutil.SeedCourse(t, db, mentor.ID, 120, 1)
	svc := newPurchaseService(db)

	p, err := svc.Purchase(context.Background(), nurse.ID, model.ItemCourse, course.ID, PurchaseRequest{PaymentMethod: model.PaymentCard})
	if err != nil {
		t.Fatalf("pending purchase: %v", err)
	}

	cancelled, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := svc.Confirm(cancelled, nurse.ID, p.ID, "card_1"); !errors.Is(err, context.Canceled) {
		t.Fatalf("Confirm err = %v, want context.Canceled", err)
	}
	if _, err := svc.UpdateStatus(cancelled, p.ID, model.PurchaseFailed); !errors.Is(err, context.Canceled) {
		t.Fatalf("UpdateStatus err = %v, want context.Canceled", err)
	}
	if n := countPurchases(t, db, nurse.ID, model.PurchasePending); n != 1 {
		t.Fatalf("pending rows = %d, want 1", n)
	}
}

package repository

import (
	"errors"
	"testing"

	"neonclub_backend/internal/model"
	"neonclub_backend/internal/testutil"
	"neonclub_backend/internal/util"
)

func TestCompletedPurchaseUniqueness(t *testing.T) {
	db := testutil.DB(t)
	repo := NewPurchaseRepository(db)
	nurse := testutil.SeedUser(t, db, "nurse@neon.test", model.Nurse)

	newPurchase := func(status model.PurchaseStatus) *model.Purchase {
		return &model.Purchase{
			UserID:        nurse.ID,
			ItemType:      model.ItemCourse,
			ItemID:        7,
			PaymentMethod: model.PaymentCard,
			Status:        status,
		}
	}

	for i := 0; i < 2; i++ {
		if err := repo.Create(newPurchase(model.PurchasePending)); err != nil {
			t.Fatalf("pending #%d: %v", i, err)
		}
	}
	if err := repo.Create(newPurchase(model.PurchaseFailed)); err != nil {
		t.Fatalf("failed: %v", err)
	}

	if err := repo.Create(newPurchase(model.PurchaseCompleted)); err != nil {
		t.Fatalf("first completed: %v", err)
	}
	err := repo.Create(newPurchase(model.PurchaseCompleted))
	if !util.IsDuplicateKey(err) {
		t.Fatalf("second completed err = %v, want duplicate key", err)
	}

	// 另一个项目类型不冲突
	other := newPurchase(model.PurchaseCompleted)
	other.ItemType = model.ItemWorkshop
	if err := repo.Create(other); err != nil {
		t.Fatalf("workshop with same id: %v", err)
	}

	ok, err := repo.HasCompleted(nurse.ID, model.ItemCourse, 7)
	if err != nil || !ok {
		t.Fatalf("HasCompleted = %v, %v", ok, err)
	}
}

func TestPurchaseRequiresItemReference(t *testing.T) {
	db := testutil.DB(t)
	repo := NewPurchaseRepository(db)

	err := repo.Create(&model.Purchase{UserID: 1, ItemType: "mentor", ItemID: 1, PaymentMethod: model.PaymentCard})
	if !errors.Is(err, model.ErrPurchaseItemMissing) {
		t.Fatalf("err = %v, want ErrPurchaseItemMissing", err)
	}
	err = repo.Create(&model.Purchase{UserID: 1, ItemType: model.ItemCourse, PaymentMethod: model.PaymentCard})
	if !errors.Is(err, model.ErrPurchaseItemMissing) {
		t.Fatalf("zero item id err = %v, want ErrPurchaseItemMissing", err)
	}
}

func TestPurchaseOrderNumberAssigned(t *testing.T) {
	db := testutil.DB(t)
	repo := NewPurchaseRepository(db)

	p := &model.Purchase{UserID: 1, ItemType: model.ItemEvent, ItemID: 3, PaymentMethod: model.PaymentFree, Status: model.PurchaseCompleted}
	if err := repo.Create(p); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if len(p.OrderNo) != 36 {
		t.Fatalf("order no = %q", p.OrderNo)
	}
}

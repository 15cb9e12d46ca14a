package model

import (
	"errors"
	"time"

	"gorm.io/gorm"
)

type ItemType string

const (
	ItemCourse     ItemType = "course"
	ItemWorkshop   ItemType = "workshop"
	ItemEvent      ItemType = "event"
	ItemConference ItemType = "conference"
)

func (t ItemType) Valid() bool {
	switch t {
	case ItemCourse, ItemWorkshop, ItemEvent, ItemConference:
		return true
	}
	return false
}

type PurchaseStatus string

const (
	PurchasePending   PurchaseStatus = "pending"
	PurchaseCompleted PurchaseStatus = "completed"
	PurchaseFailed    PurchaseStatus = "failed"
	PurchaseRefunded  PurchaseStatus = "refunded"
)

const (
	PaymentFree       = "free"
	PaymentCard       = "card"
	PaymentUPI        = "upi"
	PaymentNetbanking = "netbanking"
	PaymentWallet     = "wallet"
)

var ErrPurchaseItemMissing = errors.New("purchase must reference exactly one course, workshop, event or conference")

// purchaseTransitions 允许的状态迁移
var purchaseTransitions = map[PurchaseStatus][]PurchaseStatus{
	PurchasePending:   {PurchaseCompleted, PurchaseFailed},
	PurchaseCompleted: {PurchaseRefunded},
}

// Purchase links a user to one purchasable item.
// CompletionMarker is 1 only for completed rows, which turns the composite
// unique index into "at most one completed purchase per user and item".
// swagger:model Purchase
type Purchase struct {
	BaseModel
	OrderNo          string         `gorm:"size:36;uniqueIndex;not null" json:"orderNo"`
	UserID           uint           `gorm:"not null;uniqueIndex:idx_purchase_completed,priority:1;index" json:"userId"`
	ItemType         ItemType       `gorm:"size:20;not null;uniqueIndex:idx_purchase_completed,priority:2" json:"itemType"`
	ItemID           uint           `gorm:"not null;uniqueIndex:idx_purchase_completed,priority:3" json:"itemId"`
	CompletionMarker *bool          `gorm:"uniqueIndex:idx_purchase_completed,priority:4" json:"-"`
	ItemTitle        string         `gorm:"size:255" json:"itemTitle"`
	OriginalAmount   float64        `gorm:"default:0" json:"originalAmount"`
	Amount           float64        `gorm:"default:0" json:"amount"`
	CouponCode       string         `gorm:"size:50" json:"couponCode,omitempty"`
	PaymentMethod    string         `gorm:"size:30;not null" json:"paymentMethod"`
	PaymentID        string         `gorm:"size:100" json:"paymentId"`
	Status           PurchaseStatus `gorm:"size:20;index;default:'pending'" json:"status"`
	CompletedAt      *time.Time     `json:"completedAt,omitempty"`
	RefundedAt       *time.Time     `json:"refundedAt,omitempty"`
}

func (Purchase) TableName() string {
	return "purchases"
}

// BeforeSave 创建和保存前都校验引用并同步唯一索引标记
func (p *Purchase) BeforeSave(tx *gorm.DB) error {
	if !p.ItemType.Valid() || p.ItemID == 0 {
		return ErrPurchaseItemMissing
	}
	if p.OrderNo == "" {
		p.OrderNo = GenerateUUID()
	}
	p.CompletionMarker = marker(p.Status == PurchaseCompleted)
	return nil
}

func (p *Purchase) CanTransition(to PurchaseStatus) bool {
	for _, s := range purchaseTransitions[p.Status] {
		if s == to {
			return true
		}
	}
	return false
}

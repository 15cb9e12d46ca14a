package repository

import (
	"neonclub_backend/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PurchaseRepository struct {
	DB *gorm.DB
}

func NewPurchaseRepository(db *gorm.DB) *PurchaseRepository {
	return &PurchaseRepository{DB: db}
}

func (r *PurchaseRepository) WithTx(tx *gorm.DB) *PurchaseRepository {
	return &PurchaseRepository{DB: tx}
}

// Create 不做存在性预检查，重复的已完成购买由唯一索引拒绝
func (r *PurchaseRepository) Create(purchase *model.Purchase) error {
	return r.DB.Create(purchase).Error
}

func (r *PurchaseRepository) Save(purchase *model.Purchase) error {
	return r.DB.Save(purchase).Error
}

func (r *PurchaseRepository) FindByID(id uint) (*model.Purchase, error) {
	var purchase model.Purchase
	err := r.DB.First(&purchase, id).Error
	if err != nil {
		return nil, err
	}
	return &purchase, nil
}

func (r *PurchaseRepository) ListByUser(userID uint, itemType model.ItemType) ([]model.Purchase, error) {
	q := r.DB.Where("user_id = ?", userID)
	if itemType != "" {
		q = q.Where("item_type = ?", itemType)
	}
	var purchases []model.Purchase
	err := q.Order("created_at DESC").Find(&purchases).Error
	return purchases, err
}

func (r *PurchaseRepository) HasCompleted(userID uint, itemType model.ItemType, itemID uint) (bool, error) {
	var count int64
	err := r.DB.Model(&model.Purchase{}).
		Where("user_id = ? AND item_type = ? AND item_id = ? AND status = ?", userID, itemType, itemID, model.PurchaseCompleted).
		Count(&count).Error
	return count > 0, err
}

// CompletedByUser 返回 itemID -> 完成购买记录
func (r *PurchaseRepository) CompletedByUser(userID uint, itemType model.ItemType) (map[uint]model.Purchase, error) {
	var purchases []model.Purchase
	err := r.DB.Where("user_id = ? AND item_type = ? AND status = ?", userID, itemType, model.PurchaseCompleted).
		Order("completed_at DESC").
		Find(&purchases).Error
	if err != nil {
		return nil, err
	}
	result := make(map[uint]model.Purchase, len(purchases))
	for _, p := range purchases {
		result[p.ItemID] = p
	}
	return result, nil
}

// FindForUpdate 事务内加行锁读取，防止并发状态迁移（sqlite 不支持 FOR UPDATE）
func (r *PurchaseRepository) FindForUpdate(id uint) (*model.Purchase, error) {
	var purchase model.Purchase
	q := r.DB
	if r.DB.Dialector.Name() != "sqlite" {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	if err := q.First(&purchase, id).Error; err != nil {
		return nil, err
	}
	return &purchase, nil
}

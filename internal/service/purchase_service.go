package service

import (
	"context"
	"errors"
	"fmt"
	"neonclub_backend/internal/model"
	"neonclub_backend/internal/repository"
	"neonclub_backend/internal/util"
	"neonclub_backend/pkg/logger"
	"neonclub_backend/pkg/monitoring"
	"neonclub_backend/pkg/tracing"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type PurchaseService struct {
	DB           *gorm.DB
	PurchaseRepo *repository.PurchaseRepository
	CourseRepo   *repository.CourseRepository
	WorkshopRepo *repository.WorkshopRepository
	EventRepo    *repository.EventRepository
	Coupons      *CouponService
	Cache        *CatalogCache
}

func NewPurchaseService(
	db *gorm.DB,
	purchaseRepo *repository.PurchaseRepository,
	courseRepo *repository.CourseRepository,
	workshopRepo *repository.WorkshopRepository,
	eventRepo *repository.EventRepository,
	coupons *CouponService,
	cache *CatalogCache,
) *PurchaseService {
	return &PurchaseService{
		DB:           db,
		PurchaseRepo: purchaseRepo,
		CourseRepo:   courseRepo,
		WorkshopRepo: workshopRepo,
		EventRepo:    eventRepo,
		Coupons:      coupons,
		Cache:        cache,
	}
}

const maxPaymentIDLen = 100

// PurchaseRequest 结账请求；免费项目忽略全部支付字段，校验只在付费分支进行
type PurchaseRequest struct {
	PaymentMethod string `json:"paymentMethod"`
	PaymentID     string `json:"paymentId"`
	CouponCode    string `json:"couponCode"`
}

type purchasable struct {
	Type  model.ItemType
	ID    uint
	Title string
	Price float64
}

func (s *PurchaseService) resolveItem(itemType model.ItemType, itemID uint) (*purchasable, error) {
	switch itemType {
	case model.ItemCourse:
		course, err := s.CourseRepo.FindByID(itemID)
		if err != nil || !course.Published {
			return nil, notFoundOr(err, util.ErrCourseNotFound)
		}
		return &purchasable{Type: itemType, ID: course.ID, Title: course.Title, Price: course.Price}, nil
	case model.ItemWorkshop:
		workshop, err := s.WorkshopRepo.FindByID(itemID)
		if err != nil || !workshop.Published {
			return nil, notFoundOr(err, util.ErrWorkshopNotFound)
		}
		return &purchasable{Type: itemType, ID: workshop.ID, Title: workshop.Title, Price: workshop.Price}, nil
	case model.ItemEvent, model.ItemConference:
		event, err := s.EventRepo.FindByID(itemID)
		if err != nil || !event.Published || event.ItemType() != itemType {
			return nil, notFoundOr(err, util.ErrEventNotFound)
		}
		return &purchasable{Type: itemType, ID: event.ID, Title: event.Title, Price: event.Price}, nil
	}
	return nil, model.ErrPurchaseItemMissing
}

// notFoundOr 记录不存在（或不可见）时返回 notFound，其他数据库错误原样返回
func notFoundOr(err error, notFound error) error {
	if err == nil || errors.Is(err, gorm.ErrRecordNotFound) {
		return notFound
	}
	return err
}

// Purchase 直接插入购买记录，不做存在性预检查：
// 重复的已完成购买由唯一索引拒绝，并转换为 ErrAlreadyPurchased
func (s *PurchaseService) Purchase(ctx context.Context, userID uint, itemType model.ItemType, itemID uint, req PurchaseRequest) (_ *model.Purchase, err error) {
	ctx, span := tracing.StartSpan(ctx, "purchase.checkout",
		attribute.String("item.type", string(itemType)),
		attribute.Int64("item.id", int64(itemID)),
	)
	defer func() { tracing.EndSpan(span, err) }()

	item, err := s.resolveItem(itemType, itemID)
	if err != nil {
		return nil, err
	}

	purchase := &model.Purchase{
		UserID:         userID,
		ItemType:       item.Type,
		ItemID:         item.ID,
		ItemTitle:      item.Title,
		OriginalAmount: item.Price,
	}

	if item.Price <= 0 {
		purchase.Amount = 0
		purchase.PaymentMethod = model.PaymentFree
		purchase.PaymentID = model.PaymentFree
		purchase.Status = model.PurchaseCompleted
	} else {
		amount := item.Price
		if req.CouponCode != "" {
			quote, err := s.Coupons.Apply(req.CouponCode, item.Price)
			if err != nil {
				return nil, err
			}
			amount = quote.Total
			purchase.CouponCode = quote.Code
		}
		purchase.Amount = amount

		switch {
		case amount <= 0:
			// 优惠码抵扣全部金额
			purchase.PaymentMethod = model.PaymentFree
			purchase.PaymentID = "coupon:" + purchase.CouponCode
			purchase.Status = model.PurchaseCompleted
		case req.PaymentMethod == "":
			return nil, util.ErrPaymentMethodMissing
		case !util.ValidPaymentMethod(req.PaymentMethod):
			return nil, util.ErrInvalidPaymentMethod
		case len(req.PaymentID) > maxPaymentIDLen:
			return nil, util.ErrInvalidPaymentID
		default:
			purchase.PaymentMethod = req.PaymentMethod
			purchase.PaymentID = req.PaymentID
			purchase.Status = model.PurchasePending
			if req.PaymentID != "" {
				purchase.Status = model.PurchaseCompleted
			}
		}
	}

	if purchase.Status == model.PurchaseCompleted {
		now := time.Now()
		purchase.CompletedAt = &now
	}

	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.PurchaseRepo.WithTx(tx).Create(purchase); err != nil {
			return err
		}
		if purchase.Status == model.PurchaseCompleted {
			return s.applyCompletion(tx, purchase, 1)
		}
		return nil
	})
	if err != nil {
		return nil, s.translate(err, purchase)
	}

	monitoring.PurchaseCounter.WithLabelValues(string(purchase.ItemType), string(purchase.Status)).Inc()
	s.afterCountChange(ctx, purchase)
	logger.Log.Info("purchase created",
		zap.Uint("purchaseId", purchase.ID),
		zap.Uint("userId", userID),
		zap.String("itemType", string(purchase.ItemType)),
		zap.Uint("itemId", purchase.ItemID),
		zap.String("status", string(purchase.Status)),
		zap.Float64("amount", purchase.Amount),
	)
	return purchase, nil
}

func (s *PurchaseService) translate(err error, purchase *model.Purchase) error {
	if util.IsDuplicateKey(err) {
		monitoring.DuplicatePurchaseCounter.WithLabelValues(string(purchase.ItemType)).Inc()
		logger.Log.Info("duplicate purchase rejected",
			zap.Uint("userId", purchase.UserID),
			zap.String("itemType", string(purchase.ItemType)),
			zap.Uint("itemId", purchase.ItemID),
		)
		return util.ErrAlreadyPurchased
	}
	if errors.Is(err, util.ErrWorkshopFull) || errors.Is(err, util.ErrEventFull) || errors.Is(err, model.ErrPurchaseItemMissing) {
		return err
	}
	return fmt.Errorf("save purchase: %w", err)
}

// applyCompletion 同一事务内维护报名人数；delta 为 -1 时表示退款
func (s *PurchaseService) applyCompletion(tx *gorm.DB, p *model.Purchase, delta int) error {
	switch p.ItemType {
	case model.ItemCourse:
		return s.CourseRepo.WithTx(tx).IncrementEnrollment(p.ItemID, delta)
	case model.ItemWorkshop:
		repo := s.WorkshopRepo.WithTx(tx)
		if delta < 0 {
			return repo.Release(p.ItemID)
		}
		ok, err := repo.Reserve(p.ItemID)
		if err != nil {
			return err
		}
		if !ok {
			return util.ErrWorkshopFull
		}
	case model.ItemEvent, model.ItemConference:
		repo := s.EventRepo.WithTx(tx)
		if delta < 0 {
			return repo.Release(p.ItemID)
		}
		ok, err := repo.Reserve(p.ItemID)
		if err != nil {
			return err
		}
		if !ok {
			return util.ErrEventFull
		}
	}
	return nil
}

func (s *PurchaseService) afterCountChange(ctx context.Context, p *model.Purchase) {
	if p.ItemType == model.ItemCourse {
		s.Cache.InvalidateCourse(ctx, p.ItemID)
	}
}

func (s *PurchaseService) GetPurchase(claims *util.Claims, id uint) (*model.Purchase, error) {
	purchase, err := s.PurchaseRepo.FindByID(id)
	if err != nil {
		return nil, notFoundOr(err, util.ErrPurchaseNotFound)
	}
	if !claims.IsAdmin() && purchase.UserID != claims.UserID {
		return nil, util.ErrPurchaseNotFound
	}
	return purchase, nil
}

func (s *PurchaseService) ListMine(userID uint, itemType model.ItemType) ([]model.Purchase, error) {
	return s.PurchaseRepo.ListByUser(userID, itemType)
}

// Confirm 待支付订单补充支付流水号后完成
func (s *PurchaseService) Confirm(ctx context.Context, userID, purchaseID uint, paymentID string) (*model.Purchase, error) {
	var result *model.Purchase
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		purchase, err := s.PurchaseRepo.WithTx(tx).FindForUpdate(purchaseID)
		if err != nil {
			return notFoundOr(err, util.ErrPurchaseNotFound)
		}
		if purchase.UserID != userID {
			return util.ErrPurchaseNotFound
		}
		if purchase.Status != model.PurchasePending {
			return util.ErrInvalidTransition
		}

		purchase.PaymentID = paymentID
		if err := s.transition(tx, purchase, model.PurchaseCompleted); err != nil {
			return err
		}
		result = purchase
		return nil
	})
	if err != nil {
		return nil, s.translateTransition(err, purchaseID)
	}

	monitoring.PurchaseCounter.WithLabelValues(string(result.ItemType), string(result.Status)).Inc()
	s.afterCountChange(ctx, result)
	return result, nil
}

// UpdateStatus 管理员变更订单状态：pending->completed|failed，completed->refunded
func (s *PurchaseService) UpdateStatus(ctx context.Context, purchaseID uint, to model.PurchaseStatus) (*model.Purchase, error) {
	var result *model.Purchase
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		purchase, err := s.PurchaseRepo.WithTx(tx).FindForUpdate(purchaseID)
		if err != nil {
			return notFoundOr(err, util.ErrPurchaseNotFound)
		}
		if err := s.transition(tx, purchase, to); err != nil {
			return err
		}
		result = purchase
		return nil
	})
	if err != nil {
		return nil, s.translateTransition(err, purchaseID)
	}

	monitoring.PurchaseCounter.WithLabelValues(string(result.ItemType), string(result.Status)).Inc()
	s.afterCountChange(ctx, result)
	logger.Log.Info("purchase status changed",
		zap.Uint("purchaseId", purchaseID),
		zap.String("status", string(to)),
	)
	return result, nil
}

func (s *PurchaseService) transition(tx *gorm.DB, purchase *model.Purchase, to model.PurchaseStatus) error {
	if !purchase.CanTransition(to) {
		return util.ErrInvalidTransition
	}

	from := purchase.Status
	now := time.Now()
	purchase.Status = to
	switch to {
	case model.PurchaseCompleted:
		purchase.CompletedAt = &now
	case model.PurchaseRefunded:
		purchase.RefundedAt = &now
	}

	if err := s.PurchaseRepo.WithTx(tx).Save(purchase); err != nil {
		return err
	}

	switch {
	case to == model.PurchaseCompleted:
		return s.applyCompletion(tx, purchase, 1)
	case from == model.PurchaseCompleted && to == model.PurchaseRefunded:
		return s.applyCompletion(tx, purchase, -1)
	}
	return nil
}

func (s *PurchaseService) translateTransition(err error, purchaseID uint) error {
	switch {
	case util.IsDuplicateKey(err):
		logger.Log.Info("purchase completion rejected, item already owned", zap.Uint("purchaseId", purchaseID))
		return util.ErrAlreadyPurchased
	case errors.Is(err, util.ErrPurchaseNotFound),
		errors.Is(err, util.ErrInvalidTransition),
		errors.Is(err, util.ErrWorkshopFull),
		errors.Is(err, util.ErrEventFull):
		return err
	}
	return fmt.Errorf("update purchase %d: %w", purchaseID, err)
}

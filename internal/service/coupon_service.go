package service

import (
	"math"
	"neonclub_backend/internal/util"
	"neonclub_backend/pkg/logger"
	"strings"
	"sync"

	"go.uber.org/zap"
)

// CouponQuote 使用优惠码后的价格
type CouponQuote struct {
	Code     string  `json:"code"`
	Amount   float64 `json:"amount"`
	Discount float64 `json:"discount"`
	Total    float64 `json:"total"`
}

// CouponService 固定金额优惠码表，配置文件变更时整体替换
type CouponService struct {
	mu    sync.RWMutex
	table map[string]float64
}

func NewCouponService(table map[string]float64) *CouponService {
	s := &CouponService{}
	s.Reload(table)
	return s
}

func normalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

func (s *CouponService) Reload(table map[string]float64) {
	next := make(map[string]float64, len(table))
	for code, amount := range table {
		if amount <= 0 {
			continue
		}
		next[normalizeCode(code)] = amount
	}

	s.mu.Lock()
	s.table = next
	s.mu.Unlock()

	logger.Log.Info("coupon table loaded", zap.Int("coupons", len(next)))
}

func (s *CouponService) Lookup(code string) (float64, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	amount, ok := s.table[normalizeCode(code)]
	return amount, ok
}

// Apply 无效优惠码返回 ErrInvalidCoupon，同时 Total 保持原价
func (s *CouponService) Apply(code string, amount float64) (CouponQuote, error) {
	quote := CouponQuote{
		Code:   normalizeCode(code),
		Amount: amount,
		Total:  amount,
	}

	discount, ok := s.Lookup(code)
	if !ok {
		return quote, util.ErrInvalidCoupon
	}

	if discount > amount {
		discount = amount
	}
	quote.Discount = roundMoney(discount)
	quote.Total = roundMoney(math.Max(0, amount-discount))
	return quote, nil
}

func roundMoney(v float64) float64 {
	return math.Round(v*100) / 100
}

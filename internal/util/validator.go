package util

import (
	"neonclub_backend/internal/model"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var paymentMethods = map[string]bool{
	model.PaymentCard:       true,
	model.PaymentUPI:        true,
	model.PaymentNetbanking: true,
	model.PaymentWallet:     true,
}

// RegisterValidators 给 gin 的 binding 引擎注册业务校验规则
func RegisterValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return nil
	}
	if err := v.RegisterValidation("purchasestatus", validatePurchaseStatus); err != nil {
		return err
	}
	return v.RegisterValidation("eventkind", validateEventKind)
}

// ValidPaymentMethod 付费订单可用的支付方式（不含 free）
func ValidPaymentMethod(s string) bool {
	return paymentMethods[s]
}

func validatePurchaseStatus(fl validator.FieldLevel) bool {
	switch model.PurchaseStatus(fl.Field().String()) {
	case model.PurchasePending, model.PurchaseCompleted, model.PurchaseFailed, model.PurchaseRefunded:
		return true
	}
	return false
}

func validateEventKind(fl validator.FieldLevel) bool {
	return model.EventKind(fl.Field().String()).Valid()
}

package util

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

var (
	ErrUnauthorized       = errors.New("unauthorized")
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailRegistered    = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserDisabled       = errors.New("user disabled")
	ErrPermissionDenied   = errors.New("permission denied")

	ErrCourseNotFound   = errors.New("course not found")
	ErrLessonNotFound   = errors.New("lesson not found")
	ErrWorkshopNotFound = errors.New("workshop not found")
	ErrEventNotFound    = errors.New("event not found")
	ErrWorkshopFull     = errors.New("workshop is full")
	ErrEventFull        = errors.New("event is full")

	ErrPurchaseNotFound     = errors.New("purchase not found")
	ErrAlreadyPurchased     = errors.New("already purchased")
	ErrInvalidCoupon        = errors.New("invalid coupon code")
	ErrInvalidTransition    = errors.New("invalid purchase status transition")
	ErrPaymentMethodMissing = errors.New("payment method is required")
	ErrInvalidPaymentMethod = errors.New("unsupported payment method")
	ErrInvalidPaymentID     = errors.New("payment id is too long")
	ErrNotEnrolled          = errors.New("course not purchased")

	ErrSessionNotFound  = errors.New("session not found")
	ErrMentorNotFound   = errors.New("mentor not found")
	ErrSlotTaken        = errors.New("mentor already booked at this time")
	ErrSessionInPast    = errors.New("session must be scheduled in the future")
	ErrSessionNotBooked = errors.New("session is not in booked state")

	ErrInvalidVideoExt = errors.New("unsupported video format")
	ErrInvalidImageExt = errors.New("unsupported image format")
)

// IsDuplicateKey 识别唯一索引冲突；开启 TranslateError 时为 gorm.ErrDuplicatedKey，
// 否则回退到驱动错误信息匹配
func IsDuplicateKey(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "Duplicate entry") ||
		strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "duplicate key value")
}

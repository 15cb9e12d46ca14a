package controller

import (
	"errors"
	"neonclub_backend/internal/model"
	"neonclub_backend/internal/util"
	"net/http"

	"github.com/gin-gonic/gin"
)

var errorStatus = []struct {
	err    error
	status int
}{
	{util.ErrUserNotFound, http.StatusNotFound},
	{util.ErrCourseNotFound, http.StatusNotFound},
	{util.ErrLessonNotFound, http.StatusNotFound},
	{util.ErrWorkshopNotFound, http.StatusNotFound},
	{util.ErrEventNotFound, http.StatusNotFound},
	{util.ErrPurchaseNotFound, http.StatusNotFound},
	{util.ErrSessionNotFound, http.StatusNotFound},
	{util.ErrMentorNotFound, http.StatusNotFound},

	{util.ErrAlreadyPurchased, http.StatusBadRequest},
	{util.ErrInvalidCoupon, http.StatusBadRequest},
	{util.ErrPaymentMethodMissing, http.StatusBadRequest},
	{util.ErrInvalidPaymentMethod, http.StatusBadRequest},
	{util.ErrInvalidPaymentID, http.StatusBadRequest},
	{util.ErrInvalidTransition, http.StatusBadRequest},
	{util.ErrSessionInPast, http.StatusBadRequest},
	{util.ErrSessionNotBooked, http.StatusBadRequest},
	{util.ErrInvalidVideoExt, http.StatusBadRequest},
	{util.ErrInvalidImageExt, http.StatusBadRequest},
	{model.ErrPurchaseItemMissing, http.StatusBadRequest},

	{util.ErrEmailRegistered, http.StatusConflict},
	{util.ErrWorkshopFull, http.StatusConflict},
	{util.ErrEventFull, http.StatusConflict},
	{util.ErrSlotTaken, http.StatusConflict},

	{util.ErrUnauthorized, http.StatusUnauthorized},
	{util.ErrInvalidCredentials, http.StatusUnauthorized},
	{util.ErrUserDisabled, http.StatusUnauthorized},

	{util.ErrPermissionDenied, http.StatusForbidden},
	{util.ErrNotEnrolled, http.StatusForbidden},
}

// respondError 业务错误映射为对应状态码，未知错误记录日志后返回 500
func respondError(ctx *gin.Context, err error) {
	for _, e := range errorStatus {
		if errors.Is(err, e.err) {
			util.Error(ctx, e.status, e.err.Error())
			return
		}
	}
	util.LogInternalError(ctx, err)
}

func currentUser(ctx *gin.Context) (*util.Claims, bool) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return nil, false
	}
	return claims, true
}

func pathID(ctx *gin.Context, name string) (uint, bool) {
	id, ok := util.ParamID(ctx, name)
	if !ok {
		util.BadRequest(ctx, "invalid "+name)
	}
	return id, ok
}

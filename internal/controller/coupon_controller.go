package controller

import (
	"errors"
	"neonclub_backend/internal/service"
	"neonclub_backend/internal/util"
	"net/http"

	"github.com/gin-gonic/gin"
)

type CouponController struct {
	CouponService *service.CouponService
}

func NewCouponController(couponService *service.CouponService) *CouponController {
	return &CouponController{CouponService: couponService}
}

type ApplyCouponRequest struct {
	Code   string  `json:"code" binding:"required,max=50"`
	Amount float64 `json:"amount" binding:"gte=0"`
}

// ApplyCoupon godoc
// @Summary 试算优惠码
// @Description 无效优惠码返回 400，data.total 保持原金额
// @Tags 购买
// @Accept  json
// @Produce  json
// @Param body body ApplyCouponRequest true "优惠码与金额"
// @Success 200 {object} util.Response{data=service.CouponQuote}
// @Failure 400 {object} util.Response{data=object}
// @Router /api/coupons/apply [post]
func (c *CouponController) ApplyCoupon(ctx *gin.Context) {
	var req ApplyCouponRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	quote, err := c.CouponService.Apply(req.Code, req.Amount)
	if err != nil {
		if errors.Is(err, util.ErrInvalidCoupon) {
			util.ErrorWithData(ctx, http.StatusBadRequest, err.Error(), gin.H{"total": quote.Total})
			return
		}
		respondError(ctx, err)
		return
	}
	util.Success(ctx, quote)
}

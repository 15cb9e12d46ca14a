package controller

import (
	"errors"
	"io"
	"neonclub_backend/internal/model"
	"neonclub_backend/internal/service"
	"neonclub_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type PurchaseController struct {
	PurchaseService *service.PurchaseService
	EventService    *service.EventService
}

func NewPurchaseController(purchaseService *service.PurchaseService, eventService *service.EventService) *PurchaseController {
	return &PurchaseController{
		PurchaseService: purchaseService,
		EventService:    eventService,
	}
}

func (c *PurchaseController) purchase(ctx *gin.Context, itemType model.ItemType, itemID uint) {
	claims, ok := currentUser(ctx)
	if !ok {
		return
	}

	// 免费项目可以不带请求体
	var req service.PurchaseRequest
	if err := ctx.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		util.BadRequest(ctx, err.Error())
		return
	}

	purchase, err := c.PurchaseService.Purchase(ctx.Request.Context(), claims.UserID, itemType, itemID, req)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Created(ctx, purchase)
}

// PurchaseCourse godoc
// @Summary 购买课程
// @Description 免费课程直接完成；付费课程需要支付方式，带 paymentId 时直接完成，否则为待支付
// @Tags 购买
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param id path int true "课程ID"
// @Param body body service.PurchaseRequest false "支付信息"
// @Success 201 {object} util.Response{data=model.Purchase}
// @Failure 400 {object} util.Response "already purchased / invalid coupon code"
// @Failure 404 {object} util.Response
// @Router /api/courses/{id}/purchase [post]
func (c *PurchaseController) PurchaseCourse(ctx *gin.Context) {
	if id, ok := pathID(ctx, "id"); ok {
		c.purchase(ctx, model.ItemCourse, id)
	}
}

// PurchaseWorkshop godoc
// @Summary 报名工作坊
// @Tags 购买
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param id path int true "工作坊ID"
// @Param body body service.PurchaseRequest false "支付信息"
// @Success 201 {object} util.Response{data=model.Purchase}
// @Failure 409 {object} util.Response "名额已满"
// @Router /api/workshops/{id}/purchase [post]
func (c *PurchaseController) PurchaseWorkshop(ctx *gin.Context) {
	if id, ok := pathID(ctx, "id"); ok {
		c.purchase(ctx, model.ItemWorkshop, id)
	}
}

// PurchaseEvent godoc
// @Summary 报名活动或会议
// @Description 购买项目类型取活动本身的 kind
// @Tags 购买
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param id path int true "活动ID"
// @Param body body service.PurchaseRequest false "支付信息"
// @Success 201 {object} util.Response{data=model.Purchase}
// @Router /api/events/{id}/purchase [post]
func (c *PurchaseController) PurchaseEvent(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	event, err := c.EventService.GetEvent(id)
	if err != nil {
		respondError(ctx, err)
		return
	}
	c.purchase(ctx, event.ItemType(), id)
}

// ListMyPurchases godoc
// @Summary 我的购买记录
// @Tags 购买
// @Produce  json
// @Security ApiKeyAuth
// @Param itemType query string false "course/workshop/event/conference"
// @Success 200 {object} util.Response{data=[]model.Purchase}
// @Router /api/purchases/my [get]
func (c *PurchaseController) ListMyPurchases(ctx *gin.Context) {
	claims, ok := currentUser(ctx)
	if !ok {
		return
	}
	itemType := model.ItemType(ctx.Query("itemType"))
	if itemType != "" && !itemType.Valid() {
		util.BadRequest(ctx, "invalid itemType")
		return
	}
	purchases, err := c.PurchaseService.ListMine(claims.UserID, itemType)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, purchases)
}

// GetPurchase godoc
// @Summary 购买详情
// @Tags 购买
// @Produce  json
// @Security ApiKeyAuth
// @Param id path int true "购买ID"
// @Success 200 {object} util.Response{data=model.Purchase}
// @Failure 404 {object} util.Response
// @Router /api/purchases/{id} [get]
func (c *PurchaseController) GetPurchase(ctx *gin.Context) {
	claims, ok := currentUser(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	purchase, err := c.PurchaseService.GetPurchase(claims, id)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, purchase)
}

type ConfirmPurchaseRequest struct {
	PaymentID string `json:"paymentId" binding:"required,max=100"`
}

// ConfirmPurchase godoc
// @Summary 确认支付
// @Description 待支付订单补充支付流水号后变为已完成
// @Tags 购买
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param id path int true "购买ID"
// @Param body body ConfirmPurchaseRequest true "支付流水号"
// @Success 200 {object} util.Response{data=model.Purchase}
// @Failure 400 {object} util.Response
// @Router /api/purchases/{id}/confirm [post]
func (c *PurchaseController) ConfirmPurchase(ctx *gin.Context) {
	claims, ok := currentUser(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	var req ConfirmPurchaseRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	purchase, err := c.PurchaseService.Confirm(ctx.Request.Context(), claims.UserID, id, req.PaymentID)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, purchase)
}

type UpdatePurchaseStatusRequest struct {
	Status string `json:"status" binding:"required,purchasestatus"`
}

// UpdatePurchaseStatus godoc
// @Summary 管理员变更订单状态
// @Description pending->completed|failed，completed->refunded；退款会回退报名人数
// @Tags 管理
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param id path int true "购买ID"
// @Param body body UpdatePurchaseStatusRequest true "目标状态"
// @Success 200 {object} util.Response{data=model.Purchase}
// @Failure 400 {object} util.Response "invalid purchase status transition"
// @Router /api/admin/purchases/{id}/status [patch]
func (c *PurchaseController) UpdatePurchaseStatus(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	var req UpdatePurchaseStatusRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	purchase, err := c.PurchaseService.UpdateStatus(ctx.Request.Context(), id, model.PurchaseStatus(req.Status))
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, purchase)
}

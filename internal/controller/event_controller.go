package controller

import (
	"neonclub_backend/internal/model"
	"neonclub_backend/internal/service"
	"neonclub_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type EventController struct {
	EventService *service.EventService
}

func NewEventController(eventService *service.EventService) *EventController {
	return &EventController{EventService: eventService}
}

// ListEvents godoc
// @Summary 活动与会议列表
// @Tags 活动
// @Produce  json
// @Param kind query string false "event 或 conference"
// @Param upcoming query bool false "只返回未开始的活动"
// @Success 200 {object} util.Response{data=util.PageResponse}
// @Router /api/events [get]
func (c *EventController) ListEvents(ctx *gin.Context) {
	page, limit := util.Pagination(ctx)
	kind := model.EventKind(ctx.Query("kind"))
	if kind != "" && !kind.Valid() {
		util.BadRequest(ctx, "kind must be event or conference")
		return
	}

	events, total, err := c.EventService.ListEvents(kind, ctx.Query("upcoming") == "true", page, limit)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, util.PageResponse{List: events, Total: total, Page: page, Limit: limit})
}

// GetEvent godoc
// @Summary 活动详情
// @Tags 活动
// @Produce  json
// @Param id path int true "活动ID"
// @Success 200 {object} util.Response{data=model.Event}
// @Router /api/events/{id} [get]
func (c *EventController) GetEvent(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	event, err := c.EventService.GetEvent(id)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, event)
}

// CreateEvent godoc
// @Summary 创建活动或会议
// @Tags 活动
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param body body service.EventInput true "活动信息"
// @Success 201 {object} util.Response{data=model.Event}
// @Router /api/events [post]
func (c *EventController) CreateEvent(ctx *gin.Context) {
	claims, ok := currentUser(ctx)
	if !ok {
		return
	}
	var in service.EventInput
	if err := ctx.ShouldBindJSON(&in); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	event, err := c.EventService.CreateEvent(claims, in)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Created(ctx, event)
}

// DeleteEvent godoc
// @Summary 删除活动
// @Tags 活动
// @Security ApiKeyAuth
// @Param id path int true "活动ID"
// @Success 200 {object} util.Response
// @Router /api/events/{id} [delete]
func (c *EventController) DeleteEvent(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	if err := c.EventService.DeleteEvent(id); err != nil {
		respondError(ctx, err)
		return
	}
	util.SuccessMessage(ctx, "event deleted", nil)
}

package controller

import (
	"neonclub_backend/internal/service"
	"neonclub_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type WorkshopController struct {
	WorkshopService *service.WorkshopService
}

func NewWorkshopController(workshopService *service.WorkshopService) *WorkshopController {
	return &WorkshopController{WorkshopService: workshopService}
}

// ListWorkshops godoc
// @Summary 工作坊列表
// @Tags 工作坊
// @Produce  json
// @Param upcoming query bool false "只返回未开始的工作坊"
// @Param page query int false "页码"
// @Param limit query int false "每页数量"
// @Success 200 {object} util.Response{data=util.PageResponse}
// @Router /api/workshops [get]
func (c *WorkshopController) ListWorkshops(ctx *gin.Context) {
	page, limit := util.Pagination(ctx)
	viewer := util.GetUserFromContext(ctx)
	upcoming := ctx.Query("upcoming") == "true"

	workshops, total, err := c.WorkshopService.ListWorkshops(upcoming, viewer != nil && viewer.IsAdmin(), page, limit)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, util.PageResponse{List: workshops, Total: total, Page: page, Limit: limit})
}

// GetWorkshop godoc
// @Summary 工作坊详情
// @Tags 工作坊
// @Produce  json
// @Param id path int true "工作坊ID"
// @Success 200 {object} util.Response{data=model.Workshop}
// @Failure 404 {object} util.Response
// @Router /api/workshops/{id} [get]
func (c *WorkshopController) GetWorkshop(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	workshop, err := c.WorkshopService.GetWorkshop(id, util.GetUserFromContext(ctx))
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, workshop)
}

// CreateWorkshop godoc
// @Summary 创建工作坊
// @Tags 工作坊
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param body body service.WorkshopInput true "工作坊信息"
// @Success 201 {object} util.Response{data=model.Workshop}
// @Router /api/workshops [post]
func (c *WorkshopController) CreateWorkshop(ctx *gin.Context) {
	claims, ok := currentUser(ctx)
	if !ok {
		return
	}
	var in service.WorkshopInput
	if err := ctx.ShouldBindJSON(&in); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	workshop, err := c.WorkshopService.CreateWorkshop(claims, in)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Created(ctx, workshop)
}

// UpdateWorkshop godoc
// @Summary 更新工作坊
// @Description 容量不能低于已报名人数
// @Tags 工作坊
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param id path int true "工作坊ID"
// @Param body body service.WorkshopInput true "工作坊信息"
// @Success 200 {object} util.Response{data=model.Workshop}
// @Failure 409 {object} util.Response
// @Router /api/workshops/{id} [put]
func (c *WorkshopController) UpdateWorkshop(ctx *gin.Context) {
	claims, ok := currentUser(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	var in service.WorkshopInput
	if err := ctx.ShouldBindJSON(&in); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	workshop, err := c.WorkshopService.UpdateWorkshop(claims, id, in)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, workshop)
}

// DeleteWorkshop godoc
// @Summary 删除工作坊
// @Tags 工作坊
// @Security ApiKeyAuth
// @Param id path int true "工作坊ID"
// @Success 200 {object} util.Response
// @Router /api/workshops/{id} [delete]
func (c *WorkshopController) DeleteWorkshop(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	if err := c.WorkshopService.DeleteWorkshop(id); err != nil {
		respondError(ctx, err)
		return
	}
	util.SuccessMessage(ctx, "workshop deleted", nil)
}

// MyWorkshops godoc
// @Summary 我报名的工作坊
// @Tags 工作坊
// @Produce  json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=[]model.Workshop}
// @Router /api/workshops/my [get]
func (c *WorkshopController) MyWorkshops(ctx *gin.Context) {
	claims, ok := currentUser(ctx)
	if !ok {
		return
	}
	workshops, err := c.WorkshopService.MyWorkshops(claims.UserID)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, workshops)
}

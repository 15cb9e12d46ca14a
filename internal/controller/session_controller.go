package controller

import (
	"errors"
	"io"
	"neonclub_backend/internal/model"
	"neonclub_backend/internal/service"
	"neonclub_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type SessionController struct {
	SessionService *service.SessionService
}

func NewSessionController(sessionService *service.SessionService) *SessionController {
	return &SessionController{SessionService: sessionService}
}

// BookSession godoc
// @Summary 预约导师
// @Description 同一导师同一时间只能有一个有效预约
// @Tags 导师预约
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param body body service.BookSessionInput true "预约信息"
// @Success 201 {object} util.Response{data=model.Session}
// @Failure 409 {object} util.Response "时间已被预约"
// @Router /api/sessions [post]
func (c *SessionController) BookSession(ctx *gin.Context) {
	claims, ok := currentUser(ctx)
	if !ok {
		return
	}
	var in service.BookSessionInput
	if err := ctx.ShouldBindJSON(&in); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	session, err := c.SessionService.Book(claims.UserID, in)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Created(ctx, session)
}

// ListMySessions godoc
// @Summary 我的预约
// @Description 作为学员或导师参与的预约
// @Tags 导师预约
// @Produce  json
// @Security ApiKeyAuth
// @Param status query string false "booked/cancelled/completed"
// @Success 200 {object} util.Response{data=[]model.Session}
// @Router /api/sessions/my [get]
func (c *SessionController) ListMySessions(ctx *gin.Context) {
	claims, ok := currentUser(ctx)
	if !ok {
		return
	}
	sessions, err := c.SessionService.ListMine(claims.UserID, model.SessionStatus(ctx.Query("status")))
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, sessions)
}

// CancelSession godoc
// @Summary 取消预约
// @Tags 导师预约
// @Produce  json
// @Security ApiKeyAuth
// @Param id path int true "预约ID"
// @Success 200 {object} util.Response{data=model.Session}
// @Router /api/sessions/{id}/cancel [post]
func (c *SessionController) CancelSession(ctx *gin.Context) {
	claims, ok := currentUser(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	session, err := c.SessionService.Cancel(claims, id)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, session)
}

type CompleteSessionRequest struct {
	Notes string `json:"notes"`
}

// CompleteSession godoc
// @Summary 结束预约
// @Tags 导师预约
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param id path int true "预约ID"
// @Param body body CompleteSessionRequest false "导师备注"
// @Success 200 {object} util.Response{data=model.Session}
// @Router /api/sessions/{id}/complete [post]
func (c *SessionController) CompleteSession(ctx *gin.Context) {
	claims, ok := currentUser(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	var req CompleteSessionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		util.BadRequest(ctx, err.Error())
		return
	}
	session, err := c.SessionService.Complete(claims, id, req.Notes)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, session)
}

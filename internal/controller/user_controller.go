package controller

import (
	"neonclub_backend/internal/service"
	"neonclub_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type UserController struct {
	UserService *service.UserService
}

func NewUserController(userService *service.UserService) *UserController {
	return &UserController{UserService: userService}
}

// UpdateProfileRequest 护士资料以 JSON 对象整体保存
type UpdateProfileRequest struct {
	Name         string                 `json:"name" binding:"max=100"`
	NurseProfile map[string]interface{} `json:"nurseProfile"`
}

// UpdateProfile godoc
// @Summary 更新个人资料
// @Description 保存护士资料，fullName/registrationNumber/specialization 齐全时资料视为已完成
// @Tags 用户
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   body body UpdateProfileRequest true "资料"
// @Success 200 {object} util.Response{data=object}
// @Failure 400 {object} util.Response
// @Router /api/user/profile [put]
func (c *UserController) UpdateProfile(ctx *gin.Context) {
	claims, ok := currentUser(ctx)
	if !ok {
		return
	}

	var req UpdateProfileRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	user, err := c.UserService.UpdateProfile(claims.UserID, req.Name, req.NurseProfile)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, profileView(user))
}

// MarkOnboardingSeen godoc
// @Summary 标记已看过引导页
// @Tags 用户
// @Produce  json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response
// @Router /api/user/onboarding [post]
func (c *UserController) MarkOnboardingSeen(ctx *gin.Context) {
	claims, ok := currentUser(ctx)
	if !ok {
		return
	}
	if err := c.UserService.MarkOnboardingSeen(claims.UserID); err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"hasSeenOnboarding": true})
}

// ListMentors godoc
// @Summary 导师列表
// @Tags 用户
// @Produce  json
// @Success 200 {object} util.Response{data=[]model.User}
// @Router /api/mentors [get]
func (c *UserController) ListMentors(ctx *gin.Context) {
	mentors, err := c.UserService.ListMentors()
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, mentors)
}

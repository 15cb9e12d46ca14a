package controller

import (
	"errors"
	"io"
	"neonclub_backend/internal/service"
	"neonclub_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type ProgressController struct {
	ProgressService *service.ProgressService
}

func NewProgressController(progressService *service.ProgressService) *ProgressController {
	return &ProgressController{ProgressService: progressService}
}

// GetCourseProgress godoc
// @Summary 课程学习进度
// @Description 首次访问时创建进度记录，当前课时为第一课
// @Tags 学习进度
// @Produce  json
// @Security ApiKeyAuth
// @Param courseId path int true "课程ID"
// @Success 200 {object} util.Response{data=model.UserProgress}
// @Failure 403 {object} util.Response "未购买"
// @Router /api/progress/courses/{courseId} [get]
func (c *ProgressController) GetCourseProgress(ctx *gin.Context) {
	claims, ok := currentUser(ctx)
	if !ok {
		return
	}
	courseID, ok := pathID(ctx, "courseId")
	if !ok {
		return
	}
	progress, err := c.ProgressService.GetProgress(claims, courseID)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, progress)
}

// CompleteLesson godoc
// @Summary 标记课时完成
// @Description 重新计算进度百分比并把当前课时移到下一个未完成的课时
// @Tags 学习进度
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param courseId path int true "课程ID"
// @Param lessonId path int true "课时ID"
// @Param body body service.LessonCompletionInput false "completed 默认为 true"
// @Success 200 {object} util.Response{data=model.UserProgress}
// @Router /api/progress/courses/{courseId}/lessons/{lessonId} [post]
func (c *ProgressController) CompleteLesson(ctx *gin.Context) {
	claims, ok := currentUser(ctx)
	if !ok {
		return
	}
	courseID, ok := pathID(ctx, "courseId")
	if !ok {
		return
	}
	lessonID, ok := pathID(ctx, "lessonId")
	if !ok {
		return
	}
	var in service.LessonCompletionInput
	if err := ctx.ShouldBindJSON(&in); err != nil && !errors.Is(err, io.EOF) {
		util.BadRequest(ctx, err.Error())
		return
	}

	progress, err := c.ProgressService.CompleteLesson(ctx.Request.Context(), claims, courseID, lessonID, in)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, progress)
}

type SetCurrentLessonRequest struct {
	LessonID uint `json:"lessonId" binding:"required"`
}

// SetCurrentLesson godoc
// @Summary 设置当前课时
// @Tags 学习进度
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param courseId path int true "课程ID"
// @Param body body SetCurrentLessonRequest true "课时"
// @Success 200 {object} util.Response{data=model.UserProgress}
// @Router /api/progress/courses/{courseId}/current [put]
func (c *ProgressController) SetCurrentLesson(ctx *gin.Context) {
	claims, ok := currentUser(ctx)
	if !ok {
		return
	}
	courseID, ok := pathID(ctx, "courseId")
	if !ok {
		return
	}
	var req SetCurrentLessonRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	progress, err := c.ProgressService.SetCurrentLesson(claims, courseID, req.LessonID)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, progress)
}

// ListMyProgress godoc
// @Summary 我的全部学习进度
// @Tags 学习进度
// @Produce  json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=[]model.UserProgress}
// @Router /api/progress/my [get]
func (c *ProgressController) ListMyProgress(ctx *gin.Context) {
	claims, ok := currentUser(ctx)
	if !ok {
		return
	}
	list, err := c.ProgressService.ListMine(claims.UserID)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, list)
}

package controller

import (
	"neonclub_backend/internal/repository"
	"neonclub_backend/internal/service"
	"neonclub_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type CourseController struct {
	CourseService *service.CourseService
}

func NewCourseController(courseService *service.CourseService) *CourseController {
	return &CourseController{CourseService: courseService}
}

// ListCourses godoc
// @Summary 课程列表
// @Description 分页获取已发布课程，管理员可见全部
// @Tags 课程
// @Produce  json
// @Param q query string false "标题关键字"
// @Param category query string false "分类"
// @Param page query int false "页码"
// @Param limit query int false "每页数量"
// @Success 200 {object} util.Response{data=util.PageResponse}
// @Router /api/courses [get]
func (c *CourseController) ListCourses(ctx *gin.Context) {
	page, limit := util.Pagination(ctx)
	viewer := util.GetUserFromContext(ctx)

	f := repository.CourseFilter{
		Query:         ctx.Query("q"),
		Category:      ctx.Query("category"),
		IncludeHidden: viewer != nil && viewer.IsAdmin(),
		Page:          page,
		Limit:         limit,
	}
	if instructor := ctx.Query("instructorId"); instructor != "" {
		f.InstructorID = util.MustParseUint(instructor)
	}

	courses, total, err := c.CourseService.ListCourses(f)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, util.PageResponse{List: courses, Total: total, Page: page, Limit: limit})
}

// GetCourse godoc
// @Summary 课程详情
// @Description 返回课程及按顺序排列的课时
// @Tags 课程
// @Produce  json
// @Param id path int true "课程ID"
// @Success 200 {object} util.Response{data=model.Course}
// @Failure 404 {object} util.Response
// @Router /api/courses/{id} [get]
func (c *CourseController) GetCourse(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	course, err := c.CourseService.GetCourse(ctx.Request.Context(), id, util.GetUserFromContext(ctx))
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, course)
}

// CreateCourse godoc
// @Summary 创建课程
// @Tags 课程
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param body body service.CourseInput true "课程信息"
// @Success 201 {object} util.Response{data=model.Course}
// @Failure 400 {object} util.Response
// @Router /api/courses [post]
func (c *CourseController) CreateCourse(ctx *gin.Context) {
	claims, ok := currentUser(ctx)
	if !ok {
		return
	}
	var in service.CourseInput
	if err := ctx.ShouldBindJSON(&in); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	course, err := c.CourseService.CreateCourse(claims, in)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Created(ctx, course)
}

// UpdateCourse godoc
// @Summary 更新课程
// @Tags 课程
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param id path int true "课程ID"
// @Param body body service.CourseInput true "课程信息"
// @Success 200 {object} util.Response{data=model.Course}
// @Failure 403 {object} util.Response
// @Router /api/courses/{id} [put]
func (c *CourseController) UpdateCourse(ctx *gin.Context) {
	claims, ok := currentUser(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	var in service.CourseInput
	if err := ctx.ShouldBindJSON(&in); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	course, err := c.CourseService.UpdateCourse(ctx.Request.Context(), claims, id, in)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, course)
}

// DeleteCourse godoc
// @Summary 删除课程
// @Tags 课程
// @Security ApiKeyAuth
// @Param id path int true "课程ID"
// @Success 200 {object} util.Response
// @Router /api/courses/{id} [delete]
func (c *CourseController) DeleteCourse(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	if err := c.CourseService.DeleteCourse(ctx.Request.Context(), id); err != nil {
		respondError(ctx, err)
		return
	}
	util.SuccessMessage(ctx, "course deleted", nil)
}

// AddLesson godoc
// @Summary 添加课时
// @Tags 课程
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param id path int true "课程ID"
// @Param body body service.LessonInput true "课时信息"
// @Success 201 {object} util.Response{data=model.Lesson}
// @Router /api/courses/{id}/lessons [post]
func (c *CourseController) AddLesson(ctx *gin.Context) {
	claims, ok := currentUser(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	var in service.LessonInput
	if err := ctx.ShouldBindJSON(&in); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	lesson, err := c.CourseService.AddLesson(ctx.Request.Context(), claims, id, in)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Created(ctx, lesson)
}

// UpdateLesson godoc
// @Summary 更新课时
// @Tags 课程
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param id path int true "课程ID"
// @Param lessonId path int true "课时ID"
// @Param body body service.LessonInput true "课时信息"
// @Success 200 {object} util.Response{data=model.Lesson}
// @Router /api/courses/{id}/lessons/{lessonId} [put]
func (c *CourseController) UpdateLesson(ctx *gin.Context) {
	claims, ok := currentUser(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	lessonID, ok := pathID(ctx, "lessonId")
	if !ok {
		return
	}
	var in service.LessonInput
	if err := ctx.ShouldBindJSON(&in); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	lesson, err := c.CourseService.UpdateLesson(ctx.Request.Context(), claims, id, lessonID, in)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, lesson)
}

// DeleteLesson godoc
// @Summary 删除课时
// @Tags 课程
// @Security ApiKeyAuth
// @Param id path int true "课程ID"
// @Param lessonId path int true "课时ID"
// @Success 200 {object} util.Response
// @Router /api/courses/{id}/lessons/{lessonId} [delete]
func (c *CourseController) DeleteLesson(ctx *gin.Context) {
	claims, ok := currentUser(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	lessonID, ok := pathID(ctx, "lessonId")
	if !ok {
		return
	}
	if err := c.CourseService.DeleteLesson(ctx.Request.Context(), claims, id, lessonID); err != nil {
		respondError(ctx, err)
		return
	}
	util.SuccessMessage(ctx, "lesson deleted", nil)
}

// UploadThumbnail godoc
// @Summary 上传课程封面
// @Tags 课程
// @Accept  multipart/form-data
// @Produce  json
// @Security ApiKeyAuth
// @Param id path int true "课程ID"
// @Param file formData file true "图片文件"
// @Success 200 {object} util.Response{data=object}
// @Router /api/courses/{id}/thumbnail [post]
func (c *CourseController) UploadThumbnail(ctx *gin.Context) {
	claims, ok := currentUser(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	file, err := ctx.FormFile("file")
	if err != nil {
		util.BadRequest(ctx, "file is required")
		return
	}
	url, err := c.CourseService.UploadThumbnail(ctx.Request.Context(), claims, id, file)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"url": url})
}

// UploadLessonVideo godoc
// @Summary 上传课时视频
// @Description 上传后若服务器安装了 ffprobe 会自动探测时长并截取封面
// @Tags 课程
// @Accept  multipart/form-data
// @Produce  json
// @Security ApiKeyAuth
// @Param id path int true "课程ID"
// @Param lessonId path int true "课时ID"
// @Param file formData file true "视频文件"
// @Success 200 {object} util.Response{data=model.Lesson}
// @Router /api/courses/{id}/lessons/{lessonId}/video [post]
func (c *CourseController) UploadLessonVideo(ctx *gin.Context) {
	claims, ok := currentUser(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	lessonID, ok := pathID(ctx, "lessonId")
	if !ok {
		return
	}
	file, err := ctx.FormFile("file")
	if err != nil {
		util.BadRequest(ctx, "file is required")
		return
	}
	lesson, err := c.CourseService.UploadLessonVideo(ctx.Request.Context(), claims, id, lessonID, file)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, lesson)
}

// MyCourses godoc
// @Summary 我的课程
// @Description 已完成购买的课程及学习进度
// @Tags 课程
// @Produce  json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=[]model.MyCourse}
// @Router /api/courses/my [get]
func (c *CourseController) MyCourses(ctx *gin.Context) {
	claims, ok := currentUser(ctx)
	if !ok {
		return
	}
	courses, err := c.CourseService.MyCourses(claims.UserID)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, courses)
}

type RateCourseRequest struct {
	Rating int `json:"rating" binding:"required,min=1,max=5"`
}

// RateCourse godoc
// @Summary 课程评分
// @Description 每个学员对每门课只保留一个评分
// @Tags 课程
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param id path int true "课程ID"
// @Param body body RateCourseRequest true "评分"
// @Success 200 {object} util.Response{data=model.Course}
// @Failure 403 {object} util.Response "未购买"
// @Router /api/courses/{id}/rate [post]
func (c *CourseController) RateCourse(ctx *gin.Context) {
	claims, ok := currentUser(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	var req RateCourseRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	course, err := c.CourseService.RateCourse(ctx.Request.Context(), claims.UserID, id, req.Rating)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{
		"id":          course.ID,
		"rating":      course.Rating,
		"ratingCount": course.RatingCount,
		"yourRating":  req.Rating,
	})
}

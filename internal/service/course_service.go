package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"neonclub_backend/internal/model"
	"neonclub_backend/internal/repository"
	"neonclub_backend/internal/util"
	"neonclub_backend/pkg/logger"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type CourseService struct {
	CourseRepo   *repository.CourseRepository
	PurchaseRepo *repository.PurchaseRepository
	ProgressRepo *repository.ProgressRepository
	Storage      *StorageService
	Cache        *CatalogCache
}

func NewCourseService(
	courseRepo *repository.CourseRepository,
	purchaseRepo *repository.PurchaseRepository,
	progressRepo *repository.ProgressRepository,
	storage *StorageService,
	cache *CatalogCache,
) *CourseService {
	return &CourseService{
		CourseRepo:   courseRepo,
		PurchaseRepo: purchaseRepo,
		ProgressRepo: progressRepo,
		Storage:      storage,
		Cache:        cache,
	}
}

// CourseInput 创建/更新课程请求
type CourseInput struct {
	Title       string   `json:"title" binding:"required,max=255"`
	Description string   `json:"description"`
	Price       *float64 `json:"price" binding:"omitempty,gte=0"`
	Thumbnail   string   `json:"thumbnail"`
	Category    string   `json:"category"`
	Level       string   `json:"level"`
	Published   *bool    `json:"published"`
}

type LessonInput struct {
	Title       string  `json:"title" binding:"required,max=255"`
	Description string  `json:"description"`
	VideoURL    string  `json:"videoUrl"`
	Thumbnail   string  `json:"thumbnail"`
	Duration    float64 `json:"duration" binding:"gte=0"`
	Order       *int    `json:"order"`
}

func canManageCourse(claims *util.Claims, course *model.Course) bool {
	return claims != nil && (claims.IsAdmin() || course.InstructorID == claims.UserID)
}

func (s *CourseService) find(id uint) (*model.Course, error) {
	course, err := s.CourseRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrCourseNotFound
		}
		return nil, err
	}
	return course, nil
}

// findManaged 读取课程并校验当前用户是讲师本人或管理员
func (s *CourseService) findManaged(claims *util.Claims, id uint) (*model.Course, error) {
	course, err := s.find(id)
	if err != nil {
		return nil, err
	}
	if !canManageCourse(claims, course) {
		return nil, util.ErrPermissionDenied
	}
	return course, nil
}

func (s *CourseService) ListCourses(f repository.CourseFilter) ([]model.Course, int64, error) {
	return s.CourseRepo.List(f)
}

// GetCourse 未发布课程只对讲师本人和管理员可见
func (s *CourseService) GetCourse(ctx context.Context, id uint, viewer *util.Claims) (*model.Course, error) {
	course, ok := s.Cache.GetCourse(ctx, id)
	if !ok {
		var err error
		course, err = s.CourseRepo.FindWithLessons(id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, util.ErrCourseNotFound
			}
			return nil, err
		}
		s.Cache.SetCourse(ctx, course)
	}

	if !course.Published && !canManageCourse(viewer, course) {
		return nil, util.ErrCourseNotFound
	}
	return course, nil
}

func (s *CourseService) CreateCourse(claims *util.Claims, in CourseInput) (*model.Course, error) {
	course := &model.Course{
		Title:        strings.TrimSpace(in.Title),
		Description:  in.Description,
		Thumbnail:    in.Thumbnail,
		Category:     in.Category,
		Level:        in.Level,
		InstructorID: claims.UserID,
		Published:    true,
	}
	if in.Price != nil {
		course.Price = *in.Price
	}
	if in.Published != nil {
		course.Published = *in.Published
	}

	if err := s.CourseRepo.Create(course); err != nil {
		return nil, fmt.Errorf("create course: %w", err)
	}
	logger.Log.Info("course created", zap.Uint("courseId", course.ID), zap.Uint("instructorId", claims.UserID))
	return course, nil
}

func (s *CourseService) UpdateCourse(ctx context.Context, claims *util.Claims, id uint, in CourseInput) (*model.Course, error) {
	course, err := s.findManaged(claims, id)
	if err != nil {
		return nil, err
	}

	course.Title = strings.TrimSpace(in.Title)
	course.Description = in.Description
	course.Category = in.Category
	course.Level = in.Level
	if in.Thumbnail != "" {
		course.Thumbnail = in.Thumbnail
	}
	if in.Price != nil {
		course.Price = *in.Price
	}
	if in.Published != nil {
		course.Published = *in.Published
	}

	if err := s.CourseRepo.Update(course); err != nil {
		return nil, err
	}
	s.Cache.InvalidateCourse(ctx, id)
	return course, nil
}

// DeleteCourse 软删除，仅管理员可调用（由路由层限制角色）
func (s *CourseService) DeleteCourse(ctx context.Context, id uint) error {
	if _, err := s.find(id); err != nil {
		return err
	}
	if err := s.CourseRepo.Delete(id); err != nil {
		return err
	}
	s.Cache.InvalidateCourse(ctx, id)
	logger.Log.Info("course deleted", zap.Uint("courseId", id))
	return nil
}

func (s *CourseService) AddLesson(ctx context.Context, claims *util.Claims, courseID uint, in LessonInput) (*model.Lesson, error) {
	if _, err := s.findManaged(claims, courseID); err != nil {
		return nil, err
	}

	lesson := &model.Lesson{
		CourseID:    courseID,
		Title:       strings.TrimSpace(in.Title),
		Description: in.Description,
		VideoURL:    in.VideoURL,
		Thumbnail:   in.Thumbnail,
		Duration:    in.Duration,
	}
	if in.Order != nil {
		lesson.Order = *in.Order
	} else {
		next, err := s.CourseRepo.NextLessonOrder(courseID)
		if err != nil {
			return nil, err
		}
		lesson.Order = next
	}

	if err := s.CourseRepo.CreateLesson(lesson); err != nil {
		return nil, err
	}
	s.Cache.InvalidateCourse(ctx, courseID)
	return lesson, nil
}

func (s *CourseService) findLesson(courseID, lessonID uint) (*model.Lesson, error) {
	lesson, err := s.CourseRepo.FindLesson(courseID, lessonID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrLessonNotFound
		}
		return nil, err
	}
	return lesson, nil
}

func (s *CourseService) UpdateLesson(ctx context.Context, claims *util.Claims, courseID, lessonID uint, in LessonInput) (*model.Lesson, error) {
	if _, err := s.findManaged(claims, courseID); err != nil {
		return nil, err
	}
	lesson, err := s.findLesson(courseID, lessonID)
	if err != nil {
		return nil, err
	}

	lesson.Title = strings.TrimSpace(in.Title)
	lesson.Description = in.Description
	if in.VideoURL != "" {
		lesson.VideoURL = in.VideoURL
	}
	if in.Thumbnail != "" {
		lesson.Thumbnail = in.Thumbnail
	}
	if in.Duration > 0 {
		lesson.Duration = in.Duration
	}
	if in.Order != nil {
		lesson.Order = *in.Order
	}

	if err := s.CourseRepo.UpdateLesson(lesson); err != nil {
		return nil, err
	}
	s.Cache.InvalidateCourse(ctx, courseID)
	return lesson, nil
}

func (s *CourseService) DeleteLesson(ctx context.Context, claims *util.Claims, courseID, lessonID uint) error {
	if _, err := s.findManaged(claims, courseID); err != nil {
		return err
	}
	if _, err := s.findLesson(courseID, lessonID); err != nil {
		return err
	}
	if err := s.CourseRepo.DeleteLesson(courseID, lessonID); err != nil {
		return err
	}
	s.Cache.InvalidateCourse(ctx, courseID)
	return nil
}

func mediaName(dir, original string) string {
	ext := strings.ToLower(filepath.Ext(original))
	return fmt.Sprintf("%s/%s_%s%s", dir, time.Now().Format("20060102150405"), model.GenerateUUID()[:8], ext)
}

func (s *CourseService) UploadThumbnail(ctx context.Context, claims *util.Claims, courseID uint, file *multipart.FileHeader) (string, error) {
	course, err := s.findManaged(claims, courseID)
	if err != nil {
		return "", err
	}
	if !util.HasAllowedExt(file.Filename, util.AllowedImageExtensions) {
		return "", util.ErrInvalidImageExt
	}

	src, err := file.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	mimeType, err := util.ValidateMimeType(src, []string{util.MimeImage})
	if err != nil {
		return "", util.ErrInvalidImageExt
	}
	if _, err := src.Seek(0, io.SeekStart); err != nil {
		return "", err
	}

	url, err := s.Storage.Upload(ctx, mediaName("thumbnails", file.Filename), src, file.Size, mimeType)
	if err != nil {
		return "", fmt.Errorf("upload thumbnail: %w", err)
	}

	course.Thumbnail = url
	if err := s.CourseRepo.Update(course); err != nil {
		return "", err
	}
	s.Cache.InvalidateCourse(ctx, courseID)
	return url, nil
}

// UploadLessonVideo 视频先落到临时文件，ffprobe 可用时读取时长并截取缩略图
func (s *CourseService) UploadLessonVideo(ctx context.Context, claims *util.Claims, courseID, lessonID uint, file *multipart.FileHeader) (*model.Lesson, error) {
	if _, err := s.findManaged(claims, courseID); err != nil {
		return nil, err
	}
	lesson, err := s.findLesson(courseID, lessonID)
	if err != nil {
		return nil, err
	}
	if !util.HasAllowedExt(file.Filename, util.AllowedVideoExtensions) {
		return nil, util.ErrInvalidVideoExt
	}

	tmpDir, err := os.MkdirTemp("", "lesson-video-*")
	if err != nil {
		return nil, err
	}
	defer os.RemoveAll(tmpDir)

	tmpPath := filepath.Join(tmpDir, "video"+strings.ToLower(filepath.Ext(file.Filename)))
	if err := saveMultipart(file, tmpPath); err != nil {
		return nil, err
	}

	contentType := file.Header.Get("Content-Type")
	if contentType == "" {
		contentType = util.MimeOctetStream
	}
	url, err := s.Storage.UploadFile(ctx, mediaName("videos", file.Filename), tmpPath, contentType)
	if err != nil {
		return nil, fmt.Errorf("upload video: %w", err)
	}
	lesson.VideoURL = url

	if util.FFmpegAvailable() {
		if info, err := util.ProbeVideo(tmpPath); err == nil {
			lesson.Duration = info.Duration
		} else {
			logger.Log.Warn("probe lesson video failed", zap.Uint("lessonId", lessonID), zap.Error(err))
		}

		thumbPath := filepath.Join(tmpDir, "thumb.jpg")
		if err := util.ExtractThumbnail(tmpPath, thumbPath, "00:00:01"); err == nil {
			if thumbURL, err := s.Storage.UploadFile(ctx, mediaName("thumbnails", "thumb.jpg"), thumbPath, "image/jpeg"); err == nil {
				lesson.Thumbnail = thumbURL
			}
		}
	}

	if err := s.CourseRepo.UpdateLesson(lesson); err != nil {
		return nil, err
	}
	s.Cache.InvalidateCourse(ctx, courseID)
	return lesson, nil
}

func saveMultipart(file *multipart.FileHeader, dst string) error {
	src, err := file.Open()
	if err != nil {
		return err
	}
	defer src.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	_, err = io.Copy(out, src)
	return err
}

// MyCourses 已完成购买的课程及各自进度
func (s *CourseService) MyCourses(userID uint) ([]model.MyCourse, error) {
	purchases, err := s.PurchaseRepo.CompletedByUser(userID, model.ItemCourse)
	if err != nil {
		return nil, err
	}
	ids := make([]uint, 0, len(purchases))
	for id := range purchases {
		ids = append(ids, id)
	}

	courses, err := s.CourseRepo.FindByIDs(ids)
	if err != nil {
		return nil, err
	}
	percent, err := s.ProgressRepo.PercentByCourse(userID, ids)
	if err != nil {
		return nil, err
	}

	result := make([]model.MyCourse, 0, len(courses))
	for _, c := range courses {
		p := purchases[c.ID]
		result = append(result, model.MyCourse{
			Course:      c,
			PurchasedAt: p.CompletedAt,
			Progress:    percent[c.ID],
		})
	}
	// 最近购买的排在前面
	sort.SliceStable(result, func(i, j int) bool {
		a, b := result[i].PurchasedAt, result[j].PurchasedAt
		if a == nil || b == nil {
			return a != nil
		}
		return a.After(*b)
	})
	return result, nil
}

// RateCourse 只有已购课程的用户可以评分，重复评分覆盖之前的分数
func (s *CourseService) RateCourse(ctx context.Context, userID, courseID uint, rating int) (*model.Course, error) {
	if _, err := s.find(courseID); err != nil {
		return nil, err
	}
	purchased, err := s.PurchaseRepo.HasCompleted(userID, model.ItemCourse, courseID)
	if err != nil {
		return nil, err
	}
	if !purchased {
		return nil, util.ErrNotEnrolled
	}

	course, err := s.CourseRepo.UpsertRating(userID, courseID, rating)
	if err != nil {
		return nil, err
	}
	s.Cache.InvalidateCourse(ctx, courseID)
	return course, nil
}

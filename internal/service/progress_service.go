package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"neonclub_backend/internal/model"
	"neonclub_backend/internal/repository"
	"neonclub_backend/internal/util"
	"neonclub_backend/pkg/logger"
	"neonclub_backend/pkg/monitoring"
	"neonclub_backend/pkg/tracing"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type ProgressService struct {
	DB           *gorm.DB
	ProgressRepo *repository.ProgressRepository
	CourseRepo   *repository.CourseRepository
	PurchaseRepo *repository.PurchaseRepository
}

func NewProgressService(
	db *gorm.DB,
	progressRepo *repository.ProgressRepository,
	courseRepo *repository.CourseRepository,
	purchaseRepo *repository.PurchaseRepository,
) *ProgressService {
	return &ProgressService{
		DB:           db,
		ProgressRepo: progressRepo,
		CourseRepo:   courseRepo,
		PurchaseRepo: purchaseRepo,
	}
}

// LessonCompletionInput Completed 缺省为 true
type LessonCompletionInput struct {
	Completed *bool `json:"completed"`
	TimeSpent int   `json:"timeSpent" binding:"gte=0"`
}

// CompletionPercent = round(100 * completed / total)，没有课时的课程为 0
func CompletionPercent(completed, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(100 * float64(completed) / float64(total)))
}

// Recompute 根据课程当前的课时列表重新计算进度。
// toggled 非零时把当前课时移到其后第一个未完成的课时（必要时从头回绕），
// 全部完成时停留在最后一课。已删除课时的记录不参与计算。
func Recompute(p *model.UserProgress, lessons []model.Lesson, toggled uint, now time.Time) {
	done := make(map[uint]bool, len(p.Lessons))
	for _, lp := range p.Lessons {
		if lp.Completed {
			done[lp.LessonID] = true
		}
	}

	completed := 0
	for _, l := range lessons {
		if done[l.ID] {
			completed++
		}
	}
	p.Progress = CompletionPercent(completed, len(lessons))

	if toggled != 0 && len(lessons) > 0 {
		start := 0
		for i, l := range lessons {
			if l.ID == toggled {
				start = i + 1
				break
			}
		}
		next := lessons[len(lessons)-1].ID
		for i := 0; i < len(lessons); i++ {
			l := lessons[(start+i)%len(lessons)]
			if !done[l.ID] {
				next = l.ID
				break
			}
		}
		p.CurrentLessonID = &next
	}

	if p.Progress >= 100 && p.CompletedAt == nil {
		p.CompletedAt = &now
	}
}

func (s *ProgressService) course(courseID uint) (*model.Course, error) {
	course, err := s.CourseRepo.FindWithLessons(courseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrCourseNotFound
		}
		return nil, err
	}
	return course, nil
}

// checkAccess 需要已完成的课程购买；管理员和课程讲师不受限
func (s *ProgressService) checkAccess(claims *util.Claims, course *model.Course) error {
	if canManageCourse(claims, course) {
		return nil
	}
	ok, err := s.PurchaseRepo.HasCompleted(claims.UserID, model.ItemCourse, course.ID)
	if err != nil {
		return err
	}
	if !ok {
		return util.ErrNotEnrolled
	}
	return nil
}

// ensure 首次访问时创建进度记录，并为新增课时补齐课时进度
func (s *ProgressService) ensure(userID uint, course *model.Course) (*model.UserProgress, error) {
	progress, err := s.ProgressRepo.Find(userID, course.ID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		progress = &model.UserProgress{UserID: userID, CourseID: course.ID}
		if len(course.Lessons) > 0 {
			first := course.Lessons[0].ID
			progress.CurrentLessonID = &first
		}
		for _, l := range course.Lessons {
			progress.Lessons = append(progress.Lessons, model.LessonProgress{LessonID: l.ID})
		}
		err = s.ProgressRepo.Create(progress)
		if util.IsDuplicateKey(err) {
			// 并发的首次访问已经创建了记录
			progress, err = s.ProgressRepo.Find(userID, course.ID)
		}
	}
	if err != nil {
		return nil, fmt.Errorf("load progress: %w", err)
	}

	known := make(map[uint]bool, len(progress.Lessons))
	for _, lp := range progress.Lessons {
		known[lp.LessonID] = true
	}
	var missing []model.LessonProgress
	for _, l := range course.Lessons {
		if !known[l.ID] {
			missing = append(missing, model.LessonProgress{UserProgressID: progress.ID, LessonID: l.ID})
		}
	}
	if len(missing) > 0 {
		if err := s.ProgressRepo.CreateLessons(missing); err != nil && !util.IsDuplicateKey(err) {
			return nil, fmt.Errorf("sync lesson progress: %w", err)
		}
		return s.ProgressRepo.Find(userID, course.ID)
	}
	return progress, nil
}

func (s *ProgressService) GetProgress(claims *util.Claims, courseID uint) (*model.UserProgress, error) {
	course, err := s.course(courseID)
	if err != nil {
		return nil, err
	}
	if err := s.checkAccess(claims, course); err != nil {
		return nil, err
	}

	progress, err := s.ensure(claims.UserID, course)
	if err != nil {
		return nil, err
	}

	// 课时增删后百分比需要同步
	before := progress.Progress
	Recompute(progress, course.Lessons, 0, time.Now())
	if progress.Progress != before {
		if err := s.ProgressRepo.Save(progress); err != nil {
			return nil, err
		}
	}
	return progress, nil
}

// CompleteLesson 标记（或取消标记）一个课时并重新计算进度。不校验完成顺序。
func (s *ProgressService) CompleteLesson(ctx context.Context, claims *util.Claims, courseID, lessonID uint, in LessonCompletionInput) (_ *model.UserProgress, err error) {
	ctx, span := tracing.StartSpan(ctx, "progress.complete_lesson",
		attribute.Int64("course.id", int64(courseID)),
		attribute.Int64("lesson.id", int64(lessonID)),
	)
	defer func() { tracing.EndSpan(span, err) }()

	course, err := s.course(courseID)
	if err != nil {
		return nil, err
	}
	if !hasLesson(course, lessonID) {
		return nil, util.ErrLessonNotFound
	}
	if err := s.checkAccess(claims, course); err != nil {
		return nil, err
	}
	if _, err := s.ensure(claims.UserID, course); err != nil {
		return nil, err
	}

	completed := true
	if in.Completed != nil {
		completed = *in.Completed
	}

	var (
		result        *model.UserProgress
		newlyDone     bool
		courseDoneNow bool
	)
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.ProgressRepo.WithTx(tx)
		progress, err := repo.FindForUpdate(claims.UserID, courseID)
		if err != nil {
			return err
		}

		now := time.Now()
		for i := range progress.Lessons {
			lp := &progress.Lessons[i]
			if lp.LessonID != lessonID {
				continue
			}
			newlyDone = completed && !lp.Completed
			lp.Completed = completed
			lp.TimeSpent += in.TimeSpent
			switch {
			case newlyDone:
				lp.CompletedAt = &now
			case !completed:
				lp.CompletedAt = nil
			}
			if err := repo.SaveLesson(lp); err != nil {
				return err
			}
			break
		}

		hadCompletedAt := progress.CompletedAt != nil
		Recompute(progress, course.Lessons, lessonID, now)
		courseDoneNow = !hadCompletedAt && progress.CompletedAt != nil
		if err := repo.Save(progress); err != nil {
			return err
		}
		result = progress
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("update lesson progress: %w", err)
	}

	if newlyDone {
		monitoring.LessonCompletionCounter.Inc()
	}
	if courseDoneNow {
		monitoring.CourseCompletionCounter.Inc()
		logger.Log.Info("course completed",
			zap.Uint("userId", claims.UserID),
			zap.Uint("courseId", courseID),
		)
	}
	return result, nil
}

func (s *ProgressService) SetCurrentLesson(claims *util.Claims, courseID, lessonID uint) (*model.UserProgress, error) {
	course, err := s.course(courseID)
	if err != nil {
		return nil, err
	}
	if !hasLesson(course, lessonID) {
		return nil, util.ErrLessonNotFound
	}
	if err := s.checkAccess(claims, course); err != nil {
		return nil, err
	}
	progress, err := s.ensure(claims.UserID, course)
	if err != nil {
		return nil, err
	}
	progress.CurrentLessonID = &lessonID
	if err := s.ProgressRepo.Save(progress); err != nil {
		return nil, err
	}
	return progress, nil
}

func (s *ProgressService) ListMine(userID uint) ([]model.UserProgress, error) {
	return s.ProgressRepo.ListByUser(userID)
}

func hasLesson(course *model.Course, lessonID uint) bool {
	for _, l := range course.Lessons {
		if l.ID == lessonID {
			return true
		}
	}
	return false
}

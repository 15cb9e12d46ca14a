package service

import (
	"encoding/json"
	"errors"
	"fmt"
	"neonclub_backend/internal/model"
	"neonclub_backend/internal/repository"
	"neonclub_backend/internal/util"
	"neonclub_backend/pkg/logger"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type WorkshopService struct {
	WorkshopRepo *repository.WorkshopRepository
	PurchaseRepo *repository.PurchaseRepository
}

func NewWorkshopService(workshopRepo *repository.WorkshopRepository, purchaseRepo *repository.PurchaseRepository) *WorkshopService {
	return &WorkshopService{
		WorkshopRepo: workshopRepo,
		PurchaseRepo: purchaseRepo,
	}
}

type WorkshopInput struct {
	Title           string                 `json:"title" binding:"required,max=255"`
	Description     string                 `json:"description"`
	StartsAt        time.Time              `json:"startsAt" binding:"required"`
	DurationMinutes int                    `json:"durationMinutes" binding:"gte=0"`
	Capacity        int                    `json:"capacity" binding:"gte=0"`
	Price           float64                `json:"price" binding:"gte=0"`
	Thumbnail       string                 `json:"thumbnail"`
	Venue           map[string]interface{} `json:"venue"`
	Materials       []string               `json:"materials"`
	Published       *bool                  `json:"published"`
}

func (in WorkshopInput) apply(w *model.Workshop) error {
	w.Title = strings.TrimSpace(in.Title)
	w.Description = in.Description
	w.StartsAt = in.StartsAt
	w.DurationMinutes = in.DurationMinutes
	if w.DurationMinutes == 0 {
		w.DurationMinutes = 60
	}
	w.Capacity = in.Capacity
	w.Price = in.Price
	if in.Thumbnail != "" {
		w.Thumbnail = in.Thumbnail
	}
	if in.Venue != nil {
		raw, err := json.Marshal(in.Venue)
		if err != nil {
			return err
		}
		w.Venue = datatypes.JSON(raw)
	}
	if in.Materials != nil {
		w.Materials = in.Materials
	}
	if in.Published != nil {
		w.Published = *in.Published
	}
	return nil
}

func (s *WorkshopService) ListWorkshops(upcoming, includeHidden bool, page, limit int) ([]model.Workshop, int64, error) {
	return s.WorkshopRepo.List(upcoming, includeHidden, page, limit)
}

func (s *WorkshopService) GetWorkshop(id uint, viewer *util.Claims) (*model.Workshop, error) {
	workshop, err := s.WorkshopRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrWorkshopNotFound
		}
		return nil, err
	}
	if !workshop.Published && !canManageWorkshop(viewer, workshop) {
		return nil, util.ErrWorkshopNotFound
	}
	return workshop, nil
}

func canManageWorkshop(claims *util.Claims, w *model.Workshop) bool {
	return claims != nil && (claims.IsAdmin() || w.InstructorID == claims.UserID)
}

func (s *WorkshopService) CreateWorkshop(claims *util.Claims, in WorkshopInput) (*model.Workshop, error) {
	workshop := &model.Workshop{InstructorID: claims.UserID, Published: true}
	if err := in.apply(workshop); err != nil {
		return nil, err
	}
	if err := s.WorkshopRepo.Create(workshop); err != nil {
		return nil, fmt.Errorf("create workshop: %w", err)
	}
	logger.Log.Info("workshop created", zap.Uint("workshopId", workshop.ID))
	return workshop, nil
}

func (s *WorkshopService) UpdateWorkshop(claims *util.Claims, id uint, in WorkshopInput) (*model.Workshop, error) {
	workshop, err := s.GetWorkshop(id, claims)
	if err != nil {
		return nil, err
	}
	if !canManageWorkshop(claims, workshop) {
		return nil, util.ErrPermissionDenied
	}
	if in.Capacity > 0 && in.Capacity < workshop.RegisteredCount {
		return nil, fmt.Errorf("%w: capacity below registered count", util.ErrWorkshopFull)
	}
	if err := in.apply(workshop); err != nil {
		return nil, err
	}
	if err := s.WorkshopRepo.Update(workshop); err != nil {
		return nil, err
	}
	return workshop, nil
}

func (s *WorkshopService) DeleteWorkshop(id uint) error {
	if _, err := s.WorkshopRepo.FindByID(id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return util.ErrWorkshopNotFound
		}
		return err
	}
	return s.WorkshopRepo.Delete(id)
}

func (s *WorkshopService) MyWorkshops(userID uint) ([]model.Workshop, error) {
	purchases, err := s.PurchaseRepo.CompletedByUser(userID, model.ItemWorkshop)
	if err != nil {
		return nil, err
	}
	ids := make([]uint, 0, len(purchases))
	for id := range purchases {
		ids = append(ids, id)
	}
	return s.WorkshopRepo.FindByIDs(ids)
}

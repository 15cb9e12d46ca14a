package service

import (
	"encoding/json"
	"errors"
	"neonclub_backend/internal/model"
	"neonclub_backend/internal/repository"
	"neonclub_backend/internal/util"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type UserService struct {
	UserRepo *repository.UserRepository
}

func NewUserService(userRepo *repository.UserRepository) *UserService {
	return &UserService{UserRepo: userRepo}
}

func (s *UserService) GetUser(userID uint) (*model.User, error) {
	user, err := s.UserRepo.FindByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

// UpdateProfile 保存护士资料，必填字段齐全时标记资料已完成
func (s *UserService) UpdateProfile(userID uint, name string, profile map[string]interface{}) (*model.User, error) {
	user, err := s.GetUser(userID)
	if err != nil {
		return nil, err
	}

	blob := user.NurseProfile
	if profile != nil {
		raw, err := json.Marshal(profile)
		if err != nil {
			return nil, err
		}
		blob = datatypes.JSON(raw)
	}

	completed := model.ProfileComplete(blob)
	if err := s.UserRepo.UpdateProfile(userID, name, blob, completed); err != nil {
		return nil, err
	}
	return s.GetUser(userID)
}

func (s *UserService) MarkOnboardingSeen(userID uint) error {
	return s.UserRepo.MarkOnboardingSeen(userID)
}

func (s *UserService) ListMentors() ([]model.User, error) {
	return s.UserRepo.ListByRole(model.Mentor)
}

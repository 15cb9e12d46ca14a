package repository

import (
	"neonclub_backend/internal/model"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type UserRepository struct {
	DB *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{DB: db}
}

func (r *UserRepository) Create(user *model.User) error {
	return r.DB.Create(user).Error
}

func (r *UserRepository) FindByID(id uint) (*model.User, error) {
	var user model.User
	err := r.DB.First(&user, id).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) FindByEmail(email string) (*model.User, error) {
	var user model.User
	err := r.DB.Where("email = ?", email).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) Update(user *model.User) error {
	return r.DB.Save(user).Error
}

func (r *UserRepository) UpdateLastLogin(userID uint) error {
	return r.DB.Model(&model.User{}).
		Where("id = ?", userID).
		Update("last_login", time.Now()).
		Error
}

func (r *UserRepository) UpdateProfile(userID uint, name string, profile datatypes.JSON, completed bool) error {
	updates := map[string]interface{}{
		"nurse_profile":         profile,
		"has_completed_profile": completed,
	}
	if name != "" {
		updates["name"] = name
	}
	return r.DB.Model(&model.User{}).Where("id = ?", userID).Updates(updates).Error
}

func (r *UserRepository) MarkOnboardingSeen(userID uint) error {
	return r.DB.Model(&model.User{}).
		Where("id = ?", userID).
		Update("has_seen_onboarding", true).
		Error
}

func (r *UserRepository) ListByRole(role model.UserRole) ([]model.User, error) {
	var users []model.User
	err := r.DB.Where("role = ? AND disabled = ?", role, false).Order("name ASC").Find(&users).Error
	return users, err
}

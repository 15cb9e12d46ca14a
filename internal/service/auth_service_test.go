package service

import (
	"errors"
	"testing"
	"time"

	"neonclub_backend/internal/config"
	"neonclub_backend/internal/model"
	"neonclub_backend/internal/repository"
	"neonclub_backend/internal/testutil"
	"neonclub_backend/internal/util"

	"gorm.io/gorm"
)

const authSecret = "auth-secret-auth-secret-auth-secret"

func newAuthService(db *gorm.DB) *AuthService {
	cfg := &config.Config{JWT: config.JWTConfig{Secret: authSecret, ExpireTime: time.Hour}}
	return NewAuthService(repository.NewUserRepository(db), cfg)
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	db := testutil.DB(t)
	svc := newAuthService(db)

	u := &model.User{Name: "Asha", Email: "asha@neon.test", Password: "password1"}
	if err := svc.Register(u); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if u.Role != model.Nurse {
		t.Fatalf("default role = %q, want nurse", u.Role)
	}
	if u.Password == "password1" {
		t.Fatal("password stored in plain text")
	}

	dup := &model.User{Name: "Asha 2", Email: "  ASHA@neon.test ", Password: "password2"}
	if err := svc.Register(dup); !errors.Is(err, util.ErrEmailRegistered) {
		t.Fatalf("err = %v, want ErrEmailRegistered", err)
	}
}

func TestLogin(t *testing.T) {
	db := testutil.DB(t)
	svc := newAuthService(db)

	u := &model.User{Name: "Ravi", Email: "ravi@neon.test", Password: "password1", Role: model.Mentor}
	if err := svc.Register(u); err != nil {
		t.Fatalf("Register: %v", err)
	}

	token, user, err := svc.Login("Ravi@neon.test", "password1")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	claims, err := util.ParseJWT(token, authSecret)
	if err != nil {
		t.Fatalf("ParseJWT: %v", err)
	}
	if claims.UserID != user.ID || claims.Role != model.Mentor {
		t.Fatalf("claims = %+v", claims)
	}

	if _, _, err := svc.Login("ravi@neon.test", "wrong-password"); !errors.Is(err, util.ErrInvalidCredentials) {
		t.Fatalf("bad password: err = %v, want ErrInvalidCredentials", err)
	}
	if _, _, err := svc.Login("nobody@neon.test", "password1"); !errors.Is(err, util.ErrInvalidCredentials) {
		t.Fatalf("unknown email: err = %v, want ErrInvalidCredentials", err)
	}

	if err := db.Model(&model.User{}).Where("id = ?", u.ID).Update("disabled", true).Error; err != nil {
		t.Fatal(err)
	}
	if _, _, err := svc.Login("ravi@neon.test", "password1"); !errors.Is(err, util.ErrUserDisabled) {
		t.Fatalf("disabled: err = %v, want ErrUserDisabled", err)
	}
}

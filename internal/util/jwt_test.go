package util

import (
	"testing"
	"time"

	"neonclub_backend/internal/model"

	"github.com/golang-jwt/jwt/v5"
)

const secret = "0123456789abcdef0123456789abcdef"

func TestGenerateAndParseJWT(t *testing.T) {
	u := &model.User{BaseModel: model.BaseModel{ID: 42}, Email: "nurse@neon.test", Role: model.Nurse}

	token, err := GenerateJWT(u, secret, time.Hour)
	if err != nil {
		t.Fatalf("GenerateJWT: %v", err)
	}
	claims, err := ParseJWT(token, secret)
	if err != nil {
		t.Fatalf("ParseJWT: %v", err)
	}
	if claims.UserID != 42 || claims.Role != model.Nurse || claims.Email != u.Email {
		t.Fatalf("unexpected claims: %+v", claims)
	}
	if claims.IsAdmin() {
		t.Fatal("nurse reported as admin")
	}
}

func TestParseJWTRejects(t *testing.T) {
	u := &model.User{BaseModel: model.BaseModel{ID: 1}, Role: model.Admin}

	token, _ := GenerateJWT(u, secret, time.Hour)
	if _, err := ParseJWT(token, "another-secret-another-secret-xx"); err == nil {
		t.Fatal("token accepted with wrong secret")
	}

	expired, _ := GenerateJWT(u, secret, -time.Minute)
	if _, err := ParseJWT(expired, secret); err == nil {
		t.Fatal("expired token accepted")
	}

	hs512 := jwt.NewWithClaims(jwt.SigningMethodHS512, &Claims{UserID: 1, Role: model.Admin})
	signed, err := hs512.SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := ParseJWT(signed, secret); err == nil {
		t.Fatal("HS512 token accepted")
	}
}

package model

import (
	"encoding/json"
	"strings"
	"time"

	"gorm.io/datatypes"
)

type UserRole string

const (
	Nurse  UserRole = "nurse"
	Mentor UserRole = "mentor"
	Admin  UserRole = "admin"
)

// RequiredProfileFields 护士资料完整所需的字段
var RequiredProfileFields = []string{"fullName", "registrationNumber", "specialization"}

// swagger:model User
type User struct {
	BaseModel
	Name                string         `gorm:"size:100;not null" json:"name"`
	Email               string         `gorm:"size:100;uniqueIndex;not null" json:"email"`
	Password            string         `gorm:"size:100;not null" json:"-"`
	Role                UserRole       `gorm:"size:20;default:'nurse'" json:"role"`
	Avatar              string         `gorm:"size:255" json:"avatar"`
	Disabled            bool           `gorm:"default:false" json:"disabled"`
	HasSeenOnboarding   bool           `gorm:"default:false" json:"hasSeenOnboarding"`
	HasCompletedProfile bool           `gorm:"default:false" json:"hasCompletedProfile"`
	NurseProfile        datatypes.JSON `json:"nurseProfile,omitempty"`
	LastLogin           *time.Time     `json:"lastLogin,omitempty"`
}

func (User) TableName() string {
	return "users"
}

func (u *User) IsAdmin() bool {
	return u.Role == Admin
}

// ProfileIncomplete 对应客户端的 profileIncomplete 标志
func (u *User) ProfileIncomplete() bool {
	return !u.HasCompletedProfile
}

// ProfileComplete reports whether a nurse profile blob carries every required field with a non-empty value.
func ProfileComplete(profile datatypes.JSON) bool {
	if len(profile) == 0 {
		return false
	}
	var fields map[string]interface{}
	if err := json.Unmarshal(profile, &fields); err != nil {
		return false
	}
	for _, key := range RequiredProfileFields {
		v, ok := fields[key]
		if !ok || v == nil {
			return false
		}
		if s, isString := v.(string); isString && strings.TrimSpace(s) == "" {
			return false
		}
	}
	return true
}

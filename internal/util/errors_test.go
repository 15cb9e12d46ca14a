package util

import (
	"errors"
	"fmt"
	"testing"

	"gorm.io/gorm"
)

func TestIsDuplicateKey(t *testing.T) {
	tests := []struct {
		err  error
		want bool
	}{
		{nil, false},
		{gorm.ErrDuplicatedKey, true},
		{fmt.Errorf("save: %w", gorm.ErrDuplicatedKey), true},
		{errors.New("Error 1062 (23000): Duplicate entry '1-course-7-1' for key 'idx_purchase_completed'"), true},
		{errors.New("UNIQUE constraint failed: purchases.user_id"), true},
		{errors.New(`ERROR: duplicate key value violates unique constraint "idx_purchase_completed"`), true},
		{gorm.ErrRecordNotFound, false},
	}
	for _, tt := range tests {
		if got := IsDuplicateKey(tt.err); got != tt.want {
			t.Errorf("IsDuplicateKey(%v) = %v, want %v", tt.err, got, tt.want)
		}
	}
}

package model

import (
	"testing"

	"gorm.io/datatypes"
)

func TestProfileComplete(t *testing.T) {
	tests := []struct {
		name    string
		profile string
		want    bool
	}{
		{"empty", ``, false},
		{"not json", `nope`, false},
		{"missing field", `{"fullName":"A","registrationNumber":"RN1"}`, false},
		{"blank field", `{"fullName":"A","registrationNumber":" ","specialization":"ICU"}`, false},
		{"complete", `{"fullName":"A","registrationNumber":"RN1","specialization":"ICU","yearsOfExperience":4}`, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ProfileComplete(datatypes.JSON(tt.profile)); got != tt.want {
				t.Fatalf("ProfileComplete = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPurchaseTransitions(t *testing.T) {
	tests := []struct {
		from, to PurchaseStatus
		want     bool
	}{
		{PurchasePending, PurchaseCompleted, true},
		{PurchasePending, PurchaseFailed, true},
		{PurchaseCompleted, PurchaseRefunded, true},
		{PurchaseCompleted, PurchasePending, false},
		{PurchaseFailed, PurchaseCompleted, false},
		{PurchaseRefunded, PurchaseCompleted, false},
		{PurchasePending, PurchaseRefunded, false},
	}
	for _, tt := range tests {
		p := &Purchase{Status: tt.from}
		if got := p.CanTransition(tt.to); got != tt.want {
			t.Errorf("%s -> %s = %v, want %v", tt.from, tt.to, got, tt.want)
		}
	}
}

func TestEventItemType(t *testing.T) {
	if (&Event{Kind: EventKindConference}).ItemType() != ItemConference {
		t.Fatal("conference mapped to wrong item type")
	}
	if (&Event{Kind: EventKindEvent}).ItemType() != ItemEvent {
		t.Fatal("event mapped to wrong item type")
	}
}

package service

import (
	"errors"
	"testing"
	"time"

	"neonclub_backend/internal/model"
	"neonclub_backend/internal/repository"
	"neonclub_backend/internal/testutil"
	"neonclub_backend/internal/util"
)

func TestBookSession(t *testing.T) {
	db := testutil.DB(t)
	mentor := testutil.SeedUser(t, db, "mentor@neon.test", model.Mentor)
	nurse := testutil.SeedUser(t, db, "nurse@neon.test", model.Nurse)
	other := testutil.SeedUser(t, db, "other@neon.test", model.Nurse)
	svc := NewSessionService(repository.NewSessionRepository(db), repository.NewUserRepository(db))

	slot := time.Now().Add(48 * time.Hour).Truncate(time.Minute)
	in := BookSessionInput{MentorID: mentor.ID, Topic: "ICU rotation", ScheduledAt: slot}

	booked, err := svc.Book(nurse.ID, in)
	if err != nil {
		t.Fatalf("Book: %v", err)
	}
	if booked.DurationMinutes != 30 || booked.Status != model.SessionBooked {
		t.Fatalf("unexpected session: %+v", booked)
	}

	if _, err := svc.Book(other.ID, in); !errors.Is(err, util.ErrSlotTaken) {
		t.Fatalf("double booking err = %v, want ErrSlotTaken", err)
	}

	if _, err := svc.Cancel(testutil.Claims(nurse), booked.ID); err != nil {
		t.Fatalf("Cancel: %v", err)
	}
	if _, err := svc.Book(other.ID, in); err != nil {
		t.Fatalf("rebook cancelled slot: %v", err)
	}
}

func TestBookSessionValidation(t *testing.T) {
	db := testutil.DB(t)
	mentor := testutil.SeedUser(t, db, "mentor@neon.test", model.Mentor)
	nurse := testutil.SeedUser(t, db, "nurse@neon.test", model.Nurse)
	svc := NewSessionService(repository.NewSessionRepository(db), repository.NewUserRepository(db))

	if _, err := svc.Book(nurse.ID, BookSessionInput{MentorID: nurse.ID, Topic: "x", ScheduledAt: time.Now().Add(time.Hour)}); !errors.Is(err, util.ErrMentorNotFound) {
		t.Fatalf("non-mentor err = %v, want ErrMentorNotFound", err)
	}
	if _, err := svc.Book(nurse.ID, BookSessionInput{MentorID: mentor.ID, Topic: "x", ScheduledAt: time.Now().Add(-time.Hour)}); !errors.Is(err, util.ErrSessionInPast) {
		t.Fatalf("past slot err = %v, want ErrSessionInPast", err)
	}
}

func TestCompleteSessionMentorOnly(t *testing.T) {
	db := testutil.DB(t)
	mentor := testutil.SeedUser(t, db, "mentor@neon.test", model.Mentor)
	nurse := testutil.SeedUser(t, db, "nurse@neon.test", model.Nurse)
	svc := NewSessionService(repository.NewSessionRepository(db), repository.NewUserRepository(db))

	s, err := svc.Book(nurse.ID, BookSessionInput{MentorID: mentor.ID, Topic: "career", ScheduledAt: time.Now().Add(time.Hour)})
	if err != nil {
		t.Fatalf("Book: %v", err)
	}
	if _, err := svc.Complete(testutil.Claims(nurse), s.ID, ""); !errors.Is(err, util.ErrPermissionDenied) {
		t.Fatalf("nurse complete err = %v, want ErrPermissionDenied", err)
	}
	done, err := svc.Complete(testutil.Claims(mentor), s.ID, "went well")
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if done.Status != model.SessionCompleted || done.Notes != "went well" {
		t.Fatalf("unexpected session: %+v", done)
	}
	if _, err := svc.Cancel(testutil.Claims(nurse), s.ID); !errors.Is(err, util.ErrSessionNotBooked) {
		t.Fatalf("cancel completed err = %v, want ErrSessionNotBooked", err)
	}
}

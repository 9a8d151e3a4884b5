package store

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestSessionRepository_CreateAndGet(t *testing.T) {
	repo := newTestStore(t).Sessions()

	started := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	sess := &Session{
		Score:     7,
		NewRecord: true,
		Cause:     "missed",
		StartedAt: started,
		EndedAt:   started.Add(95 * time.Second),
	}

	if err := repo.Create(sess); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if sess.ID == uuid.Nil {
		t.Fatal("Create() should assign an ID")
	}

	got, err := repo.GetByID(sess.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if got.ID != sess.ID || got.Score != 7 || !got.NewRecord || got.Cause != "missed" {
		t.Errorf("GetByID() = %+v, want %+v", got, sess)
	}
	if !got.StartedAt.Equal(sess.StartedAt) || !got.EndedAt.Equal(sess.EndedAt) {
		t.Errorf("times = %v..%v, want %v..%v", got.StartedAt, got.EndedAt, sess.StartedAt, sess.EndedAt)
	}
}

func TestSessionRepository_GetByID_NotFound(t *testing.T) {
	repo := newTestStore(t).Sessions()

	if _, err := repo.GetByID(uuid.New()); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetByID() error = %v, want ErrNotFound", err)
	}
}

func TestSessionRepository_Recent(t *testing.T) {
	repo := newTestStore(t).Sessions()
	base := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

	for i := 0; i < 5; i++ {
		err := repo.Create(&Session{
			Score:     i,
			Cause:     "hazard",
			StartedAt: base.Add(time.Duration(i) * time.Minute),
			EndedAt:   base.Add(time.Duration(i)*time.Minute + 30*time.Second),
		})
		if err != nil {
			t.Fatalf("Create() %d error = %v", i, err)
		}
	}

	n, err := repo.Count()
	if err != nil {
		t.Fatalf("Count() error = %v", err)
	}
	if n != 5 {
		t.Errorf("Count() = %d, want 5", n)
	}

	recent, err := repo.Recent(3)
	if err != nil {
		t.Fatalf("Recent() error = %v", err)
	}
	if len(recent) != 3 {
		t.Fatalf("Recent(3) returned %d sessions", len(recent))
	}
	for i, want := range []int{4, 3, 2} {
		if recent[i].Score != want {
			t.Errorf("recent[%d].Score = %d, want %d (newest first)", i, recent[i].Score, want)
		}
	}
}

package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/ayusman/headshaker/internal/server/api"
	"github.com/ayusman/headshaker/internal/store"
)

func TestAPI_ScoresAndSettingsWorkflow(t *testing.T) {
	// Setup
	tmpDir := t.TempDir()
	s, err := store.New(filepath.Join(tmpDir, "test.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	defer s.Close()

	changed := make(chan api.Settings, 1)
	srv := New(Config{Store: s, OnSettings: func(v api.Settings) { changed <- v }})
	ts := httptest.NewServer(srv)
	defer ts.Close()

	client := ts.Client()

	// 1. A finished game lands in the store
	if _, err := s.Settings().RecordScore(6); err != nil {
		t.Fatalf("RecordScore error = %v", err)
	}
	now := time.Now().UTC().Truncate(time.Second)
	if err := s.Sessions().Create(&store.Session{Score: 6, NewRecord: true, Cause: "hazard", StartedAt: now.Add(-time.Minute), EndedAt: now}); err != nil {
		t.Fatalf("Create session error = %v", err)
	}

	// 2. Read the scores
	resp, err := client.Get(ts.URL + "/api/scores")
	if err != nil {
		t.Fatalf("GET /api/scores error = %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("GET /api/scores status = %d, want %d", resp.StatusCode, http.StatusOK)
	}

	var scores struct {
		HighScore int `json:"high_score"`
		Sessions  []struct {
			ID        string `json:"id"`
			Score     int    `json:"score"`
			NewRecord bool   `json:"new_record"`
		} `json:"sessions"`
	}
	json.NewDecoder(resp.Body).Decode(&scores)
	resp.Body.Close()

	if scores.HighScore != 6 {
		t.Errorf("high_score = %d, want 6", scores.HighScore)
	}
	if len(scores.Sessions) != 1 || !scores.Sessions[0].NewRecord {
		t.Fatalf("sessions = %+v, want one record session", scores.Sessions)
	}

	// 3. Mute the music
	req, _ := http.NewRequest(http.MethodPut, ts.URL+"/api/settings", bytes.NewBufferString(`{"music_muted": true}`))
	resp, err = client.Do(req)
	if err != nil {
		t.Fatalf("PUT /api/settings error = %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("PUT status = %d, want %d", resp.StatusCode, http.StatusOK)
	}

	select {
	case v := <-changed:
		if !v.MusicMuted {
			t.Error("OnSettings should see the muted flag")
		}
	case <-time.After(time.Second):
		t.Fatal("OnSettings was not called")
	}

	// 4. Verify persisted
	muted, err := s.Settings().Muted()
	if err != nil || !muted {
		t.Errorf("Muted() = %v, %v; want true", muted, err)
	}
}

func TestAPI_HealthCheck(t *testing.T) {
	srv := New(Config{})
	ts := httptest.NewServer(srv)
	defer ts.Close()

	resp, err := ts.Client().Get(ts.URL + "/api/health")
	if err != nil {
		t.Fatalf("GET /api/health error = %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}

	var health struct {
		Status string `json:"status"`
		Uptime string `json:"uptime"`
	}
	json.NewDecoder(resp.Body).Decode(&health)

	if health.Status != "ok" {
		t.Errorf("status = %s, want ok", health.Status)
	}
}

func TestServer_RunStopsOnCancel(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("failed to reserve a port: %v", err)
	}
	addr := l.Addr().String()
	l.Close()

	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() {
		errc <- New(Config{}).Run(ctx, addr)
	}()

	deadline := time.Now().Add(2 * time.Second)
	for {
		resp, err := http.Get("http://" + addr + "/api/health")
		if err == nil {
			resp.Body.Close()
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("server never came up: %v", err)
		}
		time.Sleep(20 * time.Millisecond)
	}

	cancel()
	select {
	case err := <-errc:
		if err != nil {
			t.Errorf("Run() error = %v, want nil after cancel", err)
		}
	case <-time.After(shutdownTimeout + time.Second):
		t.Fatal("Run() did not return after cancel")
	}
}

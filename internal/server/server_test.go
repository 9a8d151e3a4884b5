package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ayusman/headshaker/internal/store"
	"github.com/ayusman/headshaker/internal/voice"
)

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	return body
}

func TestServer_Health(t *testing.T) {
	t.Run("without hub", func(t *testing.T) {
		s := New(Config{})

		rec := httptest.NewRecorder()
		s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))

		if rec.Code != http.StatusOK {
			t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
		}
		if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
			t.Errorf("expected Content-Type application/json, got %s", ct)
		}

		body := decodeBody(t, rec)
		if body["status"] != "ok" {
			t.Errorf("status = %v, want ok", body["status"])
		}
		if _, exists := body["uptime"]; !exists {
			t.Error("expected 'uptime' in response")
		}
		if _, exists := body["renderers"]; exists {
			t.Error("'renderers' reported without a hub")
		}
	})

	t.Run("with hub", func(t *testing.T) {
		s := New(Config{Hub: NewCueHub(30)})

		rec := httptest.NewRecorder()
		s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))

		body := decodeBody(t, rec)
		if body["renderers"] != float64(0) {
			t.Errorf("renderers = %v, want 0", body["renderers"])
		}
		if body["renderer_ready"] != false {
			t.Errorf("renderer_ready = %v, want false", body["renderer_ready"])
		}
	})

	t.Run("rejects writes", func(t *testing.T) {
		s := New(Config{})
		for _, method := range []string{http.MethodPost, http.MethodPut, http.MethodDelete} {
			rec := httptest.NewRecorder()
			s.ServeHTTP(rec, httptest.NewRequest(method, "/api/health", nil))
			if rec.Code != http.StatusMethodNotAllowed {
				t.Errorf("%s: expected status %d, got %d", method, http.StatusMethodNotAllowed, rec.Code)
			}
		}
	})
}

func TestServer_OptionalRoutes(t *testing.T) {
	st, err := store.New(filepath.Join(t.TempDir(), "routes.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	defer st.Close()

	hear := func(text string) voice.Command { return voice.Interpret(text) }

	tests := []struct {
		name   string
		config Config
		method string
		path   string
		body   string
		want   int
	}{
		{"scores without store", Config{}, http.MethodGet, "/api/scores", "", http.StatusNotFound},
		{"settings without store", Config{}, http.MethodGet, "/api/settings", "", http.StatusNotFound},
		{"events without hub", Config{}, http.MethodGet, "/api/events", "", http.StatusNotFound},
		{"voice without hear", Config{}, http.MethodPost, "/api/voice", `{"text":"up"}`, http.StatusNotFound},
		{"scores with store", Config{Store: st}, http.MethodGet, "/api/scores", "", http.StatusOK},
		{"settings with store", Config{Store: st}, http.MethodGet, "/api/settings", "", http.StatusOK},
		{"voice with hear", Config{Hear: hear}, http.MethodPost, "/api/voice", `{"text":"up"}`, http.StatusOK},
		{"unknown api path", Config{Store: st}, http.MethodGet, "/api/gestures", "", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New(tt.config)

			rec := httptest.NewRecorder()
			s.ServeHTTP(rec, httptest.NewRequest(tt.method, tt.path, strings.NewReader(tt.body)))

			if rec.Code != tt.want {
				t.Errorf("%s %s: expected status %d, got %d", tt.method, tt.path, tt.want, rec.Code)
			}
		})
	}
}

func TestServer_Renderer(t *testing.T) {
	dir := t.TempDir()
	page := "<html><body><canvas id=\"game\"></canvas></body></html>"
	script := "const socket = new WebSocket('/api/events');"
	if err := os.WriteFile(filepath.Join(dir, "index.html"), []byte(page), 0644); err != nil {
		t.Fatalf("failed to write index.html: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "renderer.js"), []byte(script), 0644); err != nil {
		t.Fatalf("failed to write renderer.js: %v", err)
	}

	s := New(Config{StaticDir: dir})

	tests := []struct {
		path string
		code int
		body string
	}{
		{"/", http.StatusOK, page},
		{"/renderer.js", http.StatusOK, script},
		{"/missing.js", http.StatusNotFound, ""},
	}

	for _, tt := range tests {
		rec := httptest.NewRecorder()
		s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))

		if rec.Code != tt.code {
			t.Errorf("GET %s: expected status %d, got %d", tt.path, tt.code, rec.Code)
		}
		if tt.body != "" && rec.Body.String() != tt.body {
			t.Errorf("GET %s: expected body %q, got %q", tt.path, tt.body, rec.Body.String())
		}
	}

	t.Run("no renderer configured", func(t *testing.T) {
		rec := httptest.NewRecorder()
		New(Config{}).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		if rec.Code != http.StatusNotFound {
			t.Errorf("expected status %d, got %d", http.StatusNotFound, rec.Code)
		}
	})
}

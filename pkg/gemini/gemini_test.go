package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(srv.URL, "test-model", "test-key", 5*time.Second)
}

func TestGenerate_Success(t *testing.T) {
	var gotPath, gotKey string
	var gotBody map[string]any

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.Header.Get("x-goog-api-key")
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"model says hi"}]}}]}`))
	})

	got, err := client.Generate(context.Background(), "analyze this")
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if got != "model says hi" {
		t.Errorf("Generate() = %q, want %q", got, "model says hi")
	}
	if gotPath != "/models/test-model:generateContent" {
		t.Errorf("request path = %q", gotPath)
	}
	if gotKey != "test-key" {
		t.Errorf("x-goog-api-key = %q, want test-key", gotKey)
	}

	gen, ok := gotBody["generationConfig"].(map[string]any)
	if !ok {
		t.Fatal("request body missing generationConfig")
	}
	if gen["temperature"] != 0.3 || gen["topP"] != 0.8 || gen["topK"] != 40.0 || gen["maxOutputTokens"] != 2048.0 {
		t.Errorf("generationConfig = %v, want fixed parameters", gen)
	}
	if _, ok := gotBody["safetySettings"].([]any); !ok {
		t.Error("request body missing safetySettings")
	}
}

func TestGenerate_MissingKey(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer srv.Close()

	for _, key := range []string{"", "YOUR_API_KEY_HERE"} {
		client := New(srv.URL, "m", key, time.Second)
		_, err := client.Generate(context.Background(), "p")
		if !errors.Is(err, ErrNoAPIKey) {
			t.Errorf("Generate() with key %q error = %v, want ErrNoAPIKey", key, err)
		}
	}
	if called {
		t.Error("backend was called despite missing credential")
	}
}

func TestGenerate_NonSuccessStatus(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	})

	_, err := client.Generate(context.Background(), "p")
	var statusErr *StatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("Generate() error = %v, want *StatusError", err)
	}
	if statusErr.Code != http.StatusTooManyRequests {
		t.Errorf("StatusError.Code = %d, want %d", statusErr.Code, http.StatusTooManyRequests)
	}
}

func TestGenerate_MalformedShape(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"candidates":[]}`))
	})

	if _, err := client.Generate(context.Background(), "p"); err == nil {
		t.Error("Generate() error = nil for empty candidates, want error")
	}
}

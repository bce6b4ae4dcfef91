package ionosphere

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/cirada-tools/frion/internal/config"
)

const seriesJSON = `{
  "samples": [
    {"mjd": 60370.41666667, "rm": 1.05},
    {"mjd": 60370.45833333, "rm": 1.12},
    {"mjd": 60370.50000000, "rm": 1.03}
  ]
}`

func httpRequest() Request {
	return Request{
		Start:    time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC),
		End:      time.Date(2024, 3, 1, 13, 0, 0, 0, time.UTC),
		RA:       210.5,
		Dec:      -45.0,
		Timestep: 5 * time.Minute,
	}
}

func TestHTTPSource_Fetch(t *testing.T) {
	var gotQuery map[string][]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(seriesJSON))
	}))
	defer srv.Close()

	src := &httpSource{url: srv.URL, client: srv.Client()}
	s, err := src.Fetch(context.Background(), httpRequest())
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if len(s) != 3 {
		t.Fatalf("samples: got %d, want 3", len(s))
	}
	if s[0].RM != 1.05 {
		t.Errorf("first RM = %v, want 1.05", s[0].RM)
	}

	for _, key := range []string{"start", "end", "ra", "dec", "timestep"} {
		if len(gotQuery[key]) == 0 {
			t.Errorf("query parameter %q missing from request", key)
		}
	}
	if got := gotQuery["start"][0]; got != "2024-03-01T09:00:00Z" {
		t.Errorf("start = %q, want 2024-03-01T09:00:00Z", got)
	}
}

func TestHTTPSource_APIKey(t *testing.T) {
	t.Setenv("FRION_TEST_KEY", "s3cret")

	var gotKey string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("X-Api-Key")
		_, _ = w.Write([]byte(seriesJSON))
	}))
	defer srv.Close()

	cfg := config.IonosphereConfig{
		Type: "http",
		URL:  srv.URL,
		Auth: config.AuthConfig{Mode: "apikey", Header: "X-Api-Key", KeyEnv: "FRION_TEST_KEY"},
	}
	src, err := New(cfg)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if _, err := src.Fetch(context.Background(), httpRequest()); err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if gotKey != "s3cret" {
		t.Errorf("X-Api-Key = %q, want s3cret", gotKey)
	}
}

func TestHTTPSource_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	src := &httpSource{url: srv.URL, client: srv.Client()}
	if _, err := src.Fetch(context.Background(), httpRequest()); err == nil {
		t.Error("Fetch() on 500: expected error")
	}
}

func TestHTTPSource_BadJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("not json"))
	}))
	defer srv.Close()

	src := &httpSource{url: srv.URL, client: srv.Client()}
	if _, err := src.Fetch(context.Background(), httpRequest()); err == nil {
		t.Error("Fetch() on bad JSON: expected error")
	}
}

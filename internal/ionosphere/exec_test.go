package ionosphere

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/cirada-tools/frion/internal/config"
)

func execRequest() Request {
	return Request{
		Start:    time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC),
		End:      time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
		RA:       201.365,
		Dec:      -43.019,
		Timestep: 5 * time.Minute,
	}
}

func TestExecSource_Fetch(t *testing.T) {
	driver := "printf '# rm series\\n" +
		"2024-03-01T10:00:00Z 1.5\\n" +
		"2024-03-01T11:00:00Z 2.5\\n" +
		"2024-03-01T18:00:00Z 9.9\\n'"
	src, err := New(config.IonosphereConfig{
		Type:    "exec",
		Command: "/bin/sh",
		Args:    []string{"-c", driver},
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	series, err := src.Fetch(context.Background(), execRequest())
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if len(series) != 2 {
		t.Fatalf("len(series) = %d, want 2 (18:00 sample is outside the window)", len(series))
	}
	if series[0].RM != 1.5 || series[1].RM != 2.5 {
		t.Errorf("RMs = %v, %v, want 1.5, 2.5", series[0].RM, series[1].RM)
	}
	if !series[0].Time.Equal(time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)) {
		t.Errorf("first sample at %v", series[0].Time)
	}
}

func TestExecSource_PlaceholdersReachDriver(t *testing.T) {
	// The driver echoes the requested start time back as its only sample, so
	// the assertion proves argv expansion reached the command line.
	src := &execSource{
		command: "/bin/sh",
		args:    []string{"-c", "printf '{start} 0.5\\n'"},
	}

	series, err := src.Fetch(context.Background(), execRequest())
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if len(series) != 1 || series[0].RM != 0.5 {
		t.Fatalf("series = %+v", series)
	}
	if !series[0].Time.Equal(execRequest().Start) {
		t.Errorf("sample time = %v, want request start", series[0].Time)
	}
}

func TestExecSource_DriverFails(t *testing.T) {
	src := &execSource{
		command: "/bin/sh",
		args:    []string{"-c", "echo 'ionospheric model unavailable' >&2; exit 3"},
	}

	_, err := src.Fetch(context.Background(), execRequest())
	if err == nil {
		t.Fatal("expected error for nonzero exit")
	}
	if !strings.Contains(err.Error(), "ionospheric model unavailable") {
		t.Errorf("error %q does not carry the driver's stderr", err)
	}
}

func TestExecSource_Errors(t *testing.T) {
	tests := []struct {
		name    string
		command string
		args    []string
	}{
		{"missing command", "/nonexistent/rmextract-driver", nil},
		{"garbage output", "/bin/sh", []string{"-c", "echo not-a-series"}},
		{"empty output", "/bin/sh", []string{"-c", "true"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := &execSource{command: tt.command, args: tt.args}
			if _, err := src.Fetch(context.Background(), execRequest()); err == nil {
				t.Error("expected error")
			}
		})
	}
}

package ionosphere

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/cirada-tools/frion/internal/config"
)

// Request describes the observation a source should cover: the time window,
// the pointing direction and the telescope position.
type Request struct {
	Start time.Time
	End   time.Time

	// RA and Dec in degrees (ICRS).
	RA  float64
	Dec float64

	Site config.SiteConfig

	// Timestep is the requested sampling interval. Sources that read a
	// pre-computed dump ignore it.
	Timestep time.Duration
}

// Source produces the RM time series for an observation. Implementations
// consume RMextract output in one form or another; none of them recompute
// the ionospheric model themselves.
type Source interface {
	Fetch(ctx context.Context, req Request) (Series, error)
}

// New returns the Source selected by the ionosphere configuration.
func New(cfg config.IonosphereConfig) (Source, error) {
	switch cfg.Type {
	case "file":
		return &fileSource{path: cfg.Path}, nil
	case "exec":
		return &execSource{command: cfg.Command, args: cfg.Args}, nil
	case "http":
		client, err := buildHTTPClient(cfg)
		if err != nil {
			return nil, fmt.Errorf("ionosphere: build http client: %w", err)
		}
		return &httpSource{url: cfg.URL, client: client}, nil
	default:
		return nil, fmt.Errorf("ionosphere: unsupported source type %q", cfg.Type)
	}
}

// parseSeries reads the two-column RM time-series format produced by the
// RMextract driver scripts:
//
//	# comment
//	<time> <rm_rad_m2>
//
// where <time> is either an MJD number (days or seconds) or an RFC 3339
// timestamp. Blank lines and '#' comments are skipped. Samples are sorted
// by time; the dump order is not trusted.
func parseSeries(r io.Reader) (Series, error) {
	var out Series
	sc := bufio.NewScanner(r)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		fields := strings.Fields(text)
		if len(fields) != 2 {
			return nil, fmt.Errorf("ionosphere: line %d: want 2 columns, got %d", line, len(fields))
		}
		t, err := parseTime(fields[0])
		if err != nil {
			return nil, fmt.Errorf("ionosphere: line %d: %w", line, err)
		}
		rm, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			return nil, fmt.Errorf("ionosphere: line %d: bad RM %q: %w", line, fields[1], err)
		}
		out = append(out, Sample{Time: t, RM: rm})
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("ionosphere: read series: %w", err)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Time.Before(out[j].Time) })
	return out, nil
}

// parseTime accepts an MJD number or an RFC 3339 timestamp.
func parseTime(s string) (time.Time, error) {
	if v, err := strconv.ParseFloat(s, 64); err == nil {
		return TimeFromMJD(v), nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("bad time %q: %w", s, err)
	}
	return t.UTC(), nil
}

// finishSeries trims a parsed series to the request window and validates it.
// Shared by every source implementation.
func finishSeries(s Series, req Request) (Series, error) {
	s = s.Trim(req.Start, req.End)
	if len(s) == 0 {
		return nil, fmt.Errorf("ionosphere: no samples inside observation window %s – %s",
			req.Start.Format(time.RFC3339), req.End.Format(time.RFC3339))
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

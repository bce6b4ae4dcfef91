package ionosphere

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"strconv"
	"strings"
	"time"
)

// execSource runs an external RMextract driver (typically a short python
// script) and parses the two-column time series it prints on stdout.
type execSource struct {
	command string
	args    []string
}

func (s *execSource) Fetch(ctx context.Context, req Request) (Series, error) {
	args := expandArgs(s.args, req)

	cmd := exec.CommandContext(ctx, s.command, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	slog.Debug("ionosphere: running driver", "command", s.command, "args", args)

	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg != "" {
			return nil, fmt.Errorf("ionosphere: driver %s: %w: %s", s.command, err, msg)
		}
		return nil, fmt.Errorf("ionosphere: driver %s: %w", s.command, err)
	}

	series, err := parseSeries(&stdout)
	if err != nil {
		return nil, fmt.Errorf("ionosphere: driver %s output: %w", s.command, err)
	}
	return finishSeries(series, req)
}

// expandArgs substitutes request values into the configured argv template.
// Recognised placeholders: {start}, {end}, {ra}, {dec}, {lat}, {lon},
// {height}, {timestep_s}.
func expandArgs(args []string, req Request) []string {
	rep := strings.NewReplacer(
		"{start}", req.Start.UTC().Format(time.RFC3339),
		"{end}", req.End.UTC().Format(time.RFC3339),
		"{ra}", strconv.FormatFloat(req.RA, 'f', 6, 64),
		"{dec}", strconv.FormatFloat(req.Dec, 'f', 6, 64),
		"{lat}", strconv.FormatFloat(req.Site.Lat, 'f', 6, 64),
		"{lon}", strconv.FormatFloat(req.Site.Lon, 'f', 6, 64),
		"{height}", strconv.FormatFloat(req.Site.Height, 'f', 1, 64),
		"{timestep_s}", strconv.FormatFloat(req.Timestep.Seconds(), 'f', 0, 64),
	)
	out := make([]string, len(args))
	for i, a := range args {
		out[i] = rep.Replace(a)
	}
	return out
}

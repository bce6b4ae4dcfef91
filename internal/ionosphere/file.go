package ionosphere

import (
	"context"
	"fmt"
	"os"
)

// fileSource reads a pre-computed RM time-series dump from disk. This is the
// common path when RMextract has already been run for the observation and
// its output was saved alongside the visibilities.
type fileSource struct {
	path string
}

func (s *fileSource) Fetch(ctx context.Context, req Request) (Series, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("ionosphere: open series file: %w", err)
	}
	defer f.Close()

	series, err := parseSeries(f)
	if err != nil {
		return nil, fmt.Errorf("ionosphere: %s: %w", s.path, err)
	}
	return finishSeries(series, req)
}

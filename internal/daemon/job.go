package daemon

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/cirada-tools/frion/internal/config"
)

// Job is one observation dropped into the spool directory as a YAML file.
// The observation and channels sections use the same schema as the main
// config file.
type Job struct {
	// Name identifies the job; defaults to the file name without extension.
	Name string `yaml:"name"`

	Observation config.ObservationConfig `yaml:"observation"`
	Channels    config.ChannelsConfig    `yaml:"channels"`

	// Output is the prediction file name written into the output directory.
	// Defaults to "<name>.frion".
	Output string `yaml:"output"`
}

// LoadJob parses and validates the job file at path.
func LoadJob(path string) (*Job, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("daemon: read job: %w", err)
	}

	job := &Job{}
	if err := yaml.Unmarshal(data, job); err != nil {
		return nil, fmt.Errorf("daemon: parse job %s: %w", path, err)
	}

	if job.Name == "" {
		base := filepath.Base(path)
		job.Name = strings.TrimSuffix(base, filepath.Ext(base))
	}
	if job.Output == "" {
		job.Output = job.Name + ".frion"
	}

	if job.Observation.Start.IsZero() {
		return nil, fmt.Errorf("daemon: job %s: observation.start is required", job.Name)
	}
	if job.Observation.Duration <= 0 {
		return nil, fmt.Errorf("daemon: job %s: observation.duration must be positive", job.Name)
	}
	if job.Observation.Dec < -90 || job.Observation.Dec > 90 {
		return nil, fmt.Errorf("daemon: job %s: observation.dec_deg %v out of range", job.Name, job.Observation.Dec)
	}
	if job.Channels.Cube == "" {
		if job.Channels.Count <= 0 {
			return nil, fmt.Errorf("daemon: job %s: channels.count (or channels.cube) is required", job.Name)
		}
		if job.Channels.FreqMinHz <= 0 || job.Channels.FreqMaxHz < job.Channels.FreqMinHz {
			return nil, fmt.Errorf("daemon: job %s: bad channel grid", job.Name)
		}
	}
	return job, nil
}

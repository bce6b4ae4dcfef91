package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Default values applied when fields are absent from the config file.
const (
	DefaultTimestep          = 5 * time.Minute
	DefaultHTTPPort          = 8080
	DefaultBroadcastInterval = 5 * time.Second
	DefaultResultTTL         = time.Hour
)

// Config is the top-level configuration shared by frion-predict and
// frion-watchd. Fields map 1:1 to config.example.yaml. frion-correct is
// flag-driven and does not read a config file.
type Config struct {
	Observation ObservationConfig `yaml:"observation"`
	Channels    ChannelsConfig    `yaml:"channels"`
	Ionosphere  IonosphereConfig  `yaml:"ionosphere"`
	Daemon      DaemonConfig      `yaml:"daemon"`
}

// ObservationConfig identifies one observation: its time span and pointing.
type ObservationConfig struct {
	// Start is the observation start time (RFC 3339, UTC).
	Start time.Time `yaml:"start"`

	// Duration is the length of the observation.
	Duration time.Duration `yaml:"duration"`

	// RA and Dec are the pointing centre in degrees (ICRS).
	RA  float64 `yaml:"ra_deg"`
	Dec float64 `yaml:"dec_deg"`

	// Site describes the telescope location, forwarded to the ionospheric
	// source so it can evaluate the line of sight.
	Site SiteConfig `yaml:"site"`
}

// End returns the observation end time.
func (o ObservationConfig) End() time.Time {
	return o.Start.Add(o.Duration)
}

// SiteConfig is the geodetic position of the telescope.
type SiteConfig struct {
	Name string `yaml:"name"`

	// Lat and Lon in degrees, Height in metres above the ellipsoid.
	Lat    float64 `yaml:"lat_deg"`
	Lon    float64 `yaml:"lon_deg"`
	Height float64 `yaml:"height_m"`
}

// ChannelsConfig describes the frequency channels the prediction is
// evaluated on. Either an explicit uniform grid (freq_min_hz/freq_max_hz/
// count) or a FITS cube whose frequency axis supplies the grid.
type ChannelsConfig struct {
	FreqMinHz float64 `yaml:"freq_min_hz"`
	FreqMaxHz float64 `yaml:"freq_max_hz"`
	Count     int     `yaml:"count"`

	// Cube is an optional path to a FITS cube; when set, the channel centres
	// are read from its frequency axis and the fields above are ignored.
	Cube string `yaml:"cube"`
}

// IonosphereConfig selects and configures the rotation-measure time-series
// source. The heavy time-dependent computation lives outside frion (RMextract
// or a service wrapping it); frion only consumes its output.
type IonosphereConfig struct {
	// Type is the source kind: file | exec | http.
	Type string `yaml:"type"`

	// Path is the RM time-series dump to read; used when Type == "file".
	Path string `yaml:"path"`

	// Command and Args describe the external RMextract driver to run; used
	// when Type == "exec". Args may contain the placeholders {start}, {end},
	// {ra}, {dec}, {lat}, {lon}, {height} and {timestep_s}, replaced with the
	// request values. The driver must print the two-column time-series format
	// on stdout.
	Command string   `yaml:"command"`
	Args    []string `yaml:"args"`

	// URL is the prediction-service endpoint; used when Type == "http".
	URL string `yaml:"url"`

	// Auth configures how frion authenticates to the prediction service.
	Auth AuthConfig `yaml:"auth"`

	// TLS holds optional TLS dial options for the prediction service.
	TLS TLSConfig `yaml:"tls"`

	// Timestep is the sampling interval requested from the source.
	Timestep time.Duration `yaml:"timestep"`
}

// AuthConfig specifies the authentication mode for the HTTP source.
type AuthConfig struct {
	// Mode is one of: mtls | apikey | bearer | basic | none.
	Mode string `yaml:"mode"`

	// mTLS fields; used when Mode == "mtls".
	CertFile string `yaml:"cert_file"`
	KeyFile  string `yaml:"key_file"`
	CAFile   string `yaml:"ca_file"`

	// API key fields; used when Mode == "apikey".
	// Header is the HTTP header name to send the key in.
	Header string `yaml:"header"`
	// KeyEnv is the name of the environment variable that holds the key value.
	KeyEnv string `yaml:"key_env"`

	// Bearer token fields; used when Mode == "bearer".
	TokenEnv string `yaml:"token_env"`

	// Basic auth fields; used when Mode == "basic".
	// Username is the literal username (safe to store in config).
	Username string `yaml:"username"`
	// PasswordEnv is the name of the environment variable holding the password.
	PasswordEnv string `yaml:"password_env"`
}

// Key returns the API key value resolved from the environment.
// Returns empty string if KeyEnv is unset or the variable is not found.
func (a AuthConfig) Key() string {
	if a.KeyEnv == "" {
		return ""
	}
	return os.Getenv(a.KeyEnv)
}

// Token returns the bearer token value resolved from the environment.
func (a AuthConfig) Token() string {
	if a.TokenEnv == "" {
		return ""
	}
	return os.Getenv(a.TokenEnv)
}

// Password returns the basic-auth password resolved from the environment.
func (a AuthConfig) Password() string {
	if a.PasswordEnv == "" {
		return ""
	}
	return os.Getenv(a.PasswordEnv)
}

// TLSConfig holds TLS dial options for the HTTP source.
type TLSConfig struct {
	// InsecureSkipVerify disables TLS certificate verification.
	// Only use this for internal CAs in development environments.
	InsecureSkipVerify bool `yaml:"insecure_skip_verify"`
}

// DaemonConfig holds frion-watchd settings.
type DaemonConfig struct {
	// SpoolDir is the directory watched for incoming observation job files.
	SpoolDir string `yaml:"spool_dir"`

	// OutDir is where prediction files are written. Defaults to SpoolDir.
	OutDir string `yaml:"out_dir"`

	// HTTPPort serves /api/v1, /metrics and /ws/jobs.
	HTTPPort int `yaml:"http_port"`

	// BroadcastInterval controls how often the WebSocket hub re-sends the
	// current job list to connected clients.
	BroadcastInterval time.Duration `yaml:"broadcast_interval"`

	// ResultTTL is how long finished job results are kept in memory.
	ResultTTL time.Duration `yaml:"result_ttl"`
}

// Load reads and parses the YAML config file at path.
// Missing optional fields are filled with sensible defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read file: %w", err)
	}

	cfg := defaults()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse yaml: %w", err)
	}

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	return cfg, nil
}

// defaults returns a Config pre-populated with default values.
func defaults() *Config {
	return &Config{
		Ionosphere: IonosphereConfig{
			Timestep: DefaultTimestep,
		},
		Daemon: DaemonConfig{
			HTTPPort:          DefaultHTTPPort,
			BroadcastInterval: DefaultBroadcastInterval,
			ResultTTL:         DefaultResultTTL,
		},
	}
}

// validate checks enums and structural constraints that hold regardless of
// which binary is reading the file. Binary-specific requirements are checked
// by CheckPredict and CheckDaemon.
func validate(cfg *Config) error {
	switch cfg.Ionosphere.Type {
	case "file", "exec", "http", "":
	default:
		return fmt.Errorf("ionosphere.type: unknown type %q", cfg.Ionosphere.Type)
	}
	switch cfg.Ionosphere.Auth.Mode {
	case "mtls", "apikey", "bearer", "basic", "none", "":
	default:
		return fmt.Errorf("ionosphere.auth.mode: unknown mode %q", cfg.Ionosphere.Auth.Mode)
	}
	if cfg.Ionosphere.Timestep <= 0 {
		return fmt.Errorf("ionosphere.timestep must be positive")
	}
	if err := cfg.Ionosphere.checkSource(); err != nil {
		return err
	}
	if !cfg.Observation.Start.IsZero() {
		if cfg.Observation.Duration <= 0 {
			return fmt.Errorf("observation.duration must be positive")
		}
		if cfg.Observation.RA < 0 || cfg.Observation.RA >= 360 {
			return fmt.Errorf("observation.ra_deg %v out of range [0, 360)", cfg.Observation.RA)
		}
		if cfg.Observation.Dec < -90 || cfg.Observation.Dec > 90 {
			return fmt.Errorf("observation.dec_deg %v out of range [-90, 90]", cfg.Observation.Dec)
		}
	}
	if cfg.Channels.Cube == "" && cfg.Channels.Count > 0 {
		if cfg.Channels.FreqMinHz <= 0 {
			return fmt.Errorf("channels.freq_min_hz must be positive")
		}
		if cfg.Channels.FreqMaxHz < cfg.Channels.FreqMinHz {
			return fmt.Errorf("channels.freq_max_hz must be >= channels.freq_min_hz")
		}
	}
	if cfg.Daemon.HTTPPort <= 0 || cfg.Daemon.HTTPPort > 65535 {
		return fmt.Errorf("daemon.http_port %d out of range", cfg.Daemon.HTTPPort)
	}
	if cfg.Daemon.BroadcastInterval <= 0 {
		return fmt.Errorf("daemon.broadcast_interval must be positive")
	}
	if cfg.Daemon.ResultTTL <= 0 {
		return fmt.Errorf("daemon.result_ttl must be positive")
	}
	return nil
}

// checkSource verifies the per-type required fields of the ionosphere source.
// An empty Type is allowed at load time; the binaries require it via
// CheckPredict / CheckDaemon.
func (c IonosphereConfig) checkSource() error {
	switch c.Type {
	case "file":
		if c.Path == "" {
			return fmt.Errorf("ionosphere.path is required for the file source")
		}
	case "exec":
		if c.Command == "" {
			return fmt.Errorf("ionosphere.command is required for the exec source")
		}
	case "http":
		if c.URL == "" {
			return fmt.Errorf("ionosphere.url is required for the http source")
		}
	}
	return nil
}

// CheckPredict verifies the fields frion-predict needs: a complete
// observation, a channel grid (or cube), and an ionosphere source.
func (cfg *Config) CheckPredict() error {
	if cfg.Ionosphere.Type == "" {
		return fmt.Errorf("config: ionosphere.type is required")
	}
	if cfg.Observation.Start.IsZero() {
		return fmt.Errorf("config: observation.start is required")
	}
	if cfg.Channels.Cube == "" && cfg.Channels.Count <= 0 {
		return fmt.Errorf("config: channels.count (or channels.cube) is required")
	}
	return nil
}

// CheckDaemon verifies the fields frion-watchd needs: an ionosphere source
// and a spool directory. Observations arrive as job files, so the
// observation section may be empty.
func (cfg *Config) CheckDaemon() error {
	if cfg.Ionosphere.Type == "" {
		return fmt.Errorf("config: ionosphere.type is required")
	}
	if cfg.Daemon.SpoolDir == "" {
		return fmt.Errorf("config: daemon.spool_dir is required")
	}
	return nil
}

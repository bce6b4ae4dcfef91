// Package config loads the frion configuration file (config.yaml).
//
// Top-level types:
//   - Config{Observation, Channels, Ionosphere, Daemon} — full config tree
//     parsed from YAML
//   - ObservationConfig — start, duration, ra_deg/dec_deg pointing, telescope
//     site (lat/lon/height)
//   - ChannelsConfig — uniform frequency grid (freq_min_hz, freq_max_hz,
//     count) or a FITS cube path supplying the frequency axis
//   - IonosphereConfig — RM time-series source: type (file|exec|http), path,
//     command/args with request placeholders, url, auth, tls, timestep
//   - AuthConfig — mode (mtls|apikey|bearer|basic|none); Key(), Token() and
//     Password() resolve secrets from environment variables
//   - DaemonConfig — spool_dir, out_dir, http_port, broadcast_interval,
//     result_ttl for frion-watchd
//
// Load(path) reads the YAML file, applies defaults (5m timestep, port 8080,
// 5s broadcast, 1h result TTL) and validates enums and ranges. CheckPredict
// and CheckDaemon enforce the additional fields each binary requires.
//
// Watch(ctx, path, onChange) uses fsnotify to detect file changes and calls
// onChange with each newly parsed Config. It watches the parent directory
// rather than the file, so atomic saves that replace the file are still seen.
package config

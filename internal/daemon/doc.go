// Package daemon implements frion-watchd: a spool-directory service that
// turns observation job files into prediction files.
//
// Watcher monitors the spool directory with fsnotify (debounced, atomic-save
// aware), runs the acquire→integrate→write pipeline for each YAML job and
// records a Result per job. Store keeps results in memory with TTL eviction.
// Hub broadcasts job events to WebSocket clients; Handler serves the
// /api/v1/jobs JSON API; Metrics exposes counters in the Prometheus text
// format on /metrics.
package daemon

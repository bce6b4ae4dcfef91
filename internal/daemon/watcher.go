package daemon

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/cirada-tools/frion/internal/cube"
	"github.com/cirada-tools/frion/internal/ionosphere"
	"github.com/cirada-tools/frion/internal/predict"
)

// debounceDelay is how long the watcher waits after the last write event
// before processing a job file, so half-written files are not picked up.
const debounceDelay = 250 * time.Millisecond

// Watcher monitors the spool directory for observation job files and runs
// the prediction pipeline for each.
type Watcher struct {
	spool  string
	outDir string

	store   *Store
	hub     *Hub
	metrics *Metrics

	mu       sync.Mutex
	source   ionosphere.Source
	timestep time.Duration
	timers   map[string]*time.Timer
}

// NewWatcher wires a Watcher to its collaborators. hub may be nil when no
// WebSocket clients are served.
func NewWatcher(spool, outDir string, src ionosphere.Source, timestep time.Duration,
	st *Store, hub *Hub, m *Metrics) *Watcher {
	if outDir == "" {
		outDir = spool
	}
	return &Watcher{
		spool:    spool,
		outDir:   outDir,
		source:   src,
		timestep: timestep,
		store:    st,
		hub:      hub,
		metrics:  m,
		timers:   make(map[string]*time.Timer),
	}
}

// UpdateSource swaps the RM source and timestep used for subsequent jobs.
// Called on config hot-reload; jobs already running keep the source they
// started with.
func (w *Watcher) UpdateSource(src ionosphere.Source, timestep time.Duration) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.source = src
	w.timestep = timestep
}

// Run processes job files already present in the spool directory, then
// watches for new ones until ctx is cancelled. Debounce timers still pending
// when Run returns are stopped so no job starts against a dead context.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.stopTimers()

	entries, err := os.ReadDir(w.spool)
	if err != nil {
		return err
	}
	for _, e := range entries {
		if !e.IsDir() && isJobFile(e.Name()) {
			w.process(ctx, filepath.Join(w.spool, e.Name()))
		}
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	if err := watcher.Add(w.spool); err != nil {
		return err
	}

	slog.Info("daemon: watching spool directory", "dir", w.spool)

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			// Write or create only; atomic saves arrive as rename then create.
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if !isJobFile(event.Name) {
				continue
			}
			w.schedule(ctx, event.Name)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			slog.Error("daemon: watcher error", "err", err)
		}
	}
}

// schedule (re)arms the per-file debounce timer so a burst of write events
// results in a single processing run.
func (w *Watcher) schedule(ctx context.Context, path string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if t, ok := w.timers[path]; ok {
		t.Reset(debounceDelay)
		return
	}
	w.timers[path] = time.AfterFunc(debounceDelay, func() {
		w.mu.Lock()
		delete(w.timers, path)
		w.mu.Unlock()
		// The watcher may have shut down while the timer was pending.
		if ctx.Err() != nil {
			return
		}
		w.process(ctx, path)
	})
}

// stopTimers cancels all pending debounce timers.
func (w *Watcher) stopTimers() {
	w.mu.Lock()
	defer w.mu.Unlock()
	for path, t := range w.timers {
		t.Stop()
		delete(w.timers, path)
	}
}

// process runs one job end to end and records the outcome.
func (w *Watcher) process(ctx context.Context, path string) {
	started := time.Now()
	res := w.runJob(ctx, path)
	res.CompletedAt = time.Now().UTC()
	res.ElapsedS = time.Since(started).Seconds()

	w.store.Put(res)
	if w.metrics != nil {
		w.metrics.Observe(res.Status == StatusOK, time.Since(started))
	}
	if w.hub != nil {
		w.hub.Notify(res)
	}

	if res.Status == StatusOK {
		slog.Info("daemon: job done",
			"job", res.Name, "output", res.Output,
			"channels", res.Channels, "mean_rm", res.MeanRM,
			"elapsed_s", res.ElapsedS)
	} else {
		slog.Warn("daemon: job failed", "job", res.Name, "err", res.Error)
	}
}

// Job result statuses.
const (
	StatusOK     = "ok"
	StatusFailed = "failed"
)

// runJob loads the job file, fetches the RM series, integrates it and writes
// the prediction file. Every failure is reported through the Result so the
// daemon keeps running.
func (w *Watcher) runJob(ctx context.Context, path string) Result {
	name := filepath.Base(path)
	fail := func(err error) Result {
		return Result{Name: name, Status: StatusFailed, Error: err.Error()}
	}

	job, err := LoadJob(path)
	if err != nil {
		return fail(err)
	}
	name = job.Name

	freqs, err := jobChannels(job)
	if err != nil {
		return fail(err)
	}

	w.mu.Lock()
	src, timestep := w.source, w.timestep
	w.mu.Unlock()

	series, err := src.Fetch(ctx, ionosphere.Request{
		Start:    job.Observation.Start,
		End:      job.Observation.End(),
		RA:       job.Observation.RA,
		Dec:      job.Observation.Dec,
		Site:     job.Observation.Site,
		Timestep: timestep,
	})
	if err != nil {
		return fail(err)
	}

	pred, err := predict.Integrate(series, freqs)
	if err != nil {
		return fail(err)
	}
	pred.RA, pred.Dec = job.Observation.RA, job.Observation.Dec

	meanRM, err := predict.MeanRM(series)
	if err != nil {
		return fail(err)
	}

	outPath := filepath.Join(w.outDir, job.Output)
	if err := pred.WriteFile(outPath, true); err != nil {
		return fail(err)
	}

	return Result{
		Name:     job.Name,
		Status:   StatusOK,
		Output:   outPath,
		MeanRM:   meanRM,
		Channels: len(freqs),
	}
}

// jobChannels resolves the channel grid of a job: a uniform grid from the
// job file or the frequency axis of a reference cube.
func jobChannels(job *Job) ([]float64, error) {
	if job.Channels.Cube != "" {
		c, err := cube.Read(job.Channels.Cube)
		if err != nil {
			return nil, err
		}
		return c.FreqCenters()
	}
	return predict.Channels(job.Channels.FreqMinHz, job.Channels.FreqMaxHz, job.Channels.Count)
}

// isJobFile reports whether name looks like a spool job file.
func isJobFile(name string) bool {
	switch filepath.Ext(name) {
	case ".yaml", ".yml":
		return true
	}
	return false
}

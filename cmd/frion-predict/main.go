package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/cirada-tools/frion/internal/config"
	"github.com/cirada-tools/frion/internal/cube"
	"github.com/cirada-tools/frion/internal/ionosphere"
	"github.com/cirada-tools/frion/internal/predict"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	outPath := flag.String("out", "prediction.frion", "output prediction file")
	cubePath := flag.String("cube", "", "read the channel grid from this FITS cube instead of the config")
	overwrite := flag.Bool("overwrite", false, "overwrite the output file if it exists")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	slog.Info("frion-predict starting", "config", *configPath)

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "err", err)
		os.Exit(1)
	}
	if *cubePath != "" {
		cfg.Channels.Cube = *cubePath
	}
	if err := cfg.CheckPredict(); err != nil {
		slog.Error("incomplete config", "err", err)
		os.Exit(1)
	}

	slog.Info("config loaded",
		"source", cfg.Ionosphere.Type,
		"start", cfg.Observation.Start,
		"duration", cfg.Observation.Duration,
		"ra_deg", cfg.Observation.RA,
		"dec_deg", cfg.Observation.Dec,
	)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	source, err := ionosphere.New(cfg.Ionosphere)
	if err != nil {
		slog.Error("could not build ionosphere source", "err", err)
		os.Exit(1)
	}

	freqs, err := channels(cfg.Channels)
	if err != nil {
		slog.Error("could not resolve channel grid", "err", err)
		os.Exit(1)
	}

	series, err := source.Fetch(ctx, ionosphere.Request{
		Start:    cfg.Observation.Start,
		End:      cfg.Observation.End(),
		RA:       cfg.Observation.RA,
		Dec:      cfg.Observation.Dec,
		Site:     cfg.Observation.Site,
		Timestep: cfg.Ionosphere.Timestep,
	})
	if err != nil {
		slog.Error("RM time series fetch failed", "err", err)
		os.Exit(1)
	}
	slog.Info("RM time series acquired", "samples", len(series), "span", series.Duration())

	pred, err := predict.Integrate(series, freqs)
	if err != nil {
		slog.Error("integration failed", "err", err)
		os.Exit(1)
	}
	pred.RA, pred.Dec = cfg.Observation.RA, cfg.Observation.Dec

	meanRM, err := predict.MeanRM(series)
	if err != nil {
		slog.Error("mean RM failed", "err", err)
		os.Exit(1)
	}

	if err := pred.WriteFile(*outPath, *overwrite); err != nil {
		slog.Error("could not write prediction", "err", err)
		os.Exit(1)
	}

	depol := pred.Depolarization()
	minDepol := 1.0
	for _, d := range depol {
		if d < minDepol {
			minDepol = d
		}
	}
	slog.Info("prediction written",
		"path", *outPath,
		"channels", len(freqs),
		"mean_rm_rad_m2", meanRM,
		"worst_depolarization", minDepol,
	)
}

// channels resolves the channel grid: from a FITS cube's frequency axis
// when one is configured, otherwise the uniform grid from the config.
func channels(cfg config.ChannelsConfig) ([]float64, error) {
	if cfg.Cube != "" {
		c, err := cube.Read(cfg.Cube)
		if err != nil {
			return nil, err
		}
		return c.FreqCenters()
	}
	return predict.Channels(cfg.FreqMinHz, cfg.FreqMaxHz, cfg.Count)
}

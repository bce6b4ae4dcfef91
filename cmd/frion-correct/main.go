package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/cirada-tools/frion/internal/correct"
)

func main() {
	qIn := flag.String("q", "", "FITS cube containing (uncorrected) Stokes Q data")
	uIn := flag.String("u", "", "FITS cube containing (uncorrected) Stokes U data")
	prediction := flag.String("prediction", "", "prediction file from frion-predict")
	qOut := flag.String("out-q", "", "output file for the corrected Stokes Q cube")
	uOut := flag.String("out-u", "", "output file for the corrected Stokes U cube")
	overwrite := flag.Bool("overwrite", false, "overwrite existing output files")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	for name, v := range map[string]*string{
		"-q": qIn, "-u": uIn, "-prediction": prediction, "-out-q": qOut, "-out-u": uOut,
	} {
		if *v == "" {
			slog.Error("missing required flag", "flag", name)
			os.Exit(2)
		}
	}
	for _, path := range []string{*qIn, *uIn, *prediction} {
		if _, err := os.Stat(path); err != nil {
			slog.Error("input not found", "path", path, "err", err)
			os.Exit(1)
		}
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	err := correct.ApplyToFiles(ctx, correct.Options{
		QIn:        *qIn,
		UIn:        *uIn,
		Prediction: *prediction,
		QOut:       *qOut,
		UOut:       *uOut,
		Overwrite:  *overwrite,
	})
	if err != nil {
		slog.Error("correction failed", "err", err)
		os.Exit(1)
	}
	slog.Info("corrected cubes written", "q", *qOut, "u", *uOut)
}

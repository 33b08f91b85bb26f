package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/virajparmaj/turbine-nox-wise/internal/artifact"
	"github.com/virajparmaj/turbine-nox-wise/internal/batch"
	"github.com/virajparmaj/turbine-nox-wise/internal/model"
	"github.com/virajparmaj/turbine-nox-wise/internal/nox"
)

func main() {
	// Parse command line arguments
	var (
		inputPath    = flag.String("input", "", "Path to input CSV of sensor readings")
		outputPath   = flag.String("output", "", "Path to output CSV with NOX_pred column")
		bandName     = flag.String("band", "full", "Operating band: full, 130_136, 160p")
		artifactsDir = flag.String("artifacts", "artifacts", "Directory holding model and metadata artifacts")
		logLevel     = flag.String("log-level", "info", "Log level: debug, info, warn, error")
	)
	flag.Parse()

	// Setup logging
	level, err := zerolog.ParseLevel(*logLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	if *inputPath == "" || *outputPath == "" {
		flag.Usage()
		log.Fatal().Msg("both -input and -output are required")
	}

	band, err := nox.ParseBand(*bandName)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid band")
	}

	// Print configuration
	fmt.Println("=== Batch Scoring Configuration ===")
	fmt.Printf("Input: %s\n", *inputPath)
	fmt.Printf("Output: %s\n", *outputPath)
	fmt.Printf("Band: %s\n", band)
	fmt.Printf("Artifacts: %s\n", *artifactsDir)
	fmt.Println("===================================")

	ctx := context.Background()
	store := artifact.NewDir(*artifactsDir)

	features, err := nox.LoadFeatureRegistry(ctx, store)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load feature metadata")
	}
	models, err := nox.LoadModelRegistry(ctx, store, func(raw []byte) (nox.Model, error) {
		return model.FromBytes(raw)
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load models")
	}

	router := nox.NewRouter(features, models)
	if err := router.Verify(); err != nil {
		log.Fatal().Err(err).Msg("band routing verification failed")
	}
	svc := nox.NewService(router, nil)

	runner := batch.NewRunner(svc, band)
	summary, err := runner.RunFiles(ctx, *inputPath, *outputPath)
	if err != nil {
		log.Fatal().Err(err).Msg("batch scoring failed")
	}

	// Print summary to console
	fmt.Println("=== Batch Scoring Summary ===")
	fmt.Printf("Rows Scored: %d\n", summary.Rows)
	fmt.Printf("Rows Failed: %d\n", summary.Failed)
	if summary.Rows > 0 {
		fmt.Printf("NOx Min: %.4f mg/m3\n", summary.Min)
		fmt.Printf("NOx Max: %.4f mg/m3\n", summary.Max)
		fmt.Printf("NOx Mean: %.4f mg/m3\n", summary.Mean)
	}
	fmt.Printf("Elapsed: %s\n", summary.Elapsed)
	fmt.Println("=============================")

	log.Info().
		Str("output", *outputPath).
		Int("rows", summary.Rows).
		Msg("batch scoring completed successfully")
}

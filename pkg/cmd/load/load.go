package load

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/f1stint/f1-tiredata-manager-go/log"
	"github.com/f1stint/f1-tiredata-manager-go/pkg/config"
	"github.com/f1stint/f1-tiredata-manager-go/pkg/db/postgres"
	"github.com/f1stint/f1-tiredata-manager-go/pkg/interchange"
	"github.com/f1stint/f1-tiredata-manager-go/pkg/loader"
	"github.com/f1stint/f1-tiredata-manager-go/pkg/observability"
	"github.com/f1stint/f1-tiredata-manager-go/pkg/utils"
)

var appConfig config.Config // holds processed config values

func NewLoadCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "load",
		Short: "loads interchange files into the database",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLoad()
		},
	}

	cmd.Flags().StringVar(&config.DataDir,
		"data-dir",
		".",
		"directory containing the interchange files")
	cmd.Flags().IntVar(&config.BatchSize,
		"batch-size",
		loader.DefaultBatchSize,
		"rows per persistence batch")
	cmd.Flags().BoolVar(&appConfig.SkipMetricsPass,
		"skip-metrics",
		false,
		"if true, the stint metrics post-pass is skipped")

	return cmd
}

//nolint:funlen // sequential load run
func runLoad() error {
	observability.StartMetricsServer(config.MetricsPort)

	timeout, err := time.ParseDuration(config.WaitForServices)
	if err != nil {
		log.Warn("Invalid duration value. Setting default 60s", log.ErrorField(err))
		timeout = 60 * time.Second
	}
	postgresAddr := utils.ExtractFromDBURL(config.DB)
	if err = utils.WaitForTCP(postgresAddr, timeout); err != nil {
		log.Error("database not ready", log.ErrorField(err))
		return err
	}

	sqlLogger := log.Default().Named("sql")
	pool, err := postgres.InitWithURL(config.DB, postgres.WithTracer(sqlLogger))
	if err != nil {
		log.Error("could not connect to database", log.ErrorField(err))
		return err
	}
	defer pool.Close()

	lapFiles, err := filepath.Glob(
		filepath.Join(config.DataDir, interchange.LapFilePattern))
	if err != nil {
		return err
	}
	pitFiles, err := filepath.Glob(
		filepath.Join(config.DataDir, interchange.PitFilePattern))
	if err != nil {
		return err
	}
	if len(lapFiles) == 0 && len(pitFiles) == 0 {
		log.Warn("no interchange files found", log.String("dir", config.DataDir))
		return nil
	}

	ctx, stop := signal.NotifyContext(
		context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	b := loader.NewBatchLoader(pool, loader.WithBatchSize(config.BatchSize))
	var total loader.Counts
	// lap files first, pit stops attach to races loaded from lap data
	for _, file := range lapFiles {
		counts, err := b.LoadLapFile(ctx, file)
		if err != nil {
			log.Error("lap file load failed",
				log.String("file", file), log.ErrorField(err))
		}
		total.Attempted += counts.Attempted
		total.Persisted += counts.Persisted
		total.Skipped += counts.Skipped
		total.Weather += counts.Weather
	}
	var pitTotal loader.Counts
	for _, file := range pitFiles {
		counts, err := b.LoadPitFile(ctx, file)
		if err != nil {
			log.Error("pit file load failed",
				log.String("file", file), log.ErrorField(err))
		}
		pitTotal.Attempted += counts.Attempted
		pitTotal.Persisted += counts.Persisted
		pitTotal.Skipped += counts.Skipped
	}

	if !appConfig.SkipMetricsPass {
		if _, err := b.RecomputeStintMetrics(ctx); err != nil {
			log.Error("stint metrics pass failed", log.ErrorField(err))
		}
	}

	log.Info("load summary",
		log.Int("lapsAttempted", total.Attempted),
		log.Int("lapsPersisted", total.Persisted),
		log.Int("lapsSkipped", total.Skipped),
		log.Int("weatherPersisted", total.Weather),
		log.Int("pitStopsAttempted", pitTotal.Attempted),
		log.Int("pitStopsPersisted", pitTotal.Persisted),
		log.Int("pitStopsSkipped", pitTotal.Skipped))
	return nil
}

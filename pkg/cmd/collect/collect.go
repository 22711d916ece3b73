package collect

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/f1stint/f1-tiredata-manager-go/log"
	"github.com/f1stint/f1-tiredata-manager-go/pkg/collect"
	"github.com/f1stint/f1-tiredata-manager-go/pkg/config"
	"github.com/f1stint/f1-tiredata-manager-go/pkg/observability"
	"github.com/f1stint/f1-tiredata-manager-go/pkg/provider/jolpica"
	"github.com/f1stint/f1-tiredata-manager-go/pkg/provider/sessions"
	"github.com/f1stint/f1-tiredata-manager-go/pkg/utils"
)

func NewCollectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "collect",
		Short: "collects season data and writes interchange files",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCollect()
		},
	}

	cmd.Flags().IntSliceVar(&config.Years,
		"years",
		[]int{time.Now().Year()},
		"seasons to collect")
	cmd.Flags().IntVar(&config.MaxRaces,
		"max-races",
		0,
		"cap on races per season (0 = all)")
	cmd.Flags().StringVar(&config.OutputDir,
		"output-dir",
		".",
		"directory for the collected files")
	cmd.Flags().StringVar(&config.CacheDir,
		"cache-dir",
		"",
		"directory for cached session provider responses (empty = no cache)")
	cmd.Flags().StringVar(&config.JolpicaURL,
		"jolpica-url",
		jolpica.DefaultBaseURL,
		"base URL of the season results provider")
	cmd.Flags().StringVar(&config.SessionURL,
		"session-url",
		"",
		"base URL of the session lap provider")
	cmd.Flags().StringVar(&config.RequestTimeout,
		"request-timeout",
		"10s",
		"per-request socket timeout")
	cmd.Flags().StringVar(&config.RequestDelay,
		"request-delay",
		"500ms",
		"minimum delay between provider calls")
	cmd.Flags().StringVar(&config.RacePause,
		"race-pause",
		"2s",
		"pause between whole races")

	return cmd
}

func parseDuration(arg string, defaultVal time.Duration) time.Duration {
	if d, err := time.ParseDuration(arg); err == nil {
		return d
	}
	log.Warn("Invalid duration value, using default",
		log.String("value", arg), log.Duration("default", defaultVal))
	return defaultVal
}

func runCollect() error {
	observability.StartMetricsServer(config.MetricsPort)

	seasons := jolpica.NewClient(
		jolpica.WithBaseURL(config.JolpicaURL),
		jolpica.WithTimeout(parseDuration(config.RequestTimeout, 10*time.Second)),
		jolpica.WithDelay(parseDuration(config.RequestDelay, 500*time.Millisecond)),
	)
	laps, err := sessions.NewClient(
		sessions.WithBaseURL(config.SessionURL),
		sessions.WithCacheDir(config.CacheDir),
		sessions.WithTimeout(parseDuration(config.RequestTimeout, 10*time.Second)),
		sessions.WithDelay(parseDuration(config.RequestDelay, 500*time.Millisecond)),
	)
	if err != nil {
		return err
	}

	// wait for the session lap provider, mirrors the database gate of the
	// load and migrate runs
	timeout := parseDuration(config.WaitForServices, 15*time.Second)
	if err := utils.WaitForHTTPResponse(config.SessionURL, timeout); err != nil {
		log.Error("session lap provider not ready", log.ErrorField(err))
		return err
	}

	c := collect.NewCollector(seasons, laps,
		collect.WithOutputDir(config.OutputDir),
		collect.WithMaxRaces(config.MaxRaces),
		collect.WithRacePause(parseDuration(config.RacePause, 2*time.Second)),
	)

	ctx, stop := signal.NotifyContext(
		context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	for _, year := range config.Years {
		stats, err := c.CollectSeason(ctx, year)
		if err != nil {
			if ctx.Err() != nil {
				log.Warn("collection interrupted", log.Int("year", year))
				return nil
			}
			// the season degrades to empty, the run continues
			log.Error("season collection failed",
				log.Int("year", year), log.ErrorField(err))
			continue
		}
		log.Info("season summary",
			log.Int("year", stats.Year),
			log.Int("races", stats.Races),
			log.Int("laps", stats.Laps),
			log.Int("drivers", stats.Drivers),
			log.Int("pitStops", stats.PitStops),
			log.Int("providerFailures", stats.ProviderFailures),
			log.String("lapFile", stats.LapFile),
			log.String("pitFile", stats.PitFile))
	}
	return nil
}

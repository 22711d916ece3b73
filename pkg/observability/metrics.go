// Package observability exposes prometheus counters for the collection
// and load runs plus an optional metrics listener.
package observability

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/f1stint/f1-tiredata-manager-go/log"
)

//nolint:gochecknoglobals // prometheus collectors
var (
	LapsPersisted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "f1td_laps_persisted_total",
		Help: "Number of lap fact rows written to the store.",
	})
	LapsSkipped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "f1td_laps_skipped_total",
		Help: "Number of lap rows skipped during validation or resolution.",
	})
	WeatherPersisted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "f1td_weather_persisted_total",
		Help: "Number of weather fact rows written to the store.",
	})
	PitStopsPersisted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "f1td_pit_stops_persisted_total",
		Help: "Number of pit stop fact rows written to the store.",
	})
	ProviderFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "f1td_provider_failures_total",
		Help: "Number of provider calls degraded to an empty result.",
	})
)

// StartMetricsServer serves /metrics on the given port in the background.
// Port 0 disables the listener.
func StartMetricsServer(port int) {
	if port == 0 {
		return
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{
		Addr:              fmt.Sprintf("localhost:%d", port),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	log.Info("serving metrics", log.Int("port", port))
	go func() {
		if err := srv.ListenAndServe(); err != nil &&
			!errors.Is(err, http.ErrServerClosed) {
			log.Error("metrics server failed", log.ErrorField(err))
		}
	}()
}

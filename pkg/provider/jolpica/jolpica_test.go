package jolpica

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/f1stint/f1-tiredata-manager-go/pkg/provider"
)

const scheduleBody = `{
  "MRData": {
    "RaceTable": {
      "Races": [
        {
          "round": "1",
          "raceName": "Bahrain Grand Prix",
          "date": "2023-03-05",
          "Circuit": {
            "circuitId": "bahrain",
            "circuitName": "Bahrain International Circuit",
            "Location": {"country": "Bahrain"}
          }
        },
        {
          "round": "not-a-number",
          "raceName": "Broken Grand Prix",
          "date": "2023-03-19",
          "Circuit": {
            "circuitId": "x",
            "circuitName": "X",
            "Location": {"country": "Y"}
          }
        }
      ]
    }
  }
}`

const pitStopsBody = `{
  "MRData": {
    "RaceTable": {
      "Races": [
        {
          "PitStops": [
            {"driverId": "max_verstappen", "lap": "11", "stop": "1",
             "duration": "21.662", "time": "18:21:15"}
          ]
        }
      ]
    }
  }
}`

const resultsBody = `{
  "MRData": {
    "RaceTable": {
      "Races": [
        {
          "Results": [
            {"position": "1", "grid": "1", "laps": "57", "status": "Finished",
             "points": "25",
             "Driver": {"driverId": "max_verstappen", "code": "VER",
                        "permanentNumber": "1"},
             "Constructor": {"constructorId": "red_bull"}}
          ]
        }
      ]
    }
  }
}`

func testServer(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(WithBaseURL(srv.URL), WithDelay(0))
}

func TestSchedule(t *testing.T) {
	client := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/2023.json", r.URL.Path)
		_, _ = w.Write([]byte(scheduleBody))
	})

	got, err := client.Schedule(context.Background(), 2023)
	require.NoError(t, err)
	// the malformed second entry is skipped, not fatal
	require.Len(t, got, 1)
	assert.Equal(t, 1, got[0].Round)
	assert.Equal(t, "Bahrain Grand Prix", got[0].RaceName)
	assert.Equal(t, "Bahrain International Circuit", got[0].CircuitName)
	assert.Equal(t, "Bahrain", got[0].Country)
	assert.Equal(t, 2023, got[0].Date.Year())
}

func TestPitStops(t *testing.T) {
	client := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/2023/1/pitstops.json", r.URL.Path)
		_, _ = w.Write([]byte(pitStopsBody))
	})

	got, err := client.PitStops(context.Background(), 2023, 1)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "max_verstappen", got[0].Driver)
	assert.Equal(t, 11, got[0].Lap)
	assert.Equal(t, 1, got[0].StopNumber)
	assert.InDelta(t, 21.662, got[0].DurationSeconds, 1e-9)
}

func TestResults(t *testing.T) {
	client := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(resultsBody))
	})

	got, err := client.Results(context.Background(), 2023, 1)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "VER", got[0].DriverCode)
	assert.Equal(t, "red_bull", got[0].Constructor)
	require.NotNil(t, got[0].DriverNumber)
	assert.Equal(t, 1, *got[0].DriverNumber)
	assert.InDelta(t, 25.0, got[0].Points, 1e-9)
}

func TestNon2xxYieldsProviderError(t *testing.T) {
	client := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	})

	_, err := client.Schedule(context.Background(), 2023)
	var provErr *provider.Error
	require.True(t, errors.As(err, &provErr))
	assert.Equal(t, http.StatusTooManyRequests, provErr.StatusCode)
}

func TestEmptyRaceTable(t *testing.T) {
	client := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"MRData": {"RaceTable": {"Races": []}}}`))
	})

	got, err := client.PitStops(context.Background(), 2023, 99)
	require.NoError(t, err)
	assert.Empty(t, got)
}

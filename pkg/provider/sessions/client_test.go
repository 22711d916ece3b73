package sessions

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/f1stint/f1-tiredata-manager-go/pkg/model"
	"github.com/f1stint/f1-tiredata-manager-go/pkg/provider"
)

const sessionBody = `{
  "laps": [
    {"driver": "VER", "driverNumber": 1, "team": "Red Bull Racing",
     "lapNumber": 1, "lapTime": 93.221, "sector1": 29.1, "sector2": 33.4,
     "sector3": 30.721, "compound": "soft", "tyreLife": 1, "stint": 1,
     "freshTyre": true, "trackStatus": "1", "isPersonalBest": false,
     "isAccurate": true, "startTime": "2023-03-05T15:03:11Z"},
    {"driver": "VER", "team": "Red Bull Racing", "lapNumber": 2,
     "compound": "SOFT", "tyreLife": 2, "stint": 1, "trackStatus": "1",
     "isAccurate": false, "startTime": "2023-03-05T15:04:44Z"},
    {"driver": "", "lapNumber": 3, "startTime": "2023-03-05T15:06:17Z"}
  ],
  "weather": [
    {"time": "2023-03-05T15:00:00Z", "airTemp": 28.4, "trackTemp": 41.2,
     "humidity": 44.0, "rainfall": false, "windSpeed": 1.3}
  ]
}`

func newTestClient(t *testing.T, hits *atomic.Int32, opts ...Option) *Client {
	t.Helper()
	srv := httptest.NewServer(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if hits != nil {
				hits.Add(1)
			}
			assert.Equal(t, "/session/2023/1/R/laps", r.URL.Path)
			_, _ = w.Write([]byte(sessionBody))
		}))
	t.Cleanup(srv.Close)

	client, err := NewClient(
		append([]Option{WithBaseURL(srv.URL), WithDelay(0)}, opts...)...)
	require.NoError(t, err)
	return client
}

func TestRaceLaps(t *testing.T) {
	client := newTestClient(t, nil)

	laps, samples, err := client.RaceLaps(context.Background(), 2023, 1)
	require.NoError(t, err)
	// the entry without a driver code is skipped
	require.Len(t, laps, 2)
	require.Len(t, samples, 1)

	assert.Equal(t, "VER", laps[0].Driver)
	assert.Equal(t, model.CompoundSoft, laps[0].Compound)
	require.NotNil(t, laps[0].LapTimeSeconds)
	assert.InDelta(t, 93.221, *laps[0].LapTimeSeconds, 1e-9)
	assert.True(t, laps[0].FreshTyre)

	// absent lap time stays absent
	assert.Nil(t, laps[1].LapTimeSeconds)
	assert.Nil(t, laps[1].DriverNumber)

	assert.InDelta(t, 28.4, samples[0].AirTemp, 1e-9)
	assert.False(t, samples[0].Rainfall)
}

func TestRaceLaps_CacheAvoidsSecondRequest(t *testing.T) {
	var hits atomic.Int32
	client := newTestClient(t, &hits, WithCacheDir(t.TempDir()))

	_, _, err := client.RaceLaps(context.Background(), 2023, 1)
	require.NoError(t, err)
	_, _, err = client.RaceLaps(context.Background(), 2023, 1)
	require.NoError(t, err)

	assert.Equal(t, int32(1), hits.Load())
}

func TestRaceLaps_CacheDisabledByDefault(t *testing.T) {
	var hits atomic.Int32
	client := newTestClient(t, &hits)

	_, _, err := client.RaceLaps(context.Background(), 2023, 1)
	require.NoError(t, err)
	_, _, err = client.RaceLaps(context.Background(), 2023, 1)
	require.NoError(t, err)

	assert.Equal(t, int32(2), hits.Load())
}

func TestRaceLaps_Non2xx(t *testing.T) {
	srv := httptest.NewServer(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		}))
	t.Cleanup(srv.Close)

	client, err := NewClient(WithBaseURL(srv.URL), WithDelay(0))
	require.NoError(t, err)

	_, _, err = client.RaceLaps(context.Background(), 2023, 1)
	var provErr *provider.Error
	require.True(t, errors.As(err, &provErr))
	assert.Equal(t, http.StatusServiceUnavailable, provErr.StatusCode)
}

func TestNewClient_RequiresBaseURL(t *testing.T) {
	_, err := NewClient()
	assert.Error(t, err)
}

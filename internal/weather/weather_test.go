package weather

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubProvider struct {
	reading Reading
	err     error
	calls   int
}

func (*stubProvider) Name() string {
	return "stub"
}

func (p *stubProvider) Current(context.Context) (Reading, error) {
	p.calls++
	if p.err != nil {
		return Reading{}, p.err
	}

	return p.reading, nil
}

func TestServicePrefersPrimary(t *testing.T) {
	primary := &stubProvider{reading: Reading{TemperatureF: 85, Humidity: 40}}
	fallback := &stubProvider{reading: Reading{TemperatureF: 1, Humidity: 1}}
	svc := NewServiceWithFallback(primary, fallback)

	reading, err := svc.Current(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 85.0, reading.TemperatureF)
	assert.Equal(t, 0, fallback.calls)
}

func TestServiceFallsBackOnPrimaryFailure(t *testing.T) {
	primary := &stubProvider{err: assert.AnError}
	fallback := &stubProvider{reading: Reading{TemperatureF: 72, Humidity: 55}}
	svc := NewServiceWithFallback(primary, fallback)

	reading, err := svc.Current(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 72.0, reading.TemperatureF)
	assert.Equal(t, 1, primary.calls)
	assert.Equal(t, 1, fallback.calls)
}

func TestStaticFallbackAlwaysProduces(t *testing.T) {
	reading, err := StaticFallback{}.Current(context.Background())
	require.NoError(t, err)
	assert.NotZero(t, reading.TemperatureF)
	assert.NotZero(t, reading.Humidity)
	assert.False(t, reading.Timestamp.IsZero())
}

func TestOpenMeteoCurrent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()
		assert.Equal(t, "33.4500", query.Get("latitude"))
		assert.Equal(t, "-112.0700", query.Get("longitude"))
		assert.Contains(t, query.Get("current"), "relative_humidity_2m")
		assert.Equal(t, "fahrenheit", query.Get("temperature_unit"))

		w.Write([]byte(`{"current":{"time":"2026-08-23T12:00","temperature_2m":104.2,"relative_humidity_2m":18}}`))
	}))
	t.Cleanup(server.Close)

	provider := NewOpenMeteoWithBaseURL(server.URL, 33.45, -112.07)

	reading, err := provider.Current(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 104.2, reading.TemperatureF)
	assert.Equal(t, 18.0, reading.Humidity)
}

func TestOpenMeteoServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	t.Cleanup(server.Close)

	provider := NewOpenMeteoWithBaseURL(server.URL, 33.45, -112.07)

	_, err := provider.Current(context.Background())
	assert.Error(t, err)
}

func TestOpenMeteoMalformedBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`not json`))
	}))
	t.Cleanup(server.Close)

	provider := NewOpenMeteoWithBaseURL(server.URL, 33.45, -112.07)

	_, err := provider.Current(context.Background())
	assert.Error(t, err)
}

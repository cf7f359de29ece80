package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"codeberg.org/mutker/poolwatch/internal/errors"
)

const (
	openMeteoBaseURL = "https://api.open-meteo.com/v1/forecast"
	requestTimeout   = 10 * time.Second
)

// OpenMeteo fetches current conditions from the Open-Meteo forecast API.
type OpenMeteo struct {
	baseURL   string
	latitude  float64
	longitude float64
	client    *http.Client
}

func NewOpenMeteo(latitude, longitude float64) *OpenMeteo {
	return &OpenMeteo{
		baseURL:   openMeteoBaseURL,
		latitude:  latitude,
		longitude: longitude,
		client:    &http.Client{Timeout: requestTimeout},
	}
}

// NewOpenMeteoWithBaseURL points the provider at an alternate endpoint.
func NewOpenMeteoWithBaseURL(baseURL string, latitude, longitude float64) *OpenMeteo {
	p := NewOpenMeteo(latitude, longitude)
	p.baseURL = baseURL
	return p
}

func (*OpenMeteo) Name() string {
	return "open-meteo"
}

type openMeteoResponse struct {
	Current struct {
		Time             string  `json:"time"`
		Temperature2m    float64 `json:"temperature_2m"`
		RelativeHumidity float64 `json:"relative_humidity_2m"`
	} `json:"current"`
}

func (p *OpenMeteo) Current(ctx context.Context) (Reading, error) {
	errFactory := errors.New()

	url := fmt.Sprintf(
		"%s?latitude=%.4f&longitude=%.4f&current=temperature_2m,relative_humidity_2m&temperature_unit=fahrenheit",
		p.baseURL, p.latitude, p.longitude,
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Reading{}, errFactory.Wrap(ErrProviderRequest, err)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return Reading{}, errFactory.Wrap(ErrProviderRequest, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Reading{}, errFactory.WithData(ErrProviderResponse, resp.StatusCode)
	}

	var body openMeteoResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return Reading{}, errFactory.Wrap(ErrProviderResponse, err)
	}

	return Reading{
		Timestamp:    time.Now().UTC(),
		TemperatureF: body.Current.Temperature2m,
		Humidity:     body.Current.RelativeHumidity,
	}, nil
}

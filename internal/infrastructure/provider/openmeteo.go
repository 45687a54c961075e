package provider

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"fxrates-etl/internal/application"
	"fxrates-etl/internal/domain"
	"fxrates-etl/internal/infrastructure/httpx"
)

const openMeteoArchivePath = "/v1/archive"

// OpenMeteoArchive reads daily mean temperatures from the Open-Meteo historical archive.
type OpenMeteoArchive struct {
	BaseURL string
	Client  *httpx.Client
}

var _ application.WeatherFetcher = (*OpenMeteoArchive)(nil)

type omArchiveResp struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Timezone  string  `json:"timezone"`
	Daily     struct {
		Time            []string   `json:"time"`
		TemperatureMean []*float64 `json:"temperature_2m_mean"`
	} `json:"daily"`
}

func (p *OpenMeteoArchive) FetchDailyTemperatures(ctx context.Context, loc domain.Location, from, to time.Time) ([]domain.DailyTemperature, error) {
	u, err := url.Parse(trimBase(p.BaseURL))
	if err != nil {
		return nil, fmt.Errorf("openmeteo: invalid base url: %w", err)
	}
	u.Path += openMeteoArchivePath
	q := url.Values{}
	q.Set("latitude", strconv.FormatFloat(loc.Lat, 'f', -1, 64))
	q.Set("longitude", strconv.FormatFloat(loc.Lon, 'f', -1, 64))
	q.Set("start_date", domain.FormatDate(from))
	q.Set("end_date", domain.FormatDate(to))
	q.Set("daily", "temperature_2m_mean")
	q.Set("timezone", "UTC")
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("openmeteo: create request: %w", err)
	}
	var body omArchiveResp
	if err := clientOrDefault(p.Client).DoJSON(ctx, req, &body); err != nil {
		return nil, fmt.Errorf("openmeteo: %w", err)
	}
	if len(body.Daily.Time) != len(body.Daily.TemperatureMean) {
		return nil, fmt.Errorf("openmeteo: %w: %d dates, %d values", ErrMalformedResponse,
			len(body.Daily.Time), len(body.Daily.TemperatureMean))
	}

	out := make([]domain.DailyTemperature, 0, len(body.Daily.Time))
	for i, s := range body.Daily.Time {
		d, err := domain.ParseDate(s)
		if err != nil {
			return nil, fmt.Errorf("openmeteo: %w", err)
		}
		out = append(out, domain.DailyTemperature{Date: d, MeanC: body.Daily.TemperatureMean[i]})
	}
	return out, nil
}

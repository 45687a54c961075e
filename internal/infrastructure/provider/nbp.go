package provider

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"fxrates-etl/internal/application"
	"fxrates-etl/internal/domain"
	"fxrates-etl/internal/infrastructure/httpx"
)

const nbpRatesPath = "/api/exchangerates/rates/%s/%s/%s/%s/"

var ErrRangeTooWide = errors.New("date range exceeds 93 days")

// NBPFetcher reads mid rates from the NBP exchange rate tables. Each call is a single
// request; retries only happen if the httpx client is configured for them.
type NBPFetcher struct {
	BaseURL string
	Table   string
	Client  *httpx.Client
}

var _ application.RateFetcher = (*NBPFetcher)(nil)

type nbpRatesResp struct {
	Table    string `json:"table"`
	Currency string `json:"currency"`
	Code     string `json:"code"`
	Rates    []struct {
		No            string   `json:"no"`
		EffectiveDate string   `json:"effectiveDate"`
		Mid           *float64 `json:"mid"`
	} `json:"rates"`
}

func (p *NBPFetcher) FetchRates(ctx context.Context, currency string, chunk domain.DateChunk) ([]domain.RawRate, error) {
	fail := func(err error) error {
		return &application.FetchError{Currency: currency, Chunk: chunk, Err: err}
	}

	code, err := domain.NormalizeCurrency(currency)
	if err != nil {
		return nil, fail(err)
	}
	if chunk.End.Before(chunk.Start) {
		return nil, fail(fmt.Errorf("nbp: inverted range %s", chunk))
	}
	if chunk.Days() > domain.DefaultChunkDays {
		return nil, fail(ErrRangeTooWide)
	}
	table := p.Table
	if table == "" {
		table = "A"
	}

	u, err := url.Parse(trimBase(p.BaseURL))
	if err != nil {
		return nil, fail(fmt.Errorf("nbp: invalid base url: %w", err))
	}
	u.Path += fmt.Sprintf(nbpRatesPath, table, code, domain.FormatDate(chunk.Start), domain.FormatDate(chunk.End))
	q := u.Query()
	q.Set("format", "json")
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fail(fmt.Errorf("nbp: create request: %w", err))
	}

	var body nbpRatesResp
	if err := clientOrDefault(p.Client).DoJSON(ctx, req, &body); err != nil {
		return nil, fail(fmt.Errorf("nbp: %w", err))
	}
	if body.Code != "" && body.Code != code {
		return nil, fail(fmt.Errorf("nbp: %w: asked for %s, got %s", ErrMalformedResponse, code, body.Code))
	}

	out := make([]domain.RawRate, 0, len(body.Rates))
	for _, r := range body.Rates {
		if r.Mid == nil {
			continue
		}
		out = append(out, domain.RawRate{EffectiveDate: r.EffectiveDate, Mid: *r.Mid})
	}
	return out, nil
}

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

const yahooChartPath = "/v8/finance/chart/"

// YahooChart reads daily closes from the Yahoo Finance chart endpoint.
type YahooChart struct {
	BaseURL string
	Client  *httpx.Client
}

var _ application.PriceFetcher = (*YahooChart)(nil)

type yahooChartResp struct {
	Chart struct {
		Result []struct {
			Meta struct {
				Symbol               string `json:"symbol"`
				GMTOffset            int    `json:"gmtoffset"`
				ExchangeTimezoneName string `json:"exchangeTimezoneName"`
			} `json:"meta"`
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Close []*float64 `json:"close"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// FetchDailyCloses returns one close per trading day in [from, to], dated in the
// exchange's own calendar.
func (p *YahooChart) FetchDailyCloses(ctx context.Context, symbol string, from, to time.Time) ([]domain.DailyClose, error) {
	u, err := url.Parse(trimBase(p.BaseURL))
	if err != nil {
		return nil, fmt.Errorf("yahoo: invalid base url: %w", err)
	}
	u.Path += yahooChartPath + symbol
	q := url.Values{}
	q.Set("period1", strconv.FormatInt(domain.Day(from).Unix(), 10))
	q.Set("period2", strconv.FormatInt(domain.AddDays(domain.Day(to), 1).Unix(), 10))
	q.Set("interval", "1d")
	q.Set("events", "history")
	q.Set("includePrePost", "false")
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("yahoo: create request: %w", err)
	}
	var body yahooChartResp
	if err := clientOrDefault(p.Client).DoJSON(ctx, req, &body); err != nil {
		return nil, fmt.Errorf("yahoo %s: %w", symbol, err)
	}
	if e := body.Chart.Error; e != nil {
		return nil, fmt.Errorf("yahoo %s: %s: %s", symbol, e.Code, e.Description)
	}
	if len(body.Chart.Result) == 0 {
		return nil, fmt.Errorf("yahoo %s: %w: empty result", symbol, ErrMalformedResponse)
	}
	res := body.Chart.Result[0]
	if len(res.Indicators.Quote) == 0 {
		return nil, nil
	}
	closes := res.Indicators.Quote[0].Close
	if len(closes) != len(res.Timestamp) {
		return nil, fmt.Errorf("yahoo %s: %w: %d timestamps, %d closes", symbol, ErrMalformedResponse,
			len(res.Timestamp), len(closes))
	}

	zone := exchangeZone(res.Meta.ExchangeTimezoneName, res.Meta.GMTOffset)
	out := make([]domain.DailyClose, 0, len(closes))
	for i, ts := range res.Timestamp {
		d := domain.DayIn(time.Unix(ts, 0), zone)
		// the live bar of the current session can repeat the last date
		if n := len(out); n > 0 && out[n-1].Date.Equal(d) {
			if closes[i] != nil {
				out[n-1].Close = closes[i]
			}
			continue
		}
		out = append(out, domain.DailyClose{Date: d, Close: closes[i]})
	}
	return out, nil
}

func exchangeZone(name string, gmtOffset int) *time.Location {
	if name != "" {
		if loc, err := time.LoadLocation(name); err == nil {
			return loc
		}
	}
	return time.FixedZone("exchange", gmtOffset)
}

package provider

import (
	"errors"
	"net/http"
	"strings"

	infraconfig "fxrates-etl/internal/infrastructure/config"
	"fxrates-etl/internal/infrastructure/httpx"
)

var ErrMalformedResponse = errors.New("malformed response")

func clientOrDefault(c *httpx.Client) *httpx.Client {
	if c != nil {
		return c
	}
	return &httpx.Client{
		HTTP:      &http.Client{Timeout: infraconfig.DefaultHTTPTimeout},
		UserAgent: infraconfig.DefaultUserAgent,
	}
}

func trimBase(base string) string { return strings.TrimRight(base, "/") }

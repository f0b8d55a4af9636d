package utils

import (
	"net/http"

	"github.com/go-resty/resty/v2"
)

// HTTPClient is a wrapper around the resty.Client HTTP client.
// It embeds *resty.Client to expose all of its methods directly.
type HTTPClient struct {
	*resty.Client
}

// NewHTTPClient creates a resty-backed HTTPClient on top of hc. The REST
// transport passes an oauth2-authorized *http.Client so that every request
// carries a bearer token; a nil hc uses a fresh default client.
//
// Each call returns an independent client instance with its own
// configuration and state.
func NewHTTPClient(hc *http.Client) *HTTPClient {
	if hc == nil {
		return &HTTPClient{Client: resty.New()}
	}
	return &HTTPClient{Client: resty.NewWithClient(hc)}
}

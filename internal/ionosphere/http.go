package ionosphere

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/cirada-tools/frion/internal/config"
)

const defaultFetchTimeout = 60 * time.Second

// httpSource queries a prediction service that wraps RMextract behind an
// HTTP API. The service returns the time series as JSON.
type httpSource struct {
	url    string
	client *http.Client
}

// seriesDocument is the JSON body returned by the prediction service.
type seriesDocument struct {
	Samples []struct {
		// MJD is the sample time in MJD days (or seconds; both accepted).
		MJD float64 `json:"mjd"`
		// RM in rad/m².
		RM float64 `json:"rm"`
	} `json:"samples"`
}

func (s *httpSource) Fetch(ctx context.Context, req Request) (Series, error) {
	u, err := url.Parse(s.url)
	if err != nil {
		return nil, fmt.Errorf("ionosphere: bad url %q: %w", s.url, err)
	}
	q := u.Query()
	q.Set("start", req.Start.UTC().Format(time.RFC3339))
	q.Set("end", req.End.UTC().Format(time.RFC3339))
	q.Set("ra", strconv.FormatFloat(req.RA, 'f', 6, 64))
	q.Set("dec", strconv.FormatFloat(req.Dec, 'f', 6, 64))
	q.Set("lat", strconv.FormatFloat(req.Site.Lat, 'f', 6, 64))
	q.Set("lon", strconv.FormatFloat(req.Site.Lon, 'f', 6, 64))
	q.Set("height", strconv.FormatFloat(req.Site.Height, 'f', 1, 64))
	q.Set("timestep", strconv.FormatFloat(req.Timestep.Seconds(), 'f', 0, 64))
	u.RawQuery = q.Encode()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("ionosphere: build request: %w", err)
	}
	httpReq.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("ionosphere: http get: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("ionosphere: prediction service returned status %d", resp.StatusCode)
	}

	var doc seriesDocument
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return nil, fmt.Errorf("ionosphere: decode response: %w", err)
	}

	series := make(Series, 0, len(doc.Samples))
	for _, smp := range doc.Samples {
		series = append(series, Sample{Time: TimeFromMJD(smp.MJD), RM: smp.RM})
	}
	return finishSeries(series, req)
}

// authRoundTripper injects authentication headers into every outgoing request.
type authRoundTripper struct {
	base http.RoundTripper
	auth config.AuthConfig
}

func (t *authRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	switch t.auth.Mode {
	case "apikey":
		req = req.Clone(req.Context())
		req.Header.Set(t.auth.Header, t.auth.Key())
	case "bearer":
		req = req.Clone(req.Context())
		req.Header.Set("Authorization", "Bearer "+t.auth.Token())
	case "basic":
		req = req.Clone(req.Context())
		req.SetBasicAuth(t.auth.Username, t.auth.Password())
	}
	return t.base.RoundTrip(req)
}

// buildHTTPClient constructs an http.Client for the source's auth and TLS
// settings.
func buildHTTPClient(cfg config.IonosphereConfig) (*http.Client, error) {
	tlsCfg := &tls.Config{
		InsecureSkipVerify: cfg.TLS.InsecureSkipVerify, //nolint:gosec // user-configured
	}

	if cfg.Auth.Mode == "mtls" {
		cert, err := tls.LoadX509KeyPair(cfg.Auth.CertFile, cfg.Auth.KeyFile)
		if err != nil {
			return nil, fmt.Errorf("load client cert: %w", err)
		}
		tlsCfg.Certificates = []tls.Certificate{cert}

		if cfg.Auth.CAFile != "" {
			caPEM, err := os.ReadFile(cfg.Auth.CAFile)
			if err != nil {
				return nil, fmt.Errorf("read ca file: %w", err)
			}
			pool := x509.NewCertPool()
			if !pool.AppendCertsFromPEM(caPEM) {
				return nil, fmt.Errorf("no valid certs found in ca file %q", cfg.Auth.CAFile)
			}
			tlsCfg.RootCAs = pool
		}
	}

	transport := &authRoundTripper{
		base: &http.Transport{TLSClientConfig: tlsCfg},
		auth: cfg.Auth,
	}
	return &http.Client{
		Transport: transport,
		Timeout:   defaultFetchTimeout,
	}, nil
}

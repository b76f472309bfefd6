// Package prism provides the upstream Prism Central REST client with
// bounded retry and concurrent paginated entity fetching.
package prism

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	stderr "errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/nutanix-exporter/nutanix-exporter/internal/config"
	"github.com/nutanix-exporter/nutanix-exporter/pkg/errors"
	"github.com/nutanix-exporter/nutanix-exporter/pkg/retry"
)

// Client issues authenticated requests against the Prism Central API.
// It is stateless apart from the underlying connection pool and safe for
// use from concurrent workers.
type Client struct {
	baseURL    string
	username   string
	secret     string
	httpClient *http.Client
	retryer    *retry.Retryer
	logger     *slog.Logger
}

// NewClient creates a client from the Prism connection settings.
func NewClient(cfg config.PrismConfig, baseURL string, logger *slog.Logger) *Client {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	if !cfg.Secure {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} // #nosec G402 -- self-signed Prism certs are the common case
	}

	retryer := retry.New(retry.Config{
		MaxAttempts: cfg.Retries,
		Delay:       cfg.RetryDelay,
		OnRetry: func(attempt int, err error, delay time.Duration) {
			logger.Warn("retrying request",
				slog.Int("attempt", attempt),
				slog.Duration("delay", delay),
				slog.String("error", err.Error()))
		},
	})

	return &Client{
		baseURL:  baseURL,
		username: cfg.Username,
		secret:   cfg.Secret,
		httpClient: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: transport,
		},
		retryer: retryer,
		logger:  logger,
	}
}

// Get issues a GET request against path and decodes the JSON response into out.
func (c *Client) Get(ctx context.Context, path string, query url.Values, out interface{}) error {
	return c.Do(ctx, http.MethodGet, path, query, nil, out)
}

// Post issues a POST request with a JSON body and decodes the response into out.
func (c *Client) Post(ctx context.Context, path string, body interface{}, out interface{}) error {
	return c.Do(ctx, http.MethodPost, path, nil, body, out)
}

// Do executes one API call through the retry layer. Connection failures
// and timeouts are retried with a fixed delay until the attempt budget is
// exhausted; any response with a non-2xx status is fatal on first sight.
func (c *Client) Do(ctx context.Context, method, path string, query url.Values, body, out interface{}) error {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return errors.NewError(errors.ErrCodeInternalError, "failed to encode request body").
				WithComponent("client").WithEndpoint(endpoint).WithCause(err)
		}
	}

	return c.retryer.DoWithContext(ctx, func(ctx context.Context) error {
		return c.doOnce(ctx, method, endpoint, payload, out)
	})
}

func (c *Client) doOnce(ctx context.Context, method, endpoint string, payload []byte, out interface{}) error {
	var bodyReader io.Reader
	if payload != nil {
		bodyReader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, bodyReader)
	if err != nil {
		return errors.NewError(errors.ErrCodeInternalError, "failed to build request").
			WithComponent("client").WithEndpoint(endpoint).WithCause(err)
	}
	req.SetBasicAuth(c.username, c.secret)
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	c.logger.Debug("issuing request", slog.String("method", method), slog.String("url", endpoint))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return classifyTransportError(err, endpoint)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return statusError(resp, endpoint)
	}

	if out == nil {
		io.Copy(io.Discard, resp.Body) //nolint:errcheck
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.NewError(errors.ErrCodeDecodeFailed, "failed to decode response body").
			WithComponent("client").WithEndpoint(endpoint).WithCause(err)
	}

	return nil
}

// classifyTransportError maps a transport failure onto the retryable part
// of the error taxonomy. Everything that is not a connection failure or a
// timeout stays non-retryable.
func classifyTransportError(err error, endpoint string) *errors.ExporterError {
	var netErr net.Error
	if stderr.As(err, &netErr) && netErr.Timeout() {
		return errors.NewError(errors.ErrCodeConnectionTimeout, "request timed out").
			WithComponent("client").WithEndpoint(endpoint).WithCause(err)
	}

	var opErr *net.OpError
	if stderr.As(err, &opErr) {
		return errors.NewError(errors.ErrCodeConnectionFailed, "connection failed").
			WithComponent("client").WithEndpoint(endpoint).WithCause(err)
	}

	var urlErr *url.Error
	if stderr.As(err, &urlErr) {
		return errors.NewError(errors.ErrCodeNetworkError, "network error").
			WithComponent("client").WithEndpoint(endpoint).WithCause(err)
	}

	return errors.NewError(errors.ErrCodeUnknownError, "request failed").
		WithComponent("client").WithEndpoint(endpoint).WithCause(err)
}

// statusError converts a non-2xx response into a fatal error carrying the
// status, reason and body for diagnostics. 401 and 500 get their own codes
// so they read distinctly in logs, but follow the same fatal path.
func statusError(resp *http.Response, endpoint string) *errors.ExporterError {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))

	code := errors.ErrCodeHTTPStatus
	detail := ""
	switch resp.StatusCode {
	case http.StatusUnauthorized:
		code = errors.ErrCodeUnauthorized
		detail = "; verify the configured credentials"
	case http.StatusInternalServerError:
		code = errors.ErrCodeServerError
		detail = "; the upstream API failed to process the request"
	}

	msg := fmt.Sprintf("unexpected status %d %s%s", resp.StatusCode, http.StatusText(resp.StatusCode), detail)
	return errors.NewError(code, msg).
		WithComponent("client").
		WithEndpoint(endpoint).
		WithHTTPStatus(resp.StatusCode).
		WithContext("body", string(body))
}

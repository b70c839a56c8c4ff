package gateway

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tkaraca/vpos-gateway/internal/domain"
)

// Payload is one outbound request body. The transport picks the encoding
// from the payload's shape, not from the gateway: the same bank may take XML
// on server calls and form fields on the interactive redirect step.
type Payload interface {
	contentType() string
	encode() []byte
}

// XMLPayload is a raw XML request body.
type XMLPayload []byte

func (p XMLPayload) contentType() string { return "text/xml; charset=ISO-8859-1" }
func (p XMLPayload) encode() []byte      { return []byte(p) }

// FormPayload is a URL-form-encoded request body.
type FormPayload url.Values

func (p FormPayload) contentType() string { return "application/x-www-form-urlencoded" }
func (p FormPayload) encode() []byte      { return []byte(url.Values(p).Encode()) }

// Client performs the single synchronous HTTP exchange of a gateway call.
// It never retries; callers apply their own timeout policy through ctx and
// the configured client timeout.
type Client struct {
	httpClient *http.Client
	logger     *slog.Logger
}

func NewClient(timeout time.Duration, logger *slog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// Post sends one payload and returns the raw response body. Network errors
// and non-2xx statuses are transport errors; decoding is the caller's job
// because the expected shape is gateway-specific.
func (c *Client) Post(ctx context.Context, endpoint string, payload Payload) ([]byte, error) {
	body := payload.encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, domain.NewTransportError(err)
	}
	req.Header.Set("Content-Type", payload.contentType())

	c.logger.Debug("sending gateway request", "url", endpoint, "bytes", len(body))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, domain.NewTransportError(err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, domain.NewTransportError(err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.Error("gateway returned non-success status",
			"url", endpoint,
			"status", resp.StatusCode,
		)
		return nil, domain.NewUndecodableResponseError(strings.TrimSpace(string(respBody)))
	}

	return respBody, nil
}

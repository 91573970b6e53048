package ec2imds

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

const (
	// DefaultEndpoint is the link-local base URL of the instance metadata
	// service (IMDSv1, unauthenticated, plaintext).
	DefaultEndpoint = "http://169.254.169.254/latest/"

	// ProbeEndpoint is the host-discovery URL used by [Client.OnEC2]. It
	// resolves only inside EC2, so a completed request - whatever the
	// response says - means the instance metadata service is reachable.
	ProbeEndpoint = "http://instance-data/latest/"
)

const tracerName = "github.com/hairyhenderson/go-ec2imds"

// Client fetches values from the instance metadata service. Every call
// performs exactly one GET request; there is no caching, retrying, or
// session state, so a Client is safe for concurrent use.
//
// The zero value is not usable; construct with [New].
type Client struct {
	endpoint      string
	probeEndpoint string
	httpclient    *http.Client
	tracer        trace.Tracer
}

// New returns a client for the metadata service at [DefaultEndpoint],
// configured by the given options.
func New(opts ...Option) *Client {
	cfg := config{
		endpoint:      DefaultEndpoint,
		probeEndpoint: ProbeEndpoint,
		httpclient:    http.DefaultClient,
	}

	for _, opt := range opts {
		opt.apply(&cfg)
	}

	if cfg.tp == nil {
		cfg.tp = otel.GetTracerProvider()
	}

	return &Client{
		endpoint:      cfg.endpoint,
		probeEndpoint: cfg.probeEndpoint,
		httpclient:    cfg.httpclient,
		tracer:        cfg.tp.Tracer(tracerName),
	}
}

// Metadata fetches the given metadata category.
func (c *Client) Metadata(ctx context.Context, category Category) ([]byte, error) {
	return c.MetadataAt(ctx, category.Path())
}

// MetadataAt fetches the metadata value at the given raw path, relative to
// meta-data/. An empty path lists the top-level category names, one per
// line, with a "/" suffix on the ones that have children.
func (c *Client) MetadataAt(ctx context.Context, path string) ([]byte, error) {
	return c.get(ctx, "meta-data/"+path)
}

// DynamicData fetches the given dynamic data category.
func (c *Client) DynamicData(ctx context.Context, category DynamicCategory) ([]byte, error) {
	return c.DynamicDataAt(ctx, category.Path())
}

// DynamicDataAt fetches the dynamic data value at the given raw path,
// relative to dynamic/.
func (c *Client) DynamicDataAt(ctx context.Context, path string) ([]byte, error) {
	return c.get(ctx, "dynamic/"+path)
}

// UserData fetches the data supplied when the instance was launched.
// Instances frequently have none, and the service answers 404 for them; in
// that case UserData reports found == false with a nil error, so that
// absent user data stays distinct from empty user data. All other non-2xx
// statuses are errors, as for the other fetch methods.
func (c *Client) UserData(ctx context.Context) (data []byte, found bool, err error) {
	data, err = c.get(ctx, "user-data")

	var respErr *ResponseError
	if errors.As(err, &respErr) && respErr.StatusCode == http.StatusNotFound {
		return nil, false, nil
	}

	if err != nil {
		return nil, false, err
	}

	return data, true, nil
}

// OnEC2 reports whether the process appears to be running on an EC2
// instance, by issuing one GET to the probe endpoint. It is true when the
// request completes at all - the response status and body are irrelevant -
// and false on a transport-level failure (DNS, connect, timeout). No retry
// is performed, and no timeout is applied beyond the HTTP client's own.
func (c *Client) OnEC2(ctx context.Context) bool {
	ctx, span := c.tracer.Start(ctx, "imds.OnEC2",
		trace.WithAttributes(endpointAttr(c.probeEndpoint)))
	defer span.End()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.probeEndpoint, nil)
	if err != nil {
		recordError(span, err)

		return false
	}

	resp, err := c.httpclient.Do(req)
	if err != nil {
		recordError(span, err)

		return false
	}

	resp.Body.Close()

	return true
}

// get issues a single GET for the path below the base endpoint, returning
// the body with at most one trailing newline byte removed. The service
// terminates most values with exactly one newline, which is part of the
// transport, not the value; any further trailing whitespace is preserved.
func (c *Client) get(ctx context.Context, path string) ([]byte, error) {
	ctx, span := c.tracer.Start(ctx, "imds.Get",
		trace.WithAttributes(pathAttr(path), endpointAttr(c.endpoint)))
	defer span.End()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+path, nil)
	if err != nil {
		return nil, recordError(span, err)
	}

	resp, err := c.httpclient.Do(req)
	if err != nil {
		return nil, recordError(span, fmt.Errorf("get %q: %w", path, err))
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, recordError(span, &ResponseError{
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
		})
	}

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, recordError(span, fmt.Errorf("read %q: %w", path, err))
	}

	span.SetAttributes(bodySizeAttr(len(b)))

	return trimTrailingNewline(b), nil
}

func trimTrailingNewline(b []byte) []byte {
	if len(b) > 0 && b[len(b)-1] == '\n' {
		return b[:len(b)-1]
	}

	return b
}

// ResponseError is returned when the metadata service answers with a
// non-2xx status. Transport-level failures are returned as-is (wrapped),
// never as a ResponseError.
type ResponseError struct {
	StatusCode int
	Status     string
}

func (e *ResponseError) Error() string {
	return fmt.Sprintf("http GET failed with status %s", e.Status)
}

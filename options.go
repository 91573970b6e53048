package ec2imds

import (
	"net/http"

	"go.opentelemetry.io/otel/trace"
)

// Option configures a [Client].
type Option interface {
	apply(*config)
}

type config struct {
	endpoint      string
	probeEndpoint string
	httpclient    *http.Client
	tp            trace.TracerProvider
}

type optionFunc func(*config)

func (o optionFunc) apply(c *config) {
	o(c)
}

// WithEndpoint overrides the base endpoint the client fetches from. The
// endpoint must end with the path separator the rendered category paths
// omit (the default ends in "/latest/"). Mainly useful for tests.
func WithEndpoint(endpoint string) Option {
	return optionFunc(func(cfg *config) {
		if endpoint != "" {
			cfg.endpoint = endpoint
		}
	})
}

// WithProbeEndpoint overrides the URL used by [Client.OnEC2]. Mainly
// useful for tests.
func WithProbeEndpoint(endpoint string) Option {
	return optionFunc(func(cfg *config) {
		if endpoint != "" {
			cfg.probeEndpoint = endpoint
		}
	})
}

// WithHTTPClient sets the HTTP client used for all requests. The client is
// borrowed: it is never mutated or closed, and may be shared with other
// consumers. If none is given, [http.DefaultClient] is used. No timeouts
// or retries are imposed beyond what the given client already does.
func WithHTTPClient(client *http.Client) Option {
	return optionFunc(func(cfg *config) {
		if client != nil {
			cfg.httpclient = client
		}
	})
}

// WithTracerProvider specifies a tracer provider to use for creating a
// tracer. If none is specified, the global provider is used (see
// [otel.GetTracerProvider]).
func WithTracerProvider(provider trace.TracerProvider) Option {
	return optionFunc(func(cfg *config) {
		if provider != nil {
			cfg.tp = provider
		}
	})
}

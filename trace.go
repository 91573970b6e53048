package ec2imds

import "go.opentelemetry.io/otel/trace"

// recordError records the given error on the span, and returns it. It does
// not set the span's status to error.
func recordError(span trace.Span, err error) error {
	span.RecordError(err)

	return err
}

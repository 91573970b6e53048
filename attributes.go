package ec2imds

import "go.opentelemetry.io/otel/attribute"

const (
	pathKey     = attribute.Key("imds.path")
	endpointKey = attribute.Key("imds.endpoint")
	bodySizeKey = attribute.Key("imds.body_size")
)

// The relative path being fetched.
//
// Type: string
// Examples: "meta-data/ami-id", "user-data"
func pathAttr(path string) attribute.KeyValue {
	return pathKey.String(path)
}

// The base (or probe) endpoint the request is sent to.
//
// Type: string
// Examples: "http://169.254.169.254/latest/"
func endpointAttr(endpoint string) attribute.KeyValue {
	return endpointKey.String(endpoint)
}

// The size of the response body, before newline trimming.
//
// Type: int
// Examples: 19, 0
func bodySizeAttr(n int) attribute.KeyValue {
	return bodySizeKey.Int(n)
}

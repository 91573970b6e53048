// Package imdsfs presents the EC2 instance metadata service as a
// filesystem (an fs.FS), backed by the ec2imds client.
//
// This filesystem's behaviour complies with fstest.TestFS.
//
// # Usage
//
// To use this filesystem, call [New] with a base URL. All reads from the
// filesystem are relative to this base URL. Only the scheme "ec2+imds" is
// supported, and the URL host is normally empty - setting one points the
// client at that host instead of the link-local endpoint, which is only
// intended for tests.
//
// The metadata service's three kinds of data appear at the following
// paths:
//   - /meta-data: instance metadata
//   - /user-data: user data
//   - /dynamic: dynamic data
//
// To scope the filesystem to a specific path, use that path on the URL.
// For example, for a filesystem that can only read dynamic data, you would
// use a URL like:
//
//	ec2+imds:///dynamic/
//
// # Configuration
//
// By default a plain ec2imds.Client is constructed on first use. To
// customize it - or to supply a fake - build it yourself and pass it with
// [WithClientFS]. To override just the HTTP client, the filesystem also
// honours the WithHTTPClient convention used elsewhere in this module.
package imdsfs

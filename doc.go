// Package ec2imds is a minimal client for the [EC2 Instance Metadata
// Service] (IMDS): the link-local HTTP endpoint that provides an EC2
// instance with information about itself.
//
// IMDS exposes three kinds of data: [instance metadata], [user data], and
// [dynamic data]. Each is addressed by a URL path relative to a fixed base
// endpoint. The well-known categories are modelled here as closed sets of
// values ([Category], [DynamicCategory], [Mapping], [IAMKind],
// [InterfaceField]) that render to those paths, so callers don't need to
// assemble path strings by hand. Raw paths are still accepted by the *At
// methods for categories not modelled here.
//
// # Usage
//
// Construct a [Client] with [New], optionally configuring it with options
// such as [WithHTTPClient]. Each call performs exactly one GET request -
// there is no caching, no retrying, and no session state, so a single
// Client is safe for concurrent use.
//
//	client := ec2imds.New()
//
//	id, err := client.Metadata(ctx, ec2imds.InstanceID)
//
// Responses have at most one trailing newline stripped, since the service
// terminates most values with one.
//
// User data may legitimately not exist; [Client.UserData] reports that as
// an absent value rather than an error. For every other path an HTTP 404
// surfaces as a [*ResponseError].
//
// [EC2 Instance Metadata Service]: https://docs.aws.amazon.com/AWSEC2/latest/UserGuide/ec2-instance-metadata.html
// [instance metadata]: https://docs.aws.amazon.com/AWSEC2/latest/UserGuide/instancedata-data-retrieval.html
// [user data]: https://docs.aws.amazon.com/AWSEC2/latest/UserGuide/instancedata-add-user-data.html
// [dynamic data]: https://docs.aws.amazon.com/AWSEC2/latest/UserGuide/instancedata-dynamic-data-retrieval.html
package ec2imds

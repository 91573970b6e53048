package imdsfs

import (
	"regexp"
	"strings"
)

// The metadata API gives no generic way to know whether a GET has returned
// a document or a directory listing; the content-type is no help, and
// paths can be queried with or without a trailing slash. The full set of
// directory paths is documented at
// https://docs.aws.amazon.com/AWSEC2/latest/UserGuide/instancedata-data-categories.html,
// so it is hard-coded here.
//
// The alternative would be to walk down from meta-data/ and dynamic/
// (listings mark child directories with a "/" suffix), but that would cost
// a request per ancestor on every stat.
func isMetadataDirectory(name string) bool {
	name = strings.Trim(name, "/")

	// user-data is a file, not a directory
	if name == "user-data" {
		return false
	}

	switch name {
	case "meta-data",
		"dynamic",
		"meta-data/autoscaling",
		"meta-data/block-device-mapping",
		"meta-data/events",
		"meta-data/events/maintenance",
		"meta-data/events/recommendations",
		"meta-data/iam",
		"meta-data/iam/security-credentials",
		"meta-data/identity-credentials",
		"meta-data/identity-credentials/ec2",
		"meta-data/identity-credentials/ec2/security-credentials",
		"meta-data/metrics",
		"meta-data/network",
		"meta-data/network/interfaces",
		"meta-data/network/interfaces/macs",
		"meta-data/placement",
		"meta-data/public-keys",
		"meta-data/public-keys/0",
		"meta-data/services",
		"meta-data/spot",
		"meta-data/tags",
		"dynamic/fws",
		"dynamic/instance-identity":
		return true
	}

	// the <mac> part is variable, but both of these are directories:
	// - network/interfaces/macs/<mac>/
	// - network/interfaces/macs/<mac>/ipv4-associations/
	// this however is not:
	// - network/interfaces/macs/<mac>/ipv4-associations/<ip>
	if macDirectoryRe.MatchString(name) {
		return true
	}

	return macIPAssociationDirectoryRe.MatchString(name)
}

var (
	macDirectoryRe              = regexp.MustCompile(`^meta-data/network/interfaces/macs/[^/]+$`)
	macIPAssociationDirectoryRe = regexp.MustCompile(`^meta-data/network/interfaces/macs/[^/]+/ipv4-associations$`)
)

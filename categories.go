package ec2imds

import "strconv"

// The full list of paths exposed by the IMDS API is documented at
// https://docs.aws.amazon.com/AWSEC2/latest/UserGuide/instancedata-data-categories.html.
// The types in this file model the well-known subset as closed sets: each
// set is an interface with an unexported marker method, so all variants
// live in this package and every variant has exactly one rendering.

// A Category identifies an instance metadata category. Its path is
// relative to the meta-data/ prefix, which [Client.Metadata] supplies.
type Category interface {
	// Path returns the URL path for the category, relative to meta-data/.
	// It never has a leading slash.
	Path() string

	category()
}

type metaPath string

func (c metaPath) Path() string { return string(c) }
func (metaPath) category()      {}

// Metadata categories with fixed paths.
//
//nolint:gochecknoglobals
var (
	AMIID            Category = metaPath("ami-id")
	AMILaunchIndex   Category = metaPath("ami-launch-index")
	AMIManifestPath  Category = metaPath("ami-manifest-path")
	AncestorAMIIDs   Category = metaPath("ancestor-ami-ids")
	Hostname         Category = metaPath("hostname")
	InstanceAction   Category = metaPath("instance-action")
	InstanceID       Category = metaPath("instance-id")
	InstanceType     Category = metaPath("instance-type")
	KernelID         Category = metaPath("kernel-id")
	LocalHostname    Category = metaPath("local-hostname")
	LocalIPv4        Category = metaPath("local-ipv4")
	MAC              Category = metaPath("mac")
	AvailabilityZone Category = metaPath("placement/availability-zone")
	ProductCodes     Category = metaPath("product-codes")
	PublicHostname   Category = metaPath("public-hostname")
	PublicIPv4       Category = metaPath("public-ipv4")
	OpenSSHKey       Category = metaPath("public-keys/0/openssh-key")
	RamdiskID        Category = metaPath("ramdisk-id")
	ReservationID    Category = metaPath("reservation-id")
	SecurityGroups   Category = metaPath("security-groups")
)

// BlockDeviceMapping addresses one entry of the instance's block device
// mapping, under block-device-mapping/.
type BlockDeviceMapping struct {
	Mapping Mapping
}

func (c BlockDeviceMapping) Path() string { return "block-device-mapping/" + c.Mapping.Path() }
func (BlockDeviceMapping) category()      {}

// IAM addresses the iam/ subtree: the instance profile info document, or
// role credentials.
type IAM struct {
	Info IAMKind
}

func (c IAM) Path() string { return "iam/" + c.Info.Path() }
func (IAM) category()      {}

// NetworkInterface addresses a field of a single network interface,
// identified by its MAC address. The MAC is interpolated verbatim, so it
// must already be a valid path segment (the colon-separated form the
// service itself reports needs no escaping).
type NetworkInterface struct {
	MAC   string
	Field InterfaceField
}

func (c NetworkInterface) Path() string {
	return "network/interfaces/macs/" + c.MAC + "/" + c.Field.Path()
}
func (NetworkInterface) category() {}

// A Mapping identifies one block device mapping entry.
type Mapping interface {
	// Path returns the path segment for the mapping entry.
	Path() string

	mapping()
}

type mappingPath string

func (m mappingPath) Path() string { return string(m) }
func (mappingPath) mapping()       {}

//nolint:gochecknoglobals
var (
	// MappingAMI is the virtual device for the root AMI.
	MappingAMI Mapping = mappingPath("ami")

	// MappingRoot is the device the root filesystem is mounted from.
	MappingRoot Mapping = mappingPath("root")

	// MappingSwap renders the same "root" segment as MappingRoot, even
	// though the live service also exposes a separate "swap" key. Callers
	// that want the real swap device can use
	//
	//	client.MetadataAt(ctx, "block-device-mapping/swap")
	MappingSwap Mapping = mappingPath("root")
)

// EBSVolume is the Index'th attached EBS volume. Index must be
// non-negative; it renders as plain decimal with no separator, e.g.
// "ebs2".
type EBSVolume struct {
	Index int
}

func (m EBSVolume) Path() string { return "ebs" + strconv.Itoa(m.Index) }
func (EBSVolume) mapping()       {}

// EphemeralVolume is the Index'th ephemeral (instance store) volume.
// Index must be non-negative.
type EphemeralVolume struct {
	Index int
}

func (m EphemeralVolume) Path() string { return "ephemeral" + strconv.Itoa(m.Index) }
func (EphemeralVolume) mapping()       {}

// An IAMKind identifies a document in the iam/ subtree.
type IAMKind interface {
	// Path returns the path for the document, relative to iam/.
	Path() string

	iamKind()
}

type iamPath string

func (k iamPath) Path() string { return string(k) }
func (iamPath) iamKind()       {}

// IAMProfileInfo is the instance profile information document.
//
//nolint:gochecknoglobals
var IAMProfileInfo IAMKind = iamPath("info")

// IAMSecurityCredentials addresses the temporary credentials for Role. A
// nil Role renders "security-credentials/" with no trailing segment, which
// the service answers with the list of available role names - the absent
// case is distinct from an empty role name.
type IAMSecurityCredentials struct {
	Role *string
}

func (k IAMSecurityCredentials) Path() string {
	if k.Role == nil {
		return "security-credentials/"
	}

	return "security-credentials/" + *k.Role
}
func (IAMSecurityCredentials) iamKind() {}

// An InterfaceField identifies a per-interface metadata value, relative to
// network/interfaces/macs/<mac>/.
type InterfaceField interface {
	// Path returns the path for the field, relative to the interface's
	// MAC directory.
	Path() string

	interfaceField()
}

type fieldPath string

func (f fieldPath) Path() string  { return string(f) }
func (fieldPath) interfaceField() {}

// Per-interface fields with fixed paths.
//
//nolint:gochecknoglobals
var (
	FieldDeviceNumber     InterfaceField = fieldPath("device-number")
	FieldLocalHostname    InterfaceField = fieldPath("local-hostname")
	FieldLocalIPv4s       InterfaceField = fieldPath("local-ipv4s")
	FieldMAC              InterfaceField = fieldPath("mac")
	FieldOwnerID          InterfaceField = fieldPath("owner-id")
	FieldPublicHostname   InterfaceField = fieldPath("public-hostname")
	FieldPublicIPv4s      InterfaceField = fieldPath("public-ipv4s")
	FieldSecurityGroupIDs InterfaceField = fieldPath("security-group-ids")
	FieldSecurityGroups   InterfaceField = fieldPath("security-groups")
	FieldSubnetID         InterfaceField = fieldPath("subnet-id")
	FieldSubnetIPv4CIDR   InterfaceField = fieldPath("subnet-ipv4-cidr-block")
	FieldVPCID            InterfaceField = fieldPath("vpc-id")
	FieldVPCIPv4CIDR      InterfaceField = fieldPath("vpc-ipv4-cidr-block")
)

// IPv4Association maps a public IP on the interface to the private IPv4
// address it is associated with. PublicIP is interpolated verbatim.
type IPv4Association struct {
	PublicIP string
}

func (f IPv4Association) Path() string  { return "ipv4-associations/" + f.PublicIP }
func (IPv4Association) interfaceField() {}

// A DynamicCategory identifies a dynamic data category: values generated
// or signed at request time rather than static instance attributes. Its
// path is relative to the dynamic/ prefix, which [Client.DynamicData]
// supplies.
type DynamicCategory interface {
	// Path returns the URL path for the category, relative to dynamic/.
	Path() string

	dynamicCategory()
}

type dynamicPath string

func (c dynamicPath) Path() string   { return string(c) }
func (dynamicPath) dynamicCategory() {}

// Dynamic data categories.
//
//nolint:gochecknoglobals
var (
	InstanceMonitoring DynamicCategory = dynamicPath("fws/instance-monitoring")
	IdentityDocument   DynamicCategory = dynamicPath("instance-identity/document")
	IdentityPKCS7      DynamicCategory = dynamicPath("instance-identity/pkcs7")
	IdentitySignature  DynamicCategory = dynamicPath("instance-identity/signature")
)

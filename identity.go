package ec2imds

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// InstanceIdentityDocument is the JSON document served at
// dynamic/instance-identity/document, describing the running instance.
// Fields the service reports as null are left at their zero values.
type InstanceIdentityDocument struct {
	AccountID               string    `json:"accountId"`
	Architecture            string    `json:"architecture"`
	AvailabilityZone        string    `json:"availabilityZone"`
	BillingProducts         []string  `json:"billingProducts"`
	DevpayProductCodes      []string  `json:"devpayProductCodes"`
	MarketplaceProductCodes []string  `json:"marketplaceProductCodes"`
	ImageID                 string    `json:"imageId"`
	InstanceID              string    `json:"instanceId"`
	InstanceType            string    `json:"instanceType"`
	KernelID                string    `json:"kernelId"`
	PendingTime             time.Time `json:"pendingTime"`
	PrivateIP               string    `json:"privateIp"`
	RamdiskID               string    `json:"ramdiskId"`
	Region                  string    `json:"region"`
	Version                 string    `json:"version"`
}

// InstanceIdentityDocument fetches and parses the instance identity
// document. For the PKCS7-wrapped or signed forms, fetch [IdentityPKCS7]
// or [IdentitySignature] with [Client.DynamicData] instead.
func (c *Client) InstanceIdentityDocument(ctx context.Context) (*InstanceIdentityDocument, error) {
	b, err := c.DynamicData(ctx, IdentityDocument)
	if err != nil {
		return nil, err
	}

	doc := &InstanceIdentityDocument{}
	if err := json.Unmarshal(b, doc); err != nil {
		return nil, fmt.Errorf("unmarshal identity document: %w", err)
	}

	return doc, nil
}

// InstanceProfile is the JSON document served at iam/info.
type InstanceProfile struct {
	Code               string    `json:"Code"`
	LastUpdated        time.Time `json:"LastUpdated"`
	InstanceProfileARN string    `json:"InstanceProfileArn"`
	InstanceProfileID  string    `json:"InstanceProfileId"`
}

// IAMInstanceProfile fetches and parses the instance profile information
// document. Instances launched without an instance profile have none, and
// the fetch fails with a 404 [*ResponseError].
func (c *Client) IAMInstanceProfile(ctx context.Context) (*InstanceProfile, error) {
	b, err := c.Metadata(ctx, IAM{Info: IAMProfileInfo})
	if err != nil {
		return nil, err
	}

	info := &InstanceProfile{}
	if err := json.Unmarshal(b, info); err != nil {
		return nil, fmt.Errorf("unmarshal instance profile info: %w", err)
	}

	return info, nil
}

// Credentials are the temporary security credentials for an IAM role
// associated with the instance profile, served at
// iam/security-credentials/<role>.
type Credentials struct {
	Code            string    `json:"Code"`
	LastUpdated     time.Time `json:"LastUpdated"`
	Type            string    `json:"Type"`
	AccessKeyID     string    `json:"AccessKeyId"`
	SecretAccessKey string    `json:"SecretAccessKey"`
	Token           string    `json:"Token"`
	Expiration      time.Time `json:"Expiration"`
}

// IAMCredentials fetches and parses the temporary credentials for the
// named role. Role names come from [Client.IAMRoles].
func (c *Client) IAMCredentials(ctx context.Context, role string) (*Credentials, error) {
	b, err := c.Metadata(ctx, IAM{Info: IAMSecurityCredentials{Role: &role}})
	if err != nil {
		return nil, err
	}

	creds := &Credentials{}
	if err := json.Unmarshal(b, creds); err != nil {
		return nil, fmt.Errorf("unmarshal credentials for %q: %w", role, err)
	}

	return creds, nil
}

// IAMRoles lists the IAM role names that credentials are available for,
// usually zero or one.
func (c *Client) IAMRoles(ctx context.Context) ([]string, error) {
	b, err := c.Metadata(ctx, IAM{Info: IAMSecurityCredentials{}})
	if err != nil {
		return nil, err
	}

	roles := []string{}

	for _, line := range strings.Split(string(b), "\n") {
		if line == "" {
			continue
		}

		roles = append(roles, line)
	}

	return roles, nil
}

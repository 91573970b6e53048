package ec2imds

import (
	"context"
	"testing"
	"time"

	"gotest.tools/v3/assert"
)

func TestClient_InstanceIdentityDocument(t *testing.T) {
	ctx := context.Background()
	c := fakeClient(t)

	doc, err := c.InstanceIdentityDocument(ctx)
	assert.NilError(t, err)

	assert.Equal(t, "0123456789", doc.AccountID)
	assert.Equal(t, "i-1234567890abcdef0", doc.InstanceID)
	assert.Equal(t, "m4.xlarge", doc.InstanceType)
	assert.Equal(t, "us-east-1", doc.Region)
	assert.Equal(t, "us-east-1f", doc.AvailabilityZone)
	assert.Equal(t, "x86_64", doc.Architecture)

	// null in the document - left at the zero value
	assert.Equal(t, "", doc.KernelID)
	assert.Assert(t, doc.BillingProducts == nil)

	assert.Assert(t, doc.PendingTime.Equal(time.Date(2019, 10, 31, 7, 2, 24, 0, time.UTC)))
}

func TestClient_IAMInstanceProfile(t *testing.T) {
	ctx := context.Background()
	c := fakeClient(t)

	info, err := c.IAMInstanceProfile(ctx)
	assert.NilError(t, err)

	assert.Equal(t, "Success", info.Code)
	assert.Equal(t, "arn:aws:iam::896453262835:instance-profile/baskinc-role", info.InstanceProfileARN)
	assert.Equal(t, "AIPA5BOGHHXZELSK34VU4", info.InstanceProfileID)
}

func TestClient_IAMRoles(t *testing.T) {
	ctx := context.Background()
	c := fakeClient(t)

	roles, err := c.IAMRoles(ctx)
	assert.NilError(t, err)
	assert.DeepEqual(t, []string{"baskinc-role"}, roles)
}

func TestClient_IAMCredentials(t *testing.T) {
	ctx := context.Background()
	c := fakeClient(t)

	creds, err := c.IAMCredentials(ctx, "baskinc-role")
	assert.NilError(t, err)

	assert.Equal(t, "Success", creds.Code)
	assert.Equal(t, "AWS-HMAC", creds.Type)
	assert.Equal(t, "12345678901", creds.AccessKeyID)
	assert.Equal(t, "v/12345678901", creds.SecretAccessKey)
	assert.Assert(t, creds.Token != "")
	assert.Assert(t, creds.Expiration.Equal(time.Date(2020, 4, 2, 0, 49, 51, 0, time.UTC)))
}

// Package fakeimds provides an httptest-backed fake of the EC2 instance
// metadata service, with a small fixed corpus of metadata. Directory
// listings are served the way the real service serves them: child names
// one per line, with a "/" suffix on the ones that have children.
package fakeimds

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"testing/fstest"
)

// Server starts a fake metadata service and returns it along with an
// ec2+imds URL pointing at it, for use with the imdsfs package. The server
// is shut down when the test ends. The base endpoint for a raw client is
// Endpoint(srv).
func Server(tb testing.TB) (*httptest.Server, *url.URL) {
	tb.Helper()

	srv := httptest.NewServer(Handler())
	tb.Cleanup(srv.Close)

	u, err := url.Parse(srv.URL)
	if err != nil {
		panic(err)
	}

	u.Scheme = "ec2+imds"

	return srv, u
}

// Endpoint returns the base endpoint of the fake service, in the form a
// client expects (ending in "/latest/").
func Endpoint(srv *httptest.Server) string {
	return srv.URL + "/latest/"
}

// Handler serves the fake metadata corpus. Unknown paths get a plain 404,
// like the real service.
func Handler() http.Handler {
	// directory listings are synthesized - we don't want HTML generated so
	// we provide a fake index.html with just the child names per line
	fsys := fstest.MapFS{
		"index.html":        file("latest/\n"),
		"latest/index.html": file("dynamic/\nmeta-data/\nuser-data"),

		"latest/dynamic/index.html":                   file("fws/\ninstance-identity/\n"),
		"latest/dynamic/fws/index.html":               file("instance-monitoring\n"),
		"latest/dynamic/fws/instance-monitoring":      file("disabled"),
		"latest/dynamic/instance-identity/index.html": file("document\npkcs7\nsignature"),
		"latest/dynamic/instance-identity/document": file(`{
	"accountId": "0123456789",
	"imageId": "ami-0b69ea66ff7391e80",
	"availabilityZone": "us-east-1f",
	"ramdiskId": null,
	"kernelId": null,
	"devpayProductCodes": null,
	"marketplaceProductCodes": null,
	"version": "2017-09-30",
	"privateIp": "10.0.7.10",
	"billingProducts": null,
	"instanceId": "i-1234567890abcdef0",
	"pendingTime": "2019-10-31T07:02:24Z",
	"architecture": "x86_64",
	"instanceType": "m4.xlarge",
	"region": "us-east-1"
}`),
		"latest/dynamic/instance-identity/pkcs7": file(
			"TESTCSqGSIb3DQEHZqCZPIZCZQExCzZJGgUrDgPCGgUZPIZGCSqGSIb3DQEHZaCZJIZEggHderog\n" +
				"ICJhY2NvdW50SWQiIDogIjUxNTPzNjU5NzP4PCIsCiZgImFyY2hpdGVjdHVyZSIgOiZieDg2XzY0"),
		"latest/dynamic/instance-identity/signature": file(
			"TesTTKmBbj+DUw6ut6BOr4mFGpax/k6BhIbsotUHvSIhqv7oKqwB4HZhgGP2Gvcxtz5m3QGUbnwI\n" +
				"hy33GWxjn7+qfZ/GUeZB1Ilc+3rW/P9G/tGxIB3HtqB6q2J6B4DOh6CJiH+BnrHazGW+bJD406Nz"),

		"latest/user-data": file("1234,john,reboot,true\n"),

		"latest/meta-data/index.html": file(`ami-id
ami-launch-index
ami-manifest-path
ancestor-ami-ids
block-device-mapping/
hostname
iam/
instance-action
instance-id
instance-type
kernel-id
local-hostname
local-ipv4
mac
network/
placement/
product-codes
public-hostname
public-ipv4
public-keys/
ramdisk-id
reservation-id
security-groups
`),

		"latest/meta-data/ami-id":            file("ami-0a887e401f7654935"),
		"latest/meta-data/ami-launch-index":  file("0"),
		"latest/meta-data/ami-manifest-path": file("(unknown)"),
		"latest/meta-data/ancestor-ami-ids":  file("ami-0b69ea66ff7391e80"),
		"latest/meta-data/hostname":          file("ip-172-16-34-43.ec2.internal"),
		"latest/meta-data/instance-action":   file("none"),
		"latest/meta-data/instance-id":       file("i-1234567890abcdef0"),
		"latest/meta-data/instance-type":     file("m4.xlarge"),
		"latest/meta-data/kernel-id":         file("aki-5c21674b"),
		"latest/meta-data/local-hostname":    file("ip-172-16-34-43.ec2.internal"),
		"latest/meta-data/local-ipv4":        file("172.16.34.43"),
		"latest/meta-data/mac":               file("0e:49:61:0f:c3:11"),
		"latest/meta-data/product-codes":     file("3iplms73etrdhxdepv72l6ywj"),
		"latest/meta-data/public-hostname":   file("ec2-192-0-2-54.compute-1.amazonaws.com"),
		"latest/meta-data/public-ipv4":       file("192.0.2.54"),
		"latest/meta-data/ramdisk-id":        file("ari-01bb5768"),
		"latest/meta-data/reservation-id":    file("r-046cb3eca3e201d2f"),
		"latest/meta-data/security-groups":   file("ura-launch-wizard-harry-1"),

		"latest/meta-data/block-device-mapping/index.html": file("ami\nebs0\nephemeral0\nroot\nswap"),
		"latest/meta-data/block-device-mapping/ami":        file("/dev/xvda"),
		"latest/meta-data/block-device-mapping/ebs0":       file("sdb"),
		"latest/meta-data/block-device-mapping/ephemeral0": file("sdb"),
		"latest/meta-data/block-device-mapping/root":       file("/dev/xvda"),
		"latest/meta-data/block-device-mapping/swap":       file("sdcs"),

		"latest/meta-data/iam/index.html": file("info\nsecurity-credentials/"),
		"latest/meta-data/iam/info": file(`{
	"Code": "Success",
	"LastUpdated": "2020-04-02T18:50:40Z",
	"InstanceProfileArn": "arn:aws:iam::896453262835:instance-profile/baskinc-role",
	"InstanceProfileId": "AIPA5BOGHHXZELSK34VU4"
}`),
		"latest/meta-data/iam/security-credentials/index.html": file("baskinc-role"),
		"latest/meta-data/iam/security-credentials/baskinc-role": file(`{
	"Code": "Success",
	"LastUpdated": "2020-04-02T18:50:40Z",
	"Type": "AWS-HMAC",
	"AccessKeyId": "12345678901",
	"SecretAccessKey": "v/12345678901",
	"Token": "TEST92test48TEST+y6RpoTEST92test48TEST/8oWVAiBqTEsT5Ky7ty2tEStxC1T==",
	"Expiration": "2020-04-02T00:49:51Z"
}`),

		"latest/meta-data/network/index.html":                 file("interfaces/"),
		"latest/meta-data/network/interfaces/index.html":      file("macs/"),
		"latest/meta-data/network/interfaces/macs/index.html": file("0e:49:61:0f:c3:11/"),
		"latest/meta-data/network/interfaces/macs/0e:49:61:0f:c3:11/index.html": file(`device-number
ipv4-associations/
local-hostname
local-ipv4s
mac
owner-id
public-hostname
public-ipv4s
security-group-ids
security-groups
subnet-id
subnet-ipv4-cidr-block
vpc-id
vpc-ipv4-cidr-block`),
		"latest/meta-data/network/interfaces/macs/0e:49:61:0f:c3:11/device-number":          file("0"),
		"latest/meta-data/network/interfaces/macs/0e:49:61:0f:c3:11/local-hostname":         file("ip-172-16-34-43.ec2.internal"),
		"latest/meta-data/network/interfaces/macs/0e:49:61:0f:c3:11/local-ipv4s":            file("172.16.34.43"),
		"latest/meta-data/network/interfaces/macs/0e:49:61:0f:c3:11/mac":                    file("0e:49:61:0f:c3:11"),
		"latest/meta-data/network/interfaces/macs/0e:49:61:0f:c3:11/owner-id":               file("515336597381"),
		"latest/meta-data/network/interfaces/macs/0e:49:61:0f:c3:11/public-hostname":        file("ec2-192-0-2-54.compute-1.amazonaws.com"),
		"latest/meta-data/network/interfaces/macs/0e:49:61:0f:c3:11/public-ipv4s":           file("192.0.2.54"),
		"latest/meta-data/network/interfaces/macs/0e:49:61:0f:c3:11/security-group-ids":     file("sg-0b07f8f6cb485d4df"),
		"latest/meta-data/network/interfaces/macs/0e:49:61:0f:c3:11/security-groups":        file("ura-launch-wizard-harry-1"),
		"latest/meta-data/network/interfaces/macs/0e:49:61:0f:c3:11/subnet-id":              file("subnet-0ac62554"),
		"latest/meta-data/network/interfaces/macs/0e:49:61:0f:c3:11/subnet-ipv4-cidr-block": file("192.0.2.0/24"),
		"latest/meta-data/network/interfaces/macs/0e:49:61:0f:c3:11/vpc-id":                 file("vpc-d295a6a7"),
		"latest/meta-data/network/interfaces/macs/0e:49:61:0f:c3:11/vpc-ipv4-cidr-block":    file("192.0.2.0/24"),

		"latest/meta-data/network/interfaces/macs/0e:49:61:0f:c3:11/ipv4-associations/index.html": file("192.0.2.54"),
		"latest/meta-data/network/interfaces/macs/0e:49:61:0f:c3:11/ipv4-associations/192.0.2.54": file("172.16.34.43"),

		"latest/meta-data/placement/index.html":        file("availability-zone\nregion"),
		"latest/meta-data/placement/availability-zone": file("us-east-1a"),
		"latest/meta-data/placement/region":            file("us-east-1"),

		"latest/meta-data/public-keys/index.html":   file("0/"),
		"latest/meta-data/public-keys/0/index.html": file("openssh-key"),
		"latest/meta-data/public-keys/0/openssh-key": file(
			"ssh-rsa AAAAB3NzaC1yc2EAAAADAQABAAABAQC/JxGByvHDHgQAU+0nRFWdvMPi22OgNUn9ansrI8QN1ZJGxD1ML8DRnJ3Q3zFKqqjGucfNWW0xpVib+ttkIBp8G9P/EOcX9C3FF63O3SnnIUHJsp5faRAZsTJPx0G5HUbvhBvnAcCtSqQgmr02c1l582vAWx48pOmeXXMkl9qe9V/s7K3utmeZkRLo9DqnbsDlg5GWxLC test"),
	}

	return permRedirectMW(http.FileServer(http.FS(fsys)))
}

func file(data string) *fstest.MapFile {
	return &fstest.MapFile{Data: []byte(data)}
}

// permRedirectMW retries 301s with a trailing "/" appended - the file
// server redirects on directory paths, but the real metadata endpoint
// doesn't care about trailing slashes.
func permRedirectMW(pathHandler http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		wrec := httptest.NewRecorder()
		pathHandler.ServeHTTP(wrec, r)

		if wrec.Code == http.StatusMovedPermanently {
			if !strings.HasSuffix(r.URL.Path, "/") {
				r.URL.Path += "/"
			}

			pathHandler.ServeHTTP(w, r)

			return
		}

		for k, v := range wrec.Header() {
			w.Header()[k] = v
		}

		w.WriteHeader(wrec.Code)
		_, _ = w.Write(wrec.Body.Bytes())
	})
}

package ec2imds

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/hairyhenderson/go-ec2imds/internal/tests/fakeimds"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fakeClient(t *testing.T) *Client {
	t.Helper()

	srv, _ := fakeimds.Server(t)

	return New(WithEndpoint(fakeimds.Endpoint(srv)))
}

func TestClient_Metadata(t *testing.T) {
	ctx := context.Background()
	c := fakeClient(t)

	b, err := c.Metadata(ctx, InstanceID)
	require.NoError(t, err)
	assert.Equal(t, "i-1234567890abcdef0", string(b))

	b, err = c.Metadata(ctx, BlockDeviceMapping{Mapping: EBSVolume{Index: 0}})
	require.NoError(t, err)
	assert.Equal(t, "sdb", string(b))

	b, err = c.Metadata(ctx, NetworkInterface{MAC: "0e:49:61:0f:c3:11", Field: FieldSubnetID})
	require.NoError(t, err)
	assert.Equal(t, "subnet-0ac62554", string(b))
}

func TestClient_DynamicData(t *testing.T) {
	ctx := context.Background()
	c := fakeClient(t)

	b, err := c.DynamicData(ctx, InstanceMonitoring)
	require.NoError(t, err)
	assert.Equal(t, "disabled", string(b))
}

func TestClient_TrimsOneTrailingNewline(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/latest/meta-data/one":
			_, _ = w.Write([]byte("i-1234\n"))
		case "/latest/meta-data/none":
			_, _ = w.Write([]byte("i-1234"))
		case "/latest/meta-data/two":
			_, _ = w.Write([]byte("i-1234\n\n"))
		case "/latest/meta-data/empty":
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)

	ctx := context.Background()
	c := New(WithEndpoint(fakeimds.Endpoint(srv)))

	b, err := c.MetadataAt(ctx, "one")
	require.NoError(t, err)
	assert.Equal(t, "i-1234", string(b))

	b, err = c.MetadataAt(ctx, "none")
	require.NoError(t, err)
	assert.Equal(t, "i-1234", string(b))

	// only one trailing newline is stripped
	b, err = c.MetadataAt(ctx, "two")
	require.NoError(t, err)
	assert.Equal(t, "i-1234\n", string(b))

	b, err = c.MetadataAt(ctx, "empty")
	require.NoError(t, err)
	assert.Empty(t, b)
}

func TestClient_UserData(t *testing.T) {
	ctx := context.Background()
	c := fakeClient(t)

	b, found, err := c.UserData(ctx)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "1234,john,reboot,true", string(b))
}

func TestClient_UserDataAbsent(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	t.Cleanup(srv.Close)

	ctx := context.Background()
	c := New(WithEndpoint(fakeimds.Endpoint(srv)))

	// a 404 means the instance was launched without user data - that's an
	// absent value, not an error
	b, found, err := c.UserData(ctx)
	require.NoError(t, err)
	assert.False(t, found)
	assert.Nil(t, b)

	// 404 is only special for user data
	_, err = c.MetadataAt(ctx, "instance-id")
	require.Error(t, err)

	respErr := &ResponseError{}
	require.ErrorAs(t, err, &respErr)
	assert.Equal(t, http.StatusNotFound, respErr.StatusCode)
}

func TestClient_UserDataServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	t.Cleanup(srv.Close)

	ctx := context.Background()
	c := New(WithEndpoint(fakeimds.Endpoint(srv)))

	_, found, err := c.UserData(ctx)
	require.Error(t, err)
	assert.False(t, found)

	respErr := &ResponseError{}
	require.ErrorAs(t, err, &respErr)
	assert.Equal(t, http.StatusInternalServerError, respErr.StatusCode)
}

func TestClient_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	endpoint := fakeimds.Endpoint(srv)
	srv.Close()

	ctx := context.Background()
	c := New(WithEndpoint(endpoint))

	_, err := c.Metadata(ctx, InstanceID)
	require.Error(t, err)

	// connection errors are surfaced as-is, never as a ResponseError
	respErr := &ResponseError{}
	assert.False(t, errors.As(err, &respErr))
}

func TestClient_OnEC2(t *testing.T) {
	ctx := context.Background()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "teapot", http.StatusTeapot)
	}))
	t.Cleanup(srv.Close)

	// any completed request counts, whatever the response says
	c := New(WithProbeEndpoint(srv.URL))
	assert.True(t, c.OnEC2(ctx))

	deadSrv := httptest.NewServer(http.NotFoundHandler())
	deadURL := deadSrv.URL
	deadSrv.Close()

	c = New(WithProbeEndpoint(deadURL))
	assert.False(t, c.OnEC2(ctx))
}

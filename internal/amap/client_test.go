package amap

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, h http.HandlerFunc, opts ...Option) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewClient("k", append([]Option{WithBaseURL(srv.URL), WithHTTPClient(srv.Client())}, opts...)...)
}

func TestSign(t *testing.T) {
	sum := md5.Sum([]byte("a=1&b=2pk"))
	want := hex.EncodeToString(sum[:])
	assert.Equal(t, want, Sign(map[string]string{"b": "2", "a": "1"}, "pk"))
	assert.Equal(t, want, Sign(map[string]string{"b": "2", "a": "1", "sig": "old"}, "pk"))
}

func TestClientReGeoCode(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, PathReGeoCode, r.URL.Path)
		q := r.URL.Query()
		assert.Equal(t, "k", q.Get("key"))
		assert.Equal(t, "116.481000,39.990000", q.Get("location"))
		assert.Equal(t, "base", q.Get("extensions"))
		assert.Empty(t, q.Get("sig"))
		_, _ = io.WriteString(w, `{"status":"1","info":"OK","infocode":"10000","regeocode":{"formatted_address":"X"}}`)
	})
	req, err := NewReGeoCodeRequestParams(Args{"location": "116.481,39.99"})
	require.NoError(t, err)
	resp, err := c.ReGeoCode(context.Background(), req)
	require.NoError(t, err)
	require.Len(t, resp.Data, 1)
	assert.Equal(t, "X", resp.Data[0].FormattedAddress())
}

func TestClientSignsWithRequestPrivateKey(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Empty(t, q.Get("private_key"))
		params := map[string]string{}
		for k := range q {
			params[k] = q.Get(k)
		}
		assert.Equal(t, Sign(params, "secret"), q.Get("sig"))
		_, _ = io.WriteString(w, `{"status":"1","regeocode":{}}`)
	}, WithPrivateKey("client-default"))
	req, err := NewReGeoCodeRequestParams(Args{"location": "1,2", "private_key": "secret"})
	require.NoError(t, err)
	_, err = c.ReGeoCode(context.Background(), req)
	require.NoError(t, err)
}

func TestClientAPIError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"status":"0","info":"INVALID_USER_KEY","infocode":"10001"}`)
	})
	req, err := NewReGeoCodeRequestParams(Args{"location": "1,2"})
	require.NoError(t, err)
	resp, err := c.ReGeoCode(context.Background(), req)
	require.NotNil(t, resp)
	var ae *APIError
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, "INVALID_USER_KEY", ae.Info)
	assert.Empty(t, resp.Data)
}

func TestClientHTTPStatus(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})
	_, err := c.IP(context.Background(), "1.2.3.4")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
}

func TestClientDecodeError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `<xml/>`)
	})
	req, err := NewGeoCodeRequestParams(Args{"address": "x"})
	require.NoError(t, err)
	_, err = c.GeoCode(context.Background(), req)
	assert.ErrorIs(t, err, ErrFormat)
}

func TestClientMissingKey(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
	}))
	defer srv.Close()
	c := NewClient("", WithBaseURL(srv.URL))
	_, err := c.Do(context.Background(), PathIP, map[string]string{}, "")
	assert.ErrorIs(t, err, ErrMissingParameter)
	assert.Zero(t, atomic.LoadInt32(&hits))

	body, err := c.Do(context.Background(), PathIP, map[string]string{"key": "from-args"}, "")
	require.NoError(t, err)
	assert.Empty(t, body)
	assert.EqualValues(t, 1, atomic.LoadInt32(&hits))
}

type denyQuota struct{ calls int32 }

func (d *denyQuota) Allow(context.Context) (bool, error) {
	atomic.AddInt32(&d.calls, 1)
	return false, nil
}

func TestClientQuotaExceeded(t *testing.T) {
	var hits int32
	q := &denyQuota{}
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
	}, WithQuota(q), WithQPS(100))
	_, err := c.IP(context.Background(), "")
	assert.ErrorIs(t, err, ErrQuotaExceeded)
	assert.EqualValues(t, 1, q.calls)
	assert.Zero(t, atomic.LoadInt32(&hits))
}

func TestClientIP(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, PathIP, r.URL.Path)
		assert.Equal(t, "114.247.50.2", r.URL.Query().Get("ip"))
		_, _ = io.WriteString(w, `{"status":"1","province":"北京市","city":"北京市","adcode":"110000","rectangle":"116.01,39.66;116.78,40.21"}`)
	})
	resp, err := c.IP(context.Background(), "114.247.50.2")
	require.NoError(t, err)
	assert.Equal(t, "北京市", resp.Data.Province())
}

func TestClientBatch(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, PathBatch, r.URL.Path)
		assert.Equal(t, "k", r.URL.Query().Get("key"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		var body struct {
			Ops []struct {
				URL string `json:"url"`
			} `json:"ops"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Len(t, body.Ops, 2)
		assert.Equal(t, "/v3/geocode/regeo?key=k&location=1.000000%2C2.000000", body.Ops[0].URL)
		_, _ = io.WriteString(w, `[{"status":200,"body":{"status":"1","regeocode":{"formatted_address":"A"}}},
			{"status":200,"body":{"status":"1","regeocode":{"formatted_address":"B"}}}]`)
	})
	res, err := c.Batch(context.Background(), []BatchOp{
		{Path: PathReGeoCode, Params: map[string]string{"location": "1.000000,2.000000"}},
		{Path: PathReGeoCode, Params: map[string]string{"location": "3.000000,4.000000"}},
	})
	require.NoError(t, err)
	require.Len(t, res, 2)
	second, err := ParseReGeoCodeResponse(res[1].Body)
	require.NoError(t, err)
	assert.Equal(t, "B", second.Data[0].FormattedAddress())
}

func TestClientContextCanceled(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"status":"1"}`)
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := c.IP(ctx, "1.2.3.4")
	assert.ErrorIs(t, err, context.Canceled)
}

package amap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIPParams(t *testing.T) {
	req, err := NewIPRequestParams(Args{"ip": "114.247.50.2"})
	require.NoError(t, err)
	p, err := req.PrepareData()
	require.NoError(t, err)
	params, err := p.GenerateParams()
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"ip": "114.247.50.2"}, params)

	req, err = NewIPRequestParams(Args{})
	require.NoError(t, err)
	p, err = req.PrepareData()
	require.NoError(t, err)
	params, err = p.GenerateParams()
	require.NoError(t, err)
	assert.Empty(t, params)
}

func TestParseIPResponse(t *testing.T) {
	raw := `{"status":"1","info":"OK","infocode":"10000","province":"北京市","city":"北京市","adcode":"110000",
		"rectangle":"116.0119343,39.66127144;116.7829836,40.2164962"}`
	resp, err := ParseIPResponse([]byte(raw))
	require.NoError(t, err)
	assert.True(t, resp.OK())
	assert.Equal(t, "110000", resp.Data.Adcode())
	sw, ne, ok := resp.Data.Bounds()
	require.True(t, ok)
	assert.Equal(t, Location{Lng: 116.011934, Lat: 39.661271}, sw)
	assert.Equal(t, Location{Lng: 116.782984, Lat: 40.216496}, ne)
}

func TestParseIPResponseUnknown(t *testing.T) {
	resp, err := ParseIPResponse([]byte(`{"status":"1","province":[],"city":[],"adcode":[],"rectangle":[]}`))
	require.NoError(t, err)
	assert.False(t, resp.Data.Has("province"))
	_, _, ok := resp.Data.Bounds()
	assert.False(t, ok)
}

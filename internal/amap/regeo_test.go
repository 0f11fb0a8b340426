package amap

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func generateReGeo(t *testing.T, args Args) map[string]string {
	t.Helper()
	req, err := NewReGeoCodeRequestParams(args)
	require.NoError(t, err)
	p, err := req.PrepareData()
	require.NoError(t, err)
	params, err := p.GenerateParams()
	require.NoError(t, err)
	return params
}

func allExtensions(t *testing.T, opts Options) Extensions {
	t.Helper()
	ext, err := NewExtensions(ExtensionAll, opts)
	require.NoError(t, err)
	return ext
}

func TestReGeoMinimal(t *testing.T) {
	params := generateReGeo(t, Args{"location": "116.481,39.99"})
	assert.Equal(t, map[string]string{
		"location":   "116.481000,39.990000",
		"extensions": "base",
	}, params)
}

func TestReGeoRadiusBounds(t *testing.T) {
	for _, r := range []any{0, 3000, 1000.5, json.Number("200")} {
		params := generateReGeo(t, Args{"location": "116.481,39.99", "radius": r})
		assert.Contains(t, params, "radius")
	}
	assert.Equal(t, "0", generateReGeo(t, Args{"location": "1,2", "radius": 0})["radius"])
	assert.Equal(t, "1000.5", generateReGeo(t, Args{"location": "1,2", "radius": 1000.5})["radius"])

	for _, r := range []any{-1, 3001, 3000.01, math.NaN(), math.Inf(1), json.Number("NaN")} {
		req, err := NewReGeoCodeRequestParams(Args{"location": "116.481,39.99", "radius": r})
		require.NoError(t, err)
		_, err = req.PrepareData()
		var re *ParameterRangeError
		require.ErrorAs(t, err, &re, "%v", r)
		assert.Equal(t, "radius", re.Field)
		assert.Equal(t, "re_geo radius range must in 0~3000m", re.Bound)
		assert.ErrorIs(t, err, ErrParameterRange)
	}
}

func TestReGeoExtensionsAll(t *testing.T) {
	params := generateReGeo(t, Args{
		"location": "116.481,39.99",
		"extensions": allExtensions(t, Options{
			"poi_type":     []string{"010000", "050000"},
			"road_level":   0,
			"home_or_corp": 2,
		}),
	})
	assert.Equal(t, "all", params["extensions"])
	assert.Equal(t, "010000|050000", params["poitype"])
	assert.Equal(t, "0", params["roadlevel"])
	assert.Equal(t, "2", params["homeorcorp"])
}

func TestReGeoExtensionsAllWithoutOptions(t *testing.T) {
	params := generateReGeo(t, Args{"location": "1,2", "extensions": allExtensions(t, nil)})
	assert.Equal(t, "all", params["extensions"])
	assert.NotContains(t, params, "poitype")
	assert.NotContains(t, params, "roadlevel")
	assert.NotContains(t, params, "homeorcorp")
}

func TestReGeoExtensionsBaseIgnoresOptions(t *testing.T) {
	ext, err := NewExtensions("base", Options{"poi_type": "010000", "road_level": 1, "home_or_corp": 1})
	require.NoError(t, err)
	params := generateReGeo(t, Args{"location": "1,2", "extensions": ext})
	assert.Equal(t, map[string]string{"location": "1.000000,2.000000", "extensions": "base"}, params)
}

func TestReGeoExtensionsFlagValue(t *testing.T) {
	params := generateReGeo(t, Args{"location": "1,2", "extensions": "all"})
	assert.Equal(t, "all", params["extensions"])
	params = generateReGeo(t, Args{"location": "1,2", "extensions": true})
	assert.Equal(t, "all", params["extensions"])
}

func TestReGeoRoadLevelAndHomeOrCorpCoercion(t *testing.T) {
	cases := []struct {
		road, home         any
		wantRoad, wantHome string
	}{
		{0, 0, "0", "0"},
		{1, 1, "1", "1"},
		{5, 2, "1", "2"},
		{-3, 7, "1", "0"},
		{RoadLevelDirect, HomeOrCorpHome, "1", "1"},
	}
	for _, c := range cases {
		params := generateReGeo(t, Args{
			"location":   "1,2",
			"extensions": allExtensions(t, Options{"road_level": c.road, "home_or_corp": c.home}),
		})
		assert.Equal(t, c.wantRoad, params["roadlevel"], "%v", c.road)
		assert.Equal(t, c.wantHome, params["homeorcorp"], "%v", c.home)
	}
}

func TestReGeoExtensionAliases(t *testing.T) {
	params := generateReGeo(t, Args{
		"location":   "1,2",
		"extensions": allExtensions(t, Options{"poitype": "a", "poi_type": "b", "roadlevel": 1, "homeorcorp": 1}),
	})
	assert.Equal(t, "b", params["poitype"])
	assert.Equal(t, "1", params["roadlevel"])
	assert.Equal(t, "1", params["homeorcorp"])
}

func TestReGeoBatchLocations(t *testing.T) {
	req, err := NewReGeoCodeRequestParams(Args{
		"location": []any{"116.481,39.99", Location{Lng: 116.5, Lat: 40}},
		"batch":    true,
	})
	require.NoError(t, err)
	p, err := req.PrepareData()
	require.NoError(t, err)
	assert.True(t, p.Batch())
	assert.Len(t, p.Locations(), 2)
	params, err := p.GenerateParams()
	require.NoError(t, err)
	assert.Equal(t, "116.481000,39.990000|116.500000,40.000000", params["location"])
	assert.Equal(t, "true", params["batch"])

	params = generateReGeo(t, Args{"location": "1,2", "batch": BatchOff})
	assert.Equal(t, "false", params["batch"])
}

func TestReGeoBaseFields(t *testing.T) {
	req, err := NewReGeoCodeRequestParams(Args{
		"location":    "1,2",
		"key":         "k",
		"sig":         "s",
		"private_key": "pk",
		"output":      "xml",
		"callback":    "cb",
	})
	require.NoError(t, err)
	p, err := req.PrepareData()
	require.NoError(t, err)
	pk, ok := p.PrivateKey()
	assert.True(t, ok)
	assert.Equal(t, "pk", pk)
	params, err := p.GenerateParams()
	require.NoError(t, err)
	assert.Equal(t, "k", params["key"])
	assert.Equal(t, "s", params["sig"])
	assert.Equal(t, "XML", params["output"])
	assert.Equal(t, "cb", params["callback"])
	assert.NotContains(t, params, "private_key")

	params = generateReGeo(t, Args{"location": "1,2", "output": OutputJSON})
	assert.Equal(t, "JSON", params["output"])

	req, err = NewReGeoCodeRequestParams(Args{"location": "1,2", "output": "yaml"})
	require.NoError(t, err)
	_, err = req.PrepareData()
	assert.ErrorIs(t, err, ErrFormat)
}

func TestReGeoMissingLocation(t *testing.T) {
	_, err := NewReGeoCodeRequestParams(Args{"radius": 10})
	var me *MissingParameterError
	require.ErrorAs(t, err, &me)
	assert.Equal(t, "location", me.Field)

	_, err = NewReGeoCodeRequestParams(Args{"location": nil})
	assert.ErrorIs(t, err, ErrMissingParameter)

	req, err := NewReGeoCodeRequestParams(Args{"location": []any{42}})
	require.NoError(t, err)
	_, err = req.PrepareData()
	assert.ErrorIs(t, err, ErrMissingParameter)
}

func TestReGeoTypeErrors(t *testing.T) {
	cases := []struct {
		args  Args
		field string
		got   ValueKind
	}{
		{Args{"location": 5}, "location", KindInt},
		{Args{"location": "1,2", "radius": "100"}, "radius", KindString},
		{Args{"location": "1,2", "batch": "yes"}, "batch", KindString},
		{Args{"location": "1,2", "key": 123}, "key", KindInt},
		{Args{"location": "1,2", "extensions": allExtensions(t, Options{"road_level": "1"})}, "road_level", KindString},
		{Args{"location": "1,2", "extensions": allExtensions(t, Options{"home_or_corp": RoadLevelAll})}, "home_or_corp", KindRoadLevel},
	}
	for _, c := range cases {
		req, err := NewReGeoCodeRequestParams(c.args)
		require.NoError(t, err)
		_, err = req.PrepareData()
		var te *ParamTypeError
		require.ErrorAs(t, err, &te, "%v", c.args)
		assert.Equal(t, c.field, te.Field)
		assert.Equal(t, c.got, te.Got)
		assert.ErrorIs(t, err, ErrParamType)
	}
}

func TestReGeoUnknownParameter(t *testing.T) {
	_, err := NewReGeoCodeRequestParams(Args{"location": "1,2", "adress": "x"})
	var te *ParamTypeError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, "adress", te.Field)
	assert.Equal(t, KindString, te.Got)
	assert.ErrorIs(t, err, ErrParamType)
	assert.Contains(t, err.Error(), `unexpected parameter "adress"`)
}

func TestReGeoNonFiniteLocation(t *testing.T) {
	req, err := NewReGeoCodeRequestParams(Args{"location": Location{Lng: math.Inf(1), Lat: math.NaN()}})
	require.NoError(t, err)
	p, err := req.PrepareData()
	assert.Nil(t, p)
	assert.ErrorIs(t, err, ErrFormat)
}

func TestReGeoSerializeOnce(t *testing.T) {
	req, err := NewReGeoCodeRequestParams(Args{"location": "1,2"})
	require.NoError(t, err)
	assert.Equal(t, StateValidated, req.State())

	p, err := req.PrepareData()
	require.NoError(t, err)
	assert.Equal(t, StatePrepared, p.State())
	_, err = p.GenerateParams()
	require.NoError(t, err)
	assert.Equal(t, StateSerialized, p.State())
	_, err = p.GenerateParams()
	assert.ErrorIs(t, err, ErrAlreadySerialized)

	again, err := req.PrepareData()
	require.NoError(t, err)
	params, err := again.GenerateParams()
	require.NoError(t, err)
	assert.Equal(t, "1.000000,2.000000", params["location"])
}

func TestReGeoGenerateWithoutPrepare(t *testing.T) {
	var p PreparedReGeoCodeRequestParams
	_, err := p.GenerateParams()
	assert.ErrorIs(t, err, ErrNotPrepared)
}

func TestReGeoPrepareFailureLeavesNoState(t *testing.T) {
	p := &PreparedReGeoCodeRequestParams{}
	err := p.Prepare(Args{"location": "1,2", "radius": 5000})
	require.Error(t, err)
	_, err = p.GenerateParams()
	assert.ErrorIs(t, err, ErrNotPrepared)
}

const regeoFull = `{
  "status": "1", "info": "OK", "infocode": "10000",
  "regeocode": {
    "formatted_address": "北京市朝阳区望京街道方恒国际中心B座",
    "addressComponent": {
      "province": "北京市", "city": [], "citycode": "010", "district": "朝阳区",
      "adcode": "110105", "township": "望京街道", "towncode": "110105026000",
      "neighborhood": {"name": "方恒国际中心", "type": "商务住宅;楼宇;商务写字楼"},
      "building": {"name": [], "type": []},
      "streetNumber": {"street": "阜通东大街", "number": "6号", "location": "116.480724,39.989584", "direction": "西北", "distance": "22.1"},
      "businessAreas": [{"location": "116.470293,39.996171", "name": "望京", "id": "110105"}, []]
    },
    "pois": [{"id": "B0FFFAB6J2", "name": "方恒国际中心", "location": "116.481,39.99", "distance": "12"}],
    "roads": [],
    "roadinters": [{"first_name": "阜通东大街", "second_name": "望京街", "location": "oops"}],
    "aois": [{"id": "B000A7BM4H", "name": "方恒国际中心", "area": "1.5"}]
  }
}`

func TestParseReGeoCodeResponseFull(t *testing.T) {
	resp, err := ParseReGeoCodeResponse([]byte(regeoFull))
	require.NoError(t, err)
	assert.True(t, resp.OK())
	assert.NoError(t, resp.Err())
	assert.Equal(t, "10000", resp.InfoCode)
	require.Len(t, resp.Data, 1)

	d := resp.Data[0]
	assert.Equal(t, "北京市朝阳区望京街道方恒国际中心B座", d.FormattedAddress())

	ac := d.AddressComponent()
	assert.Equal(t, "北京市", ac.Province())
	assert.False(t, ac.Has("city"))
	assert.Equal(t, "", ac.City())
	assert.Equal(t, "110105", ac.Adcode())
	assert.Equal(t, "方恒国际中心", ac.Neighborhood().Name())
	assert.False(t, ac.Building().Has("name"))

	sn := ac.StreetNumber()
	assert.Equal(t, "6号", sn.Number())
	loc, ok := sn.Location()
	require.True(t, ok)
	assert.Equal(t, Location{Lng: 116.480724, Lat: 39.989584}, loc)

	areas := ac.BusinessAreas()
	require.Len(t, areas, 1)
	assert.Equal(t, "望京", areas[0].Name())

	pois := d.Pois()
	require.Len(t, pois, 1)
	assert.Equal(t, "B0FFFAB6J2", pois[0].ID())
	assert.False(t, pois[0].Has("tel"))

	assert.NotNil(t, d.Roads())
	assert.Empty(t, d.Roads())

	inters := d.RoadInters()
	require.Len(t, inters, 1)
	assert.Equal(t, "望京街", inters[0].SecondName())
	_, ok = inters[0].Location()
	assert.False(t, ok)

	require.Len(t, d.AOIs(), 1)
	assert.Equal(t, "1.5", d.AOIs()[0].Area())
}

func TestParseReGeoCodeResponseEmptyPois(t *testing.T) {
	resp, err := ParseReGeoCodeResponse([]byte(`{"regeocode":{"formatted_address":"X","pois":[]}}`))
	require.NoError(t, err)
	require.Len(t, resp.Data, 1)
	d := resp.Data[0]
	assert.Equal(t, "X", d.FormattedAddress())
	assert.NotNil(t, d.Pois())
	assert.Empty(t, d.Pois())

	ac := d.AddressComponent()
	require.NotNil(t, ac.Record)
	for _, p := range ac.Schema().Properties() {
		switch p {
		case "neighborhood", "building", "street_number", "business_areas":
			continue
		}
		assert.False(t, ac.Has(p), p)
	}
	assert.False(t, ac.StreetNumber().Has("street"))
	assert.Empty(t, ac.BusinessAreas())
}

func TestParseReGeoCodeResponsePlural(t *testing.T) {
	resp, err := ParseReGeoCodeResponse([]byte(`{"status":"1","count":"2","regeocodes":[{"formatted_address":"A"},{"formatted_address":"B"}]}`))
	require.NoError(t, err)
	assert.Equal(t, 2, resp.Count)
	require.Len(t, resp.Data, 2)
	assert.Equal(t, "A", resp.Data[0].FormattedAddress())
	assert.Equal(t, "B", resp.Data[1].FormattedAddress())
}

func TestParseReGeoCodeResponseNoData(t *testing.T) {
	for _, raw := range []string{`{"status":"1","regeocode":[]}`, `{"status":"1","regeocodes":[]}`, `{"status":"1"}`} {
		resp, err := ParseReGeoCodeResponse([]byte(raw))
		require.NoError(t, err, raw)
		assert.NotNil(t, resp.Data)
		assert.Empty(t, resp.Data, raw)
	}
}

func TestParseReGeoCodeResponseAPIError(t *testing.T) {
	resp, err := ParseReGeoCodeResponse([]byte(`{"status":"0","info":"INVALID_USER_KEY","infocode":"10001"}`))
	require.NoError(t, err)
	assert.False(t, resp.OK())
	var ae *APIError
	require.ErrorAs(t, resp.Err(), &ae)
	assert.Equal(t, "10001", ae.InfoCode)
	assert.ErrorIs(t, resp.Err(), ErrAPI)
}

func TestParseReGeoCodeResponseMalformed(t *testing.T) {
	_, err := ParseReGeoCodeResponse([]byte(`{"status":`))
	assert.ErrorIs(t, err, ErrFormat)
	_, err = ParseReGeoCodeResponse([]byte(`["status"]`))
	assert.ErrorIs(t, err, ErrSchema)
}

func TestReGeoDataMarshalJSON(t *testing.T) {
	resp, err := ParseReGeoCodeResponse([]byte(`{"regeocode":{"formatted_address":"X"}}`))
	require.NoError(t, err)
	b, err := json.Marshal(resp.Data[0])
	require.NoError(t, err)
	var m map[string]any
	require.NoError(t, json.Unmarshal(b, &m))
	assert.Equal(t, "X", m["formatted_address"])
	assert.Equal(t, []any{}, m["pois"])
}

package amap

import (
	"math"
	"strconv"
)

// 逆地理编码：https://lbs.amap.com/api/webservice/guide/api/georegeo

const (
	regeoRouteSingle = "regeocode"
	regeoRouteMulti  = "regeocodes"

	// RadiusMax 逆地理搜索半径上限（米）
	RadiusMax = 3000
)

var regeoSpecs = baseSpecs.with(
	FieldSpec{Name: "location", Kinds: []ValueKind{KindString, KindPair, KindList}},
	FieldSpec{Name: "radius", Kinds: []ValueKind{KindInt, KindFloat}},
	FieldSpec{Name: "batch", Kinds: []ValueKind{KindBool, KindBatchFlag}},
	FieldSpec{Name: "extensions", Kinds: []ValueKind{KindExtensionFlag}},
	FieldSpec{Name: "poi_type", Kinds: []ValueKind{KindList, KindString}},
	FieldSpec{Name: "road_level", Kinds: []ValueKind{KindInt, KindRoadLevel}},
	FieldSpec{Name: "home_or_corp", Kinds: []ValueKind{KindInt, KindHomeOrCorp}},
)

// 文档注释：逆地理编码请求参数
// 参数（Args 键）：
// - location：必填，"lng,lat" 字符串（可用 "|" 拼接多个）、Location/[2]float64，或二者混合的切片；
// - radius：搜索半径 0~3000 米；
// - batch：bool 或 BatchFlag，多坐标时需开启；
// - extensions：Extensions 或开关值；all 模式下子选项 poi_type/road_level/home_or_corp 生效；
// - key/sig/private_key/output/callback：公共字段。
// 约束：设置 private_key 时由传输层追加 sig，需在控制台开启数字签名。
type ReGeoCodeRequestParams struct {
	BaseRequestParams
	Location   any
	Radius     any
	Batch      any
	Extensions Extensions
}

func NewReGeoCodeRequestParams(args Args) (*ReGeoCodeRequestParams, error) {
	base, own, err := newBaseRequestParams(args, []string{"location", "radius", "batch", "extensions"}, "location")
	if err != nil {
		return nil, err
	}
	ext, err := asExtensions(own["extensions"])
	if err != nil {
		return nil, err
	}
	return &ReGeoCodeRequestParams{
		BaseRequestParams: base,
		Location:          own["location"],
		Radius:            own["radius"],
		Batch:             own["batch"],
		Extensions:        ext,
	}, nil
}

// PrepareData 生成新的已就绪参数；不修改请求对象本身，可重复调用
func (r *ReGeoCodeRequestParams) PrepareData() (*PreparedReGeoCodeRequestParams, error) {
	fields := r.baseArgs(Args{
		"location":   r.Location,
		"radius":     r.Radius,
		"batch":      r.Batch,
		"extensions": r.Extensions.Status,
	})
	if r.Extensions.Enabled() {
		fields["poi_type"] = r.Extensions.Get("poi_type")
		fields["road_level"] = r.Extensions.Get("road_level")
		fields["home_or_corp"] = r.Extensions.Get("home_or_corp")
	}
	p := &PreparedReGeoCodeRequestParams{}
	if err := p.Prepare(fields); err != nil {
		return nil, err
	}
	return p, nil
}

// PreparedReGeoCodeRequestParams 逆地理编码已就绪参数
type PreparedReGeoCodeRequestParams struct {
	BasePrepared
	location   []Location
	radius     *float64
	batch      *BatchFlag
	extensions *ExtensionFlag
	poiType    []string
	roadLevel  *RoadLevel
	homeOrCorp *HomeOrCorpControl
}

// 文档注释：校验并归一化逆地理字段
// 约束：先按声明类别做类型校验，再逐字段转换；任一字段失败则整体失败，不产生部分结果。
func (p *PreparedReGeoCodeRequestParams) Prepare(fields Args) error {
	if err := regeoSpecs.Check(fields); err != nil {
		return err
	}
	steps := []func() error{
		func() error { return p.prepareLocation(fields["location"]) },
		func() error { return p.prepareRadius(fields["radius"]) },
		func() error { return p.prepareBatch(fields["batch"]) },
		func() error { return p.prepareExtensions(fields["extensions"]) },
		func() error { return p.prepareBase(fields) },
		func() error { return p.preparePoiType(fields["poi_type"]) },
		func() error { return p.prepareRoadLevel(fields["road_level"]) },
		func() error { return p.prepareHomeOrCorp(fields["home_or_corp"]) },
	}
	for _, step := range steps {
		if err := step(); err != nil {
			return err
		}
	}
	p.markPrepared()
	return nil
}

func (p *PreparedReGeoCodeRequestParams) prepareLocation(v any) error {
	locs, err := NormalizeLocations(v)
	if err != nil {
		return err
	}
	if len(locs) == 0 {
		return &MissingParameterError{Field: "location"}
	}
	p.location = locs
	return nil
}

func (p *PreparedReGeoCodeRequestParams) prepareRadius(v any) error {
	if v == nil {
		return nil
	}
	r, ok := toFloat(v)
	if !ok {
		return &ParamTypeError{Field: "radius", Got: KindOf(v), Want: []ValueKind{KindInt, KindFloat}}
	}
	if math.IsNaN(r) || r < 0 || r > RadiusMax {
		return &ParameterRangeError{Field: "radius", Value: r, Bound: "re_geo radius range must in 0~3000m"}
	}
	p.radius = &r
	return nil
}

func (p *PreparedReGeoCodeRequestParams) prepareBatch(v any) error {
	b, err := coerceBatch(v)
	if err != nil {
		return err
	}
	p.batch = b
	return nil
}

func (p *PreparedReGeoCodeRequestParams) prepareExtensions(v any) error {
	if f, ok := v.(ExtensionFlag); ok {
		if !f.Valid() {
			return &FormatError{Field: "extensions", Value: f.String(), Reason: "not an ExtensionFlag member"}
		}
		p.extensions = &f
	}
	return nil
}

func (p *PreparedReGeoCodeRequestParams) preparePoiType(v any) error {
	pt, err := NormalizeStrings(v)
	if err != nil {
		return err
	}
	p.poiType = pt
	return nil
}

// prepareRoadLevel 整数 0 为全部道路，其余为仅主干道
func (p *PreparedReGeoCodeRequestParams) prepareRoadLevel(v any) error {
	switch x := v.(type) {
	case nil:
		return nil
	case RoadLevel:
		if !x.Valid() {
			return &FormatError{Field: "road_level", Value: x.String(), Reason: "not a RoadLevel member"}
		}
		p.roadLevel = &x
	default:
		n, _ := toInt(v)
		l := RoadLevelAll
		if n != 0 {
			l = RoadLevelDirect
		}
		p.roadLevel = &l
	}
	return nil
}

// prepareHomeOrCorp 整数 1 为居家、2 为公司，其余关闭
func (p *PreparedReGeoCodeRequestParams) prepareHomeOrCorp(v any) error {
	switch x := v.(type) {
	case nil:
		return nil
	case HomeOrCorpControl:
		if !x.Valid() {
			return &FormatError{Field: "home_or_corp", Value: x.String(), Reason: "not a HomeOrCorpControl member"}
		}
		p.homeOrCorp = &x
	default:
		n, _ := toInt(v)
		c := HomeOrCorpOff
		switch n {
		case 1:
			c = HomeOrCorpHome
		case 2:
			c = HomeOrCorpCorp
		}
		p.homeOrCorp = &c
	}
	return nil
}

func (p *PreparedReGeoCodeRequestParams) extensionsAll() bool {
	return p.extensions != nil && *p.extensions == ExtensionAll
}

func (p *PreparedReGeoCodeRequestParams) preparedLocation() optional {
	if p.location == nil {
		return none
	}
	return some(MergeMultiLocations(p.location))
}

func (p *PreparedReGeoCodeRequestParams) preparedRadius() optional {
	if p.radius == nil {
		return none
	}
	return some(strconv.FormatFloat(*p.radius, 'f', -1, 64))
}

func (p *PreparedReGeoCodeRequestParams) preparedBatch() optional {
	if p.batch == nil {
		return none
	}
	return some(p.batch.Param())
}

func (p *PreparedReGeoCodeRequestParams) preparedExtensions() optional {
	if p.extensions == nil {
		return none
	}
	return some(p.extensions.Param())
}

func (p *PreparedReGeoCodeRequestParams) preparedPoiType() optional {
	if !p.extensionsAll() || p.poiType == nil {
		return none
	}
	return some(JoinMultiValue(p.poiType))
}

func (p *PreparedReGeoCodeRequestParams) preparedRoadLevel() optional {
	if !p.extensionsAll() || p.roadLevel == nil {
		return none
	}
	return some(p.roadLevel.Param())
}

func (p *PreparedReGeoCodeRequestParams) preparedHomeOrCorp() optional {
	if !p.extensionsAll() || p.homeOrCorp == nil {
		return none
	}
	return some(p.homeOrCorp.Param())
}

// Batch 是否为批量请求；决定响应走单数还是复数路由
func (p *PreparedReGeoCodeRequestParams) Batch() bool {
	return p.batch != nil && *p.batch == BatchOn
}

// Locations 归一化后的坐标序列（副本）
func (p *PreparedReGeoCodeRequestParams) Locations() []Location {
	return append([]Location(nil), p.location...)
}

// GenerateParams 生成线格式参数；同一实例只能生成一次
func (p *PreparedReGeoCodeRequestParams) GenerateParams() (map[string]string, error) {
	return p.initBasicParams(
		[]wireField{{"location", p.preparedLocation()}},
		[]wireField{
			{"radius", p.preparedRadius()},
			{"batch", p.preparedBatch()},
			{"extensions", p.preparedExtensions()},
			{"poitype", p.preparedPoiType()},
			{"roadlevel", p.preparedRoadLevel()},
			{"homeorcorp", p.preparedHomeOrCorp()},
		},
	)
}

func coerceBatch(v any) (*BatchFlag, error) {
	switch x := v.(type) {
	case nil:
		return nil, nil
	case bool:
		b := BatchOff
		if x {
			b = BatchOn
		}
		return &b, nil
	case BatchFlag:
		if !x.Valid() {
			return nil, &FormatError{Field: "batch", Value: x.String(), Reason: "not a BatchFlag member"}
		}
		return &x, nil
	}
	return nil, &FormatError{Field: "batch", Value: describe(v), Reason: "unsupported batch value"}
}

// 响应实体结构声明

var (
	regeoPoiSchema = NewSchema("ReGeoPoi",
		"id", "name", "type", "tel", "distance", "direction", "address", "location", "businessarea").
		Override("location", Transform(locationTransform))

	regeoRoadSchema = NewSchema("ReGeoRoad",
		"id", "name", "distance", "direction", "location").
		Override("location", Transform(locationTransform))

	regeoRoadInterSchema = NewSchema("ReGeoRoadInter",
		"distance", "direction", "location", "first_id", "first_name", "second_id", "second_name").
		Override("location", Transform(locationTransform))

	regeoAOISchema = NewSchema("ReGeoAOI",
		"id", "name", "adcode", "location", "area").
		Override("location", Transform(locationTransform))

	regeoAddressComponentSchema = NewSchema("ReGeoAddressComponent",
		"province", "city", "citycode", "district", "adcode", "township", "towncode",
		"neighborhood", "building", "street_number", "sea_area", "business_areas").
		Override("neighborhood", Nested(neighborhoodSchema)).
		Override("building", Nested(buildingSchema)).
		Override("street_number", Nested(streetNumberSchema)).
		Override("business_areas", NestedList(businessAreaSchema))

	regeoDataSchema = NewSchema("ReGeoCodeData",
		"formatted_address", "address_component", "pois", "roads", "roadinters", "aois").
		Override("address_component", Nested(regeoAddressComponentSchema)).
		Override("pois", NestedList(regeoPoiSchema)).
		Override("roads", NestedList(regeoRoadSchema)).
		Override("roadinters", NestedList(regeoRoadInterSchema)).
		Override("aois", NestedList(regeoAOISchema))
)

// ReGeoCodeData 单个坐标的逆地理结果
type ReGeoCodeData struct{ *Record }

func (d ReGeoCodeData) FormattedAddress() string { return d.Str("formatted_address") }

// AddressComponent 原始字段缺失时仍返回全缺省的地址组件
func (d ReGeoCodeData) AddressComponent() ReGeoAddressComponent {
	return ReGeoAddressComponent{d.Nested("address_component")}
}

func (d ReGeoCodeData) Pois() []ReGeoPoi {
	return wrapList(d.List("pois"), func(r *Record) ReGeoPoi { return ReGeoPoi{r} })
}

func (d ReGeoCodeData) Roads() []ReGeoRoad {
	return wrapList(d.List("roads"), func(r *Record) ReGeoRoad { return ReGeoRoad{r} })
}

func (d ReGeoCodeData) RoadInters() []ReGeoRoadInter {
	return wrapList(d.List("roadinters"), func(r *Record) ReGeoRoadInter { return ReGeoRoadInter{r} })
}

func (d ReGeoCodeData) AOIs() []ReGeoAOI {
	return wrapList(d.List("aois"), func(r *Record) ReGeoAOI { return ReGeoAOI{r} })
}

// ReGeoAddressComponent 地址组件
type ReGeoAddressComponent struct{ *Record }

func (a ReGeoAddressComponent) Province() string { return a.Str("province") }
func (a ReGeoAddressComponent) City() string     { return a.Str("city") }
func (a ReGeoAddressComponent) CityCode() string { return a.Str("citycode") }
func (a ReGeoAddressComponent) District() string { return a.Str("district") }
func (a ReGeoAddressComponent) Adcode() string   { return a.Str("adcode") }
func (a ReGeoAddressComponent) Township() string { return a.Str("township") }
func (a ReGeoAddressComponent) TownCode() string { return a.Str("towncode") }
func (a ReGeoAddressComponent) SeaArea() string  { return a.Str("sea_area") }

func (a ReGeoAddressComponent) Neighborhood() Neighborhood {
	return Neighborhood{a.Nested("neighborhood")}
}

func (a ReGeoAddressComponent) Building() Building { return Building{a.Nested("building")} }

func (a ReGeoAddressComponent) StreetNumber() StreetNumber {
	return StreetNumber{a.Nested("street_number")}
}

func (a ReGeoAddressComponent) BusinessAreas() []BusinessArea {
	return wrapList(a.List("business_areas"), func(r *Record) BusinessArea { return BusinessArea{r} })
}

// ReGeoPoi 周边兴趣点
type ReGeoPoi struct{ *Record }

func (p ReGeoPoi) ID() string                 { return p.Str("id") }
func (p ReGeoPoi) Name() string               { return p.Str("name") }
func (p ReGeoPoi) Type() string               { return p.Str("type") }
func (p ReGeoPoi) Tel() string                { return p.Str("tel") }
func (p ReGeoPoi) Distance() string           { return p.Str("distance") }
func (p ReGeoPoi) Direction() string          { return p.Str("direction") }
func (p ReGeoPoi) Address() string            { return p.Str("address") }
func (p ReGeoPoi) BusinessArea() string       { return p.Str("businessarea") }
func (p ReGeoPoi) Location() (Location, bool) { return p.Coordinate("location") }

// ReGeoRoad 周边道路
type ReGeoRoad struct{ *Record }

func (r ReGeoRoad) ID() string                 { return r.Str("id") }
func (r ReGeoRoad) Name() string               { return r.Str("name") }
func (r ReGeoRoad) Distance() string           { return r.Str("distance") }
func (r ReGeoRoad) Direction() string          { return r.Str("direction") }
func (r ReGeoRoad) Location() (Location, bool) { return r.Coordinate("location") }

// ReGeoRoadInter 道路交叉口
type ReGeoRoadInter struct{ *Record }

func (r ReGeoRoadInter) Distance() string           { return r.Str("distance") }
func (r ReGeoRoadInter) Direction() string          { return r.Str("direction") }
func (r ReGeoRoadInter) FirstID() string            { return r.Str("first_id") }
func (r ReGeoRoadInter) FirstName() string          { return r.Str("first_name") }
func (r ReGeoRoadInter) SecondID() string           { return r.Str("second_id") }
func (r ReGeoRoadInter) SecondName() string         { return r.Str("second_name") }
func (r ReGeoRoadInter) Location() (Location, bool) { return r.Coordinate("location") }

// ReGeoAOI 所属兴趣区域
type ReGeoAOI struct{ *Record }

func (a ReGeoAOI) ID() string                 { return a.Str("id") }
func (a ReGeoAOI) Name() string               { return a.Str("name") }
func (a ReGeoAOI) Adcode() string             { return a.Str("adcode") }
func (a ReGeoAOI) Area() string               { return a.Str("area") }
func (a ReGeoAOI) Location() (Location, bool) { return a.Coordinate("location") }

// ReGeoCodeResponse 逆地理编码响应
type ReGeoCodeResponse struct {
	Envelope
	Data []ReGeoCodeData `json:"data"`
}

// ParseReGeoCodeResponse 解析原始响应体
func ParseReGeoCodeResponse(raw []byte) (*ReGeoCodeResponse, error) {
	m, env, err := LoadResponse(raw)
	if err != nil {
		return nil, err
	}
	return &ReGeoCodeResponse{Envelope: env, Data: DecodeReGeoCode(m)}, nil
}

// 文档注释：按路由键解码逆地理结果
// 背景：非批量请求返回单数键 regeocode，批量请求返回复数键 regeocodes。
// 返回：单数键有数据时得到一个元素，复数键逐个解码；均无数据时为空切片。
func DecodeReGeoCode(m map[string]any) []ReGeoCodeData {
	if data, ok := m[regeoRouteSingle]; ok {
		obj, _ := data.(map[string]any)
		if len(obj) == 0 {
			return []ReGeoCodeData{}
		}
		rec, err := regeoDataSchema.Decode(obj)
		if err != nil {
			return []ReGeoCodeData{}
		}
		return []ReGeoCodeData{{rec}}
	}
	if data, ok := m[regeoRouteMulti]; ok {
		return wrapList(decodeList(data, regeoDataSchema), func(r *Record) ReGeoCodeData { return ReGeoCodeData{r} })
	}
	return []ReGeoCodeData{}
}

package amap

// 地理编码：https://lbs.amap.com/api/webservice/guide/api/georegeo

const geoRoute = "geocodes"

var geoSpecs = baseSpecs.with(
	FieldSpec{Name: "address", Kinds: []ValueKind{KindString, KindList}},
	FieldSpec{Name: "city", Kinds: []ValueKind{KindString, KindInt}},
	FieldSpec{Name: "batch", Kinds: []ValueKind{KindBool, KindBatchFlag}},
)

// 文档注释：地理编码请求参数
// 参数（Args 键）：
// - address：必填，结构化地址（国家+省+市+区+…），字符串可用 "|" 拼接多个，也可传字符串切片；
// - city：城市名/拼音/citycode/adcode，可提高准确度；
// - batch：bool 或 BatchFlag。
type GeoCodeRequestParams struct {
	BaseRequestParams
	Address any
	City    any
	Batch   any
}

func NewGeoCodeRequestParams(args Args) (*GeoCodeRequestParams, error) {
	base, own, err := newBaseRequestParams(args, []string{"address", "city", "batch"}, "address")
	if err != nil {
		return nil, err
	}
	return &GeoCodeRequestParams{
		BaseRequestParams: base,
		Address:           own["address"],
		City:              own["city"],
		Batch:             own["batch"],
	}, nil
}

func (r *GeoCodeRequestParams) PrepareData() (*PreparedGeoCodeRequestParams, error) {
	p := &PreparedGeoCodeRequestParams{}
	err := p.Prepare(r.baseArgs(Args{
		"address": r.Address,
		"city":    r.City,
		"batch":   r.Batch,
	}))
	if err != nil {
		return nil, err
	}
	return p, nil
}

type PreparedGeoCodeRequestParams struct {
	BasePrepared
	address []string
	city    optional
	batch   *BatchFlag
}

func (p *PreparedGeoCodeRequestParams) Prepare(fields Args) error {
	if err := geoSpecs.Check(fields); err != nil {
		return err
	}
	addr, err := NormalizeStrings(fields["address"])
	if err != nil {
		return err
	}
	if len(addr) == 0 {
		return &MissingParameterError{Field: "address"}
	}
	p.address = addr
	if c := fields["city"]; c != nil {
		p.city = some(stringify(c))
	}
	if p.batch, err = coerceBatch(fields["batch"]); err != nil {
		return err
	}
	if err := p.prepareBase(fields); err != nil {
		return err
	}
	p.markPrepared()
	return nil
}

func (p *PreparedGeoCodeRequestParams) Batch() bool {
	return p.batch != nil && *p.batch == BatchOn
}

func (p *PreparedGeoCodeRequestParams) GenerateParams() (map[string]string, error) {
	batch := none
	if p.batch != nil {
		batch = some(p.batch.Param())
	}
	return p.initBasicParams(
		[]wireField{{"address", some(JoinMultiValue(p.address))}},
		[]wireField{{"city", p.city}, {"batch", batch}},
	)
}

var geoDataSchema = NewSchema("GeoCodeData",
	"formatted_address", "province", "city", "citycode", "district", "township",
	"neighborhood", "building", "adcode", "street", "number", "location", "level").
	Override("neighborhood", Nested(neighborhoodSchema)).
	Override("building", Nested(buildingSchema)).
	Override("location", Transform(locationTransform))

// GeoCodeData 单条地理编码结果
type GeoCodeData struct{ *Record }

func (d GeoCodeData) FormattedAddress() string   { return d.Str("formatted_address") }
func (d GeoCodeData) Province() string           { return d.Str("province") }
func (d GeoCodeData) City() string               { return d.Str("city") }
func (d GeoCodeData) CityCode() string           { return d.Str("citycode") }
func (d GeoCodeData) District() string           { return d.Str("district") }
func (d GeoCodeData) Township() string           { return d.Str("township") }
func (d GeoCodeData) Adcode() string             { return d.Str("adcode") }
func (d GeoCodeData) Street() string             { return d.Str("street") }
func (d GeoCodeData) Number() string             { return d.Str("number") }
func (d GeoCodeData) Level() string              { return d.Str("level") }
func (d GeoCodeData) Location() (Location, bool) { return d.Coordinate("location") }
func (d GeoCodeData) Building() Building         { return Building{d.Nested("building")} }
func (d GeoCodeData) Neighborhood() Neighborhood { return Neighborhood{d.Nested("neighborhood")} }

type GeoCodeResponse struct {
	Envelope
	Data []GeoCodeData `json:"data"`
}

func ParseGeoCodeResponse(raw []byte) (*GeoCodeResponse, error) {
	m, env, err := LoadResponse(raw)
	if err != nil {
		return nil, err
	}
	data := wrapList(decodeList(m[geoRoute], geoDataSchema), func(r *Record) GeoCodeData { return GeoCodeData{r} })
	return &GeoCodeResponse{Envelope: env, Data: data}, nil
}

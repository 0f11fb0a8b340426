package amap

import "strings"

// 文档注释：IP 定位
// 背景：按 IP 返回省/市/adcode 与所在城市矩形；仅支持国内 IPv4。
// 约束：ip 为空时高德按请求来源定位，离线批量作业不应依赖该行为。
// 注意：未知地区时高德对 province/city 返回 []，经空值修正后为缺省，而不是解码失败。

var ipSpecs = baseSpecs.with(
	FieldSpec{Name: "ip", Kinds: []ValueKind{KindString}},
)

type IPRequestParams struct {
	BaseRequestParams
	IP any
}

func NewIPRequestParams(args Args) (*IPRequestParams, error) {
	base, own, err := newBaseRequestParams(args, []string{"ip"})
	if err != nil {
		return nil, err
	}
	return &IPRequestParams{BaseRequestParams: base, IP: own["ip"]}, nil
}

func (r *IPRequestParams) PrepareData() (*PreparedIPRequestParams, error) {
	p := &PreparedIPRequestParams{}
	if err := p.Prepare(r.baseArgs(Args{"ip": r.IP})); err != nil {
		return nil, err
	}
	return p, nil
}

type PreparedIPRequestParams struct {
	BasePrepared
	ip optional
}

func (p *PreparedIPRequestParams) Prepare(fields Args) error {
	if err := ipSpecs.Check(fields); err != nil {
		return err
	}
	p.ip = stringOpt(fields["ip"])
	if err := p.prepareBase(fields); err != nil {
		return err
	}
	p.markPrepared()
	return nil
}

func (p *PreparedIPRequestParams) GenerateParams() (map[string]string, error) {
	return p.initBasicParams(nil, []wireField{{"ip", p.ip}})
}

var ipLocationSchema = NewSchema("IPLocation", "province", "city", "adcode", "rectangle")

// IPLocation IP 定位结果
type IPLocation struct{ *Record }

func (l IPLocation) Province() string  { return l.Str("province") }
func (l IPLocation) City() string      { return l.Str("city") }
func (l IPLocation) Adcode() string    { return l.Str("adcode") }
func (l IPLocation) Rectangle() string { return l.Str("rectangle") }

// Bounds 矩形区域 "lng,lat;lng,lat" 的左下与右上角
func (l IPLocation) Bounds() (Location, Location, bool) {
	rect := l.Rectangle()
	if rect == "" {
		return Location{}, Location{}, false
	}
	parts := strings.Split(rect, ";")
	if len(parts) != 2 {
		return Location{}, Location{}, false
	}
	sw, err1 := ParseLocation(parts[0])
	ne, err2 := ParseLocation(parts[1])
	if err1 != nil || err2 != nil {
		return Location{}, Location{}, false
	}
	return sw, ne, true
}

type IPResponse struct {
	Envelope
	Data IPLocation `json:"data"`
}

// ParseIPResponse IP 定位的结果字段直接位于顶层
func ParseIPResponse(raw []byte) (*IPResponse, error) {
	m, env, err := LoadResponse(raw)
	if err != nil {
		return nil, err
	}
	rec, err := ipLocationSchema.Decode(m)
	if err != nil {
		return nil, err
	}
	return &IPResponse{Envelope: env, Data: IPLocation{rec}}, nil
}

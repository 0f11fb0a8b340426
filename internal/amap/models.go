package amap

// 多个接口共用的地址子结构

var (
	buildingSchema     = NewSchema("Building", "name", "type")
	neighborhoodSchema = NewSchema("Neighborhood", "name", "type")

	streetNumberSchema = NewSchema("StreetNumber", "street", "number", "location", "direction", "distance").
				Override("location", Transform(locationTransform))

	businessAreaSchema = NewSchema("BusinessArea", "id", "name", "location").
				Override("location", Transform(locationTransform))
)

// Building 楼宇信息
type Building struct{ *Record }

func (b Building) Name() string { return b.Str("name") }
func (b Building) Type() string { return b.Str("type") }

// Neighborhood 社区信息
type Neighborhood struct{ *Record }

func (n Neighborhood) Name() string { return n.Str("name") }
func (n Neighborhood) Type() string { return n.Str("type") }

// StreetNumber 门牌信息
type StreetNumber struct{ *Record }

func (s StreetNumber) Street() string             { return s.Str("street") }
func (s StreetNumber) Number() string             { return s.Str("number") }
func (s StreetNumber) Direction() string          { return s.Str("direction") }
func (s StreetNumber) Distance() string           { return s.Str("distance") }
func (s StreetNumber) Location() (Location, bool) { return s.Coordinate("location") }

// BusinessArea 商圈信息
type BusinessArea struct{ *Record }

func (b BusinessArea) ID() string                 { return b.Str("id") }
func (b BusinessArea) Name() string               { return b.Str("name") }
func (b BusinessArea) Location() (Location, bool) { return b.Coordinate("location") }

func wrapList[T any](recs []*Record, wrap func(*Record) T) []T {
	out := make([]T, 0, len(recs))
	for _, r := range recs {
		out = append(out, wrap(r))
	}
	return out
}

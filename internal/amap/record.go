package amap

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// strategyKind 属性解码策略的标签
type strategyKind int

const (
	strategyPassthrough strategyKind = iota
	strategyNested
	strategyNestedList
	strategyTransform
)

// Strategy 单个属性的解码策略：原样透传 / 嵌套单体 / 嵌套列表 / 自定义转换
type Strategy struct {
	kind   strategyKind
	schema *Schema
	fn     func(any) (any, error)
}

// Passthrough 默认策略：按属性名取原值，缺失即缺省
func Passthrough() Strategy { return Strategy{kind: strategyPassthrough} }

// Nested 嵌套单体：原值缺失或不是对象时仍构造一个全缺省的实体
func Nested(s *Schema) Strategy { return Strategy{kind: strategyNested, schema: s} }

// NestedList 嵌套列表：原值缺失、为空或不是数组时得到空切片而非缺省；非对象元素跳过
func NestedList(s *Schema) Strategy { return Strategy{kind: strategyNestedList, schema: s} }

// Transform 自定义转换：fn 返回错误时该属性降级为缺省
func Transform(fn func(any) (any, error)) Strategy {
	return Strategy{kind: strategyTransform, fn: fn}
}

// 文档注释：声明式实体结构
// 背景：每类响应实体只声明有序属性名与少量覆盖策略，其余属性走默认透传；覆盖表在包初始化时注册一次，之后只读。
// 约束：Override 只能作用于已声明属性，否则视为编程错误直接 panic。
type Schema struct {
	name       string
	properties []string
	overrides  map[string]Strategy
}

func NewSchema(name string, properties ...string) *Schema {
	return &Schema{name: name, properties: properties, overrides: map[string]Strategy{}}
}

// Override 为已声明的属性注册解码策略，返回自身以便链式声明
func (s *Schema) Override(prop string, st Strategy) *Schema {
	if !s.declares(prop) {
		panic(fmt.Sprintf("amap: schema %s does not declare property %q", s.name, prop))
	}
	s.overrides[prop] = st
	return s
}

func (s *Schema) Name() string { return s.name }

// Properties 声明的属性名（副本）
func (s *Schema) Properties() []string { return append([]string(nil), s.properties...) }

func (s *Schema) declares(prop string) bool {
	for _, p := range s.properties {
		if p == prop {
			return true
		}
	}
	return false
}

// 文档注释：按声明解码原始对象
// 参数：raw 为 LoadAndFixEmpty 产出的对象；nil 视为空对象（所有属性缺省）。
// 返回：raw 既非对象也非 nil 时返回 SchemaError；缺失的可选键永不报错。
func (s *Schema) Decode(raw any) (*Record, error) {
	var data map[string]any
	switch x := raw.(type) {
	case nil:
	case map[string]any:
		data = x
	default:
		return nil, &SchemaError{Entity: s.name, Got: fmt.Sprintf("%T", raw)}
	}
	r := &Record{schema: s, values: make(map[string]any, len(s.properties))}
	for _, p := range s.properties {
		r.values[p] = s.decodeProperty(p, data[p])
	}
	return r, nil
}

func (s *Schema) decodeProperty(p string, raw any) any {
	st, ok := s.overrides[p]
	if !ok {
		return raw
	}
	switch st.kind {
	case strategyNested:
		rec, err := st.schema.Decode(raw)
		if err != nil {
			rec, _ = st.schema.Decode(nil)
		}
		return rec
	case strategyNestedList:
		out := []*Record{}
		items, _ := raw.([]any)
		for _, item := range items {
			if rec, err := st.schema.Decode(item); err == nil && item != nil {
				out = append(out, rec)
			}
		}
		return out
	case strategyTransform:
		if raw == nil {
			return nil
		}
		v, err := st.fn(raw)
		if err != nil {
			return nil
		}
		return v
	}
	return raw
}

// 文档注释：解码后的只读实体
// 约束：仅暴露声明的属性；无数据的属性以缺省（nil）表示而不是缺失；嵌套列表属性总是非 nil 切片。
type Record struct {
	schema *Schema
	values map[string]any
}

func (r *Record) Schema() *Schema { return r.schema }

// Has 属性存在且非缺省
func (r *Record) Has(name string) bool {
	return r != nil && r.values[name] != nil
}

// Value 原始解码值；未声明或缺省返回 nil
func (r *Record) Value(name string) any {
	if r == nil {
		return nil
	}
	return r.values[name]
}

// Str 标量属性的字符串形式；缺省或非标量返回空串
func (r *Record) Str(name string) string {
	switch x := r.Value(name).(type) {
	case nil, map[string]any, []any, *Record, []*Record:
		return ""
	default:
		return stringify(x)
	}
}

// Nested 嵌套单体属性
func (r *Record) Nested(name string) *Record {
	rec, _ := r.Value(name).(*Record)
	return rec
}

// List 嵌套列表属性
func (r *Record) List(name string) []*Record {
	if l, ok := r.Value(name).([]*Record); ok {
		return l
	}
	return []*Record{}
}

// Coordinate 经 locationTransform 解码的坐标属性
func (r *Record) Coordinate(name string) (Location, bool) {
	l, ok := r.Value(name).(Location)
	return l, ok
}

// MarshalJSON 按声明顺序输出属性
func (r *Record) MarshalJSON() ([]byte, error) {
	if r == nil {
		return []byte("null"), nil
	}
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, p := range r.schema.properties {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, _ := json.Marshal(p)
		buf.Write(k)
		buf.WriteByte(':')
		v, err := json.Marshal(r.values[p])
		if err != nil {
			return nil, err
		}
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// locationTransform 坐标字符串转 Location；解析失败时属性降级为缺省
func locationTransform(v any) (any, error) {
	s, ok := v.(string)
	if !ok {
		return nil, &FormatError{Field: "location", Value: describe(v), Reason: "location is not a string"}
	}
	return ParseLocation(s)
}

package amap

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// 多值分隔符：高德以 "|" 拼接同类多值，不支持转义
const multiValueSep = "|"

// Location 经纬度对（高德坐标，经度在前）
type Location struct {
	Lng float64 `json:"lng"`
	Lat float64 `json:"lat"`
}

// String 线格式 "lng,lat"，固定 6 位小数
func (l Location) String() string { return MergeLocation(l.Lng, l.Lat) }

// SplitMultiValue 按 "|" 拆分多值字符串
func SplitMultiValue(s string) []string {
	return strings.Split(s, multiValueSep)
}

// JoinMultiValue 以 "|" 合并多值
func JoinMultiValue(vs []string) string {
	return strings.Join(vs, multiValueSep)
}

func round6(f float64) float64 {
	return math.Round(f*1e6) / 1e6
}

// 文档注释：解析高德坐标字符串
// 参数：s 形如 "116.481,39.990"，仅按第一个逗号切分，两侧允许空白。
// 返回：两个分量均四舍五入到 6 位小数；缺少逗号或任一侧非数值返回 FormatError。
func ParseLocation(s string) (Location, error) {
	lngS, latS, ok := strings.Cut(s, ",")
	if !ok {
		return Location{}, &FormatError{Field: "location", Value: s, Reason: "missing comma"}
	}
	lng, err := strconv.ParseFloat(strings.TrimSpace(lngS), 64)
	if err != nil {
		return Location{}, &FormatError{Field: "location", Value: s, Reason: "longitude is not numeric"}
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(latS), 64)
	if err != nil {
		return Location{}, &FormatError{Field: "location", Value: s, Reason: "latitude is not numeric"}
	}
	if !finite(lng) || !finite(lat) {
		return Location{}, &FormatError{Field: "location", Value: s, Reason: "coordinate is not finite"}
	}
	return Location{Lng: round6(lng), Lat: round6(lat)}, nil
}

// MergeLocation 定点格式输出，不使用科学计数法
func MergeLocation(lng, lat float64) string {
	return fmt.Sprintf("%.6f,%.6f", lng, lat)
}

// MergeMultiLocations 多个坐标合并为 "lng,lat|lng,lat"
func MergeMultiLocations(locs []Location) string {
	parts := make([]string, 0, len(locs))
	for _, l := range locs {
		parts = append(parts, MergeLocation(l.Lng, l.Lat))
	}
	return JoinMultiValue(parts)
}

func parseMultiLocations(s string) ([]Location, error) {
	parts := SplitMultiValue(s)
	out := make([]Location, 0, len(parts))
	for _, p := range parts {
		l, err := ParseLocation(p)
		if err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, nil
}

// 文档注释：坐标输入归一化
// 参数：v 可为线格式字符串（可含多值）、Location、[2]float64，或混合上述元素的切片。
// 返回：按输入顺序展开的坐标序列；切片中既非字符串也非坐标对的元素被跳过；nil 输入返回 nil（视为缺省）。
func NormalizeLocations(v any) ([]Location, error) {
	switch x := v.(type) {
	case nil:
		return nil, nil
	case string:
		return parseMultiLocations(x)
	case Location:
		return finiteLocations([]Location{x})
	case [2]float64:
		return finiteLocations([]Location{{Lng: x[0], Lat: x[1]}})
	case []Location:
		return finiteLocations(append([]Location(nil), x...))
	case [][2]float64:
		out := make([]Location, 0, len(x))
		for _, p := range x {
			out = append(out, Location{Lng: p[0], Lat: p[1]})
		}
		return finiteLocations(out)
	case []string:
		out := make([]Location, 0, len(x))
		for _, s := range x {
			ls, err := parseMultiLocations(s)
			if err != nil {
				return nil, err
			}
			out = append(out, ls...)
		}
		return out, nil
	case []any:
		out := make([]Location, 0, len(x))
		for _, item := range x {
			switch it := item.(type) {
			case string:
				ls, err := parseMultiLocations(it)
				if err != nil {
					return nil, err
				}
				out = append(out, ls...)
			case Location:
				out = append(out, it)
			case [2]float64:
				out = append(out, Location{Lng: it[0], Lat: it[1]})
			}
		}
		return finiteLocations(out)
	}
	return nil, &FormatError{Field: "location", Value: describe(v), Reason: "unsupported location input"}
}

func finite(f float64) bool { return !math.IsNaN(f) && !math.IsInf(f, 0) }

// finiteLocations 坐标对输入与字符串输入同样要求经纬度为有限小数
func finiteLocations(locs []Location) ([]Location, error) {
	for _, l := range locs {
		if !finite(l.Lng) || !finite(l.Lat) {
			return nil, &FormatError{Field: "location", Value: fmt.Sprintf("%v,%v", l.Lng, l.Lat), Reason: "coordinate is not finite"}
		}
	}
	return locs, nil
}

// NormalizeStrings 字符串或字符串序列归一化为扁平列表，每个元素再按 "|" 展开
func NormalizeStrings(v any) ([]string, error) {
	switch x := v.(type) {
	case nil:
		return nil, nil
	case string:
		return SplitMultiValue(x), nil
	case []string:
		var out []string
		for _, s := range x {
			out = append(out, SplitMultiValue(s)...)
		}
		return out, nil
	case []any:
		var out []string
		for _, item := range x {
			if s, ok := item.(string); ok {
				out = append(out, SplitMultiValue(s)...)
			}
		}
		return out, nil
	}
	return nil, &FormatError{Value: describe(v), Reason: "unsupported multi-value input"}
}

var (
	camelBoundary1 = regexp.MustCompile(`(.)([A-Z][a-z]+)`)
	camelBoundary2 = regexp.MustCompile(`([a-z0-9])([A-Z])`)
)

// CamelToSnake "businessAreas" -> "business_areas"，"CdE" -> "cd_e"
func CamelToSnake(s string) string {
	s = camelBoundary1.ReplaceAllString(s, "${1}_${2}")
	s = camelBoundary2.ReplaceAllString(s, "${1}_${2}")
	return strings.ToLower(s)
}

// 文档注释：加载并修正高德 JSON 空值
// 背景：高德在字段无数据时返回 []（如 "building": []），与"有值但为空"无法区分；统一改写为缺省标记。
// 约束：
// - 缺省标记为"键存在、值为 nil"；
// - 仅在对象键边界改写：对象中值为空数组的键改为 nil，数组内部的空数组元素保持原样；
// - 空对象、非空数组与标量原样保留；
// - 同一遍中键名由驼峰改为下划线；驼峰键与其下划线形式同时出现时，原本就是下划线的键胜出，
//   多个驼峰键映射到同一名字时按字典序取第一个；
// - 只接受单个 JSON 值，其后除空白外不得有其他内容；
// - 数值保留为 json.Number，避免精度丢失。
func LoadAndFixEmpty(raw []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, fmt.Errorf("amap: trailing data after JSON value at offset %d", dec.InputOffset())
	}
	return fixEmpty(v), nil
}

func fixEmpty(v any) any {
	switch x := v.(type) {
	case map[string]any:
		keys := make([]string, 0, len(x))
		for k := range x {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		out := make(map[string]any, len(x))
		for _, k := range keys {
			sk := CamelToSnake(k)
			if _, taken := out[sk]; taken && sk != k {
				continue
			}
			w := x[k]
			if arr, ok := w.([]any); ok && len(arr) == 0 {
				out[sk] = nil
				continue
			}
			out[sk] = fixEmpty(w)
		}
		return out
	case []any:
		for i, item := range x {
			x[i] = fixEmpty(item)
		}
		return x
	}
	return v
}

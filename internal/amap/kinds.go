package amap

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// ValueKind 宽松输入值的语义类别；参数校验按声明的类别集合判定，而不是按 Go 具体类型逐一枚举
type ValueKind string

const (
	KindNone   ValueKind = "none"
	KindString ValueKind = "string"
	KindInt    ValueKind = "int"
	KindFloat  ValueKind = "float"
	KindBool   ValueKind = "bool"
	KindPair   ValueKind = "pair"
	KindList   ValueKind = "list"

	KindOutputFmt     ValueKind = "OutputFmt"
	KindBatchFlag     ValueKind = "BatchFlag"
	KindExtensionFlag ValueKind = "ExtensionFlag"
	KindRoadLevel     ValueKind = "RoadLevel"
	KindHomeOrCorp    ValueKind = "HomeOrCorpControl"
)

// cataloged 枚举目录成员以目录名作为类别
type cataloged interface {
	Catalog() string
}

// KindOf 判定值的语义类别
// 约束：json.Number 按能否解析为整数归入 int/float；枚举按目录名归类，不会被当作 int。
func KindOf(v any) ValueKind {
	switch x := v.(type) {
	case nil:
		return KindNone
	case string:
		return KindString
	case bool:
		return KindBool
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return KindInt
	case float32, float64:
		return KindFloat
	case json.Number:
		if _, err := x.Int64(); err == nil {
			return KindInt
		}
		return KindFloat
	case Location, [2]float64:
		return KindPair
	case []any, []string, []Location, [][2]float64:
		return KindList
	case cataloged:
		return ValueKind(x.Catalog())
	}
	return ValueKind(fmt.Sprintf("%T", v))
}

func kindIn(k ValueKind, accepted []ValueKind) bool {
	for _, a := range accepted {
		if a == k {
			return true
		}
	}
	return false
}

// toFloat 数值类别统一转为 float64；非数值返回 false
func toFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case int:
		return float64(x), true
	case int8:
		return float64(x), true
	case int16:
		return float64(x), true
	case int32:
		return float64(x), true
	case int64:
		return float64(x), true
	case uint:
		return float64(x), true
	case uint8:
		return float64(x), true
	case uint16:
		return float64(x), true
	case uint32:
		return float64(x), true
	case uint64:
		return float64(x), true
	case float32:
		return float64(x), true
	case float64:
		return x, true
	case json.Number:
		f, err := x.Float64()
		return f, err == nil
	}
	return 0, false
}

func toInt(v any) (int64, bool) {
	switch x := v.(type) {
	case int:
		return int64(x), true
	case int8:
		return int64(x), true
	case int16:
		return int64(x), true
	case int32:
		return int64(x), true
	case int64:
		return x, true
	case uint:
		return int64(x), true
	case uint8:
		return int64(x), true
	case uint16:
		return int64(x), true
	case uint32:
		return int64(x), true
	case uint64:
		return int64(x), true
	case json.Number:
		n, err := x.Int64()
		return n, err == nil
	}
	return 0, false
}

// stringify 标量转字符串，用于线格式输出与响应字段读取
func stringify(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case json.Number:
		return x.String()
	case bool:
		return boolParam(x)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32)
	}
	if n, ok := toInt(v); ok {
		return strconv.FormatInt(n, 10)
	}
	return fmt.Sprint(v)
}

func describe(v any) string {
	return fmt.Sprintf("%v (%s)", v, KindOf(v))
}

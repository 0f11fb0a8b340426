package amap

import (
	"errors"
	"fmt"
)

// 错误类别哨兵：可用 errors.Is 判定类别，具体字段通过 errors.As 取出结构体
var (
	ErrMissingParameter  = errors.New("amap: missing parameter")
	ErrParamType         = errors.New("amap: param type error")
	ErrParameterRange    = errors.New("amap: parameter out of range")
	ErrFormat            = errors.New("amap: format error")
	ErrSchema            = errors.New("amap: schema error")
	ErrAlreadySerialized = errors.New("amap: prepared params already serialized")
	ErrAPI               = errors.New("amap: api error")
)

// MissingParameterError 构造请求参数时必填字段缺失
type MissingParameterError struct {
	Field string
}

func (e *MissingParameterError) Error() string {
	return fmt.Sprintf("amap: missing required parameter %q", e.Field)
}

func (e *MissingParameterError) Is(target error) bool { return target == ErrMissingParameter }

// ParamTypeError 字段取值的运行时类别不在声明的可接受集合内
type ParamTypeError struct {
	Field string
	Got   ValueKind
	Want  []ValueKind
}

func (e *ParamTypeError) Error() string {
	if len(e.Want) == 0 {
		return fmt.Sprintf("amap: unexpected parameter %q (%s)", e.Field, e.Got)
	}
	return fmt.Sprintf("amap: param %q got type %s, want one of %v", e.Field, e.Got, e.Want)
}

func (e *ParamTypeError) Is(target error) bool { return target == ErrParamType }

// ParameterRangeError 数值超出文档范围；Bound 为可读的范围描述
type ParameterRangeError struct {
	Field string
	Value float64
	Bound string
}

func (e *ParameterRangeError) Error() string {
	return fmt.Sprintf("amap: param %q=%v out of range, %s", e.Field, e.Value, e.Bound)
}

func (e *ParameterRangeError) Is(target error) bool { return target == ErrParameterRange }

// FormatError 线格式字符串无法解析（如坐标）或枚举记号无法识别
type FormatError struct {
	Field  string
	Value  string
	Reason string
}

func (e *FormatError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("amap: bad format %q: %s", e.Value, e.Reason)
	}
	return fmt.Sprintf("amap: bad format for %q (%q): %s", e.Field, e.Value, e.Reason)
}

func (e *FormatError) Is(target error) bool { return target == ErrFormat }

// SchemaError 原始响应在需要对象的位置不是对象
type SchemaError struct {
	Entity string
	Got    string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("amap: %s expects a JSON object, got %s", e.Entity, e.Got)
}

func (e *SchemaError) Is(target error) bool { return target == ErrSchema }

// APIError 高德返回 status!=1；Info/InfoCode 原样携带以便上层分类
type APIError struct {
	Info     string
	InfoCode string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("amap: api error infocode=%s info=%s", e.InfoCode, e.Info)
}

func (e *APIError) Is(target error) bool { return target == ErrAPI }

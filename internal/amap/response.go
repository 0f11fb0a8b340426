package amap

import (
	"fmt"
	"strconv"
)

// Envelope 所有 v3 接口共有的响应头部
type Envelope struct {
	Status   StatusFlag `json:"status"`
	Info     string     `json:"info"`
	InfoCode string     `json:"infocode"`
	Count    int        `json:"count"`
}

// OK status 为 1
func (e Envelope) OK() bool { return e.Status == StatusOK }

// Err status 非 1 时转换为 APIError
func (e Envelope) Err() error {
	if e.OK() {
		return nil
	}
	return &APIError{Info: e.Info, InfoCode: e.InfoCode}
}

// 文档注释：加载响应体并解析公共头部
// 背景：所有接口统一先经空值修正与键名归一，再按接口各自的路由键取数据。
// 返回：顶层必须是 JSON 对象，否则返回 SchemaError；JSON 本身不合法返回 FormatError。
func LoadResponse(raw []byte) (map[string]any, Envelope, error) {
	tree, err := LoadAndFixEmpty(raw)
	if err != nil {
		return nil, Envelope{}, &FormatError{Field: "response", Value: truncate(string(raw), 64), Reason: err.Error()}
	}
	m, ok := tree.(map[string]any)
	if !ok {
		return nil, Envelope{}, &SchemaError{Entity: "response", Got: fmt.Sprintf("%T", tree)}
	}
	env := Envelope{
		Status:   ParseStatus(m["status"]),
		Info:     stringify(m["info"]),
		InfoCode: stringify(m["infocode"]),
	}
	if n, err := strconv.Atoi(stringify(m["count"])); err == nil {
		env.Count = n
	}
	return m, env, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

// decodeList 路由键下的数组逐个解码；缺失或为空时得到空切片
func decodeList(data any, s *Schema) []*Record {
	items, _ := data.([]any)
	out := make([]*Record, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		if rec, err := s.Decode(item); err == nil {
			out = append(out, rec)
		}
	}
	return out
}

package amap

import (
	"encoding/json"
	"fmt"
	"net/url"
)

// BatchMaxOps 批量接口单次最多 20 个子请求
const BatchMaxOps = 20

// BatchOp 批量接口中的一个子请求：path 形如 /v3/geocode/regeo，params 为已生成的线格式参数
type BatchOp struct {
	Path   string
	Params map[string]string
}

type batchBody struct {
	Ops []batchOpURL `json:"ops"`
}

type batchOpURL struct {
	URL string `json:"url"`
}

// 文档注释：构造批量接口请求体
// 背景：批量接口以 POST JSON 提交，每个子请求用 "path?query" 表示；参数按键名排序编码，保证请求体稳定。
// 约束：子请求数为 1~20，超出返回 ParameterRangeError。
func BuildBatchBody(ops []BatchOp) ([]byte, error) {
	if len(ops) == 0 || len(ops) > BatchMaxOps {
		return nil, &ParameterRangeError{Field: "ops", Value: float64(len(ops)), Bound: fmt.Sprintf("batch ops must in 1~%d", BatchMaxOps)}
	}
	body := batchBody{Ops: make([]batchOpURL, 0, len(ops))}
	for _, op := range ops {
		q := url.Values{}
		for k, v := range op.Params {
			q.Set(k, v)
		}
		body.Ops = append(body.Ops, batchOpURL{URL: op.Path + "?" + q.Encode()})
	}
	return json.Marshal(body)
}

// BatchResult 批量接口中一个子请求的结果
type BatchResult struct {
	Status int             `json:"status"`
	Body   json.RawMessage `json:"body"`
}

// ParseBatchResponse 批量接口响应为数组，顺序与提交的子请求一致
func ParseBatchResponse(raw []byte) ([]BatchResult, error) {
	var out []BatchResult
	if err := json.Unmarshal(raw, &out); err != nil {
		var obj map[string]any
		if json.Unmarshal(raw, &obj) == nil {
			// 整体失败时高德返回带 status/info 的对象
			_, env, lerr := LoadResponse(raw)
			if lerr == nil && !env.OK() {
				return nil, env.Err()
			}
		}
		return nil, &SchemaError{Entity: "batch response", Got: truncate(string(raw), 64)}
	}
	return out, nil
}

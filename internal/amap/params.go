package amap

import (
	"errors"
	"sort"
	"strings"
)

// Args 调用方传入的宽松参数（字段名 -> 任意值），nil 视为未提供
type Args map[string]any

// FieldSpec 字段及其可接受的语义类别集合
type FieldSpec struct {
	Name  string
	Kinds []ValueKind
}

// FieldSpecs 有序字段声明；校验顺序即声明顺序，保证错误信息稳定
type FieldSpecs []FieldSpec

// 文档注释：类型一致性校验
// 背景：宽松输入在进入具体字段处理前先按声明的类别集合判定，避免在后续转换中出现隐式类型错误。
// 约束：nil 值跳过；未声明的字段名视为调用错误；返回第一个不符合的字段。
func (fs FieldSpecs) Check(fields Args) error {
	known := make(map[string]struct{}, len(fs))
	for _, f := range fs {
		known[f.Name] = struct{}{}
		v := fields[f.Name]
		if v == nil {
			continue
		}
		if k := KindOf(v); !kindIn(k, f.Kinds) {
			return &ParamTypeError{Field: f.Name, Got: k, Want: f.Kinds}
		}
	}
	var unknown []string
	for name := range fields {
		if _, ok := known[name]; !ok {
			unknown = append(unknown, name)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return &ParamTypeError{Field: unknown[0], Got: KindOf(fields[unknown[0]])}
	}
	return nil
}

func (fs FieldSpecs) with(more ...FieldSpec) FieldSpecs {
	out := make(FieldSpecs, 0, len(fs)+len(more))
	out = append(out, fs...)
	return append(out, more...)
}

const (
	fieldKey        = "key"
	fieldSig        = "sig"
	fieldPrivateKey = "private_key"
	fieldOutput     = "output"
	fieldCallback   = "callback"
)

// baseSpecs 所有接口共享的基础字段
var baseSpecs = FieldSpecs{
	{Name: fieldKey, Kinds: []ValueKind{KindString}},
	{Name: fieldSig, Kinds: []ValueKind{KindString}},
	{Name: fieldPrivateKey, Kinds: []ValueKind{KindString}},
	{Name: fieldOutput, Kinds: []ValueKind{KindString, KindOutputFmt}},
	{Name: fieldCallback, Kinds: []ValueKind{KindString}},
}

// State 单次请求构造周期的状态
type State int

const (
	StateConstructed State = iota
	StateValidated
	StatePrepared
	StateSerialized
)

func (s State) String() string {
	switch s {
	case StateConstructed:
		return "constructed"
	case StateValidated:
		return "validated"
	case StatePrepared:
		return "prepared"
	case StateSerialized:
		return "serialized"
	}
	return "unknown"
}

// ErrNotPrepared 未经 Prepare 的对象不能生成线格式参数
var ErrNotPrepared = errors.New("amap: params not prepared")

// 文档注释：请求参数公共部分
// 背景：key/sig/private_key/output/callback 在所有接口一致，只在此处抽取与合并一次。
// 约束：构造后只读；PrepareData 只读取本结构，不修改。
type BaseRequestParams struct {
	Key        any
	Sig        any
	PrivateKey any
	Output     any
	Callback   any

	state State
}

// 文档注释：从宽松参数中拆出基础字段并检查必填项
// 参数：args 为调用方输入；endpoint 为接口专有字段名集合；required 为必填字段（按声明顺序检查）。
// 返回：专有字段子集；第一个缺失的必填字段返回 MissingParameterError；未知字段返回参数类型错误。
func newBaseRequestParams(args Args, endpoint []string, required ...string) (BaseRequestParams, Args, error) {
	b := BaseRequestParams{state: StateConstructed}
	for _, f := range required {
		if args[f] == nil {
			return b, nil, &MissingParameterError{Field: f}
		}
	}
	allowed := make(map[string]struct{}, len(endpoint))
	for _, f := range endpoint {
		allowed[f] = struct{}{}
	}
	own := Args{}
	for k, v := range args {
		switch k {
		case fieldKey:
			b.Key = v
		case fieldSig:
			b.Sig = v
		case fieldPrivateKey:
			b.PrivateKey = v
		case fieldOutput:
			b.Output = v
		case fieldCallback:
			b.Callback = v
		default:
			if _, ok := allowed[k]; !ok {
				return b, nil, &ParamTypeError{Field: k, Got: KindOf(v)}
			}
			own[k] = v
		}
	}
	b.state = StateValidated
	return b, own, nil
}

// State 当前状态；构造成功即为 validated
func (b *BaseRequestParams) State() State { return b.state }

// baseArgs 基础字段以宽松参数形式传给 Prepare
func (b *BaseRequestParams) baseArgs(into Args) Args {
	into[fieldKey] = b.Key
	into[fieldSig] = b.Sig
	into[fieldPrivateKey] = b.PrivateKey
	into[fieldOutput] = b.Output
	into[fieldCallback] = b.Callback
	return into
}

// optional 已就绪字段值；ok=false 表示缺省，不进入线格式参数
type optional struct {
	value string
	ok    bool
}

func some(v string) optional { return optional{value: v, ok: true} }

var none = optional{}

// wireField 线格式参数中的一个键
type wireField struct {
	key string
	val optional
}

// 文档注释：已就绪参数公共部分
// 约束：只由对应的请求参数对象创建；GenerateParams 之后进入 serialized 终态，不可再次生成。
type BasePrepared struct {
	key        optional
	sig        optional
	privateKey optional
	output     optional
	callback   optional

	state State
}

func (b *BasePrepared) prepareBase(fields Args) error {
	b.key = stringOpt(fields[fieldKey])
	b.sig = stringOpt(fields[fieldSig])
	b.privateKey = stringOpt(fields[fieldPrivateKey])
	b.callback = stringOpt(fields[fieldCallback])
	switch x := fields[fieldOutput].(type) {
	case nil:
		b.output = none
	case OutputFmt:
		if !x.Valid() {
			return &FormatError{Field: fieldOutput, Value: x.String(), Reason: "not an OutputFmt member"}
		}
		b.output = some(x.Param())
	case string:
		switch strings.ToUpper(strings.TrimSpace(x)) {
		case "JSON":
			b.output = some(OutputJSON.Param())
		case "XML":
			b.output = some(OutputXML.Param())
		default:
			return &FormatError{Field: fieldOutput, Value: x, Reason: "output must be JSON or XML"}
		}
	}
	return nil
}

func stringOpt(v any) optional {
	s, ok := v.(string)
	if !ok || s == "" {
		return none
	}
	return some(s)
}

// State 当前状态
func (b *BasePrepared) State() State { return b.state }

// PrivateKey 数字签名私钥；只交给传输层签名，不进入线格式参数
func (b *BasePrepared) PrivateKey() (string, bool) { return b.privateKey.value, b.privateKey.ok }

func (b *BasePrepared) markPrepared() { b.state = StatePrepared }

// 文档注释：组装线格式参数
// 背景：基础字段先按可选规则合并，再追加接口字段；必填字段总是输出，可选字段仅在就绪值存在时输出。
// 返回：扁平字符串映射；未经 Prepare 或已生成过时返回错误。
func (b *BasePrepared) initBasicParams(required []wireField, optionals []wireField) (map[string]string, error) {
	switch b.state {
	case StateSerialized:
		return nil, ErrAlreadySerialized
	case StatePrepared:
	default:
		return nil, ErrNotPrepared
	}
	out := map[string]string{}
	for _, f := range []wireField{
		{fieldKey, b.key},
		{fieldSig, b.sig},
		{fieldOutput, b.output},
		{fieldCallback, b.callback},
	} {
		if f.val.ok {
			out[f.key] = f.val.value
		}
	}
	for _, f := range optionals {
		if f.val.ok {
			out[f.key] = f.val.value
		}
	}
	for _, f := range required {
		out[f.key] = f.val.value
	}
	b.state = StateSerialized
	return out, nil
}

package amap

// Options 扩展子选项（名称 -> 宽松取值）
type Options map[string]any

// 扩展子选项的规范名与紧凑别名；查找时规范名优先
var extensionAliases = map[string][]string{
	"poi_type":     {"poi_type", "poitype"},
	"road_level":   {"road_level", "roadlevel"},
	"home_or_corp": {"home_or_corp", "homeorcorp"},
}

// 文档注释：扩展信息控制器
// 背景：单个开关决定整组可选字段是否生效；base 时子选项一律忽略，all 时各子选项独立按可选规则输出。
// 约束：同一子选项以两种拼写同时提供时，规范名（如 poi_type）优先于紧凑别名（poitype）；取第一个非 nil 的值。
type Extensions struct {
	Status ExtensionFlag
	opts   Options
}

// NewExtensions status 可为 bool、ExtensionFlag 或 "base"/"all"
func NewExtensions(status any, opts Options) (Extensions, error) {
	st, err := ChooseExtension(status)
	if err != nil {
		return Extensions{}, err
	}
	cp := make(Options, len(opts))
	for k, v := range opts {
		cp[k] = v
	}
	return Extensions{Status: st, opts: cp}, nil
}

// Enabled 是否为 all 模式
func (e Extensions) Enabled() bool { return e.Status == ExtensionAll }

// Get 按规范名或别名读取子选项
func (e Extensions) Get(name string) any {
	names, ok := extensionAliases[name]
	if !ok {
		names = []string{name}
	}
	for _, n := range names {
		if v := e.opts[n]; v != nil {
			return v
		}
	}
	return nil
}

// asExtensions 请求参数中的 extensions 字段：缺省为 base，也接受直接传开关值
func asExtensions(v any) (Extensions, error) {
	switch x := v.(type) {
	case nil:
		return Extensions{Status: ExtensionBase}, nil
	case Extensions:
		return x, nil
	case *Extensions:
		if x == nil {
			return Extensions{Status: ExtensionBase}, nil
		}
		return *x, nil
	}
	return NewExtensions(v, nil)
}

package amap

import (
	"strconv"
	"strings"
)

// 文档注释：高德参数枚举目录
// 背景：以具名整数类型代替散落的魔法字符串/数字；每个目录是封闭集合，进程级只读。
// 约束：非成员值一律视为非法（Valid 返回 false）；宽松输入到枚举的映射只能经由本文件的 Choose/coerce 规则。

// OutputFmt 返回格式
type OutputFmt int

const (
	OutputJSON OutputFmt = 1
	OutputXML  OutputFmt = 2
)

// BatchFlag 批量开关
type BatchFlag int

const (
	BatchOff BatchFlag = 0
	BatchOn  BatchFlag = 1
)

// AMapVersion 接口版本
type AMapVersion int

const (
	AMapV3 AMapVersion = 3
	AMapV4 AMapVersion = 4
)

// StatusFlag 响应状态
type StatusFlag int

const (
	StatusErr StatusFlag = 0
	StatusOK  StatusFlag = 1
)

// ExtensionFlag 返回结果控制：base 基本信息 / all 全部信息
type ExtensionFlag int

const (
	ExtensionBase ExtensionFlag = 0
	ExtensionAll  ExtensionFlag = 1
)

// RoadLevel 道路等级：0 全部道路，1 仅主干道
type RoadLevel int

const (
	RoadLevelAll    RoadLevel = 0
	RoadLevelDirect RoadLevel = 1
)

// HomeOrCorpControl 是否优化 POI 返回顺序（居家/公司）
type HomeOrCorpControl int

const (
	HomeOrCorpOff  HomeOrCorpControl = 0
	HomeOrCorpHome HomeOrCorpControl = 1
	HomeOrCorpCorp HomeOrCorpControl = 2
)

// CityLimitFlag 是否仅返回指定城市数据
type CityLimitFlag int

const (
	CityLimitOff CityLimitFlag = 0
	CityLimitOn  CityLimitFlag = 1
)

// ChildrenFlag 是否按父子关系展示 POI
type ChildrenFlag int

const (
	ChildrenOff ChildrenFlag = 0
	ChildrenOn  ChildrenFlag = 1
)

// DataType 输入提示返回的数据类型
type DataType int

const (
	DataTypeAll     DataType = 1
	DataTypePOI     DataType = 2
	DataTypeBus     DataType = 3
	DataTypeBusline DataType = 4
)

const (
	ExtensionBaseParam = "base"
	ExtensionAllParam  = "all"

	DataTypeAllParam     = "all"
	DataTypePOIParam     = "poi"
	DataTypeBusParam     = "bus"
	DataTypeBuslineParam = "busline"
)

var (
	outputFmtNames     = map[OutputFmt]string{OutputJSON: "JSON", OutputXML: "XML"}
	batchFlagNames     = map[BatchFlag]string{BatchOff: "OFF", BatchOn: "ON"}
	versionNames       = map[AMapVersion]string{AMapV3: "V3", AMapV4: "V4"}
	statusFlagNames    = map[StatusFlag]string{StatusErr: "ERR", StatusOK: "OK"}
	extensionFlagNames = map[ExtensionFlag]string{ExtensionBase: "BASE", ExtensionAll: "ALL"}
	roadLevelNames     = map[RoadLevel]string{RoadLevelAll: "ALL", RoadLevelDirect: "DIRECT"}
	homeOrCorpNames    = map[HomeOrCorpControl]string{HomeOrCorpOff: "OFF", HomeOrCorpHome: "HOME", HomeOrCorpCorp: "CORP"}
	cityLimitNames     = map[CityLimitFlag]string{CityLimitOff: "OFF", CityLimitOn: "ON"}
	childrenFlagNames  = map[ChildrenFlag]string{ChildrenOff: "OFF", ChildrenOn: "ON"}
	dataTypeParams     = map[DataType]string{
		DataTypeAll:     DataTypeAllParam,
		DataTypePOI:     DataTypePOIParam,
		DataTypeBus:     DataTypeBusParam,
		DataTypeBusline: DataTypeBuslineParam,
	}
)

func enumName[T ~int](names map[T]string, v T) string {
	if s, ok := names[v]; ok {
		return s
	}
	return "UNKNOWN(" + strconv.Itoa(int(v)) + ")"
}

func hasName[T ~int](names map[T]string, v T) bool {
	_, ok := names[v]
	return ok
}

func (f OutputFmt) Valid() bool             { return hasName(outputFmtNames, f) }
func (f OutputFmt) String() string          { return enumName(outputFmtNames, f) }
func (f OutputFmt) Catalog() string         { return "OutputFmt" }
func (f BatchFlag) Valid() bool             { return hasName(batchFlagNames, f) }
func (f BatchFlag) String() string          { return enumName(batchFlagNames, f) }
func (f BatchFlag) Catalog() string         { return "BatchFlag" }
func (v AMapVersion) Valid() bool           { return hasName(versionNames, v) }
func (v AMapVersion) String() string        { return enumName(versionNames, v) }
func (v AMapVersion) Catalog() string       { return "AMapVersion" }
func (f StatusFlag) Valid() bool            { return hasName(statusFlagNames, f) }
func (f StatusFlag) String() string         { return enumName(statusFlagNames, f) }
func (f StatusFlag) Catalog() string        { return "StatusFlag" }
func (f ExtensionFlag) Valid() bool         { return hasName(extensionFlagNames, f) }
func (f ExtensionFlag) String() string      { return enumName(extensionFlagNames, f) }
func (f ExtensionFlag) Catalog() string     { return "ExtensionFlag" }
func (l RoadLevel) Valid() bool             { return hasName(roadLevelNames, l) }
func (l RoadLevel) String() string          { return enumName(roadLevelNames, l) }
func (l RoadLevel) Catalog() string         { return "RoadLevel" }
func (c HomeOrCorpControl) Valid() bool     { return hasName(homeOrCorpNames, c) }
func (c HomeOrCorpControl) String() string  { return enumName(homeOrCorpNames, c) }
func (c HomeOrCorpControl) Catalog() string { return "HomeOrCorpControl" }
func (f CityLimitFlag) Valid() bool         { return hasName(cityLimitNames, f) }
func (f CityLimitFlag) String() string      { return enumName(cityLimitNames, f) }
func (f CityLimitFlag) Catalog() string     { return "CityLimitFlag" }
func (f ChildrenFlag) Valid() bool          { return hasName(childrenFlagNames, f) }
func (f ChildrenFlag) String() string       { return enumName(childrenFlagNames, f) }
func (f ChildrenFlag) Catalog() string      { return "ChildrenFlag" }
func (t DataType) Valid() bool              { return hasName(dataTypeParams, t) }
func (t DataType) Catalog() string          { return "DataType" }

func (t DataType) String() string {
	if p, ok := dataTypeParams[t]; ok {
		return strings.ToUpper(p)
	}
	return "UNKNOWN(" + strconv.Itoa(int(t)) + ")"
}

// Param 输出格式在请求中的取值
func (f OutputFmt) Param() string {
	if f == OutputXML {
		return "XML"
	}
	return "JSON"
}

// Param 布尔类开关统一输出字面量 "true"/"false"
func (f BatchFlag) Param() string { return boolParam(f == BatchOn) }

// Param 扩展开关输出 "base"/"all"
func (f ExtensionFlag) Param() string {
	if f == ExtensionAll {
		return ExtensionAllParam
	}
	return ExtensionBaseParam
}

// Param 道路等级以整数输出
func (l RoadLevel) Param() string { return strconv.Itoa(int(l)) }

func (c HomeOrCorpControl) Param() string { return strconv.Itoa(int(c)) }

// Param 仅当开关为 ON 时输出 "true"，其余一律 "false"
func (f CityLimitFlag) Param() string { return boolParam(f == CityLimitOn) }

func (f ChildrenFlag) Param() string { return strconv.Itoa(int(f)) }

// Param 未知取值回落为 all
func (t DataType) Param() string {
	if p, ok := dataTypeParams[t]; ok {
		return p
	}
	return DataTypeAllParam
}

func boolParam(b bool) string {
	if b {
		return "true"
	}
	return "false"
}

// 文档注释：城市限定开关分类器
// 参数：v 可为 bool、CityLimitFlag 或字符串（大小写不敏感）；空字符串与 nil 视为关闭。
// 返回：无法识别的输入返回 FormatError，不做静默回落。
func ChooseCityLimit(v any) (CityLimitFlag, error) {
	switch x := v.(type) {
	case nil:
		return CityLimitOff, nil
	case bool:
		if x {
			return CityLimitOn, nil
		}
		return CityLimitOff, nil
	case CityLimitFlag:
		if !x.Valid() {
			return CityLimitOff, &FormatError{Field: "citylimit", Value: x.String(), Reason: "not a CityLimitFlag member"}
		}
		return x, nil
	case string:
		switch strings.ToLower(strings.TrimSpace(x)) {
		case "true", "on", "1":
			return CityLimitOn, nil
		case "false", "off", "0", "":
			return CityLimitOff, nil
		}
		return CityLimitOff, &FormatError{Field: "citylimit", Value: x, Reason: "unrecognized city limit token"}
	}
	return CityLimitOff, &FormatError{Field: "citylimit", Value: describe(v), Reason: "unsupported city limit value"}
}

// 文档注释：数据类型分类器
// 约束：大小写不敏感匹配 all/poi/bus/busline；其它输入返回 FormatError。
func ChooseDataType(s string) (DataType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case DataTypeAllParam:
		return DataTypeAll, nil
	case DataTypePOIParam:
		return DataTypePOI, nil
	case DataTypeBusParam:
		return DataTypeBus, nil
	case DataTypeBuslineParam:
		return DataTypeBusline, nil
	}
	return 0, &FormatError{Field: "datatype", Value: s, Reason: "unrecognized data type"}
}

// ChooseExtension 将 bool/字符串/枚举映射为扩展开关
func ChooseExtension(v any) (ExtensionFlag, error) {
	switch x := v.(type) {
	case nil:
		return ExtensionBase, nil
	case bool:
		if x {
			return ExtensionAll, nil
		}
		return ExtensionBase, nil
	case ExtensionFlag:
		if !x.Valid() {
			return ExtensionBase, &FormatError{Field: "extensions", Value: x.String(), Reason: "not an ExtensionFlag member"}
		}
		return x, nil
	case string:
		switch strings.ToLower(strings.TrimSpace(x)) {
		case ExtensionAllParam:
			return ExtensionAll, nil
		case ExtensionBaseParam, "":
			return ExtensionBase, nil
		}
		return ExtensionBase, &FormatError{Field: "extensions", Value: x, Reason: "unrecognized extensions token"}
	}
	return ExtensionBase, &FormatError{Field: "extensions", Value: describe(v), Reason: "unsupported extensions value"}
}

// ParseStatus 响应 status 字段："1" 为成功，其余均视为失败
func ParseStatus(v any) StatusFlag {
	switch x := v.(type) {
	case string:
		if x == "1" {
			return StatusOK
		}
	case float64:
		if x == 1 {
			return StatusOK
		}
	case int:
		if x == 1 {
			return StatusOK
		}
	default:
		if s := stringify(v); s == "1" {
			return StatusOK
		}
	}
	return StatusErr
}

package parser

import "strings"

// SectionRole 段落扫描时的当前组织角色状态。
type SectionRole int

const (
	RoleNone SectionRole = iota
	RoleBuyer
	RoleAgent
	RoleProject
)

// String 返回存储层使用的角色标识。
func (r SectionRole) String() string {
	switch r {
	case RoleBuyer:
		return "buyer"
	case RoleAgent:
		return "agent"
	case RoleProject:
		return "project"
	default:
		return ""
	}
}

// headingRule 段落标题识别规则。按表内顺序做子串匹配，
// keepRole 为 true 时只确认进入联系人区域，不切换当前角色。
type headingRule struct {
	pattern  string
	role     SectionRole
	keepRole bool
}

// 标题词表。新的公告版式通过扩展该表适配，而不是新增分支。
var headingRules = []headingRule{
	{pattern: "采购人信息", role: RoleBuyer},
	{pattern: "1.采购人", role: RoleBuyer},
	{pattern: "1、采购人", role: RoleBuyer},
	{pattern: "2.采购代理机构", role: RoleAgent},
	{pattern: "2、采购代理机构", role: RoleAgent},
	{pattern: "采购代理机构信息", role: RoleAgent},
	{pattern: "代理机构信息", role: RoleAgent},
	{pattern: "项目联系方式", role: RoleProject},
	{pattern: "3.项目", role: RoleProject},
	{pattern: "3、项目", role: RoleProject},
	{pattern: "凡对本次公告", keepRole: true},
}

// DataLine 段落扫描产出的数据行：归属角色 + 原始文本。
type DataLine struct {
	Role SectionRole
	Text string
}

// SegmentBlocks 按顺序扫描文本块，输出带角色标签的数据行。
//
// 状态作为值在折叠中传递：匹配标题词的块被消费并切换状态，
// 其余块以当前状态产出；状态为 None 的块丢弃。重复进入同一
// 状态只是再次确认，没有其他效果。
func SegmentBlocks(blocks []string) []DataLine {
	var lines []DataLine
	state := RoleNone

	for _, block := range blocks {
		text := strings.TrimSpace(block)
		if text == "" {
			continue
		}

		if rule, ok := matchHeading(text); ok {
			if !rule.keepRole {
				state = rule.role
			}
			continue
		}

		if state == RoleNone {
			continue
		}
		lines = append(lines, DataLine{Role: state, Text: text})
	}

	return lines
}

func matchHeading(text string) (headingRule, bool) {
	for _, rule := range headingRules {
		if strings.Contains(text, rule.pattern) {
			return rule, true
		}
	}
	return headingRule{}, false
}

// FieldKind 数据行内的字段类别，与角色状态无关。
type FieldKind int

const (
	FieldOther FieldKind = iota
	FieldName
	FieldAddress
	FieldContact
	FieldPhone
	FieldProjectNames
)

type fieldRule struct {
	keyword string
	kind    FieldKind
}

// 字段词表，按优先级排列（项目联系人要先于联系人命中）。
var fieldRules = []fieldRule{
	{keyword: "项目联系人", kind: FieldProjectNames},
	{keyword: "名 称", kind: FieldName},
	{keyword: "名称", kind: FieldName},
	{keyword: "地址", kind: FieldAddress},
	{keyword: "联系方式", kind: FieldContact},
	{keyword: "联系人", kind: FieldContact},
	{keyword: "电 话", kind: FieldPhone},
	{keyword: "电话", kind: FieldPhone},
}

// ClassifyDataLine 判断一条数据行的字段类别。
func ClassifyDataLine(text string) FieldKind {
	for _, rule := range fieldRules {
		if strings.Contains(text, rule.keyword) {
			return rule.kind
		}
	}
	return FieldOther
}

// LabelValue 取出“标签：值”行中冒号之后的值部分，兼容全角与半角冒号。
func LabelValue(text string) string {
	s := text
	if idx := strings.LastIndex(s, "："); idx >= 0 {
		s = s[idx+len("："):]
	}
	if idx := strings.LastIndex(s, ":"); idx >= 0 {
		s = s[idx+1:]
	}
	return strings.TrimSpace(s)
}

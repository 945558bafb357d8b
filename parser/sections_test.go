package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSegmentBlocks(t *testing.T) {
	blocks := []string{
		"一、项目编号：ABC-2024-001",
		"1.采购人信息",
		"名 称：某市财政局",
		"地址：某市解放路1号",
		"2.采购代理机构信息",
		"名 称：某某招标代理有限公司",
		"电 话：010-12345678",
		"3.项目联系方式",
		"项目联系人：张三",
	}

	lines := SegmentBlocks(blocks)
	require.Len(t, lines, 5)

	assert.Equal(t, RoleBuyer, lines[0].Role)
	assert.Equal(t, "名 称：某市财政局", lines[0].Text)
	assert.Equal(t, RoleBuyer, lines[1].Role)
	assert.Equal(t, RoleAgent, lines[2].Role)
	assert.Equal(t, RoleAgent, lines[3].Role)
	assert.Equal(t, RoleProject, lines[4].Role)
}

func TestSegmentBlocks_HeadingConsumed(t *testing.T) {
	lines := SegmentBlocks([]string{"采购人信息", "名称：单位A"})
	require.Len(t, lines, 1)
	assert.Equal(t, "名称：单位A", lines[0].Text)
}

func TestSegmentBlocks_NoneLinesDropped(t *testing.T) {
	lines := SegmentBlocks([]string{"前言段落", "与联系人无关的内容"})
	assert.Empty(t, lines)
}

func TestSegmentBlocks_KeepRoleHeading(t *testing.T) {
	// 质疑提示语进入联系区域但不改变已有角色
	blocks := []string{
		"2、采购代理机构信息",
		"名称：代理公司",
		"凡对本次公告内容提出询问，请按以下方式联系。",
		"联系人：李四",
	}
	lines := SegmentBlocks(blocks)
	require.Len(t, lines, 2)
	assert.Equal(t, RoleAgent, lines[0].Role)
	assert.Equal(t, RoleAgent, lines[1].Role)
}

func TestClassifyDataLine(t *testing.T) {
	tests := []struct {
		text string
		want FieldKind
	}{
		{"名 称：某单位", FieldName},
		{"名称：某单位", FieldName},
		{"地址：某市某路", FieldAddress},
		{"联系方式：张三 010-12345678", FieldContact},
		{"联系人：张三", FieldContact},
		{"电 话：010-12345678", FieldPhone},
		{"电话：010-12345678", FieldPhone},
		{"项目联系人：张三", FieldProjectNames},
		{"与字段无关的文本", FieldOther},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ClassifyDataLine(tt.text), "text=%s", tt.text)
	}
}

func TestLabelValue(t *testing.T) {
	assert.Equal(t, "某市财政局", LabelValue("名 称：某市财政局"))
	assert.Equal(t, "010-12345678", LabelValue("电话:010-12345678"))
	assert.Equal(t, "没有冒号的行", LabelValue("没有冒号的行"))
	assert.Equal(t, "B", LabelValue("外层：内层：B"))
}

func TestSectionRoleString(t *testing.T) {
	assert.Equal(t, "buyer", RoleBuyer.String())
	assert.Equal(t, "agent", RoleAgent.String())
	assert.Equal(t, "project", RoleProject.String())
	assert.Equal(t, "", RoleNone.String())
}

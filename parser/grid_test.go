package parser

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tableFromHTML(t *testing.T, html string) *goquery.Selection {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)
	table := doc.Find("table").First()
	require.Equal(t, 1, table.Length())
	return table
}

func TestBuildTableGrid_Simple(t *testing.T) {
	table := tableFromHTML(t, `<table>
		<tr><td>采购人</td><td>某某单位</td></tr>
		<tr><td>联系电话</td><td>010-12345678</td></tr>
	</table>`)

	grid := BuildTableGrid(table)
	require.Len(t, grid, 2)
	require.Len(t, grid[0], 2)
	assert.Equal(t, "采购人", grid[0][0].Text)
	assert.Equal(t, "某某单位", grid[0][1].Text)
	assert.Equal(t, "010-12345678", grid[1][1].Text)
}

func TestBuildTableGrid_RowspanColspan(t *testing.T) {
	// 左上角单元格纵跨两行、横跨两列，后续单元格顺延到空位
	table := tableFromHTML(t, `<table>
		<tr><th rowspan="2" colspan="2">项目信息</th><td>A</td></tr>
		<tr><td>B</td></tr>
		<tr><td>C</td><td>D</td><td>E</td></tr>
	</table>`)

	grid := BuildTableGrid(table)
	require.Len(t, grid, 3)

	assert.Equal(t, "项目信息", grid[0][0].Text)
	assert.Equal(t, "项目信息", grid[0][1].Text)
	assert.Equal(t, "项目信息", grid[1][0].Text)
	assert.Equal(t, "项目信息", grid[1][1].Text)
	assert.Same(t, grid[0][0], grid[1][1])

	assert.Equal(t, "A", grid[0][2].Text)
	assert.Equal(t, "B", grid[1][2].Text)
	assert.Equal(t, "C", grid[2][0].Text)
	assert.Equal(t, "E", grid[2][2].Text)

	assert.True(t, grid[0][0].IsHeader)
	assert.False(t, grid[0][2].IsHeader)
}

func TestGridKeyValues(t *testing.T) {
	table := tableFromHTML(t, `<table>
		<tr><td>采购人：</td><td>财政局</td><td>财政局</td></tr>
		<tr><td>联系电话</td><td>010-12345678</td><td>转801</td></tr>
		<tr><td colspan="3">本行是跨列标题，不应当成键值对</td></tr>
		<tr><td></td><td>没有键的行</td></tr>
	</table>`)

	kv := BuildTableGrid(table).KeyValues()

	// 键去掉尾部冒号，值跳过与键重复的文本
	assert.Equal(t, "财政局", kv["采购人"])
	assert.Equal(t, "010-12345678 转801", kv["联系电话"])
	assert.NotContains(t, kv, "本行是跨列标题，不应当成键值对")
	// 最后一行的键右侧没有内容，整行被丢弃
	assert.Len(t, kv, 2)
}

func TestGridKeyValues_MergedHeaderNotKey(t *testing.T) {
	// 2×2 的表头覆盖四个格子，属于分组标题，不得作为键
	table := tableFromHTML(t, `<table>
		<tr><th rowspan="2" colspan="2">项目信息</th><td>A</td></tr>
		<tr><td>B</td></tr>
		<tr><td>采购人</td><td>财政局</td><td></td></tr>
	</table>`)

	kv := BuildTableGrid(table).KeyValues()
	assert.NotContains(t, kv, "项目信息")
	assert.Equal(t, "财政局", kv["采购人"])
	assert.Len(t, kv, 1)
}

func TestGridKeyValues_RowspanLabelStillKey(t *testing.T) {
	// 单列纵向合并的键只覆盖两个格子，仍按键值对处理
	table := tableFromHTML(t, `<table>
		<tr><td rowspan="2">联系方式</td><td>010-12345678</td></tr>
		<tr><td>gp@example.com</td></tr>
	</table>`)

	kv := BuildTableGrid(table).KeyValues()
	// 键在两个网格行中都出现，同名键后一行覆盖前一行
	assert.Equal(t, "gp@example.com", kv["联系方式"])
}

func TestGridKeyValues_DuplicateKeyOverwrites(t *testing.T) {
	table := tableFromHTML(t, `<table>
		<tr><td>联系人</td><td>张三</td></tr>
		<tr><td>联系人</td><td>李四</td></tr>
	</table>`)

	kv := BuildTableGrid(table).KeyValues()
	assert.Equal(t, "李四", kv["联系人"])
}

func TestBuildTableGrid_Empty(t *testing.T) {
	table := tableFromHTML(t, `<table></table>`)
	grid := BuildTableGrid(table)
	assert.Empty(t, grid)
	assert.Empty(t, grid.KeyValues())
}

package parser

import (
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Cell 表格网格中的一个单元格。
// Row/Col 是单元格左上角在网格中的位置，跨行跨列时同一个 *Cell
// 会被填充到覆盖范围内的多个网格位置。
type Cell struct {
	Text     string
	Row      int
	Col      int
	Colspan  int
	Rowspan  int
	IsHeader bool
}

// Grid 表格的矩形网格表示。grid[r][c] 为 nil 表示空位。
type Grid [][]*Cell

// BuildTableGrid 将 table 元素构建为矩形网格，正确处理 colspan 和 rowspan。
//
// 算法：先按各行 colspan 之和确定最大列数，然后逐行从左到右放置单元格，
// 光标跳过已被上方 rowspan 占用的位置；单元格按跨度铺开时不覆盖已填充的格子。
func BuildTableGrid(table *goquery.Selection) Grid {
	rows := table.Find("tr")
	if rows.Length() == 0 {
		return nil
	}

	// 确定网格列数
	maxCols := 0
	rows.Each(func(_ int, row *goquery.Selection) {
		colCount := 0
		row.ChildrenFiltered("td,th").Each(func(_ int, cell *goquery.Selection) {
			colCount += attrSpan(cell, "colspan")
		})
		if colCount > maxCols {
			maxCols = colCount
		}
	})
	if maxCols == 0 {
		return nil
	}

	grid := make(Grid, rows.Length())
	for i := range grid {
		grid[i] = make([]*Cell, maxCols)
	}

	rows.Each(func(rowIdx int, row *goquery.Selection) {
		colIdx := 0
		row.ChildrenFiltered("td,th").Each(func(_ int, sel *goquery.Selection) {
			// 找到本行第一个空位
			for colIdx < maxCols && grid[rowIdx][colIdx] != nil {
				colIdx++
			}
			if colIdx >= maxCols {
				return
			}

			cell := &Cell{
				Text:     strings.TrimSpace(sel.Text()),
				Row:      rowIdx,
				Col:      colIdx,
				Colspan:  attrSpan(sel, "colspan"),
				Rowspan:  attrSpan(sel, "rowspan"),
				IsHeader: sel.Is("th") || sel.HasClass("title"),
			}

			// 按跨度铺开，已被占用的位置保持不变
			for r := rowIdx; r < rowIdx+cell.Rowspan && r < len(grid); r++ {
				for c := colIdx; c < colIdx+cell.Colspan && c < maxCols; c++ {
					if grid[r][c] == nil {
						grid[r][c] = cell
					}
				}
			}

			colIdx += cell.Colspan
		})
	})

	return grid
}

// KeyValues 将网格解析为键值对。
//
// 每个网格行中第一个非空、且覆盖格子数不超过 2 的单元格作为键
// （colspan×rowspan > 2 视为分组标题，整行跳过）；键右侧同一网格行
// 内的单元格文本拼接为值，跨度铺开造成的重复文本只取一次。
// 键名去掉末尾的全角/半角冒号。
func (g Grid) KeyValues() map[string]string {
	result := make(map[string]string)

	for _, row := range g {
		var keyCell *Cell
		keyCol := -1
		for colIdx, cell := range row {
			if cell != nil && cell.Text != "" {
				keyCell = cell
				keyCol = colIdx
				break
			}
		}
		if keyCell == nil {
			continue
		}

		// 覆盖超过两个格子的宽单元格是分组标题，不是键值对。
		// 纵向合并一列的键（colspan=1 rowspan=2）覆盖两格，仍按键处理。
		if keyCell.Colspan*keyCell.Rowspan > 2 {
			continue
		}

		key := strings.TrimRight(keyCell.Text, "：:")
		if key == "" {
			continue
		}

		var valueParts []string
		seen := make(map[string]bool)
		for colIdx := keyCol + 1; colIdx < len(row); colIdx++ {
			cell := row[colIdx]
			if cell == nil || cell == keyCell || cell.Text == "" {
				continue
			}
			if seen[cell.Text] {
				continue
			}
			seen[cell.Text] = true
			valueParts = append(valueParts, cell.Text)
		}

		value := strings.TrimSpace(strings.Join(valueParts, " "))
		if value != "" {
			result[key] = value
		}
	}

	return result
}

func attrSpan(sel *goquery.Selection, name string) int {
	v, ok := sel.Attr(name)
	if !ok {
		return 1
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil || n < 1 {
		return 1
	}
	return n
}

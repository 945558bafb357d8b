// Package export 公告与名片数据导出为 Excel 或 CSV。
package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"gpcards/database"
)

var cardHeaders = []string{"公司", "联系人", "电话", "邮箱", "地址", "提及次数", "更新时间"}

var announcementHeaders = []string{
	"标题", "链接", "发布日期", "项目编号", "项目名称",
	"品目", "行政区域", "采购人", "代理机构", "供应商", "中标金额",
}

// Exporter 数据导出器。文件名自动附加时间戳。
type Exporter struct {
	dir string
}

// NewExporter 创建导出器，目录不存在时创建。
func NewExporter(dir string) (*Exporter, error) {
	if dir == "" {
		dir = "exports"
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create export directory: %w", err)
	}
	return &Exporter{dir: dir}, nil
}

func (e *Exporter) timestamped(prefix, ext string) string {
	name := fmt.Sprintf("%s_%s.%s", prefix, time.Now().Format("20060102_150405"), ext)
	return filepath.Join(e.dir, name)
}

// CardsToExcel 导出名片到 xlsx，返回文件路径。
func (e *Exporter) CardsToExcel(cards []database.BusinessCard) (string, error) {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "名片"
	f.SetSheetName("Sheet1", sheet)

	for col, header := range cardHeaders {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		f.SetCellValue(sheet, cell, header)
	}
	for i, card := range cards {
		row := i + 2
		values := []interface{}{
			card.Company,
			card.ContactName,
			strings.Join(card.Phones, ", "),
			strings.Join(card.Emails, ", "),
			card.Address,
			card.Mentions,
			card.UpdatedAt,
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			f.SetCellValue(sheet, cell, v)
		}
	}

	path := e.timestamped("business_cards", "xlsx")
	if err := f.SaveAs(path); err != nil {
		return "", fmt.Errorf("save cards workbook: %w", err)
	}
	return path, nil
}

// CardsToCSV 导出名片到 CSV（带 BOM，便于 Excel 直接打开）。
func (e *Exporter) CardsToCSV(cards []database.BusinessCard) (string, error) {
	path := e.timestamped("business_cards", "csv")
	rows := make([][]string, 0, len(cards)+1)
	rows = append(rows, cardHeaders)
	for _, card := range cards {
		rows = append(rows, []string{
			card.Company,
			card.ContactName,
			strings.Join(card.Phones, ", "),
			strings.Join(card.Emails, ", "),
			card.Address,
			fmt.Sprintf("%d", card.Mentions),
			card.UpdatedAt,
		})
	}
	if err := writeCSV(path, rows); err != nil {
		return "", err
	}
	return path, nil
}

// AnnouncementsToExcel 导出公告列表到 xlsx。
func (e *Exporter) AnnouncementsToExcel(records []database.AnnouncementRecord) (string, error) {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "公告"
	f.SetSheetName("Sheet1", sheet)

	for col, header := range announcementHeaders {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		f.SetCellValue(sheet, cell, header)
	}
	for i, rec := range records {
		row := i + 2
		values := []interface{}{
			rec.Title, rec.URL, rec.PublishDate, rec.ProjectNo, rec.ProjectName,
			rec.Category, rec.Region, rec.BuyerName, rec.AgentName, rec.Supplier, rec.BidAmount,
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			f.SetCellValue(sheet, cell, v)
		}
	}

	path := e.timestamped("announcements", "xlsx")
	if err := f.SaveAs(path); err != nil {
		return "", fmt.Errorf("save announcements workbook: %w", err)
	}
	return path, nil
}

// AnnouncementsToCSV 导出公告列表到 CSV。
func (e *Exporter) AnnouncementsToCSV(records []database.AnnouncementRecord) (string, error) {
	path := e.timestamped("announcements", "csv")
	rows := make([][]string, 0, len(records)+1)
	rows = append(rows, announcementHeaders)
	for _, rec := range records {
		rows = append(rows, []string{
			rec.Title, rec.URL, rec.PublishDate, rec.ProjectNo, rec.ProjectName,
			rec.Category, rec.Region, rec.BuyerName, rec.AgentName, rec.Supplier, rec.BidAmount,
		})
	}
	if err := writeCSV(path, rows); err != nil {
		return "", err
	}
	return path, nil
}

func writeCSV(path string, rows [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv file: %w", err)
	}
	defer f.Close()

	// UTF-8 BOM，否则 Excel 打开中文乱码
	if _, err := f.Write([]byte{0xEF, 0xBB, 0xBF}); err != nil {
		return fmt.Errorf("write bom: %w", err)
	}

	w := csv.NewWriter(f)
	if err := w.WriteAll(rows); err != nil {
		return fmt.Errorf("write csv rows: %w", err)
	}
	w.Flush()
	return w.Error()
}

package check

import (
	"fmt"
	"strconv"

	"github.com/xuri/excelize/v2"
)

// 巡检报表表头
var (
	levelHeader     = []string{"Level", "Rank", "Rows"}
	partitionHeader = []string{"Partition Key", "Rows", "Last Dump Rows"}
)

// WriteReport 生成巡检结果的 Excel 报表
// 背景：巡检结果需要随运维周报流转，表格比日志便于汇报；
// 三个工作表分别是汇总、层级分布与分区行数。
func WriteReport(res *Result, path string) error {
	f := excelize.NewFile()
	defer f.Close()

	summary := "Summary"
	if err := f.SetSheetName("Sheet1", summary); err != nil {
		return err
	}
	_ = f.SetCellValue(summary, "A1", "Total Rows")
	_ = f.SetCellValue(summary, "B1", res.Total)
	_ = f.SetCellValue(summary, "A2", "Violations")
	_ = f.SetCellValue(summary, "B2", len(res.Violations))
	for i, v := range res.Violations {
		_ = f.SetCellValue(summary, "A"+strconv.Itoa(4+i), v)
	}

	levels := "Levels"
	if _, err := f.NewSheet(levels); err != nil {
		return err
	}
	for col, h := range levelHeader {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		_ = f.SetCellValue(levels, cell, h)
	}
	for row, lc := range res.Levels {
		_ = f.SetCellValue(levels, "A"+strconv.Itoa(row+2), lc.Level)
		_ = f.SetCellValue(levels, "B"+strconv.Itoa(row+2), lc.Rank)
		_ = f.SetCellValue(levels, "C"+strconv.Itoa(row+2), lc.Count)
	}

	parts := "Partitions"
	if _, err := f.NewSheet(parts); err != nil {
		return err
	}
	for col, h := range partitionHeader {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		_ = f.SetCellValue(parts, cell, h)
	}
	for row, pc := range res.Partitions {
		_ = f.SetCellValue(parts, "A"+strconv.Itoa(row+2), pc.Key)
		_ = f.SetCellValue(parts, "B"+strconv.Itoa(row+2), pc.Count)
		if pc.Journal >= 0 {
			_ = f.SetCellValue(parts, "C"+strconv.Itoa(row+2), pc.Journal)
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save report %s: %w", path, err)
	}
	return nil
}

package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/xuri/excelize/v2"

	"tree-inventory-backend/db/models"
)

const reportDir = "./public/files"

// EnsureDirectoryExists creates the parent directory of filePath if it is
// missing.
func EnsureDirectoryExists(filePath string) error {
	dir := filepath.Dir(filePath)
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("error creating directory: %v", err)
		}
	}
	return nil
}

// GenerateErrorReport writes the failed rows of an import event into an
// Excel workbook and returns its path. One sheet row per import row, one
// extra line per field error.
func GenerateErrorReport(event *models.ImportEvent, failed []models.ImportRow) (string, error) {
	if err := EnsureDirectoryExists(reportDir + "/x"); err != nil {
		return "", err
	}

	f := excelize.NewFile()
	sheetName := "Errors"
	index, err := f.NewSheet(sheetName)
	if err != nil {
		return "", fmt.Errorf("error creating sheet: %v", err)
	}
	f.DeleteSheet("Sheet1")

	headers := []string{"Row", "Status", "Error Code", "Fields", "Detail"}
	for col, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		if err := f.SetCellValue(sheetName, cell, header); err != nil {
			return "", fmt.Errorf("error setting header %s: %v", header, err)
		}
	}

	line := 2
	for i := range failed {
		row := &failed[i]
		for _, fe := range row.ErrorList() {
			values := []interface{}{
				row.Idx + 1,
				row.Status,
				fe.Code,
				fmt.Sprintf("%v", fe.Fields),
				fmt.Sprintf("%v", fe.Data),
			}
			for col, v := range values {
				cell, _ := excelize.CoordinatesToCellName(col+1, line)
				if err := f.SetCellValue(sheetName, cell, v); err != nil {
					return "", fmt.Errorf("error writing row %d: %v", row.Idx, err)
				}
			}
			line++
		}
	}

	f.SetActiveSheet(index)

	fileName := fmt.Sprintf("import_errors_%s_%s.xlsx",
		event.ID.String(), time.Now().Format("2006-01-02_15-04-05"))
	relativeFilePath := fmt.Sprintf("%s/%s", reportDir, fileName)

	if err := f.SaveAs(relativeFilePath); err != nil {
		return "", err
	}
	return relativeFilePath, nil
}

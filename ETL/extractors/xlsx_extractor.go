package extractors

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

// XLSXExtractor читает лист, первая строка которого - заголовок
type XLSXExtractor struct {
	// Имя листа; пусто - первый лист книги
	Sheet string
}

func NewXLSXExtractor() *XLSXExtractor {
	return &XLSXExtractor{}
}

// ReadRecords возвращает заголовок и строки данных. Строки шире заголовка пропускаются
// и подсчитываются, короткие дополняются: пустые ячейки в конце не хранятся.
func (e *XLSXExtractor) ReadRecords(r io.Reader) ([]string, [][]string, int, error) {
	book, err := excelize.OpenReader(r)
	if err != nil {
		return nil, nil, 0, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer book.Close()

	sheet := e.Sheet
	if sheet == "" {
		sheets := book.GetSheetList()
		if len(sheets) == 0 {
			return nil, nil, 0, nil
		}
		sheet = sheets[0]
	}

	it, err := book.Rows(sheet)
	if err != nil {
		return nil, nil, 0, fmt.Errorf("failed to read sheet %s: %w", sheet, err)
	}
	defer it.Close()

	var header []string
	var rows [][]string
	skipped := 0
	for it.Next() {
		cells, err := it.Columns()
		if err != nil {
			skipped++
			continue
		}
		if header == nil {
			header = cells
			continue
		}
		if blank(cells) {
			continue
		}
		if len(cells) > len(header) {
			skipped++
			continue
		}
		for len(cells) < len(header) {
			cells = append(cells, "")
		}
		rows = append(rows, cells)
	}
	if err := it.Error(); err != nil {
		return nil, nil, 0, fmt.Errorf("failed to iterate sheet %s: %w", sheet, err)
	}

	return header, rows, skipped, nil
}

func blank(cells []string) bool {
	for _, c := range cells {
		if c != "" {
			return false
		}
	}
	return true
}

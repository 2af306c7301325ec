package extractors

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
)

// CSVExtractor читает CSV-файлы с заголовком
type CSVExtractor struct {
	Comma rune
}

func NewCSVExtractor() *CSVExtractor {
	return &CSVExtractor{Comma: ','}
}

// ReadRecords возвращает заголовок и строки данных. Строки с другим числом полей
// или с ошибкой разбора пропускаются и подсчитываются.
func (e *CSVExtractor) ReadRecords(r io.Reader) ([]string, [][]string, int, error) {
	reader := csv.NewReader(r)
	reader.Comma = e.Comma

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil, 0, nil
	}
	if err != nil {
		return nil, nil, 0, fmt.Errorf("failed to read header: %w", err)
	}
	header = trimBOM(header)

	var rows [][]string
	skipped := 0
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		var parseErr *csv.ParseError
		if errors.As(err, &parseErr) {
			skipped++
			continue
		}
		if err != nil {
			return nil, nil, 0, fmt.Errorf("failed to read record: %w", err)
		}
		rows = append(rows, record)
	}

	return header, rows, skipped, nil
}

func trimBOM(header []string) []string {
	if len(header) > 0 && len(header[0]) >= 3 && header[0][:3] == "\xef\xbb\xbf" {
		header[0] = header[0][3:]
	}
	return header
}

package extractors

import (
	"strconv"
	"strings"

	"github.com/LilVoxy/hr_etl/ETL/models"
)

// missingTokens читаются как пропуски, как принято в CSV и таблицах
var missingTokens = map[string]bool{
	"":     true,
	"NA":   true,
	"N/A":  true,
	"n/a":  true,
	"NaN":  true,
	"nan":  true,
	"-NaN": true,
	"-nan": true,
	"null": true,
	"NULL": true,
	"None": true,
	"<NA>": true,
	"#N/A": true,
}

// IsMissing сообщает, обозначает ли ячейка пропуск
func IsMissing(raw string) bool {
	return missingTokens[raw]
}

// BuildFrame преобразует строки в типизированный фрейм, по колонке на поле заголовка
func BuildFrame(header []string, rows [][]string) (*models.Frame, error) {
	frame := models.NewFrame(len(rows))
	for j, name := range header {
		raw := make([]string, len(rows))
		for i, row := range rows {
			raw[i] = row[j]
		}
		if err := frame.AddColumn(InferColumn(name, raw)); err != nil {
			return nil, err
		}
	}
	return frame, nil
}

// InferColumn выбирает самый узкий тип для всех значений: int, затем float, затем текст
func InferColumn(name string, raw []string) *models.Column {
	kind := models.KindInt
	present := 0
	for _, s := range raw {
		if IsMissing(s) {
			continue
		}
		present++
		s = strings.TrimSpace(s)
		if kind == models.KindInt {
			if _, err := strconv.ParseInt(s, 10, 64); err == nil {
				continue
			}
			kind = models.KindFloat
		}
		if _, err := strconv.ParseFloat(s, 64); err != nil {
			kind = models.KindString
			break
		}
	}
	if present == 0 {
		kind = models.KindFloat
	}

	values := make([]models.Value, len(raw))
	for i, s := range raw {
		if IsMissing(s) {
			values[i] = models.Null(kind)
			continue
		}
		switch kind {
		case models.KindInt:
			n, _ := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
			values[i] = models.Int(n)
		case models.KindFloat:
			f, _ := strconv.ParseFloat(strings.TrimSpace(s), 64)
			values[i] = models.Float(f)
		default:
			values[i] = models.String(s)
		}
	}
	return models.NewColumn(name, kind, values)
}

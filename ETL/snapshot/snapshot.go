// Package snapshot сохраняет обогащенный фрейм в CSV, сжатый snappy
package snapshot

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/golang/snappy"

	"github.com/LilVoxy/hr_etl/ETL/models"
)

// Writer сохраняет снимок каждого запуска по пути path, заменяя предыдущий
type Writer struct {
	path string
}

func NewWriter(path string) *Writer {
	return &Writer{path: path}
}

func (w *Writer) Path() string {
	return w.path
}

// Write записывает f во временный файл и переименовывает его в path,
// поэтому читатель никогда не видит неполный снимок
func (w *Writer) Write(f *models.Frame) error {
	tmp, err := os.CreateTemp(filepath.Dir(w.path), filepath.Base(w.path)+".*")
	if err != nil {
		return fmt.Errorf("failed to create snapshot: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := Encode(tmp, f); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close snapshot: %w", err)
	}
	if err := os.Rename(tmp.Name(), w.path); err != nil {
		return fmt.Errorf("failed to publish snapshot: %w", err)
	}
	return nil
}

// Encode пишет f как CSV (сначала заголовок, пропуски как пустые поля) в поток snappy
func Encode(w io.Writer, f *models.Frame) error {
	zw := snappy.NewBufferedWriter(w)
	cw := csv.NewWriter(zw)

	if err := cw.Write(f.Names()); err != nil {
		return fmt.Errorf("failed to write snapshot header: %w", err)
	}
	record := make([]string, f.Width())
	for i := 0; i < f.Len(); i++ {
		for j, v := range f.Row(i) {
			record[j] = v.Text()
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("failed to write snapshot row %d: %w", i, err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("failed to flush snapshot: %w", err)
	}
	return zw.Close()
}

// Decode читает снимок обратно в заголовок и строки
func Decode(r io.Reader) ([]string, [][]string, error) {
	records, err := csv.NewReader(snappy.NewReader(r)).ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read snapshot: %w", err)
	}
	if len(records) == 0 {
		return nil, nil, io.ErrUnexpectedEOF
	}
	return records[0], records[1:], nil
}

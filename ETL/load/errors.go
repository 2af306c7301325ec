package load

import (
	"errors"
	"fmt"
)

var (
	ErrMissingKey    = errors.New("join key is missing")
	ErrDuplicateKey  = errors.New("join key is not unique")
	ErrMissingColumn = errors.New("column required by target table is missing")
)

// TableWriteError указывает таблицу, запись в которую не удалась
type TableWriteError struct {
	Table string
	Err   error
}

func (e *TableWriteError) Error() string {
	return fmt.Sprintf("failed to write table %s: %v", e.Table, e.Err)
}

func (e *TableWriteError) Unwrap() error {
	return e.Err
}

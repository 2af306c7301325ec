package pipeline

import (
	"errors"
	"fmt"
)

var ErrAlreadyRunning = errors.New("pipeline run already in progress")

// StageError связывает ошибку запуска с этапом, на котором она возникла
type StageError struct {
	Stage string
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("stage %s failed: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// FailedStage возвращает этап из StageError в цепочке err или ""
func FailedStage(err error) string {
	var se *StageError
	if errors.As(err, &se) {
		return se.Stage
	}
	return ""
}

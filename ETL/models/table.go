package models

// Table - проекция обогащенного фрейма для одной целевой таблицы
type Table struct {
	Name  string
	Key   string
	Frame *Frame
}

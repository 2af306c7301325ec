package config

// Целевые типы, допустимые в PipelineRules.ColumnTypes
const (
	TypeInt   = "int"
	TypeFloat = "float"
)

// PipelineRules описывает, какие колонки обрабатывает каждый этап трансформации
type PipelineRules struct {
	KeyColumn string `yaml:"key_column" validate:"required"`

	// Колонки Yes/No, переводимые в 1/0
	BinaryColumns []string         `yaml:"binary_columns"`
	BinaryMap     map[string]int64 `yaml:"binary_map" validate:"required,min=1"`

	DropColumns []string `yaml:"drop_columns"`

	// Приводятся к Title Case и обрезаются, затем заменяются по словарю колонки
	TitleColumns []string                     `yaml:"title_columns"`
	Replacements map[string]map[string]string `yaml:"replacements"`

	ModeColumns     []string `yaml:"mode_columns"`
	ConstantColumns []string `yaml:"constant_columns"`
	ConstantValue   string   `yaml:"constant_value"`
	MedianColumns   []string `yaml:"median_columns"`

	IterativeColumns []string       `yaml:"iterative_columns"`
	Iterative        IterativeRules `yaml:"iterative"`

	// Колонка -> "int" | "float"
	ColumnTypes map[string]string `yaml:"column_types" validate:"dive,oneof=int float"`

	IncomeColumn string `yaml:"income_column" validate:"required"`
	AgeColumn    string `yaml:"age_column" validate:"required"`
	TenureColumn string `yaml:"tenure_column" validate:"required"`
}

// IterativeRules настраивает регрессионное заполнение пропусков
type IterativeRules struct {
	MaxIter   int     `yaml:"max_iter" validate:"min=1"`
	Seed      int64   `yaml:"seed"`
	Tolerance float64 `yaml:"tolerance" validate:"gt=0"`
	Alpha     float64 `yaml:"alpha" validate:"gte=0"`
	// Модели с R² ниже порога попадают в лог как слабые
	MinR2 float64 `yaml:"min_r2" validate:"gte=0,lte=1"`
	// Колонки-предикторы; пусто - все остальные числовые колонки, кроме ключа
	Predictors []string `yaml:"predictors"`
}

// DefaultRules возвращает правила стандартного запуска по оттоку сотрудников
func DefaultRules() PipelineRules {
	return PipelineRules{
		KeyColumn:     "EmployeeNumber",
		BinaryColumns: []string{"OverTime", "Attrition"},
		BinaryMap:     map[string]int64{"Yes": 1, "No": 0},
		DropColumns:   []string{"Over18", "EmployeeCount", "StandardHours"},
		TitleColumns:  []string{"JobRole"},
		Replacements: map[string]map[string]string{
			"MaritalStatus": {"Marreid": "Married"},
			"BusinessTravel": {
				"Travel_Frequently": "Frequently",
				"Travel_Rarely":     "Rarely",
				"Non-Travel":        "Non-Travel",
			},
		},
		ModeColumns:      []string{"BusinessTravel", "Department"},
		ConstantColumns:  []string{"EducationField", "MaritalStatus"},
		ConstantValue:    "Unknown",
		MedianColumns:    []string{"Age", "JobSatisfaction", "MonthlyIncome", "OverTime"},
		IterativeColumns: []string{"TrainingTimesLastYear", "YearsWithCurrManager"},
		Iterative: IterativeRules{
			MaxIter:   100,
			Seed:      42,
			Tolerance: 1e-3,
			Alpha:     1.0,
			MinR2:     0.30,
		},
		ColumnTypes: map[string]string{
			"JobSatisfaction":       TypeInt,
			"Age":                   TypeInt,
			"YearsWithCurrManager":  TypeInt,
			"TrainingTimesLastYear": TypeInt,
			"MonthlyRate":           TypeFloat,
		},
		IncomeColumn: "MonthlyIncome",
		AgeColumn:    "Age",
		TenureColumn: "YearsAtCompany",
	}
}

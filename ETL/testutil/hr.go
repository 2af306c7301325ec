// Package testutil содержит тестовые данные по оттоку сотрудников
package testutil

import (
	"strings"
)

// HRColumns - заголовок выгрузки HR
var HRColumns = []string{
	"Age", "Attrition", "BusinessTravel", "DailyRate", "Department", "DistanceFromHome",
	"Education", "EducationField", "EmployeeCount", "EmployeeNumber", "EnvironmentSatisfaction",
	"Gender", "HourlyRate", "JobInvolvement", "JobLevel", "JobRole", "JobSatisfaction",
	"MaritalStatus", "MonthlyIncome", "MonthlyRate", "NumCompaniesWorked", "Over18", "OverTime",
	"PercentSalaryHike", "PerformanceRating", "RelationshipSatisfaction", "StandardHours",
	"StockOptionLevel", "TotalWorkingYears", "TrainingTimesLastYear", "WorkLifeBalance",
	"YearsAtCompany", "YearsInCurrentRole", "YearsSinceLastPromotion", "YearsWithCurrManager",
}

var baseRecord = map[string]string{
	"Age":                      "35",
	"Attrition":                "No",
	"BusinessTravel":           "Travel_Rarely",
	"DailyRate":                "800",
	"Department":               "Research & Development",
	"DistanceFromHome":         "5",
	"Education":                "3",
	"EducationField":           "Medical",
	"EmployeeCount":            "1",
	"EmployeeNumber":           "1",
	"EnvironmentSatisfaction":  "3",
	"Gender":                   "Female",
	"HourlyRate":               "60",
	"JobInvolvement":           "3",
	"JobLevel":                 "2",
	"JobRole":                  "research scientist",
	"JobSatisfaction":          "3",
	"MaritalStatus":            "Single",
	"MonthlyIncome":            "5000",
	"MonthlyRate":              "14000",
	"NumCompaniesWorked":       "2",
	"Over18":                   "Y",
	"OverTime":                 "No",
	"PercentSalaryHike":        "14",
	"PerformanceRating":        "3",
	"RelationshipSatisfaction": "3",
	"StandardHours":            "80",
	"StockOptionLevel":         "1",
	"TotalWorkingYears":        "10",
	"TrainingTimesLastYear":    "3",
	"WorkLifeBalance":          "3",
	"YearsAtCompany":           "5",
	"YearsInCurrentRole":       "3",
	"YearsSinceLastPromotion":  "1",
	"YearsWithCurrManager":     "3",
}

// HRRecord возвращает строку в порядке HRColumns, базовые значения заменяются fields
func HRRecord(fields map[string]string) []string {
	row := make([]string, len(HRColumns))
	for i, name := range HRColumns {
		v, ok := fields[name]
		if !ok {
			v = baseRecord[name]
		}
		row[i] = v
	}
	return row
}

// AttritionSample - пять строк: пятая дублирует первую, во второй опечатка "Marreid",
// в третьей нет BusinessTravel.
func AttritionSample() [][]string {
	return [][]string{
		HRRecord(map[string]string{"EmployeeNumber": "1", "MonthlyIncome": "2000", "OverTime": "Yes", "JobSatisfaction": "1", "YearsAtCompany": "1"}),
		HRRecord(map[string]string{"EmployeeNumber": "2", "MaritalStatus": "Marreid", "Age": "24", "Department": ""}),
		HRRecord(map[string]string{"EmployeeNumber": "3", "BusinessTravel": "", "TrainingTimesLastYear": "", "Age": "50"}),
		HRRecord(map[string]string{"EmployeeNumber": "4", "MonthlyIncome": "8000", "YearsWithCurrManager": "", "YearsAtCompany": "12", "EducationField": ""}),
		HRRecord(map[string]string{"EmployeeNumber": "1", "MonthlyIncome": "2000", "OverTime": "Yes", "JobSatisfaction": "1", "YearsAtCompany": "1"}),
	}
}

// CSV формирует текст CSV из заголовка и строк
func CSV(header []string, rows [][]string) string {
	var b strings.Builder
	b.WriteString(strings.Join(header, ","))
	b.WriteByte('\n')
	for _, row := range rows {
		b.WriteString(strings.Join(row, ","))
		b.WriteByte('\n')
	}
	return b.String()
}

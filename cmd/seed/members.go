package main

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf-popaccueil/popaccueil-backend/internal/app/model"
	"github.com/xuri/excelize/v2"
)

// Member sheet columns, first row is a header:
// A firstName | B lastName | C email | D popAccueilNumber | E isVolunteer
const (
	colFirstName = iota
	colLastName
	colEmail
	colPopAccueilNumber
	colIsVolunteer
	minColumns = colEmail + 1
)

type memberRow struct {
	Line             int
	FirstName        string
	LastName         string
	Email            string
	PopAccueilNumber string
	IsVolunteer      bool
}

type importSummary struct {
	Rows      int
	Valid     int
	Skipped   int
	Duplicate int
}

var validate = validator.New()

func readMembersFromXLSX(filePath string) ([]memberRow, importSummary, error) {
	f, err := excelize.OpenFile(filePath)
	if err != nil {
		return nil, importSummary{}, fmt.Errorf("failed to open XLSX file: %w", err)
	}
	defer f.Close()

	sheetName := f.GetSheetName(0)
	if sheetName == "" {
		return nil, importSummary{}, fmt.Errorf("no sheets found in XLSX file")
	}

	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, importSummary{}, fmt.Errorf("failed to read rows: %w", err)
	}
	if len(rows) == 0 {
		return nil, importSummary{}, fmt.Errorf("no data found in XLSX file")
	}

	members, summary := parseMemberRows(rows[1:])
	return members, summary, nil
}

// parseMemberRows validates data rows (header excluded). Emails are
// normalized and only the first occurrence of each is kept.
func parseMemberRows(rows [][]string) ([]memberRow, importSummary) {
	summary := importSummary{Rows: len(rows)}
	seen := make(map[string]bool)
	var members []memberRow

	for i, row := range rows {
		if len(row) < minColumns {
			summary.Skipped++
			continue
		}

		m := memberRow{
			Line:             i + 2,
			FirstName:        strings.TrimSpace(row[colFirstName]),
			LastName:         strings.TrimSpace(row[colLastName]),
			Email:            model.NormalizeEmail(row[colEmail]),
			PopAccueilNumber: cell(row, colPopAccueilNumber),
			IsVolunteer:      parseYes(cell(row, colIsVolunteer)),
		}

		if m.FirstName == "" || m.LastName == "" || validate.Var(m.Email, "required,email") != nil {
			summary.Skipped++
			continue
		}
		if seen[m.Email] {
			summary.Duplicate++
			continue
		}
		seen[m.Email] = true
		members = append(members, m)
	}

	summary.Valid = len(members)
	return members, summary
}

func cell(row []string, col int) string {
	if col >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[col])
}

func parseYes(v string) bool {
	switch strings.ToLower(v) {
	case "1", "true", "yes", "y", "oui", "o", "x":
		return true
	}
	return false
}

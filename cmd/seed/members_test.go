package main

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/spf-popaccueil/popaccueil-backend/internal/app/model"
	"github.com/spf-popaccueil/popaccueil-backend/internal/app/repository"
	"github.com/spf-popaccueil/popaccueil-backend/internal/db"
	"github.com/spf-popaccueil/popaccueil-backend/pkg/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"golang.org/x/crypto/bcrypt"
)

func TestParseMemberRows(t *testing.T) {
	rows := [][]string{
		{"Jane", "Doe", " JANE@example.org ", "PA-1", "oui"},
		{"John", "Smith", "john@example.org"},
		{"Dup", "Licate", "jane@example.org", "PA-3", ""},
		{"", "NoFirst", "nofirst@example.org"},
		{"Bad", "Email", "not-an-email"},
		{"Short"},
	}

	members, summary := parseMemberRows(rows)

	require.Len(t, members, 2)
	assert.Equal(t, importSummary{Rows: 6, Valid: 2, Skipped: 3, Duplicate: 1}, summary)

	assert.Equal(t, "jane@example.org", members[0].Email)
	assert.Equal(t, "PA-1", members[0].PopAccueilNumber)
	assert.True(t, members[0].IsVolunteer)
	assert.Equal(t, 2, members[0].Line)

	assert.Equal(t, "john@example.org", members[1].Email)
	assert.False(t, members[1].IsVolunteer)
	assert.Empty(t, members[1].PopAccueilNumber)
}

func TestReadMembersFromXLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "members.xlsx")

	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	require.NoError(t, f.SetSheetRow(sheet, "A1", &[]interface{}{"firstName", "lastName", "email", "popAccueilNumber", "isVolunteer"}))
	require.NoError(t, f.SetSheetRow(sheet, "A2", &[]interface{}{"Jane", "Doe", "jane@example.org", "PA-1", "x"}))
	require.NoError(t, f.SetSheetRow(sheet, "A3", &[]interface{}{"John", "Smith", "john@example.org", "PA-2", ""}))
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	members, summary, err := readMembersFromXLSX(path)
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Valid)
	require.Len(t, members, 2)
	assert.True(t, members[0].IsVolunteer)
	assert.Equal(t, "PA-2", members[1].PopAccueilNumber)

	_, _, err = readMembersFromXLSX(filepath.Join(t.TempDir(), "missing.xlsx"))
	assert.Error(t, err)
}

type recordingResets struct {
	emails []string
}

func (r *recordingResets) RequestReset(_ context.Context, email string) error {
	r.emails = append(r.emails, email)
	return nil
}

func TestImportMembers(t *testing.T) {
	util.SetBcryptCost(bcrypt.MinCost)

	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	defer db.CleanupTestDB(testDB)

	users := repository.NewUserRepository(testDB)
	existing := &model.User{Email: "jane@example.org", FirstName: "Jane", LastName: "Doe"}
	require.NoError(t, existing.SetPassword("keep-me"))
	require.NoError(t, users.Create(existing))

	resets := &recordingResets{}
	result := importMembers(context.Background(), users, resets, []memberRow{
		{Line: 2, FirstName: "Jane", LastName: "Doe", Email: "jane@example.org"},
		{Line: 3, FirstName: "John", LastName: "Smith", Email: "john@example.org", IsVolunteer: true},
	})

	assert.Equal(t, importResult{Created: 1, Existing: 1}, result)
	assert.Equal(t, []string{"john@example.org"}, resets.emails)

	john, err := users.FindByEmail("john@example.org")
	require.NoError(t, err)
	assert.True(t, john.IsVolunteer)
	assert.NotEmpty(t, john.PasswordHash)

	jane, err := users.FindByEmail("jane@example.org")
	require.NoError(t, err)
	assert.True(t, jane.CheckPassword("keep-me"))
}

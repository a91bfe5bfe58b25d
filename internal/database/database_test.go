package database

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestValidIdentifier(t *testing.T) {
	for name, want := range map[string]bool{
		"form_submission": true,
		"_t1":             true,
		"1abc":            false,
		"a-b":             false,
		"x; DROP":         false,
		"":                false,
	} {
		if got := ValidIdentifier(name); got != want {
			t.Errorf("ValidIdentifier(%q) = %v, want %v", name, got, want)
		}
	}
}

func TestEnsureSubmissionTable(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS snippets \(`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	if err := EnsureSubmissionTable(context.Background(), db, "snippets"); err != nil {
		t.Fatalf("EnsureSubmissionTable: %v", err)
	}

	mock.ExpectExec(`CREATE TABLE`).WillReturnError(errors.New("denied"))
	if err := EnsureSubmissionTable(context.Background(), db, "other"); err == nil {
		t.Error("expected exec error")
	}

	if err := EnsureSubmissionTable(context.Background(), db, "bad name"); err == nil {
		t.Error("expected identifier error")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet SQL expectations: %v", err)
	}
}

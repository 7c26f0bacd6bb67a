package input

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	apperrors "bondcheck/internal/errors"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestReadFileCSV(t *testing.T) {
	path := writeFile(t, "bonds.csv",
		"Name,ISIN,Amount\nBond A,RU000A105EX7,10\nBond B,us0378331005,5\n,,\n")

	batch, err := ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if len(batch.Identifiers) != 2 {
		t.Fatalf("Identifiers = %v", batch.Identifiers)
	}
	if batch.Identifiers[0] != "RU000A105EX7" || batch.Identifiers[1] != "US0378331005" {
		t.Errorf("Identifiers = %v, want normalized order preserved", batch.Identifiers)
	}
}

func TestReadFileCSVSemicolonDelimiter(t *testing.T) {
	path := writeFile(t, "bonds.csv", "isin;amount\nRU000A105EX7;10\n")

	batch, err := ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if len(batch.Identifiers) != 1 || batch.Identifiers[0] != "RU000A105EX7" {
		t.Errorf("Identifiers = %v", batch.Identifiers)
	}
}

func TestReadFileCSVMissingISINColumn(t *testing.T) {
	path := writeFile(t, "bonds.csv", "Name,Code\nBond A,RU000A105EX7\n")

	_, err := ReadFile(path)
	if !errors.Is(err, apperrors.ErrNoISINColumn) {
		t.Fatalf("err = %v, want ErrNoISINColumn", err)
	}
	var ie *apperrors.InputError
	if !apperrors.As(err, &ie) {
		t.Fatalf("err %T is not an InputError", err)
	}
}

func TestReadFileUnsupportedExtension(t *testing.T) {
	path := writeFile(t, "bonds.txt", "RU000A105EX7\n")
	_, err := ReadFile(path)
	var ie *apperrors.InputError
	if !apperrors.As(err, &ie) {
		t.Fatalf("err = %v, want InputError", err)
	}
}

func TestReadFileCSVWithBOM(t *testing.T) {
	path := writeFile(t, "bonds.csv", "\xEF\xBB\xBFISIN\nRU000A105EX7\n")

	batch, err := ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if len(batch.Identifiers) != 1 {
		t.Errorf("Identifiers = %v", batch.Identifiers)
	}
}

func TestParse(t *testing.T) {
	batch := Parse("RU000A105EX7, us0378331005;\n\tGB0002634946 RU000A105EX7")

	want := []string{"RU000A105EX7", "US0378331005", "GB0002634946"}
	if len(batch.Identifiers) != len(want) {
		t.Fatalf("Identifiers = %v, want %v", batch.Identifiers, want)
	}
	for i := range want {
		if batch.Identifiers[i] != want[i] {
			t.Errorf("Identifiers[%d] = %q, want %q", i, batch.Identifiers[i], want[i])
		}
	}
}

func TestPrepareSplitsValidAndInvalid(t *testing.T) {
	batch := Prepare([]string{"RU000A105EX7", "NOTANISIN", "RU000A0ZZZY1", "", "ru000a105ex7"})

	if len(batch.Identifiers) != 1 || batch.Identifiers[0] != "RU000A105EX7" {
		t.Errorf("Identifiers = %v", batch.Identifiers)
	}
	// Bad shape and bad checksum are both reported, blanks are dropped silently.
	if len(batch.Invalid) != 2 {
		t.Errorf("Invalid = %v, want 2 entries", batch.Invalid)
	}
}

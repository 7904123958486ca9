package job

import (
	"os"
	"path/filepath"
	"testing"
)

func TestRecordValidate(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name   string
		record *Record
		ok     bool
	}{
		{"complete", &Record{ListingID: "1", Title: "Engineer", Company: "Acme"}, true},
		{"title only", &Record{ListingID: "1", Title: "Engineer"}, true},
		{"company only", &Record{ListingID: "1", Company: "Acme"}, true},
		{"missing id", &Record{Title: "Engineer", Company: "Acme"}, false},
		{"blank id", &Record{ListingID: "  ", Title: "Engineer"}, false},
		{"no title or company", &Record{ListingID: "1"}, false},
		{"nil", nil, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			err := tc.record.Validate()
			if tc.ok && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !tc.ok && err == nil {
				t.Fatal("expected an error")
			}
		})
	}
}

func TestRecordsCompanies(t *testing.T) {
	t.Parallel()

	records := &Records{Items: []*Record{
		{ListingID: "1", Company: "Acme"},
		{ListingID: "2", Company: "Globex"},
		{ListingID: "3", Company: "Acme"},
		{ListingID: "4", Company: "  "},
	}}

	got := records.Companies()
	want := []string{"Acme", "Globex"}

	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
}

func TestRecordsLenNilSafe(t *testing.T) {
	t.Parallel()

	var records *Records
	if records.Len() != 0 {
		t.Fatal("nil records must report zero length")
	}
}

func TestLoadResume(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "resume.txt")
	if err := os.WriteFile(path, []byte("  Go engineer, five years.  \n"), 0o600); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}

	resume, err := LoadResume(path, []string{"Go"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resume.Text != "Go engineer, five years." {
		t.Fatalf("text must be trimmed, got %q", resume.Text)
	}
	if len(resume.Skills) != 1 || resume.Skills[0] != "Go" {
		t.Fatalf("unexpected skills: %v", resume.Skills)
	}
}

func TestLoadResumeEmptyFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "resume.txt")
	if err := os.WriteFile(path, []byte("   \n"), 0o600); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}

	if _, err := LoadResume(path, nil); err == nil {
		t.Fatal("expected an error for an empty resume")
	}
}

func TestLoadResumeMissingFile(t *testing.T) {
	t.Parallel()

	if _, err := LoadResume(filepath.Join(t.TempDir(), "absent.txt"), nil); err == nil {
		t.Fatal("expected an error for a missing file")
	}
}

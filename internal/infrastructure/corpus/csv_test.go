package corpus

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"ComplaintClassifier/internal/domain"
)

func TestWriteThenReadKeepsRecords(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "data", "complaints.csv")
	file := NewFile(path)

	in := []domain.ComplaintRecord{
		{
			Text:        "I am facing an issue with toilet. Water, everywhere.",
			Category:    domain.CategoryCleanliness,
			Priority:    domain.PriorityHigh,
			TrainNumber: "12345",
			Location:    "Pune",
			Department:  domain.DepartmentHousekeeping,
		},
		{
			Text:       "late again",
			Category:   domain.CategoryDelay,
			Priority:   domain.PriorityLow,
			Department: domain.DepartmentOperations,
		},
	}

	if err := file.WriteAll(in); err != nil {
		t.Fatalf("WriteAll error: %v", err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read file: %v", err)
	}
	if !strings.HasPrefix(string(raw), "complaint_text,category,priority,train_number,location,department\n") {
		t.Fatalf("unexpected header: %q", strings.SplitN(string(raw), "\n", 2)[0])
	}

	out, err := file.ReadAll()
	if err != nil {
		t.Fatalf("ReadAll error: %v", err)
	}
	if len(out) != 2 || out[0] != in[0] || out[1] != in[1] {
		t.Fatalf("records changed: %+v", out)
	}
}

func TestDecodeAcceptsMinimalColumns(t *testing.T) {
	t.Parallel()

	recs, err := Decode(strings.NewReader("department,complaint_text\nCatering,stale food\n"))
	if err != nil {
		t.Fatalf("Decode error: %v", err)
	}
	if recs[0].Text != "stale food" || recs[0].Department != domain.DepartmentCatering {
		t.Fatalf("unexpected record: %+v", recs[0])
	}
}

func TestDecodeRejectsMalformedInput(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"empty":            "",
		"missing column":   "complaint_text,category\nx,y\n",
		"ragged row":       "complaint_text,department\nx,HR,extra\n",
		"no records":       "complaint_text,department\n",
		"blank label":      "complaint_text,department\nx,\n",
		"unbalanced quote": "complaint_text,department\n\"x,HR\n",
	}
	for name, input := range cases {
		if _, err := Decode(strings.NewReader(input)); !errors.Is(err, ErrMalformed) {
			t.Fatalf("%s: expected ErrMalformed, got %v", name, err)
		}
	}
}

func TestReadAllMissingFile(t *testing.T) {
	t.Parallel()

	_, err := NewFile(filepath.Join(t.TempDir(), "absent.csv")).ReadAll()
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected not-exist error, got %v", err)
	}
}

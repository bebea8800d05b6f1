package synth

import (
	"reflect"
	"strconv"
	"strings"
	"testing"

	"ComplaintClassifier/internal/domain"
)

func TestGenerateIsReproducibleWithSeed(t *testing.T) {
	t.Parallel()

	a, err := NewGenerator(7).Generate(50)
	if err != nil {
		t.Fatalf("Generate error: %v", err)
	}
	b, _ := NewGenerator(7).Generate(50)

	if !reflect.DeepEqual(a, b) {
		t.Fatalf("same seed produced different corpora")
	}
}

func TestGenerateRecordsAreConsistent(t *testing.T) {
	t.Parallel()

	records, err := NewGenerator(11).Generate(300)
	if err != nil {
		t.Fatalf("Generate error: %v", err)
	}
	if len(records) != 300 {
		t.Fatalf("expected 300 records, got %d", len(records))
	}

	seenCategories := map[domain.Category]bool{}
	for _, rec := range records {
		want, ok := domain.DepartmentOf(rec.Category)
		if !ok || want != rec.Department {
			t.Fatalf("record %+v has department %q, mapping says %q", rec, rec.Department, want)
		}
		seenCategories[rec.Category] = true

		if !strings.HasPrefix(rec.Text, "I am facing an issue with ") {
			t.Fatalf("unexpected narrative: %q", rec.Text)
		}
		if rec.Category == domain.CategoryOther && !strings.HasPrefix(rec.Text, "I am facing an issue with issue.") {
			t.Fatalf("Other narratives use the fallback keyword, got %q", rec.Text)
		}

		num, err := strconv.Atoi(rec.TrainNumber)
		if err != nil || num < 10000 || num > 99999 {
			t.Fatalf("train number %q is not 5 digits", rec.TrainNumber)
		}

		switch rec.Priority {
		case domain.PriorityLow, domain.PriorityMedium, domain.PriorityHigh:
		default:
			t.Fatalf("unexpected priority %q", rec.Priority)
		}

		if rec.Location == "" {
			t.Fatalf("location must be populated")
		}
	}

	if len(seenCategories) != len(domain.Categories()) {
		t.Fatalf("expected every category to be sampled, saw %d", len(seenCategories))
	}
}

func TestGenerateRejectsNonPositiveCount(t *testing.T) {
	t.Parallel()

	if _, err := NewGenerator(1).Generate(0); err == nil {
		t.Fatalf("expected error for zero records")
	}
}

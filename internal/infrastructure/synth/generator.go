package synth

import (
	"fmt"
	"strconv"

	"github.com/brianvoe/gofakeit/v6"

	"ComplaintClassifier/internal/domain"
)

// keywords seeds generated narratives with category-specific vocabulary.
var keywords = map[domain.Category][]string{
	domain.CategoryCleanliness:   {"dirty", "toilet", "clean", "hygiene", "filthy", "unclean", "bathroom"},
	domain.CategoryDelay:         {"late", "delay", "delayed", "on time", "punctual", "waiting"},
	domain.CategoryFoodQuality:   {"food", "meal", "dinner", "breakfast", "taste", "stale", "catering"},
	domain.CategoryStaffBehavior: {"staff", "rude", "behavior", "helpful", "attendant", "cooperative"},
	domain.CategorySafety:        {"safety", "security", "accident", "theft", "danger", "unsafe"},
	domain.CategoryTicketing:     {"ticket", "booking", "seat", "reservation", "price", "refund", "conductor"},
}

var fallbackKeywords = []string{"issue"}

const fillerWords = 8

// Generator produces synthetic labeled complaints for bootstrapping training.
type Generator struct {
	faker *gofakeit.Faker
}

// NewGenerator seeds the generator; seed 0 draws a random seed.
func NewGenerator(seed int64) *Generator {
	return &Generator{faker: gofakeit.New(seed)}
}

// Generate returns n records with departments derived from the fixed mapping.
func (g *Generator) Generate(n int) ([]domain.ComplaintRecord, error) {
	if n <= 0 {
		return nil, fmt.Errorf("record count must be positive, got %d", n)
	}

	cats := domain.Categories()
	priorities := domain.Priorities()

	records := make([]domain.ComplaintRecord, 0, n)
	for i := 0; i < n; i++ {
		cat := cats[g.faker.Number(0, len(cats)-1)]
		dept, ok := domain.DepartmentOf(cat)
		if !ok {
			return nil, fmt.Errorf("category %q has no department", cat)
		}

		records = append(records, domain.ComplaintRecord{
			Text:        g.narrative(cat),
			Category:    cat,
			Priority:    priorities[g.faker.Number(0, len(priorities)-1)],
			TrainNumber: strconv.Itoa(g.faker.Number(10000, 99999)),
			Location:    g.faker.City(),
			Department:  dept,
		})
	}
	return records, nil
}

func (g *Generator) narrative(cat domain.Category) string {
	words, ok := keywords[cat]
	if !ok {
		words = fallbackKeywords
	}
	keyword := words[g.faker.Number(0, len(words)-1)]
	return fmt.Sprintf("I am facing an issue with %s. %s", keyword, g.faker.Sentence(fillerWords))
}

package corpus

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"ComplaintClassifier/internal/domain"
	"ComplaintClassifier/internal/ports"
)

// ErrMalformed marks corpus files that cannot be interpreted.
var ErrMalformed = errors.New("malformed corpus")

// Columns is the fixed header written by the synthesizer.
var Columns = []string{"complaint_text", "category", "priority", "train_number", "location", "department"}

// File reads and writes the labeled corpus as CSV.
type File struct {
	path string
}

var _ ports.CorpusReader = (*File)(nil)
var _ ports.CorpusWriter = (*File)(nil)

// NewFile binds a corpus to a filesystem path.
func NewFile(path string) *File {
	return &File{path: path}
}

// Path returns the bound location.
func (f *File) Path() string {
	return f.path
}

// ReadAll loads every record. Only complaint_text and department are required;
// the remaining columns are read when present.
func (f *File) ReadAll() ([]domain.ComplaintRecord, error) {
	fh, err := os.Open(f.path)
	if err != nil {
		return nil, fmt.Errorf("open corpus: %w", err)
	}
	defer fh.Close()

	return Decode(fh)
}

// Decode parses CSV corpus content from r.
func Decode(r io.Reader) ([]domain.ComplaintRecord, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = 0

	header, err := reader.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("%w: empty file", ErrMalformed)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: header: %v", ErrMalformed, err)
	}

	pos := map[string]int{}
	for i, name := range header {
		pos[strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))] = i
	}
	for _, required := range []string{"complaint_text", "department"} {
		if _, ok := pos[required]; !ok {
			return nil, fmt.Errorf("%w: missing column %q", ErrMalformed, required)
		}
	}

	field := func(row []string, name string) string {
		if i, ok := pos[name]; ok && i < len(row) {
			return row[i]
		}
		return ""
	}

	var records []domain.ComplaintRecord
	for line := 2; ; line++ {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
		}

		dept := strings.TrimSpace(field(row, "department"))
		if dept == "" {
			return nil, fmt.Errorf("%w: line %d has no department", ErrMalformed, line)
		}

		records = append(records, domain.ComplaintRecord{
			Text:        field(row, "complaint_text"),
			Category:    domain.Category(field(row, "category")),
			Priority:    domain.Priority(field(row, "priority")),
			TrainNumber: field(row, "train_number"),
			Location:    field(row, "location"),
			Department:  domain.Department(dept),
		})
	}

	if len(records) == 0 {
		return nil, fmt.Errorf("%w: no records", ErrMalformed)
	}
	return records, nil
}

// WriteAll replaces the corpus file with the given records.
func (f *File) WriteAll(records []domain.ComplaintRecord) error {
	if dir := filepath.Dir(f.path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create corpus dir: %w", err)
		}
	}

	fh, err := os.Create(f.path)
	if err != nil {
		return fmt.Errorf("create corpus: %w", err)
	}

	if err := Encode(fh, records); err != nil {
		_ = fh.Close()
		return err
	}

	if err := fh.Close(); err != nil {
		return fmt.Errorf("close corpus: %w", err)
	}
	return nil
}

// Encode writes records with the fixed header.
func Encode(w io.Writer, records []domain.ComplaintRecord) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(Columns); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for _, rec := range records {
		row := []string{
			rec.Text,
			string(rec.Category),
			string(rec.Priority),
			rec.TrainNumber,
			rec.Location,
			string(rec.Department),
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("write record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("flush corpus: %w", err)
	}
	return nil
}

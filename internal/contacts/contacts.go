// Package contacts reads contact lists from files and validates them before
// they reach a batch.
package contacts

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/LeventeLantos/message-blast/internal/model"
)

// Load reads a .csv, .yaml/.yml or .json contact file.
func Load(path string) ([]model.Contact, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".csv":
		return ParseCSV(f)
	case ".yaml", ".yml":
		return ParseYAML(f)
	case ".json":
		return ParseJSON(f)
	default:
		return nil, fmt.Errorf("unsupported contact file type %q", ext)
	}
}

// ParseCSV expects a header row naming "name" and "phone" columns, with an
// optional "id" column. Columns are matched case-insensitively.
func ParseCSV(r io.Reader) ([]model.Contact, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("contact file is empty")
		}
		return nil, fmt.Errorf("read header: %w", err)
	}

	cols := map[string]int{"id": -1, "name": -1, "phone": -1}
	for i, h := range header {
		key := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		if _, ok := cols[key]; ok && cols[key] < 0 {
			cols[key] = i
		}
	}
	var missing []error
	for _, key := range []string{"name", "phone"} {
		if cols[key] < 0 {
			missing = append(missing, fmt.Errorf("missing %q column", key))
		}
	}
	if err := errors.Join(missing...); err != nil {
		return nil, err
	}

	var out []model.Contact
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}
		if blankRecord(rec) {
			continue
		}
		out = append(out, model.Contact{
			ID:    field(rec, cols["id"]),
			Name:  field(rec, cols["name"]),
			Phone: field(rec, cols["phone"]),
		})
	}

	return Normalize(out)
}

func ParseYAML(r io.Reader) ([]model.Contact, error) {
	var out []model.Contact
	if err := yaml.NewDecoder(r).Decode(&out); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("contact file is empty")
		}
		return nil, fmt.Errorf("decode yaml: %w", err)
	}
	return Normalize(out)
}

func ParseJSON(r io.Reader) ([]model.Contact, error) {
	var out []model.Contact
	if err := json.NewDecoder(r).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode json: %w", err)
	}
	return Normalize(out)
}

// Normalize trims fields, assigns row-derived IDs ("1", "2", ...) where none
// were given and reports every invalid row at once.
func Normalize(in []model.Contact) ([]model.Contact, error) {
	out := make([]model.Contact, 0, len(in))
	seen := make(map[string]int, len(in))
	var errs []error

	for i, c := range in {
		row := i + 1
		c.ID = strings.TrimSpace(c.ID)
		c.Name = strings.TrimSpace(c.Name)
		c.Phone = strings.TrimSpace(c.Phone)
		if c.ID == "" {
			c.ID = strconv.Itoa(row)
		}

		if c.Name == "" {
			errs = append(errs, fmt.Errorf("row %d: name is required", row))
		}
		if c.Phone == "" {
			errs = append(errs, fmt.Errorf("row %d: phone is required", row))
		}
		if prev, dup := seen[c.ID]; dup {
			errs = append(errs, fmt.Errorf("row %d: id %q already used by row %d", row, c.ID, prev))
		}
		seen[c.ID] = row

		out = append(out, c)
	}

	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return out, nil
}

func field(rec []string, i int) string {
	if i < 0 || i >= len(rec) {
		return ""
	}
	return rec[i]
}

func blankRecord(rec []string) bool {
	for _, v := range rec {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

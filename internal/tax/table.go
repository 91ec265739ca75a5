package tax

import (
	_ "embed"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/korean"
	"golang.org/x/text/transform"
)

// ErrUnknownRelation: 공제 테이블에 없는 관계명. A silent zero deduction
// would mask a mistyped relation, so lookup misses are rejected.
var ErrUnknownRelation = fmt.Errorf("unknown relationship category")

// Relation is one row of the deduction reference table.
type Relation struct {
	Name      string  `json:"name"`
	Deduction float64 `json:"deduction"`
}

// Table maps relationship-category names to deduction amounts.
// Loaded once at process start and read-only afterwards, so concurrent
// readers need no synchronization.
type Table struct {
	byName    map[string]float64
	relations []Relation // insertion order, for listing
}

//go:embed relations.csv
var defaultTableCSV []byte

// DefaultTable returns the embedded statutory deduction table
// (상증세법 제53조 증여재산공제).
func DefaultTable() *Table {
	t, err := ParseTable(strings.NewReader(string(defaultTableCSV)))
	if err != nil {
		// The embedded table is fixed at build time.
		panic(fmt.Sprintf("embedded relation table invalid: %v", err))
	}
	return t
}

// LoadTable reads a deduction table from a CSV file. The original
// reference file is CP949-encoded; both CP949 and UTF-8 are accepted.
func LoadTable(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read relation table: %w", err)
	}

	if !utf8.Valid(data) {
		decoded, _, err := transform.Bytes(korean.EUCKR.NewDecoder(), data)
		if err != nil {
			return nil, fmt.Errorf("decode relation table (cp949): %w", err)
		}
		data = decoded
	}

	t, err := ParseTable(strings.NewReader(string(data)))
	if err != nil {
		return nil, fmt.Errorf("parse relation table %s: %w", path, err)
	}
	return t, nil
}

// ParseTable parses CSV rows with rel_nm and ddt_amt columns.
func ParseTable(r io.Reader) (*Table, error) {
	records, err := csv.NewReader(r).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	if len(records) < 2 {
		return nil, fmt.Errorf("relation table has no data rows")
	}

	nameCol, amountCol := -1, -1
	for i, col := range records[0] {
		switch strings.TrimSpace(col) {
		case "rel_nm":
			nameCol = i
		case "ddt_amt":
			amountCol = i
		}
	}
	if nameCol < 0 || amountCol < 0 {
		return nil, fmt.Errorf("relation table missing rel_nm/ddt_amt columns")
	}

	t := &Table{byName: make(map[string]float64)}
	for i, row := range records[1:] {
		if len(row) <= nameCol || len(row) <= amountCol {
			return nil, fmt.Errorf("relation table row %d: too few columns", i+2)
		}

		name := strings.TrimSpace(row[nameCol])
		if name == "" {
			return nil, fmt.Errorf("relation table row %d: empty relation name", i+2)
		}

		amount, err := strconv.ParseFloat(strings.TrimSpace(row[amountCol]), 64)
		if err != nil {
			return nil, fmt.Errorf("relation table row %d: bad deduction amount: %w", i+2, err)
		}
		if amount < 0 {
			return nil, fmt.Errorf("relation table row %d: negative deduction", i+2)
		}

		if _, dup := t.byName[name]; dup {
			return nil, fmt.Errorf("relation table row %d: duplicate relation %q", i+2, name)
		}
		t.byName[name] = amount
		t.relations = append(t.relations, Relation{Name: name, Deduction: amount})
	}

	return t, nil
}

// Deduction looks up the deduction amount for a relationship name.
// Exact match only; a miss returns ErrUnknownRelation.
func (t *Table) Deduction(name string) (float64, error) {
	amount, ok := t.byName[name]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownRelation, name)
	}
	return amount, nil
}

// Relations lists all categories in table order.
func (t *Table) Relations() []Relation {
	out := make([]Relation, len(t.relations))
	copy(out, t.relations)
	return out
}

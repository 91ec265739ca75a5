package tax

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"golang.org/x/text/encoding/korean"
	"golang.org/x/text/transform"
)

func TestDefaultTable(t *testing.T) {
	table := DefaultTable()

	tests := []struct {
		relation string
		want     float64
	}{
		{"배우자", 600_000_000},
		{"직계존속", 50_000_000},
		{"직계비속", 50_000_000},
		{"미성년자 직계비속", 20_000_000},
		{"기타친족", 10_000_000},
		{"기타", 0},
	}

	for _, tt := range tests {
		t.Run(tt.relation, func(t *testing.T) {
			got, err := table.Deduction(tt.relation)
			if err != nil {
				t.Fatalf("Deduction(%q) failed: %v", tt.relation, err)
			}
			if got != tt.want {
				t.Errorf("Deduction(%q) = %v, want %v", tt.relation, got, tt.want)
			}
		})
	}

	if len(table.Relations()) != len(tests) {
		t.Errorf("Relations() has %d rows, want %d", len(table.Relations()), len(tests))
	}
}

func TestDeductionUnknownRelation(t *testing.T) {
	table := DefaultTable()

	_, err := table.Deduction("사촌의 친구")
	if !errors.Is(err, ErrUnknownRelation) {
		t.Errorf("error = %v, want ErrUnknownRelation", err)
	}

	// Near-miss (whitespace) is still a miss: exact match only.
	if _, err := table.Deduction("배우자 "); !errors.Is(err, ErrUnknownRelation) {
		t.Errorf("whitespace variant: error = %v, want ErrUnknownRelation", err)
	}
}

func TestParseTable(t *testing.T) {
	tests := []struct {
		name    string
		csv     string
		wantErr bool
	}{
		{
			name: "valid",
			csv:  "rel_nm,ddt_amt\n배우자,600000000\n기타,0\n",
		},
		{
			name: "extra columns tolerated",
			csv:  "rel_cd,rel_nm,ddt_amt\n10,배우자,600000000\n",
		},
		{
			name:    "missing amount column",
			csv:     "rel_nm\n배우자\n",
			wantErr: true,
		},
		{
			name:    "bad amount",
			csv:     "rel_nm,ddt_amt\n배우자,많이\n",
			wantErr: true,
		},
		{
			name:    "negative amount",
			csv:     "rel_nm,ddt_amt\n배우자,-1\n",
			wantErr: true,
		},
		{
			name:    "duplicate relation",
			csv:     "rel_nm,ddt_amt\n배우자,600000000\n배우자,0\n",
			wantErr: true,
		},
		{
			name:    "no data rows",
			csv:     "rel_nm,ddt_amt\n",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseTable(strings.NewReader(tt.csv))
			if (err != nil) != tt.wantErr {
				t.Errorf("ParseTable() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestLoadTableUTF8(t *testing.T) {
	path := filepath.Join(t.TempDir(), "relations.csv")
	content := "rel_nm,ddt_amt\n배우자,600000000\n직계비속,50000000\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	table, err := LoadTable(path)
	if err != nil {
		t.Fatalf("LoadTable failed: %v", err)
	}

	got, err := table.Deduction("배우자")
	if err != nil {
		t.Fatal(err)
	}
	if got != 600_000_000 {
		t.Errorf("Deduction = %v, want 600_000_000", got)
	}
}

func TestLoadTableCP949(t *testing.T) {
	// The original reference file ships CP949-encoded.
	content := "rel_nm,ddt_amt\n배우자,600000000\n기타친족,10000000\n"
	encoded, _, err := transform.Bytes(korean.EUCKR.NewEncoder(), []byte(content))
	if err != nil {
		t.Fatal(err)
	}

	path := filepath.Join(t.TempDir(), "relations_cp949.csv")
	if err := os.WriteFile(path, encoded, 0o644); err != nil {
		t.Fatal(err)
	}

	table, err := LoadTable(path)
	if err != nil {
		t.Fatalf("LoadTable failed: %v", err)
	}

	got, err := table.Deduction("기타친족")
	if err != nil {
		t.Fatal(err)
	}
	if got != 10_000_000 {
		t.Errorf("Deduction = %v, want 10_000_000", got)
	}
}

func TestLoadTableMissingFile(t *testing.T) {
	if _, err := LoadTable(filepath.Join(t.TempDir(), "nope.csv")); err == nil {
		t.Error("expected error for missing file")
	}
}

package validation

import (
	"strings"
	"testing"
)

type catalogueRow struct {
	Name      string `validate:"required,identifier"`
	Source    string `validate:"required,column"`
	Separator string `validate:"omitempty,separator"`
	Nodes     int    `validate:"gte=0"`
}

func TestStruct(t *testing.T) {
	tests := []struct {
		name    string
		row     catalogueRow
		wantErr string
	}{
		{
			name: "valid",
			row:  catalogueRow{Name: "ButyricimonasSynergistica", Source: "protein1", Separator: "space"},
		},
		{
			name: "literal separator",
			row:  catalogueRow{Name: "Homo_sapiens.v11", Source: "protein1", Separator: "\t"},
		},
		{
			name:    "missing name",
			row:     catalogueRow{Source: "protein1"},
			wantErr: "catalogueRow.Name: field is required",
		},
		{
			name:    "path in name",
			row:     catalogueRow{Name: "../etc", Source: "protein1"},
			wantErr: "is not a valid name",
		},
		{
			name:    "separator in column",
			row:     catalogueRow{Name: "x", Source: "protein 1"},
			wantErr: "is not a valid column name",
		},
		{
			name:    "unknown separator",
			row:     catalogueRow{Name: "x", Source: "protein1", Separator: "pipe"},
			wantErr: "is not tab, comma or space",
		},
		{
			name:    "negative count",
			row:     catalogueRow{Name: "x", Source: "protein1", Nodes: -1},
			wantErr: "must be at least 0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Struct(&tt.row)
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Expected no error, got %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("Expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestStruct_ReportsEveryViolation(t *testing.T) {
	err := Struct(&catalogueRow{Separator: "pipe", Nodes: -3})
	if err == nil {
		t.Fatal("Expected errors")
	}
	for _, want := range []string{"Name", "Source", "Separator", "Nodes"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("Expected %q in %v", want, err)
		}
	}
}

func TestStruct_Nil(t *testing.T) {
	if err := Struct(nil); err == nil {
		t.Error("Expected error for nil value")
	}
}

func TestParseSeparator(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"", "", false},
		{"tab", "\t", false},
		{"TAB", "\t", false},
		{"comma", ",", false},
		{",", ",", false},
		{"space", " ", false},
		{" ", " ", false},
		{";", "", true},
	}

	for _, tt := range tests {
		got, err := ParseSeparator(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseSeparator(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseSeparator(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestIsIdentifier(t *testing.T) {
	for _, ok := range []string{"string", "Homo_sapiens", "v11.5", "a-b"} {
		if !IsIdentifier(ok) {
			t.Errorf("Expected %q to be an identifier", ok)
		}
	}
	for _, bad := range []string{"", ".hidden", "a/b", "a b", "-x"} {
		if IsIdentifier(bad) {
			t.Errorf("Expected %q to be rejected", bad)
		}
	}
}

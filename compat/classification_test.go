package compat

import "testing"

func TestWorstIsOrderIndependent(t *testing.T) {
	orders := [][]Classification{
		{"1", "3", "6"},
		{"3", "1", "6"},
		{"6", "1", "3"},
		{"6", "3", "1"},
	}

	for _, codes := range orders {
		if got := Worst(codes...); got != ClassificationIncompatible {
			t.Errorf("Worst(%v) = %q, want 3", codes, got)
		}
	}
}

func TestWorstPrecedence(t *testing.T) {
	tests := []struct {
		name     string
		codes    []Classification
		expected Classification
	}{
		{"incompatible beats override", []Classification{"5", "3"}, "3"},
		{"override beats 2", []Classification{"2", "5"}, "5"},
		{"2 beats 7", []Classification{"7", "2"}, "2"},
		{"7 beats 6", []Classification{"6", "7"}, "7"},
		{"6 beats anecdotal", []Classification{"1", "6"}, "6"},
		{"unknown never wins over ranked", []Classification{"9", "1"}, "1"},
		{"only unknown keeps first", []Classification{"9", "8"}, "9"},
		{"single", []Classification{"2"}, "2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Worst(tt.codes...); got != tt.expected {
				t.Errorf("Worst(%v) = %q, want %q", tt.codes, got, tt.expected)
			}
		})
	}
}

func TestWorstEmpty(t *testing.T) {
	if got := Worst(); got != "" {
		t.Errorf("Expected empty classification, got %q", got)
	}
}

func TestParseClassification(t *testing.T) {
	tests := []struct {
		raw  string
		code Classification
		ok   bool
	}{
		{" 3 ", "3", true},
		{"1", "1", true},
		{"9", "9", true},
		{"4", "4", false},
		{"", "", false},
	}

	for _, tt := range tests {
		code, ok := ParseClassification(tt.raw)
		if code != tt.code || ok != tt.ok {
			t.Errorf("ParseClassification(%q) = (%q, %v), want (%q, %v)", tt.raw, code, ok, tt.code, tt.ok)
		}
	}
}

func TestRankOfUnknownCode(t *testing.T) {
	if Classification("4").Rank() != 0 {
		t.Error("Expected no-data sentinel to rank 0")
	}
	if Classification("x").Known() {
		t.Error("Expected unknown code to be reported as unknown")
	}
	for _, c := range KnownClassifications() {
		if !c.Known() || c.Rank() == 0 {
			t.Errorf("Expected %q to be ranked", c)
		}
	}
}

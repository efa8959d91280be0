package truncate

import (
	"strings"
	"testing"
)

func TestCharPolicyApply(t *testing.T) {
	tests := []struct {
		name     string
		maxChars int
		text     string
		wantCut  bool
		wantLen  int
	}{
		{
			name:     "under budget untouched",
			maxChars: 100,
			text:     "short text",
			wantCut:  false,
			wantLen:  len("short text"),
		},
		{
			name:     "exactly at budget untouched",
			maxChars: 5,
			text:     "12345",
			wantCut:  false,
			wantLen:  5,
		},
		{
			name:     "over budget cut with marker",
			maxChars: 5,
			text:     "1234567890",
			wantCut:  true,
			wantLen:  5 + len(Marker),
		},
		{
			name:     "zero budget disables truncation",
			maxChars: 0,
			text:     strings.Repeat("x", 10000),
			wantCut:  false,
			wantLen:  10000,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := CharPolicy{MaxChars: tt.maxChars}
			got, cut := p.Apply(tt.text)

			if cut != tt.wantCut {
				t.Errorf("cut = %v, want %v", cut, tt.wantCut)
			}
			if len(got) != tt.wantLen {
				t.Errorf("len = %d, want %d", len(got), tt.wantLen)
			}
			if tt.wantCut && !strings.HasSuffix(got, Marker) {
				t.Errorf("truncated text missing marker: %q", got)
			}
		})
	}
}

func TestRowPolicyRows(t *testing.T) {
	// serializedLen reporting 100 bytes per row, linear in n.
	linear := func(perRow int) func(n int) int {
		return func(n int) int { return n * perRow }
	}

	tests := []struct {
		name     string
		policy   RowPolicy
		rowCount int
		sizeOf   func(n int) int
		want     int
	}{
		{
			name:     "under both budgets",
			policy:   RowPolicy{MaxRows: 20, MaxBytes: 4000, MinRows: 3},
			rowCount: 10,
			sizeOf:   linear(100),
			want:     10,
		},
		{
			name:     "row cap applies first",
			policy:   RowPolicy{MaxRows: 20, MaxBytes: 4000, MinRows: 3},
			rowCount: 50,
			sizeOf:   linear(100),
			want:     20,
		},
		{
			name:     "byte budget reduces further",
			policy:   RowPolicy{MaxRows: 20, MaxBytes: 1000, MinRows: 3},
			rowCount: 50,
			sizeOf:   linear(100),
			want:     10,
		},
		{
			name:     "never below the floor",
			policy:   RowPolicy{MaxRows: 20, MaxBytes: 100, MinRows: 3},
			rowCount: 50,
			sizeOf:   linear(1000),
			want:     3,
		},
		{
			name:     "zero rows stay zero",
			policy:   RowPolicy{MaxRows: 20, MaxBytes: 4000, MinRows: 3},
			rowCount: 0,
			sizeOf:   linear(100),
			want:     0,
		},
		{
			name:     "no byte budget keeps the row cap",
			policy:   RowPolicy{MaxRows: 5, MaxBytes: 0, MinRows: 3},
			rowCount: 50,
			sizeOf:   linear(100000),
			want:     5,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.policy.Rows(tt.rowCount, tt.sizeOf)
			if got != tt.want {
				t.Errorf("Rows(%d) = %d, want %d", tt.rowCount, got, tt.want)
			}
		})
	}
}

package score

import "testing"

func TestRollup(t *testing.T) {
	tests := []struct {
		name string
		subs []string
		want float64
	}{
		{"all empty", []string{"", "", "", "", ""}, 0},
		{"all zero or negative", []string{"0", "-1", "0", "", "-3.5"}, 0},
		{"single score", []string{"8", "", "", "", ""}, 8},
		{"zero excluded not averaged", []string{"8", "0", "6", "", ""}, 7},
		{"all five", []string{"8", "7", "9", "6", "10"}, 8},
		{"rounds to one decimal", []string{"8", "7", "", "", ""}, 7.5},
		{"rounds up", []string{"7", "8", "8", "", ""}, 7.7},
		{"unparsable excluded", []string{"abc", "8", "n/a", "", ""}, 8},
		{"no input", nil, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Rollup(tt.subs...); got != tt.want {
				t.Errorf("Rollup(%v) = %v, want %v", tt.subs, got, tt.want)
			}
		})
	}
}

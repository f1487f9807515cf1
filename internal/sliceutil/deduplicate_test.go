package sliceutil

import (
	"reflect"
	"testing"
)

func TestDeduplicate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input []int64
		want  []int64
	}{
		{
			name:  "duplicates removed, order preserved",
			input: []int64{3, 1, 3, 2, 1},
			want:  []int64{3, 1, 2},
		},
		{
			name:  "no duplicates",
			input: []int64{1, 2, 3},
			want:  []int64{1, 2, 3},
		},
		{
			name:  "empty",
			input: []int64{},
			want:  []int64{},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := Deduplicate(tt.input, func(v int64) int64 { return v })
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Deduplicate(%v) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

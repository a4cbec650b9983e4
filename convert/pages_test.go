package convert

import (
	"reflect"
	"testing"
)

func TestParsePageRanges(t *testing.T) {
	tests := []struct {
		in    string
		total int
		want  []int
	}{
		{"1,3,5-8", 10, []int{1, 3, 5, 6, 7, 8}},
		{"8-5", 10, []int{5, 6, 7, 8}},        // reversed range
		{"1,1,2", 10, []int{1, 2}},            // deduplicated
		{" 2 , 4 - 5 ", 10, []int{2, 4, 5}},   // whitespace tolerated
		{"3-20", 5, []int{3, 4, 5}},           // clamped to total
		{"0,99", 5, nil},                      // out of range
		{"a,b-c,", 5, nil},                    // garbage
		{"", 5, nil},
		{"2,x,4", 5, []int{2, 4}},             // bad fragment skipped
	}
	for _, tt := range tests {
		got := ParsePageRanges(tt.in, tt.total)
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("ParsePageRanges(%q, %d) = %v, want %v", tt.in, tt.total, got, tt.want)
		}
	}
}

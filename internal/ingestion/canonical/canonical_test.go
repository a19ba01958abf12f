package canonical

import (
	"reflect"
	"testing"
)

func TestNormalize(t *testing.T) {
	cases := []struct {
		name    string
		in      []string
		want    []string
		dropped int
	}{
		{"case collapse", []string{"Foo", "foo", "", "FOO"}, []string{"foo"}, 1},
		{"urls", []string{"http://A.com/x", "http://a.com/X"}, []string{"http://a.com/x"}, 0},
		{"blanks", []string{"  ", "\t"}, []string{}, 2},
		{"trim", []string{" Go ", "go", "Rust"}, []string{"go", "rust"}, 0},
		{"nil", nil, []string{}, 0},
	}
	for _, tc := range cases {
		got := Normalize(tc.in)
		if !reflect.DeepEqual(got.Values, tc.want) || got.Dropped != tc.dropped {
			t.Fatalf("%s: got %v dropped=%d, want %v dropped=%d", tc.name, got.Values, got.Dropped, tc.want, tc.dropped)
		}
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	first := Normalize([]string{"B", "a", "A", "b "})
	second := Normalize(first.Values)
	if !reflect.DeepEqual(first.Values, second.Values) || second.Dropped != 0 {
		t.Fatalf("not idempotent: %v vs %v", first.Values, second.Values)
	}
}

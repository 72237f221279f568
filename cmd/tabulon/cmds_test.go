package main

import (
	"testing"
)

func TestDisambiguateTableNames(t *testing.T) {
	// Two input files sharing a basename must not collapse into one map
	// entry and self-join.
	if got := disambiguate("data", "data"); got != "data_2" {
		t.Errorf("colliding name = %q, want data_2", got)
	}
	if got := disambiguate("users", "orders"); got != "orders" {
		t.Errorf("distinct name = %q, want orders", got)
	}
}

func TestPathBase(t *testing.T) {
	cases := map[string]string{
		"a/data.csv":   "data.csv",
		"b\\data.csv":  "data.csv",
		"data.csv":     "data.csv",
		"/x/y/z/f.csv": "f.csv",
	}
	for path, want := range cases {
		if got := pathBase(path); got != want {
			t.Errorf("pathBase(%q) = %q, want %q", path, got, want)
		}
	}
}

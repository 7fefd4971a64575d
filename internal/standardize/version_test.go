package standardize

import (
	"testing"
)

func TestDetectVersion(t *testing.T) {
	tests := []struct {
		mention string
		want    string
	}{
		{"db2 10.0", "10.0"},
		{"db2", NAVersion},
		{"java8", "8"},
		{"java 8", "8"},
		{"log4j 2.17", "2.17"},
		{"windows server 2008 r2", "2008 r2"},
		{"windows server 2012 service pack 1", "2012 service pack 1"},
		{"red hat enterprise linux 7.9", "7.9"},
		{"oracle", NAVersion},
		{"v1.2", "1.2"},
		{"linux 64-bit", NAVersion},
		{"utf-8 encoding", NAVersion},
		{"x86 assembler", NAVersion},
		{"db2 10.5 enterprise edition", "10.5"},
		{"service pack 3", "3"},
		{"tomcat 9.0.65", "9.0.65"},
	}
	for _, tt := range tests {
		if got := DetectVersion(tt.mention); got != tt.want {
			t.Errorf("DetectVersion(%q) = %q, want %q", tt.mention, got, tt.want)
		}
	}
}

func TestStandardizeVersion(t *testing.T) {
	store := newTestStore(t)
	std := New(store, DefaultConfig())
	db2 := store.EntityByName("DB2")
	if db2 == nil {
		t.Fatal("fixture missing DB2")
	}

	tests := []struct {
		detected string
		want     string
	}{
		// Newer history versions with the same leading segment dominate.
		{"10.0", "10.5"},
		{"10.1", "10.5"},
		{"10.5", "10.5"},
		// The sentinel resolves to the precomputed latest.
		{NAVersion, "10.5"},
		// Nothing in the history shares the leading segment.
		{"12.1", "12.1"},
		// An equal version never loses to itself.
		{"9.7", "9.7"},
	}
	for _, tt := range tests {
		if got := std.StandardizeVersion(tt.detected, db2); got != tt.want {
			t.Errorf("StandardizeVersion(%q) = %q, want %q", tt.detected, got, tt.want)
		}
	}
}

func TestStandardizeVersionNoHistory(t *testing.T) {
	store := newTestStore(t)
	std := New(store, DefaultConfig())
	linux := store.EntityByName("Linux")
	if linux == nil {
		t.Fatal("fixture missing Linux")
	}

	if got := std.StandardizeVersion(NAVersion, linux); got != NAVersion {
		t.Errorf("StandardizeVersion(sentinel, no history) = %q, want %s", got, NAVersion)
	}
	if got := std.StandardizeVersion("5.10", linux); got != "5.10" {
		t.Errorf("StandardizeVersion(5.10, no history) = %q, want the input back", got)
	}
}

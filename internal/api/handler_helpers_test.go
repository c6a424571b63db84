package api

import (
	"errors"
	"testing"
	"time"
)

func TestParseIDParam(t *testing.T) {
	id, err := parseIDParam("42")
	if err != nil || id != 42 {
		t.Fatalf("parseIDParam(42) = %d, %v", id, err)
	}

	for _, bad := range []string{"", "abc", "-1", "1.5"} {
		if _, err := parseIDParam(bad); !errors.Is(err, errInvalidID) {
			t.Fatalf("parseIDParam(%q) err = %v, want errInvalidID", bad, err)
		}
	}
}

func TestParseDate(t *testing.T) {
	plain, err := parseDate("2024-03-02")
	if err != nil {
		t.Fatalf("parse plain date: %v", err)
	}
	if plain.Year() != 2024 || plain.Month() != time.March || plain.Day() != 2 {
		t.Fatalf("unexpected date: %v", plain)
	}

	stamped, err := parseDate("2024-03-02T15:04:05Z")
	if err != nil {
		t.Fatalf("parse rfc3339: %v", err)
	}
	if stamped.Hour() != 15 {
		t.Fatalf("unexpected time: %v", stamped)
	}

	if _, err := parseDate("02/03/2024"); err == nil {
		t.Fatal("unsupported format should fail")
	}
}

func TestRawOrEmptyArray(t *testing.T) {
	if got := string(rawOrEmptyArray(nil)); got != "[]" {
		t.Fatalf("nil -> %q, want []", got)
	}
	if got := string(rawOrEmptyArray([]byte("null"))); got != "[]" {
		t.Fatalf("null -> %q, want []", got)
	}
	if got := string(rawOrEmptyArray([]byte(`[{"a":1}]`))); got != `[{"a":1}]` {
		t.Fatalf("data -> %q, want passthrough", got)
	}
}

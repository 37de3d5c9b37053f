package postgres

import (
	"database/sql"
	"fmt"
	"testing"

	"github.com/lib/pq"
)

func TestIsUniqueViolation(t *testing.T) {
	t.Run("matches pq unique violation", func(t *testing.T) {
		err := fmt.Errorf("insert follow: %w", &pq.Error{Code: "23505"})
		if !isUniqueViolation(err) {
			t.Fatalf("expected true for wrapped 23505")
		}
	})

	t.Run("ignores other pq errors", func(t *testing.T) {
		if isUniqueViolation(&pq.Error{Code: "23503"}) {
			t.Fatalf("expected false for foreign key violation")
		}
	})

	t.Run("ignores plain errors", func(t *testing.T) {
		if isUniqueViolation(fakeErr("duplicate key value violates unique constraint")) {
			t.Fatalf("expected false for non pq error")
		}
	})
}

func TestIsNotFound(t *testing.T) {
	if !isNotFound(fmt.Errorf("get match: %w", sql.ErrNoRows)) {
		t.Fatalf("expected wrapped ErrNoRows to be not found")
	}
	if isNotFound(fakeErr("connection reset")) {
		t.Fatalf("expected unrelated error to be found")
	}
}

func TestNullableString(t *testing.T) {
	if got := nullableString("   "); got != nil {
		t.Fatalf("expected nil for blank string, got %q", *got)
	}
	if got := nullableString(" venue-1 "); got == nil || *got != "venue-1" {
		t.Fatalf("expected trimmed value, got %v", got)
	}
}

func TestDecodeJSON(t *testing.T) {
	t.Run("keeps destination for null column", func(t *testing.T) {
		dst := map[string]string{"football_api": "1"}
		if err := decodeJSON("null", &dst); err != nil {
			t.Fatalf("decode null: %v", err)
		}
		if dst["football_api"] != "1" {
			t.Fatalf("destination was overwritten: %v", dst)
		}
	})

	t.Run("decodes object", func(t *testing.T) {
		var dst map[string]string
		if err := decodeJSON(`{"football_api":"1035037"}`, &dst); err != nil {
			t.Fatalf("decode object: %v", err)
		}
		if dst["football_api"] != "1035037" {
			t.Fatalf("unexpected decoded map: %v", dst)
		}
	})
}

type fakeErr string

func (e fakeErr) Error() string { return string(e) }

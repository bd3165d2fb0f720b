package apierr

import (
	"errors"
	"net/http"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

func TestFromDBClassifiesRecordNotFound(t *testing.T) {
	err := FromDB("get row", gorm.ErrRecordNotFound)
	if err.Status != http.StatusNotFound || err.Code != CodeNotFound {
		t.Fatalf("got status=%d code=%s", err.Status, err.Code)
	}
}

func TestFromDBClassifiesPgErrors(t *testing.T) {
	cases := []struct {
		pgCode     string
		wantStatus int
		wantCode   string
	}{
		{"23505", http.StatusConflict, CodeConflict},
		{"23503", http.StatusBadRequest, CodeValidation},
		{"40001", http.StatusServiceUnavailable, CodeDataAccess},
		{"40P01", http.StatusServiceUnavailable, CodeDataAccess},
		{"55P03", http.StatusServiceUnavailable, CodeDataAccess},
	}
	for _, c := range cases {
		err := FromDB("write row", &pgconn.PgError{Code: c.pgCode})
		if err.Status != c.wantStatus || err.Code != c.wantCode {
			t.Fatalf("pg code %s: got status=%d code=%s, want %d/%s", c.pgCode, err.Status, err.Code, c.wantStatus, c.wantCode)
		}
	}
}

func TestFromDBPassesThroughTaggedErrors(t *testing.T) {
	orig := NotFound("layout template not found")
	got := FromDB("outer op", orig)
	if got != orig {
		t.Fatalf("tagged error was rewrapped: %v", got)
	}
}

func TestFromDBDefaultsToDataAccess(t *testing.T) {
	err := FromDB("write row", errors.New("connection reset"))
	if err.Status != http.StatusInternalServerError || err.Code != CodeDataAccess {
		t.Fatalf("got status=%d code=%s", err.Status, err.Code)
	}
}

func TestStatusAndCodeHelpers(t *testing.T) {
	if got := Status(Validation("bad payload")); got != http.StatusBadRequest {
		t.Fatalf("Status = %d", got)
	}
	if got := Code(Validation("bad payload")); got != CodeValidation {
		t.Fatalf("Code = %s", got)
	}
	if got := Status(errors.New("plain")); got != http.StatusInternalServerError {
		t.Fatalf("Status for untagged = %d", got)
	}
	if got := Code(errors.New("plain")); got != CodeDataAccess {
		t.Fatalf("Code for untagged = %s", got)
	}
}

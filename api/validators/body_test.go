package validators

import (
	"net/http/httptest"
	"strings"
	"testing"

	pkgerrors "github.com/wooftrace/wooftrace-backend/pkg/errors"
)

type samplePayload struct {
	Email string `json:"email" validate:"required,email"`
	Name  string `json:"name" validate:"required,min=2"`
}

func TestDecodeJSONBodyAcceptsValidPayload(t *testing.T) {
	r := httptest.NewRequest("POST", "/", strings.NewReader(`{"email":"owner@example.com","name":"Dana"}`))
	var payload samplePayload
	if err := DecodeJSONBody(r, &payload); err != nil {
		t.Fatalf("expected payload to decode, got %v", err)
	}
	if payload.Email != "owner@example.com" {
		t.Fatalf("unexpected email %q", payload.Email)
	}
}

func TestDecodeJSONBodyRejectsUnknownFields(t *testing.T) {
	r := httptest.NewRequest("POST", "/", strings.NewReader(`{"email":"owner@example.com","name":"Dana","bogus":true}`))
	var payload samplePayload
	err := DecodeJSONBody(r, &payload)
	if err == nil {
		t.Fatalf("expected unknown field to be rejected")
	}
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestDecodeJSONBodyReportsFieldErrorsByJSONName(t *testing.T) {
	r := httptest.NewRequest("POST", "/", strings.NewReader(`{"email":"not-an-email","name":"D"}`))
	var payload samplePayload
	err := DecodeJSONBody(r, &payload)
	typed := pkgerrors.As(err)
	if typed == nil {
		t.Fatalf("expected typed validation error, got %v", err)
	}
	details, ok := typed.Details().(map[string]string)
	if !ok {
		t.Fatalf("expected field details map, got %T", typed.Details())
	}
	if _, found := details["email"]; !found {
		t.Fatalf("expected email field error, got %v", details)
	}
	if _, found := details["name"]; !found {
		t.Fatalf("expected name field error, got %v", details)
	}
}

func TestParseQueryInt(t *testing.T) {
	r := httptest.NewRequest("GET", "/?page=3", nil)
	got, err := ParseQueryInt(r, "page", 1, 1, 100)
	if err != nil || got != 3 {
		t.Fatalf("expected 3, got %d (err=%v)", got, err)
	}

	r = httptest.NewRequest("GET", "/", nil)
	if got, err = ParseQueryInt(r, "page", 1, 1, 100); err != nil || got != 1 {
		t.Fatalf("expected default 1, got %d (err=%v)", got, err)
	}

	r = httptest.NewRequest("GET", "/?page=0", nil)
	if _, err = ParseQueryInt(r, "page", 1, 1, 100); err == nil {
		t.Fatalf("expected out-of-range error")
	}
}

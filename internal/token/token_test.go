package token

import "testing"

func TestSignAndParse(t *testing.T) {
	signed, err := Sign("user-123", "testsecret")
	if err != nil {
		t.Fatalf("sign failed: %v", err)
	}

	id, err := Parse(signed, "testsecret")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if id != "user-123" {
		t.Fatalf("expected user-123, got %s", id)
	}
}

func TestParseRejectsWrongSecret(t *testing.T) {
	signed, err := Sign("user-123", "testsecret")
	if err != nil {
		t.Fatalf("sign failed: %v", err)
	}

	if _, err := Parse(signed, "othersecret"); err == nil {
		t.Fatal("expected error for wrong secret")
	}
}

func TestParseRejectsGarbage(t *testing.T) {
	if _, err := Parse("not-a-token", "testsecret"); err == nil {
		t.Fatal("expected error for malformed token")
	}
}

package testfixtures

import "testing"

func TestIDGeneratorDefaultsToProfilePrefix(t *testing.T) {
	gen := NewIDGenerator("")

	first := gen.Next()
	second := gen.Next()

	if first != "profile-1" || second != "profile-2" {
		t.Fatalf("unexpected identifiers: %q, %q", first, second)
	}
	if gen.Issued() != 2 {
		t.Fatalf("expected 2 issued ids, got %d", gen.Issued())
	}
}

func TestIDGeneratorReset(t *testing.T) {
	gen := NewIDGenerator("house")
	_ = gen.Next()
	gen.Reset()

	if next := gen.Next(); next != "house-1" {
		t.Fatalf("expected house-1 after reset, got %q", next)
	}
}

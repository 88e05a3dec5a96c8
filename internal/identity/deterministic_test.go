package identity

import "testing"

func TestUnitUUIDIsStableAndKeyed(t *testing.T) {
	first := UnitUUID("article", "42", "title", "es")
	second := UnitUUID(" article ", "42", "title", "ES")
	if first != second {
		t.Fatalf("expected normalised keys to match, got %s and %s", first, second)
	}
	if other := UnitUUID("article", "42", "title", "fr"); other == first {
		t.Fatalf("expected different locales to produce different ids")
	}
	if other := UnitUUID("article", "42", "summary", "es"); other == first {
		t.Fatalf("expected different fields to produce different ids")
	}
}

func TestUUIDEmptyKey(t *testing.T) {
	if got := UUID("   "); got.String() != "00000000-0000-0000-0000-000000000000" {
		t.Fatalf("expected nil uuid for blank key, got %s", got)
	}
}

func TestMessageUUIDsDiffer(t *testing.T) {
	msg := MessageUUID("common", "greeting")
	if msg == MessageUUID("common", "farewell") {
		t.Fatalf("expected distinct message ids")
	}
	if MessageTranslationUUID(msg, "es") == MessageTranslationUUID(msg, "fr") {
		t.Fatalf("expected distinct translation ids per locale")
	}
}

package env

import "testing"

func TestGetFallsBackOnBlank(t *testing.T) {
	t.Setenv("POS_TEST_VALUE", "   ")
	if got := Get("POS_TEST_VALUE", "fallback"); got != "fallback" {
		t.Fatalf("expected fallback, got %q", got)
	}
	t.Setenv("POS_TEST_VALUE", " console ")
	if got := Get("POS_TEST_VALUE", "json"); got != "console" {
		t.Fatalf("expected trimmed value, got %q", got)
	}
}

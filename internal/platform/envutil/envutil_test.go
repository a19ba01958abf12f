package envutil

import "testing"

func TestEnvDefaults(t *testing.T) {
	t.Setenv("TA_STR", "  value ")
	t.Setenv("TA_BLANK", "   ")
	t.Setenv("TA_INT", "12")
	t.Setenv("TA_BAD_INT", "twelve")
	t.Setenv("TA_BOOL", "off")
	t.Setenv("TA_FLOAT", "0.25")
	t.Setenv("TA_BAD_FLOAT", "most")

	if got := String("TA_STR", "x"); got != "value" {
		t.Fatalf("String: got %q", got)
	}
	if got := String("TA_BLANK", "x"); got != "x" {
		t.Fatalf("String blank: got %q", got)
	}
	if got := Int("TA_INT", 1); got != 12 {
		t.Fatalf("Int: got %d", got)
	}
	if got := Int("TA_BAD_INT", 3); got != 3 {
		t.Fatalf("Int fallback: got %d", got)
	}
	if got := Float("TA_FLOAT", 1); got != 0.25 {
		t.Fatalf("Float: got %v", got)
	}
	if got := Float("TA_BAD_FLOAT", 0.5); got != 0.5 {
		t.Fatalf("Float fallback: got %v", got)
	}
	if got := Bool("TA_BOOL", true); got {
		t.Fatalf("Bool: expected false")
	}
	if got := Bool("TA_UNSET_BOOL", true); !got {
		t.Fatalf("Bool default: expected true")
	}
}

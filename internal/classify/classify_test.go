package classify

import (
	"testing"

	"github.com/jmoreau/aeos-dashboard/internal/domain"
)

func TestEvent_KnownTypes(t *testing.T) {
	tests := []struct {
		name string
		want domain.Category
	}{
		{"Access granted", domain.CategoryGranted},
		{"Access granted (first person)", domain.CategoryGranted},
		{"Access granted with extended unlock", domain.CategoryGranted},
		{"Access denied", domain.CategoryDenied},
		{"Access denied: badge blocked", domain.CategoryDenied},
		{"Access denied: antipassback", domain.CategoryDenied},
		{"Door forced open", domain.CategoryAlarm},
		{"Door held open", domain.CategoryAlarm},
		{"Tailgating", domain.CategoryAlarm},
		{"Unknown Maintenance Event", domain.CategoryOther},
		{"", domain.CategoryOther},
	}

	for _, tt := range tests {
		if got := Event(tt.name); got != tt.want {
			t.Errorf("Event(%q) = %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestEvent_PrefixToleratesNewSubReasons(t *testing.T) {
	// Sub-reasons not in the exact sets must still classify by prefix.
	tests := []struct {
		name string
		want domain.Category
	}{
		{"Access granted after override", domain.CategoryGranted},
		{"ACCESS GRANTED", domain.CategoryGranted},
		{"access denied: badge expired", domain.CategoryDenied},
		{"Access Denied: escort required", domain.CategoryDenied},
	}

	for _, tt := range tests {
		if got := Event(tt.name); got != tt.want {
			t.Errorf("Event(%q) = %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestEvent_TrimsWhitespace(t *testing.T) {
	if got := Event("  Access granted  "); got != domain.CategoryGranted {
		t.Errorf("expected whitespace-padded name to classify as granted, got %q", got)
	}
	if got := Event("\tDoor forced open\n"); got != domain.CategoryAlarm {
		t.Errorf("expected whitespace-padded alarm to classify as alarm, got %q", got)
	}
}

func TestEvent_AlarmRequiresExactMatch(t *testing.T) {
	// Alarm names are an exact set; near-misses fall through to other.
	if got := Event("Tailgating suspected"); got != domain.CategoryOther {
		t.Errorf("Event(%q) = %q, want other", "Tailgating suspected", got)
	}
	if got := Event("door forced open"); got != domain.CategoryOther {
		t.Errorf("Event(%q) = %q, want other", "door forced open", got)
	}
}

func TestEvent_Deterministic(t *testing.T) {
	for i := 0; i < 3; i++ {
		if got := Event("Access denied: badge blocked"); got != domain.CategoryDenied {
			t.Fatalf("call %d: got %q, want denied", i, got)
		}
	}
}

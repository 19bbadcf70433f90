package logfields

import (
	"log/slog"
	"testing"
	"time"
)

// TestHelperKeyNames verifies string-based helper key/value stability.
func TestHelperKeyNames(t *testing.T) {
	cases := []struct {
		name    string
		attrKey string
		attrVal string
		attr    interface{}
	}{
		{"TaskID", KeyTaskID, "123", TaskID("123")},
		{"ScheduleID", KeyScheduleID, "sch1", ScheduleID("sch1")},
		{"Pattern", KeyPattern, "every 5m", Pattern("every 5m")},
		{"Stage", KeyStage, "evaluate", Stage("evaluate")},
		{"Worker", KeyWorker, "w1", Worker("w1")},
		{"Name", KeyName, "n", Name("n")},
		{"Addr", KeyAddr, ":9090", Addr(":9090")},
	}

	for _, tc := range cases {
		a := tc.attr.(slog.Attr)
		if a.Key != tc.attrKey {
			// Key drift would break log ingestion schemas.
			t.Fatalf("%s: expected key %s, got %s", tc.name, tc.attrKey, a.Key)
		}
		if got := a.Value.String(); got != tc.attrVal { // Value is slog.Value
			t.Fatalf("%s: expected value %s, got %v", tc.name, tc.attrVal, got)
		}
	}
}

// TestNumericHelpers verifies keys for numeric & float helpers.
func TestNumericHelpers(t *testing.T) {
	if v := Attempt(5); v.Key != KeyAttempt {
		t.Fatalf("Attempt key mismatch: %s", v.Key)
	}
	if v := ExitCode(2); v.Key != KeyExitCode {
		t.Fatalf("ExitCode key mismatch: %s", v.Key)
	}
	if v := Count(42); v.Key != KeyCount {
		t.Fatalf("Count key mismatch: %s", v.Key)
	}
	if v := DurationMS(12.5); v.Key != KeyDurationMS {
		t.Fatalf("DurationMS key mismatch: %s", v.Key)
	}
}

// TestDueFormatsUTC ensures Due renders an RFC 3339 timestamp normalized to UTC.
func TestDueFormatsUTC(t *testing.T) {
	loc := time.FixedZone("UTC+2", 2*60*60)
	due := time.Date(2026, 3, 1, 10, 0, 0, 0, loc)

	attr := Due(due)
	if attr.Key != KeyDue {
		t.Fatalf("Due key mismatch: %s", attr.Key)
	}
	if got, want := attr.Value.String(), "2026-03-01T08:00:00Z"; got != want {
		t.Fatalf("Due value = %s, want %s", got, want)
	}
}

// TestErrorHelper ensures Error() handles nil and non-nil errors predictably.
func TestErrorHelper(t *testing.T) {
	attr := Error(nil)
	if attr.Key != KeyError {
		t.Fatalf("Error key mismatch: %s", attr.Key)
	}
	if attr.Value.String() != "" {
		t.Fatalf("Expected empty error string, got %s", attr.Value.String())
	}
	attr = Error(errTest{})
	if attr.Value.String() != "err-test" {
		t.Fatalf("Expected 'err-test', got %s", attr.Value.String())
	}
}

type errTest struct{}

func (e errTest) Error() string { return "err-test" }

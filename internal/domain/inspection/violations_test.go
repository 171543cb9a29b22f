package inspection

import "testing"

func TestParseViolationsWithAndWithoutComments(t *testing.T) {
	blob := "12. No hot water - Comments: repair needed|4. Improper storage"

	got := ParseViolations("2609100", blob)
	if len(got) != 2 {
		t.Fatalf("ParseViolations() len = %d, want 2", len(got))
	}

	if got[0].Number != 12 || got[0].Description != "No hot water" {
		t.Fatalf("first entry = %+v", got[0])
	}
	if got[0].Comments == nil || *got[0].Comments != "repair needed" {
		t.Fatalf("first entry comments = %v", got[0].Comments)
	}
	if got[0].InspectionID != "2609100" {
		t.Fatalf("first entry inspection id = %q", got[0].InspectionID)
	}

	if got[1].Number != 4 || got[1].Description != "Improper storage" {
		t.Fatalf("second entry = %+v", got[1])
	}
	if got[1].Comments != nil {
		t.Fatalf("second entry comments = %q, want nil", *got[1].Comments)
	}
}

func TestParseViolationsDropsMalformedEntries(t *testing.T) {
	blob := "not a violation|33. Food contact surfaces clean - Comments: wiped down|garbage entry"

	got := ParseViolations("1", blob)
	if len(got) != 1 {
		t.Fatalf("ParseViolations() len = %d, want 1", len(got))
	}
	if got[0].Number != 33 {
		t.Fatalf("number = %d, want 33", got[0].Number)
	}
}

func TestParseViolationsEmptyBlob(t *testing.T) {
	if got := ParseViolations("1", ""); got != nil {
		t.Fatalf("empty blob produced %d records", len(got))
	}
	if got := ParseViolations("1", "   "); got != nil {
		t.Fatalf("blank blob produced %d records", len(got))
	}
}

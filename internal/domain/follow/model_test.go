package follow

import "testing"

func TestParseEntityType(t *testing.T) {
	t.Parallel()

	got, err := ParseEntityType(" League ")
	if err != nil || got != EntityLeague {
		t.Fatalf("unexpected result: %q, %v", got, err)
	}
	if _, err := ParseEntityType("player"); err == nil {
		t.Fatalf("expected error for unsupported entity type")
	}
}

func TestPreferencesApply(t *testing.T) {
	t.Parallel()

	on, off := true, false
	prefs := DefaultPreferences().Apply(PreferencesPatch{Cards: &on, MatchEnd: &off})

	want := Preferences{Goals: true, Cards: true, MatchStart: true}
	if prefs != want {
		t.Fatalf("unexpected preferences: %+v", prefs)
	}
	if !(PreferencesPatch{}).IsEmpty() {
		t.Fatalf("zero patch should be empty")
	}
}

func TestFollowReceives(t *testing.T) {
	t.Parallel()

	if !(Follow{Active: true, Status: StatusActive}).Receives() {
		t.Fatalf("active follow should receive")
	}
	if (Follow{Active: true, Status: StatusMuted}).Receives() {
		t.Fatalf("muted follow should not receive")
	}
	if (Follow{Active: false, Status: StatusActive}).Receives() {
		t.Fatalf("inactive follow should not receive")
	}
}

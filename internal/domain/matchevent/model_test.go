package matchevent

import "testing"

func TestProviderEventID(t *testing.T) {
	t.Parallel()

	if got := ProviderEventID("1001", 23, "goal", "42"); got != "1001-23-GOAL-42" {
		t.Fatalf("unexpected id: %q", got)
	}
	if got := ProviderEventID("1001", 90, "Card", ""); got != "1001-90-CARD-none" {
		t.Fatalf("unexpected id without team: %q", got)
	}
}

package match

import (
	"testing"
	"time"
)

func intPtr(v int) *int {
	return &v
}

func TestDerivePhase(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		status  Status
		elapsed *int
		want    Phase
	}{
		{name: "not started", status: StatusNotStarted, want: PhaseNotStarted},
		{name: "first half", status: StatusFirstHalf, elapsed: intPtr(12), want: PhaseFirstHalf},
		{name: "half time", status: StatusHalfTime, elapsed: intPtr(45), want: PhaseHalfTime},
		{name: "second half", status: StatusSecondHalf, elapsed: intPtr(67), want: PhaseSecondHalf},
		{name: "penalties", status: StatusPenalties, want: PhasePenaltyShootout},
		{name: "after penalties", status: StatusAfterPenalties, want: PhaseAfterPenalties},
		{name: "live without minute", status: StatusLive, want: PhaseFirstHalf},
		{name: "live first half", status: StatusLive, elapsed: intPtr(45), want: PhaseFirstHalf},
		{name: "live second half", status: StatusLive, elapsed: intPtr(46), want: PhaseSecondHalf},
		{name: "unknown code", status: Status("XYZ"), want: PhaseUnknown},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := DerivePhase(tc.status, tc.elapsed); got != tc.want {
				t.Fatalf("DerivePhase(%q) = %q, want %q", tc.status, got, tc.want)
			}
		})
	}
}

func TestNormalizeStatus(t *testing.T) {
	t.Parallel()

	if got := NormalizeStatus(" 1h "); got != StatusFirstHalf {
		t.Fatalf("unexpected status: %q", got)
	}
	if got := NormalizeStatus(""); got != StatusNotStarted {
		t.Fatalf("empty status should mean not started, got %q", got)
	}
}

func TestStateFromMatch(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 9, 20, 17, 0, 0, 0, time.UTC)
	state := StateFromMatch(Match{
		ID:        "1001",
		Status:    StatusSecondHalf,
		Elapsed:   intPtr(52),
		HomeScore: intPtr(2),
	}, now)

	if state.Phase != PhaseSecondHalf {
		t.Fatalf("unexpected phase: %q", state.Phase)
	}
	if state.HomeScore != 2 || state.AwayScore != 0 {
		t.Fatalf("unexpected score: %d-%d", state.HomeScore, state.AwayScore)
	}
	if state.Minute == nil || *state.Minute != 52 {
		t.Fatalf("unexpected minute: %v", state.Minute)
	}
	if !state.UpdatedAt.Equal(now) {
		t.Fatalf("unexpected updated at: %s", state.UpdatedAt)
	}
}

func TestMatchMergeFrom(t *testing.T) {
	t.Parallel()

	kickoff := time.Date(2025, 9, 20, 16, 30, 0, 0, time.UTC)
	current := Match{ID: "1001", Status: StatusNotStarted, StartTime: kickoff, VenueID: "494"}

	if current.MergeFrom(Match{Status: StatusNotStarted, StartTime: kickoff}) {
		t.Fatalf("identical fixture should not report a change")
	}
	if !current.MergeFrom(Match{Status: StatusFirstHalf, StartTime: kickoff, Elapsed: intPtr(1), VenueID: "999"}) {
		t.Fatalf("status change should report a change")
	}
	if current.Status != StatusFirstHalf {
		t.Fatalf("status not merged: %q", current.Status)
	}
	if current.VenueID != "494" {
		t.Fatalf("known venue must not be overwritten, got %q", current.VenueID)
	}
}

func TestStatusClassification(t *testing.T) {
	t.Parallel()

	if !StatusFullTime.IsTerminal() || StatusFullTime.IsLive() {
		t.Fatalf("FT must be terminal and not live")
	}
	if !StatusHalfTime.IsLive() || StatusHalfTime.IsTerminal() {
		t.Fatalf("HT must be live and not terminal")
	}
	if StatusPostponed.IsLive() || StatusPostponed.IsTerminal() {
		t.Fatalf("PST is neither live nor terminal")
	}
}

package team

import "testing"

func TestShortName(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"Arsenal":                "ARS",
		"Manchester United FC":   "MU",
		"Paris Saint Germain":    "PSG",
		"Brighton & Hove Albion": "BHA",
		"Persija Jakarta":        "PJ",
		"FC":                     "",
		"":                       "",
		"AFC Bournemouth":        "BOU",
	}

	for name, want := range tests {
		if got := ShortName(name); got != want {
			t.Fatalf("ShortName(%q) = %q, want %q", name, got, want)
		}
	}
}

func TestTeamValidate(t *testing.T) {
	t.Parallel()

	if err := (Team{ID: "42", Name: "Arsenal", ShortName: "ARS"}).Validate(); err != nil {
		t.Fatalf("expected valid team, got %v", err)
	}
	if err := (Team{ID: "42", Name: "Arsenal", ShortName: "ARSE"}).Validate(); err == nil {
		t.Fatalf("expected short name length error")
	}
}

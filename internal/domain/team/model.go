package team

import (
	"fmt"
	"strings"
)

// Team is a real football club referenced by fixtures.
type Team struct {
	ID        string
	LeagueID  string
	Name      string
	ShortName string
	LogoURL   string
	TeamRefID int64
}

func (t Team) Validate() error {
	if strings.TrimSpace(t.ID) == "" {
		return fmt.Errorf("team id is required")
	}
	if strings.TrimSpace(t.Name) == "" {
		return fmt.Errorf("team name is required")
	}
	if len(t.ShortName) > 3 {
		return fmt.Errorf("team short name must be at most 3 characters")
	}

	return nil
}

var shortNameAffixes = map[string]struct{}{
	"FC":  {},
	"AFC": {},
	"CF":  {},
	"SC":  {},
	"AC":  {},
	"FK":  {},
	"SK":  {},
}

// ShortName derives an uppercase code of at most three letters from a club name.
// "Manchester United FC" -> "MU", "Arsenal" -> "ARS", "Paris Saint Germain" -> "PSG".
func ShortName(name string) string {
	words := make([]string, 0, 4)
	for _, raw := range strings.Fields(name) {
		word := lettersOnly(raw)
		if word == "" {
			continue
		}
		if _, ok := shortNameAffixes[word]; ok {
			continue
		}
		words = append(words, word)
	}

	switch len(words) {
	case 0:
		return ""
	case 1:
		word := words[0]
		if len(word) > 3 {
			return word[:3]
		}
		return word
	}

	var b strings.Builder
	for _, word := range words {
		if b.Len() == 3 {
			break
		}
		b.WriteByte(word[0])
	}
	return b.String()
}

func lettersOnly(value string) string {
	var b strings.Builder
	for _, r := range strings.ToUpper(value) {
		if r >= 'A' && r <= 'Z' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

package querybuilder

import (
	"reflect"
	"testing"
)

type stateRow struct {
	MatchID     string  `db:"match_public_id"`
	Phase       string  `db:"phase"`
	HomeScore   int     `db:"home_score"`
	LastEventID *string `db:"last_event_id"`
}

func TestUpsert_DoUpdateDefaultsToNonKeyColumns(t *testing.T) {
	t.Parallel()

	query, args, err := Upsert("match_states", stateRow{MatchID: "m-1", Phase: "1H", HomeScore: 1}).
		OnConflict("", "match_public_id").
		DoUpdate().
		SetExpr("last_event_id", "COALESCE(EXCLUDED.last_event_id, match_states.last_event_id)").
		ToSQL()
	if err != nil {
		t.Fatalf("build upsert: %v", err)
	}

	wantQuery := "INSERT INTO match_states (match_public_id, phase, home_score, last_event_id) VALUES ($1, $2, $3, $4)" +
		" ON CONFLICT (match_public_id) DO UPDATE SET phase = EXCLUDED.phase, home_score = EXCLUDED.home_score," +
		" last_event_id = COALESCE(EXCLUDED.last_event_id, match_states.last_event_id)"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 4 || args[0] != "m-1" {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestUpsert_PartialIndexDoNothing(t *testing.T) {
	t.Parallel()

	query, _, err := Upsert("teams", tokenRow{Token: "t"}).
		OnConflict("deleted_at IS NULL", "public_id").
		DoNothing().
		ToSQL()
	if err != nil {
		t.Fatalf("build upsert: %v", err)
	}

	wantQuery := "INSERT INTO teams (token, platform) VALUES ($1, $2) ON CONFLICT (public_id) WHERE deleted_at IS NULL DO NOTHING"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
}

func TestUpsert_GuardedUpdateBindsAfterValues(t *testing.T) {
	t.Parallel()

	query, args, err := Upsert("device_tokens", tokenRow{Token: "tok", Platform: "android"}).
		OnConflict("", "token").
		DoUpdate("platform").
		SetExpr("last_used_at", "GREATEST(device_tokens.last_used_at, ?)", "2025-09-20").
		UpdateWhere("device_tokens.platform <> EXCLUDED.platform").
		ToSQL()
	if err != nil {
		t.Fatalf("build upsert: %v", err)
	}

	wantQuery := "INSERT INTO device_tokens (token, platform) VALUES ($1, $2) ON CONFLICT (token)" +
		" DO UPDATE SET platform = EXCLUDED.platform, last_used_at = GREATEST(device_tokens.last_used_at, $3)" +
		" WHERE device_tokens.platform <> EXCLUDED.platform"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if !reflect.DeepEqual(args, []any{"tok", "android", "2025-09-20"}) {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestUpsert_RequiresTargetAndAction(t *testing.T) {
	t.Parallel()

	if _, _, err := Upsert("teams", tokenRow{}).DoNothing().ToSQL(); err == nil {
		t.Fatalf("expected error without conflict target")
	}
	if _, _, err := Upsert("teams", tokenRow{}).OnConflict("", "token").ToSQL(); err == nil {
		t.Fatalf("expected error without conflict action")
	}
}

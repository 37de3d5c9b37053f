package querybuilder

import (
	"reflect"
	"testing"
	"time"
)

type builder interface {
	ToSQL() (string, []any, error)
}

func TestBuilders(t *testing.T) {
	t.Parallel()

	cutoff := time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC)
	tests := []struct {
		name      string
		build     builder
		wantQuery string
		wantArgs  []any
	}{
		{
			name: "select fixtures window",
			build: Select("public_id", "status").
				From("matches").
				Where(Eq("league_public_id", "league-39"), IsNull("deleted_at")).
				OrderBy("start_time", "public_id").
				Limit(10),
			wantQuery: "SELECT public_id, status FROM matches WHERE league_public_id = $1 AND deleted_at IS NULL ORDER BY start_time, public_id LIMIT 10",
			wantArgs:  []any{"league-39"},
		},
		{
			name: "in list and expression keep numbering",
			build: Select("*").
				From("device_tokens").
				Where(InStrings("user_id", []string{"u1", "u2"}), Expr("last_used_at < ? AND active = ?", cutoff, true)),
			wantQuery: "SELECT * FROM device_tokens WHERE user_id IN ($1, $2) AND last_used_at < $3 AND active = $4",
			wantArgs:  []any{"u1", "u2", cutoff, true},
		},
		{
			name: "count follows per entity type",
			build: Select("entity_type", "COUNT(1) AS total").
				From("follows").
				Where(Eq("user_id", "u1"), IsNull("deleted_at")).
				GroupBy("entity_type"),
			wantQuery: "SELECT entity_type, COUNT(1) AS total FROM follows WHERE user_id = $1 AND deleted_at IS NULL GROUP BY entity_type",
			wantArgs:  []any{"u1"},
		},
		{
			name:      "empty in list matches nothing",
			build:     Select("*").From("device_tokens").Where(In[int64]("id", nil)),
			wantQuery: "SELECT * FROM device_tokens WHERE 1=0",
			wantArgs:  []any{},
		},
		{
			name: "update mixes values and expressions",
			build: Update("device_tokens").
				Set("active", false).
				SetExpr("updated_at", "NOW()").
				Where(InStrings("token", []string{"tok-a"}), Eq("active", true)),
			wantQuery: "UPDATE device_tokens SET active = $1, updated_at = NOW() WHERE token IN ($2) AND active = $3",
			wantArgs:  []any{false, "tok-a", true},
		},
		{
			name: "delete old job runs",
			build: DeleteFrom("job_runs").
				Where(Expr("started_at < ?", cutoff), Expr("status <> ?", "running")),
			wantQuery: "DELETE FROM job_runs WHERE started_at < $1 AND status <> $2",
			wantArgs:  []any{cutoff, "running"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			query, args, err := tt.build.ToSQL()
			if err != nil {
				t.Fatalf("build query: %v", err)
			}
			if query != tt.wantQuery {
				t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", tt.wantQuery, query)
			}
			if !reflect.DeepEqual(args, tt.wantArgs) {
				t.Fatalf("unexpected args: want %+v, got %+v", tt.wantArgs, args)
			}
		})
	}
}

func TestBuilders_RejectUnsafeStatements(t *testing.T) {
	t.Parallel()

	for name, b := range map[string]builder{
		"delete without where": DeleteFrom("job_runs"),
		"update without where": Update("follows").Set("active", false),
		"update without sets":  Update("follows").Where(Eq("id", 1)),
		"select without table": Select("id"),
	} {
		if _, _, err := b.ToSQL(); err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}
}

type tokenRow struct {
	Token    string  `db:"token"`
	Platform string  `db:"platform"`
	Note     *string `db:"-"`
	Untagged string
	hidden   string
}

func TestInsertModel(t *testing.T) {
	t.Parallel()

	row := tokenRow{Token: "tok", Platform: "ios", Untagged: "x", hidden: "y"}
	query, args, err := InsertModel("device_tokens", &row, " RETURNING token ")
	if err != nil {
		t.Fatalf("build insert: %v", err)
	}

	wantQuery := "INSERT INTO device_tokens (token, platform) VALUES ($1, $2) RETURNING token"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if !reflect.DeepEqual(args, []any{"tok", "ios"}) {
		t.Fatalf("unexpected args: %+v", args)
	}

	if _, _, err := InsertModel("device_tokens", (*tokenRow)(nil), ""); err == nil {
		t.Fatalf("expected error for nil model")
	}
	if _, _, err := InsertModel("device_tokens", "tok", ""); err == nil {
		t.Fatalf("expected error for non struct model")
	}
}

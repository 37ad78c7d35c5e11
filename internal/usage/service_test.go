package usage

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/brightclass/aigateway/internal/db/sqlc"
	"github.com/brightclass/aigateway/internal/llm"
)

// fakeRow implements pgx.Row with a custom scan function.
type fakeRow struct {
	scanFunc func(dest ...any) error
}

func (r *fakeRow) Scan(dest ...any) error {
	return r.scanFunc(dest...)
}

// fakeDBTX implements sqlc.DBTX for unit testing.
type fakeDBTX struct {
	queryRowFunc func(ctx context.Context, sql string, args ...any) pgx.Row
	calls        int
	lastArgs     []any
}

func (d *fakeDBTX) Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error) {
	return pgconn.CommandTag{}, nil
}

func (d *fakeDBTX) Query(context.Context, string, ...interface{}) (pgx.Rows, error) {
	return nil, nil
}

func (d *fakeDBTX) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	d.calls++
	d.lastArgs = args
	if d.queryRowFunc != nil {
		return d.queryRowFunc(ctx, sql, args...)
	}
	return &fakeRow{scanFunc: func(dest ...any) error { return pgx.ErrNoRows }}
}

func makeUsageRow() *fakeRow {
	return &fakeRow{
		scanFunc: func(dest ...any) error {
			if len(dest) < 9 {
				return pgx.ErrNoRows
			}
			var id pgtype.UUID
			_ = id.Scan("00000000-0000-0000-0000-000000000001")
			*dest[0].(*pgtype.UUID) = id
			*dest[1].(*pgtype.Text) = pgtype.Text{String: "t1", Valid: true}
			*dest[2].(*string) = "s1"
			*dest[3].(*string) = "ask_question"
			*dest[4].(*string) = "gemini-1.5-pro-002"
			*dest[5].(*int32) = 10
			*dest[6].(*int32) = 20
			*dest[7].(*int32) = 30
			*dest[8].(*pgtype.Timestamptz) = pgtype.Timestamptz{}
			return nil
		},
	}
}

func TestRecordPersistsRow(t *testing.T) {
	db := &fakeDBTX{
		queryRowFunc: func(ctx context.Context, sql string, args ...any) pgx.Row {
			return makeUsageRow()
		},
	}
	svc := NewService(nil, sqlc.New(db))

	svc.Record(context.Background(), RecordInput{
		TenantID:       "t1",
		ConversationID: "s1",
		Action:         "ask_question",
		Model:          "gemini-1.5-pro-002",
		Counters:       &llm.Usage{InputTokens: 10, OutputTokens: 20, TotalTokens: 30},
	})

	if db.calls != 1 {
		t.Fatalf("expected 1 insert, got %d", db.calls)
	}
}

func TestRecordSkipsWhenCountersMissing(t *testing.T) {
	db := &fakeDBTX{}
	svc := NewService(nil, sqlc.New(db))

	svc.Record(context.Background(), RecordInput{
		TenantID:       "t1",
		ConversationID: "s1",
		Action:         "ask_question",
		Model:          "gemini-1.5-pro-002",
		Counters:       nil,
	})

	if db.calls != 0 {
		t.Fatalf("expected no insert when counters are absent, got %d", db.calls)
	}
}

func TestRecordComputesTotalWhenAbsent(t *testing.T) {
	db := &fakeDBTX{
		queryRowFunc: func(ctx context.Context, sql string, args ...any) pgx.Row {
			return makeUsageRow()
		},
	}
	svc := NewService(nil, sqlc.New(db))

	svc.Record(context.Background(), RecordInput{
		ConversationID: "s1",
		Action:         "generate_teacher_notes",
		Model:          "gemini-1.5-pro-002",
		Counters:       &llm.Usage{InputTokens: 7, OutputTokens: 5},
	})

	if len(db.lastArgs) != 7 {
		t.Fatalf("expected 7 insert args, got %d", len(db.lastArgs))
	}
	if total, ok := db.lastArgs[6].(int32); !ok || total != 12 {
		t.Fatalf("expected computed total 12, got %v", db.lastArgs[6])
	}
	// System-initiated call: tenant stored as NULL.
	if tenant, ok := db.lastArgs[0].(pgtype.Text); !ok || tenant.Valid {
		t.Fatalf("expected NULL tenant, got %v", db.lastArgs[0])
	}
}

func TestRecordSwallowsStorageFailure(t *testing.T) {
	db := &fakeDBTX{
		queryRowFunc: func(ctx context.Context, sql string, args ...any) pgx.Row {
			return &fakeRow{scanFunc: func(dest ...any) error {
				return errors.New("connection refused")
			}}
		},
	}
	svc := NewService(nil, sqlc.New(db))

	// Must not panic and has no error to return.
	svc.Record(context.Background(), RecordInput{
		TenantID:       "t1",
		ConversationID: "s1",
		Action:         "ask_question",
		Model:          "gemini-1.5-pro-002",
		Counters:       &llm.Usage{InputTokens: 1, OutputTokens: 1, TotalTokens: 2},
	})
}

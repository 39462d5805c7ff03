package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// brokenRows mimics a result set whose connection died mid-stream: Next
// reports no more rows and Err carries the failure.
type brokenRows struct {
	err error
}

func (r *brokenRows) Close()                                       {}
func (r *brokenRows) Err() error                                   { return r.err }
func (r *brokenRows) CommandTag() pgconn.CommandTag                { return pgconn.CommandTag{} }
func (r *brokenRows) FieldDescriptions() []pgconn.FieldDescription { return nil }
func (r *brokenRows) Next() bool                                   { return false }
func (r *brokenRows) Scan(dest ...any) error                       { return r.err }
func (r *brokenRows) Values() ([]any, error)                       { return nil, r.err }
func (r *brokenRows) RawValues() [][]byte                          { return nil }
func (r *brokenRows) Conn() *pgx.Conn                              { return nil }

type brokenDB struct {
	rowsErr error
}

func (db *brokenDB) Query(_ context.Context, _ string, _ ...any) (pgx.Rows, error) {
	return &brokenRows{err: db.rowsErr}, nil
}

func (db *brokenDB) QueryRow(_ context.Context, _ string, _ ...any) pgx.Row {
	return &brokenRows{err: db.rowsErr}
}

func (db *brokenDB) Exec(_ context.Context, _ string, _ ...any) (pgconn.CommandTag, error) {
	return pgconn.CommandTag{}, db.rowsErr
}

func (db *brokenDB) Begin(_ context.Context) (pgx.Tx, error) { return nil, db.rowsErr }
func (db *brokenDB) Ping(_ context.Context) error            { return db.rowsErr }
func (db *brokenDB) Close()                                  {}

// A connection failure after the initial Query succeeds must surface as
// an error, never as a truncated result treated as success.
func TestListQueriesSurfaceRowErrors(t *testing.T) {
	connErr := errors.New("unexpected EOF on connection")
	db := &brokenDB{rowsErr: connErr}
	ctx := context.Background()

	users, err := NewUserRepository(db, zap.NewNop()).FindAll(ctx, "", 20, 0)
	require.ErrorIs(t, err, connErr)
	assert.Nil(t, users)

	services, err := NewServiceRepository(db, zap.NewNop()).FindActive(ctx, "", "")
	require.ErrorIs(t, err, connErr)
	assert.Nil(t, services)

	bookings, err := NewBookingRepository(db, zap.NewNop()).FindByUserID(ctx, uuid.New(), 20, 0)
	require.ErrorIs(t, err, connErr)
	assert.Nil(t, bookings)
}

func TestEscapeLike(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"plumbing", "plumbing"},
		{"50% off", `50\% off`},
		{"deep_clean", `deep\_clean`},
		{`back\slash`, `back\\slash`},
		{"", ""},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, escapeLike(tc.in), "escapeLike(%q)", tc.in)
	}
}

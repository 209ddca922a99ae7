package artifact

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"os"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// execConn records Exec statements and fails the schema statement while
// failSchema is positive.
type execConn struct {
	mu         sync.Mutex
	failSchema int
	execs      []string
}

func (c *execConn) Connect(context.Context) (driver.Conn, error) { return c, nil }
func (c *execConn) Driver() driver.Driver                        { return nil }
func (c *execConn) Prepare(string) (driver.Stmt, error)          { return nil, errors.New("prepare not supported") }
func (c *execConn) Close() error                                 { return nil }
func (c *execConn) Begin() (driver.Tx, error)                    { return nil, errors.New("tx not supported") }

func (c *execConn) ExecContext(_ context.Context, query string, _ []driver.NamedValue) (driver.Result, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	stmt := strings.Fields(query)[0]
	c.execs = append(c.execs, stmt)
	if stmt == "CREATE" && c.failSchema > 0 {
		c.failSchema--
		return nil, errors.New("connection refused")
	}
	return driver.RowsAffected(1), nil
}

func (c *execConn) statements() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.execs...)
}

func TestPostgresSchemaRetriedAfterFailure(t *testing.T) {
	conn := &execConn{failSchema: 1}
	db := sql.OpenDB(conn)
	defer db.Close()
	s := NewPostgresStore(db)
	ctx := context.Background()

	err := s.Put(ctx, "run1", UseCases, []byte("x"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "create artifact schema")

	require.NoError(t, s.Put(ctx, "run1", UseCases, []byte("x")))
	require.NoError(t, s.Put(ctx, "run1", Keywords, []byte("y")))
	assert.Equal(t, []string{"CREATE", "CREATE", "INSERT", "INSERT"}, conn.statements())
}

// TestPostgresStoreRoundTrip needs a live server; set ARTIFACT_PG_DSN to run it.
func TestPostgresStoreRoundTrip(t *testing.T) {
	dsn := os.Getenv("ARTIFACT_PG_DSN")
	if dsn == "" {
		t.Skip("ARTIFACT_PG_DSN not set")
	}
	s, err := OpenPostgres(dsn)
	require.NoError(t, err)
	defer s.Close()
	ctx := context.Background()
	runID := "test-" + uuid.NewString()

	_, err = s.Get(ctx, runID, Keywords)
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.Put(ctx, runID, Keywords, []byte("fraud\n")))
	require.NoError(t, s.Put(ctx, runID, Keywords, []byte("fraud\nchurn\n")))
	require.NoError(t, s.Put(ctx, runID, UseCases, nil))

	got, err := s.Get(ctx, runID, Keywords)
	require.NoError(t, err)
	assert.Equal(t, "fraud\nchurn\n", string(got))

	names, err := s.List(ctx, runID)
	require.NoError(t, err)
	assert.Equal(t, []string{Keywords, UseCases}, names)
}

package postgres

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/rpggio/fabtrack/internal/repository"
	"github.com/stretchr/testify/require"
)

// stubConn is a minimal driver.Conn that keeps the blobs table in a map.
type stubConn struct {
	mu       sync.Mutex
	blobs    map[string][]byte
	execs    []string
	failExec bool
	failPing bool
}

func (c *stubConn) Prepare(string) (driver.Stmt, error) { return nil, fmt.Errorf("not implemented") }
func (c *stubConn) Close() error                        { return nil }
func (c *stubConn) Begin() (driver.Tx, error)           { return nil, fmt.Errorf("not implemented") }

func (c *stubConn) Ping(context.Context) error {
	if c.failPing {
		return fmt.Errorf("ping fail")
	}
	return nil
}

func (c *stubConn) ExecContext(_ context.Context, query string, args []driver.NamedValue) (driver.Result, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.execs = append(c.execs, query)
	if c.failExec {
		return nil, fmt.Errorf("exec fail")
	}
	if strings.HasPrefix(strings.TrimSpace(query), "INSERT INTO blobs") {
		c.blobs[args[0].Value.(string)] = append([]byte(nil), args[1].Value.([]byte)...)
	}
	return driver.RowsAffected(1), nil
}

func (c *stubConn) QueryContext(_ context.Context, _ string, args []driver.NamedValue) (driver.Rows, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.blobs[args[0].Value.(string)]
	return &stubRows{value: v, done: !ok}, nil
}

type stubRows struct {
	value []byte
	done  bool
}

func (r *stubRows) Columns() []string { return []string{"value"} }
func (r *stubRows) Close() error      { return nil }

func (r *stubRows) Next(dest []driver.Value) error {
	if r.done {
		return io.EOF
	}
	dest[0] = r.value
	r.done = true
	return nil
}

type stubDriver struct{ conn *stubConn }

func (d *stubDriver) Open(string) (driver.Conn, error) { return d.conn, nil }

var stubSeq atomic.Int64

func newStubDB(t *testing.T) (*sql.DB, *stubConn) {
	t.Helper()
	conn := &stubConn{blobs: make(map[string][]byte)}
	name := fmt.Sprintf("stubpg%d", stubSeq.Add(1))
	sql.Register(name, &stubDriver{conn: conn})
	db, err := sql.Open(name, "stub")
	require.NoError(t, err)
	return db, conn
}

func newStubStore(t *testing.T) (*Store, *stubConn) {
	t.Helper()
	db, conn := newStubDB(t)
	restore := OverrideSQLOpen(func(_, _ string) (*sql.DB, error) { return db, nil })
	t.Cleanup(restore)

	s, err := New(context.Background(), "")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s, conn
}

func TestNew_CreatesTable(t *testing.T) {
	_, conn := newStubStore(t)
	require.NotEmpty(t, conn.execs)
	require.Contains(t, conn.execs[0], "CREATE TABLE IF NOT EXISTS blobs")
}

func TestStore_SetGet(t *testing.T) {
	s, conn := newStubStore(t)
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "boms", []byte(`[{"id":"a"}]`)))
	require.Equal(t, `[{"id":"a"}]`, string(conn.blobs["boms"]))

	got, err := s.Get(ctx, "boms")
	require.NoError(t, err)
	require.Equal(t, `[{"id":"a"}]`, string(got))
}

func TestStore_GetMissing(t *testing.T) {
	s, _ := newStubStore(t)
	_, err := s.Get(context.Background(), "boms")
	require.ErrorIs(t, err, repository.ErrNotFound)
}

func TestStore_InvalidKey(t *testing.T) {
	s, _ := newStubStore(t)
	_, err := s.Get(context.Background(), " ")
	require.ErrorIs(t, err, repository.ErrInvalidKey)
	require.ErrorIs(t, s.Set(context.Background(), "", nil), repository.ErrInvalidKey)
}

func TestStore_SetError(t *testing.T) {
	s, conn := newStubStore(t)
	conn.failExec = true
	err := s.Set(context.Background(), "boms", []byte("x"))
	require.ErrorContains(t, err, "exec fail")
}

func TestNew_OpenError(t *testing.T) {
	restore := OverrideSQLOpen(func(_, _ string) (*sql.DB, error) { return nil, errors.New("open fail") })
	defer restore()

	_, err := New(context.Background(), "")
	require.ErrorContains(t, err, "open fail")
}

func TestNew_PingError(t *testing.T) {
	db, conn := newStubDB(t)
	conn.failPing = true
	restore := OverrideSQLOpen(func(_, _ string) (*sql.DB, error) { return db, nil })
	defer restore()

	_, err := New(context.Background(), "")
	require.ErrorContains(t, err, "ping postgres")
}

func TestStore_RealDatabase(t *testing.T) {
	dsn := os.Getenv("FABTRACK_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("FABTRACK_TEST_POSTGRES_DSN not set")
	}
	ctx := context.Background()
	s, err := New(ctx, dsn)
	require.NoError(t, err)
	defer s.Close()

	key := fmt.Sprintf("test-%d", stubSeq.Add(1))
	require.NoError(t, s.Set(ctx, key, []byte("one")))
	require.NoError(t, s.Set(ctx, key, []byte("two")))
	got, err := s.Get(ctx, key)
	require.NoError(t, err)
	require.Equal(t, "two", string(got))
}

package services

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"io"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

type queryStep struct {
	pattern *regexp.Regexp
	columns []string
	rows    [][]driver.Value
	err     error
}

type scriptedDB struct {
	mu    sync.Mutex
	steps []*queryStep
}

func (db *scriptedDB) next(query string) (*queryStep, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	if len(db.steps) == 0 {
		return nil, fmt.Errorf("unexpected query: %s", query)
	}
	step := db.steps[0]
	if !step.pattern.MatchString(query) {
		return nil, fmt.Errorf("unexpected query: %s", query)
	}
	db.steps = db.steps[1:]
	return step, nil
}

func (db *scriptedDB) verifyComplete() error {
	db.mu.Lock()
	defer db.mu.Unlock()
	if len(db.steps) != 0 {
		return fmt.Errorf("unmet expectations: %d", len(db.steps))
	}
	return nil
}

type scriptedDriver struct {
	db *scriptedDB
}

func (d *scriptedDriver) Open(string) (driver.Conn, error) {
	return &scriptedConn{db: d.db}, nil
}

type scriptedConn struct {
	db *scriptedDB
}

func (c *scriptedConn) Prepare(string) (driver.Stmt, error) {
	return nil, errors.New("prepare not supported")
}

func (c *scriptedConn) Close() error { return nil }

func (c *scriptedConn) Begin() (driver.Tx, error) {
	return nil, errors.New("transactions not supported")
}

func (c *scriptedConn) QueryContext(ctx context.Context, query string, _ []driver.NamedValue) (driver.Rows, error) {
	step, err := c.db.next(query)
	if err != nil {
		return nil, err
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	if step.err != nil {
		return nil, step.err
	}
	return &scriptedRows{columns: step.columns, rows: step.rows}, nil
}

type scriptedRows struct {
	columns []string
	rows    [][]driver.Value
	idx     int
}

func (r *scriptedRows) Columns() []string { return r.columns }

func (r *scriptedRows) Close() error { return nil }

func (r *scriptedRows) Next(dest []driver.Value) error {
	if r.idx >= len(r.rows) {
		return io.EOF
	}
	row := r.rows[r.idx]
	for i := range dest {
		dest[i] = nil
	}
	copy(dest, row)
	r.idx++
	return nil
}

func newScriptedGormDB(t *testing.T, steps []*queryStep) (*gorm.DB, *scriptedDB) {
	t.Helper()
	state := &scriptedDB{steps: steps}
	driverName := fmt.Sprintf("scripted_%d", time.Now().UnixNano())
	sql.Register(driverName, &scriptedDriver{db: state})

	sqlDB, err := sql.Open(driverName, "")
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	gormDB, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{})
	require.NoError(t, err)
	return gormDB, state
}

func TestGormLookupSourceMapsRows(t *testing.T) {
	db, state := newScriptedGormDB(t, []*queryStep{
		{
			pattern: regexp.MustCompile("(?i)SELECT \\* FROM `fund_categories` WHERE delete_at IS NULL"),
			columns: []string{"category_id", "category_name", "delete_at"},
			rows: [][]driver.Value{
				{int64(1), "ทุนส่งเสริมการวิจัย", nil},
				{int64(2), "  ", nil},
			},
		},
		{
			pattern: regexp.MustCompile("(?i)SELECT \\* FROM `fund_subcategories` WHERE delete_at IS NULL"),
			columns: []string{"subcategory_id", "category_id", "subcategory_name", "delete_at"},
			rows: [][]driver.Value{
				{int64(10), int64(1), "FUND01 - Research Excellence Grant", nil},
				{int64(11), int64(1), " ทุนนำเสนอผลงาน ", nil},
			},
		},
	})

	lookups, err := NewGormLookupSource(db).LoadLookups(context.Background())
	require.NoError(t, err)
	require.NoError(t, state.verifyComplete())

	assert.Equal(t, map[int]string{1: "ทุนส่งเสริมการวิจัย"}, lookups.Categories)
	assert.Equal(t, map[int]string{
		10: "FUND01 - Research Excellence Grant",
		11: "ทุนนำเสนอผลงาน",
	}, lookups.Subcategories)
}

func TestGormLookupSourceWrapsQueryError(t *testing.T) {
	db, _ := newScriptedGormDB(t, []*queryStep{
		{
			pattern: regexp.MustCompile("fund_categories"),
			err:     errors.New("connection reset"),
		},
	})

	_, err := NewGormLookupSource(db).LoadLookups(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load fund categories")
	assert.Contains(t, err.Error(), "connection reset")
}

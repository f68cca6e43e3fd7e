package datarecording

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"reflect"
	"sort"
	"strings"
)

var (
	// ErrNoRecording is returned when the recording file does not exist.
	ErrNoRecording = errors.New("recording not found")

	// ErrUnmappedTable is returned when a table is queried before MapTable.
	ErrUnmappedTable = errors.New("table is not mapped")
)

// QueryParams selects, orders and pages the rows returned by Query.
type QueryParams struct {
	// Where is a condition without the WHERE keyword, for example
	// "Kind = ? AND EntryKey = ?".
	Where string
	Args  []any

	// OrderBy is a column list without the ORDER BY keywords, for example
	// "Seq DESC".
	OrderBy string

	// Limit caps the number of rows returned. 0 means no cap.
	Limit  int
	Offset int
}

func (p QueryParams) filter() string {
	if p.Where == "" {
		return ""
	}

	return " WHERE " + p.Where
}

func (p QueryParams) page() string {
	var b strings.Builder

	if p.OrderBy != "" {
		b.WriteString(" ORDER BY " + p.OrderBy)
	}

	if p.Limit > 0 {
		fmt.Fprintf(&b, " LIMIT %d", p.Limit)

		if p.Offset > 0 {
			fmt.Fprintf(&b, " OFFSET %d", p.Offset)
		}
	}

	return b.String()
}

// DataReader reads back the tables written by a DataRecorder.
type DataReader interface {
	// MapTable tells the reader which struct the rows of a table decode into.
	MapTable(tableName string, sampleEntry any)

	// ListTables returns the mapped tables in alphabetical order.
	ListTables() []string

	// Query returns pointers to the decoded rows that match the parameters,
	// and the number of rows that match the condition regardless of paging.
	Query(ctx context.Context, tableName string, params QueryParams) (
		results []any,
		totalCount int,
		err error,
	)

	Close() error
}

type sqliteReader struct {
	*sql.DB

	types map[string]reflect.Type
}

// NewReader opens a recording. The ".sqlite3" extension is added if the path
// does not carry it.
func NewReader(path string) (DataReader, error) {
	if !strings.HasSuffix(path, FileExtension) {
		path += FileExtension
	}

	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrNoRecording, path)
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	return NewReaderWithDB(db), nil
}

// NewReaderWithDB creates a DataReader over an open database.
func NewReaderWithDB(db *sql.DB) DataReader {
	return &sqliteReader{
		DB:    db,
		types: make(map[string]reflect.Type),
	}
}

func (r *sqliteReader) MapTable(tableName string, sampleEntry any) {
	r.types[tableName] = reflect.TypeOf(sampleEntry)
}

func (r *sqliteReader) ListTables() []string {
	tables := make([]string, 0, len(r.types))
	for name := range r.types {
		tables = append(tables, name)
	}

	sort.Strings(tables)

	return tables
}

func (r *sqliteReader) Query(
	ctx context.Context,
	tableName string,
	params QueryParams,
) ([]any, int, error) {
	entryType, ok := r.types[tableName]
	if !ok {
		return nil, 0, fmt.Errorf("%w: %s", ErrUnmappedTable, tableName)
	}

	var total int

	err := r.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM "+tableName+params.filter(),
		params.Args...,
	).Scan(&total)
	if err != nil {
		return nil, 0, err
	}

	rows, err := r.QueryContext(ctx,
		"SELECT * FROM "+tableName+params.filter()+params.page(),
		params.Args...,
	)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	results, err := decodeRows(rows, entryType)
	if err != nil {
		return nil, 0, err
	}

	return results, total, nil
}

// decodeRows scans every row into a new struct of the entry type. Columns
// without a matching field are skipped.
func decodeRows(rows *sql.Rows, entryType reflect.Type) ([]any, error) {
	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	var results []any

	for rows.Next() {
		entry := reflect.New(entryType)
		targets := make([]any, len(columns))

		for i, column := range columns {
			field := entry.Elem().FieldByName(column)
			if !field.IsValid() {
				var skipped any
				targets[i] = &skipped

				continue
			}

			targets[i] = field.Addr().Interface()
		}

		if err := rows.Scan(targets...); err != nil {
			return nil, err
		}

		results = append(results, entry.Interface())
	}

	return results, rows.Err()
}

package tracing

import (
	"context"
	"strings"

	"github.com/sarchlab/cachesim/datarecording"
)

// AccessFilter selects the records returned by QueryAccesses. Empty fields
// match everything.
type AccessFilter struct {
	RunID     string
	Component string
	Kind      string
	Key       string

	Limit  int
	Offset int
}

func (f AccessFilter) params() datarecording.QueryParams {
	var (
		conds []string
		args  []any
	)

	add := func(column, value string) {
		if value == "" {
			return
		}

		conds = append(conds, column+" = ?")
		args = append(args, value)
	}

	add("RunID", f.RunID)
	add("Component", f.Component)
	add("Kind", f.Kind)
	add("EntryKey", f.Key)

	return datarecording.QueryParams{
		Where:   strings.Join(conds, " AND "),
		Args:    args,
		OrderBy: "RunID, Seq",
		Limit:   f.Limit,
		Offset:  f.Offset,
	}
}

// QueryAccesses reads back the records an AccessTracer wrote, in the order
// they were recorded. It also returns how many records match the filter
// before paging.
func QueryAccesses(
	ctx context.Context,
	reader datarecording.DataReader,
	filter AccessFilter,
) ([]AccessRecord, int, error) {
	reader.MapTable(AccessTableName, AccessRecord{})

	rows, total, err := reader.Query(ctx, AccessTableName, filter.params())
	if err != nil {
		return nil, 0, err
	}

	records := make([]AccessRecord, 0, len(rows))
	for _, row := range rows {
		records = append(records, *row.(*AccessRecord))
	}

	return records, total, nil
}

package query

import (
	"fmt"

	"github.com/adamavenir/weft/internal/db"
	"github.com/adamavenir/weft/internal/types"
)

// defaultPageSize applies when neither first nor last is given.
const defaultPageSize = 10

// pageArgs is a resolved pagination window: one direction, one bound.
type pageArgs struct {
	limit    int
	backward bool
	bound    *db.KeysetBound
	bounded  bool
}

// resolvePage validates relay-style arguments. First/After paginate
// forward, Last/Before backward; mixing the two directions is a
// validation error.
func resolvePage(page types.Page, order types.OrderBy) (pageArgs, error) {
	forward := page.First != nil || page.After != nil
	backward := page.Last != nil || page.Before != nil
	if forward && backward {
		return pageArgs{}, fmt.Errorf("forward and backward pagination can't be combined: %w", types.ErrValidation)
	}

	args := pageArgs{limit: defaultPageSize, backward: backward}

	count := page.First
	raw := page.After
	if backward {
		count = page.Last
		raw = page.Before
	}
	if count != nil {
		if *count < 0 {
			return pageArgs{}, fmt.Errorf("page size must not be negative: %w", types.ErrValidation)
		}
		args.limit = *count
	}
	if raw != nil {
		bound, err := decodeCursor(*raw, order)
		if err != nil {
			return pageArgs{}, err
		}
		args.bound = bound
		args.bounded = true
	}
	return args, nil
}

// pageInfo assembles PageInfo from a trimmed window. more reports
// whether rows exist past the window in scan direction; a supplied
// bound proves rows exist on the other side.
func pageInfo(order types.OrderBy, rows []types.Post, args pageArgs, more bool) types.PageInfo {
	info := types.PageInfo{}
	if args.backward {
		info.HasPreviousPage = more
		info.HasNextPage = args.bounded
	} else {
		info.HasNextPage = more
		info.HasPreviousPage = args.bounded
	}
	if len(rows) > 0 {
		start := encodeCursor(order, rows[0])
		end := encodeCursor(order, rows[len(rows)-1])
		info.StartCursor = &start
		info.EndCursor = &end
	}
	return info
}

// trimWindow applies the limit+1 probe: rows came back with one extra
// row requested, in scan direction. It trims to the limit, restores
// ascending order for backward scans, and reports whether more rows
// exist past the window.
func trimWindow(rows []types.Post, args pageArgs) ([]types.Post, bool) {
	more := len(rows) > args.limit
	if more {
		rows = rows[:args.limit]
	}
	if args.backward {
		for i, j := 0, len(rows)-1; i < j; i, j = i+1, j-1 {
			rows[i], rows[j] = rows[j], rows[i]
		}
	}
	return rows, more
}

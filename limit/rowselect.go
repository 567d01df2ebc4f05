package limit

import (
	"encoding/json"
	"fmt"

	"github.com/manojoshi/tablelimit/internal"
)

// RowSelect is the page window of one table render. RowEnd is inclusive.
// A page past the end clamps to the last page.
type RowSelect struct {
	page      int
	maxRows   int
	totalRows int
}

// NewRowSelect derives the window. maxRows <= 0 means a single page
// holding every row.
func NewRowSelect(page, maxRows, totalRows int) RowSelect {
	if totalRows < 0 {
		totalRows = 0
	}
	if maxRows <= 0 {
		maxRows = totalRows
	}
	rs := RowSelect{maxRows: maxRows, totalRows: totalRows}
	rs.page = internal.Clamp(page, 1, rs.TotalPages())
	return rs
}

func (rs RowSelect) Page() int      { return rs.page }
func (rs RowSelect) MaxRows() int   { return rs.maxRows }
func (rs RowSelect) TotalRows() int { return rs.totalRows }

// TotalPages is at least 1, even for an empty collection.
func (rs RowSelect) TotalPages() int {
	if rs.maxRows <= 0 || rs.totalRows == 0 {
		return 1
	}
	return (rs.totalRows + rs.maxRows - 1) / rs.maxRows
}

// RowStart is the zero-based index of the first row on the page.
func (rs RowSelect) RowStart() int {
	if rs.totalRows == 0 {
		return 0
	}
	return (rs.page - 1) * rs.maxRows
}

// RowEnd is the zero-based index of the last row on the page, or 0 when
// there are no rows.
func (rs RowSelect) RowEnd() int {
	if rs.totalRows == 0 {
		return 0
	}
	return min(rs.RowStart()+rs.maxRows-1, rs.totalRows-1)
}

// Bounds returns the page as a half-open slice range.
func (rs RowSelect) Bounds() (lo, hi int) {
	if rs.totalRows == 0 {
		return 0, 0
	}
	return rs.RowStart(), rs.RowEnd() + 1
}

// WithPage moves to another page of the same collection.
func (rs RowSelect) WithPage(page int) RowSelect {
	return NewRowSelect(page, rs.maxRows, rs.totalRows)
}

// WithMaxRows changes the page size and keeps the row count.
func (rs RowSelect) WithMaxRows(maxRows int) RowSelect {
	return NewRowSelect(rs.page, maxRows, rs.totalRows)
}

// WithTotalRows recomputes the window for a new row count.
func (rs RowSelect) WithTotalRows(totalRows int) RowSelect {
	return NewRowSelect(rs.page, rs.maxRows, totalRows)
}

func (rs RowSelect) String() string {
	return fmt.Sprintf("page %d/%d rows %d-%d of %d",
		rs.page, rs.TotalPages(), rs.RowStart(), rs.RowEnd(), rs.totalRows)
}

type rowSelectDoc struct {
	Page      int `json:"page"`
	MaxRows   int `json:"maxRows"`
	TotalRows int `json:"totalRows"`
}

func (rs RowSelect) MarshalJSON() ([]byte, error) {
	return json.Marshal(rowSelectDoc{Page: rs.page, MaxRows: rs.maxRows, TotalRows: rs.totalRows})
}

// UnmarshalJSON re-derives the window, so a stored blob can never hold an
// out-of-range page.
func (rs *RowSelect) UnmarshalJSON(b []byte) error {
	var doc rowSelectDoc
	if err := json.Unmarshal(b, &doc); err != nil {
		return err
	}
	*rs = NewRowSelect(doc.Page, doc.MaxRows, doc.TotalRows)
	return nil
}

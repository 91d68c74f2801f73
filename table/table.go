// Copyright 2022 Stock Parfait

// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at

//
//	  http://www.apache.org/licenses/LICENSE-2.0

// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package table renders downloaded records as text or CSV, one row per
// record and one column per selected field.
package table

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/stockparfait/cftc/cot"
	"github.com/stockparfait/cftc/soda"
	"github.com/stockparfait/errors"
	"github.com/stockparfait/iterator"
)

// DefaultFields are the legacy report fields printed when none are selected.
var DefaultFields = []string{
	cot.ReportDateField,
	cot.MarketField,
	"open_interest_all",
	"noncomm_positions_long_all",
	"noncomm_positions_short_all",
	"comm_positions_long_all",
	"comm_positions_short_all",
}

// Cell formats a record value for printing. Missing and null values are
// empty.
func Cell(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	default:
		return fmt.Sprint(x)
	}
}

// Table of records restricted to Fields, in the order they were added.
//
// A typical use:
//
//	t := NewTable("report_date_as_yyyy_mm_dd", "open_interest_all")
//	t.AddReports(reports, markets)
//	err := t.WriteText(os.Stdout, Params{})
type Table struct {
	Fields []string // column fields; also the header
	Rows   [][]string
}

// NewTable creates a new Table with the given fields, or DefaultFields if
// none are given.
func NewTable(fields ...string) *Table {
	if len(fields) == 0 {
		fields = DefaultFields
	}
	return &Table{Fields: fields}
}

// AddRecords adds one row per record.
func (t *Table) AddRecords(records ...soda.Record) {
	for _, r := range records {
		row := make([]string, len(t.Fields))
		for i, f := range t.Fields {
			row[i] = Cell(r[f])
		}
		t.Rows = append(t.Rows, row)
	}
}

// AddReports adds the records of each market in the order of markets, and the
// records of a market in their downloaded order. Repeated markets are added
// once, and markets missing from reports are skipped.
func (t *Table) AddReports(reports cot.Reports, markets []string) {
	seen := make(map[string]bool)
	records := iterator.Reduce[string, []soda.Record](
		iterator.FromSlice(markets), []soda.Record{},
		func(m string, acc []soda.Record) []soda.Record {
			if seen[m] {
				return acc
			}
			seen[m] = true
			return append(acc, reports[m]...)
		})
	t.AddRecords(records...)
}

// Params are parameters for pretty-printing or CSV export of Table data.
type Params struct {
	Rows        int  // max. number of rows to write; 0 = unlimited (default)
	NoHeader    bool // whether to print the header, default - yes
	MaxColWidth int  // for WriteText only; 0 = unlimited, otherwise must be >= 4
}

// rows returns the rows to write, including the header if requested.
func (t *Table) rows(p Params) [][]string {
	var res [][]string
	if !p.NoHeader {
		res = append(res, t.Fields)
	}
	n := len(t.Rows)
	if p.Rows > 0 && p.Rows < n {
		n = p.Rows
	}
	return append(res, t.Rows[:n]...)
}

// WriteCSV writes the entire table to w in CSV format.
func (t *Table) WriteCSV(w io.Writer, p Params) error {
	cw := csv.NewWriter(w)
	for _, row := range t.rows(p) {
		if err := cw.Write(row); err != nil {
			return errors.Annotate(err, "failed to write row")
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return errors.Annotate(err, "failed to flush written rows")
	}
	return nil
}

// WriteText writes the table as a text formatted for ease of reading, with the
// columns right-aligned.
func (t *Table) WriteText(w io.Writer, p Params) error {
	if p.MaxColWidth != 0 && p.MaxColWidth < 4 {
		return errors.Reason("MaxColWidth [%d] must be 0 or >= 4", p.MaxColWidth)
	}
	if len(t.Fields) == 0 {
		return errors.Reason("table has no fields")
	}
	widths := make([]int, len(t.Fields))
	rows := t.rows(p)
	for _, row := range rows {
		for i, s := range row {
			if l := len([]rune(s)); widths[i] < l {
				widths[i] = l
			}
		}
	}
	for i := range widths {
		if p.MaxColWidth > 0 && widths[i] > p.MaxColWidth {
			widths[i] = p.MaxColWidth
		}
	}

	write := func(row []string) error {
		cells := make([]string, len(row))
		for i, s := range row {
			if r := []rune(s); len(r) > widths[i] {
				s = string(r[:widths[i]-2]) + ".."
			}
			cells[i] = fmt.Sprintf("%[2]*[1]s", s, widths[i])
		}
		_, err := fmt.Fprintf(w, "%s\n", strings.Join(cells, " | "))
		return err
	}

	for i, row := range rows {
		if err := write(row); err != nil {
			return errors.Annotate(err, "failed to write row")
		}
		if i == 0 && !p.NoHeader {
			dashes := make([]string, len(widths))
			for j, n := range widths {
				dashes[j] = strings.Repeat("-", n)
			}
			if err := write(dashes); err != nil {
				return errors.Annotate(err, "failed to write header separator")
			}
		}
	}
	return nil
}

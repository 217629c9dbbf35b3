package pipeline

import (
	"strconv"
	"time"

	"cycleload/internal/config"
	"cycleload/internal/metrics"
	"cycleload/internal/model"
	"cycleload/internal/output"
	"cycleload/internal/zoneedge"
)

func powerEdgeColumn(i int) string { return "power_edge_" + strconv.Itoa(i+1) }
func hrEdgeColumn(i int) string    { return "hr_edge_" + strconv.Itoa(i+1) }

// applyZoneEdges runs ZoneEdgeStamper over the full merged table (existing
// and newly-analyzed activities together), anchoring on the activity
// closest to now and backfilling strictly-older rows whose edge columns
// are still empty.
func applyZoneEdges(table output.Table, cfg *config.Config, now time.Time) output.Table {
	idIdx := columnIndex(table.Columns, "id")
	dateIdx := columnIndex(table.Columns, "start_date_local")
	if idIdx < 0 || dateIdx < 0 {
		return table
	}

	current := model.ZoneEdges{
		PowerEdges: metrics.ComputePowerZoneEdges(cfg.FTP, cfg.LT1Power, cfg.LT2Power),
		HREdges:    metrics.ComputeHREdges(cfg.FTHR, cfg.LT1HR, cfg.LT2HR),
	}

	powerCols := ensureEdgeColumns(&table, len(current.PowerEdges), powerEdgeColumn)
	hrCols := ensureEdgeColumns(&table, len(current.HREdges), hrEdgeColumn)

	rows := make([]zoneedge.Row, len(table.Rows))
	for i, r := range table.Rows {
		id, _ := strconv.ParseInt(get(r, idIdx), 10, 64)
		date, err := time.Parse(time.RFC3339, get(r, dateIdx))
		if err != nil {
			date = now
		}
		rows[i] = zoneedge.Row{
			ActivityID: id,
			Date:       date,
			PowerEdges: readEdges(r, powerCols),
			HREdges:    readEdges(r, hrCols),
		}
	}

	stamped := zoneedge.Stamp(rows, current, now)

	for i, s := range stamped {
		writeEdges(table.Rows[i], powerCols, s.PowerEdges)
		writeEdges(table.Rows[i], hrCols, s.HREdges)
	}

	return table
}

// ensureEdgeColumns makes sure the table has n edge columns named by
// nameFn, appending any missing ones (and padding every existing row) so
// index lookups stay valid.
func ensureEdgeColumns(table *output.Table, n int, nameFn func(int) string) []int {
	indices := make([]int, n)
	for i := 0; i < n; i++ {
		indices[i] = ensureColumn(table, nameFn(i))
	}
	return indices
}

// ensureColumn makes sure the table has a column named name, appending it
// (and padding every existing row) if missing, and returns its index.
func ensureColumn(table *output.Table, name string) int {
	idx := columnIndex(table.Columns, name)
	if idx >= 0 {
		return idx
	}
	table.Columns = append(table.Columns, name)
	idx = len(table.Columns) - 1
	for r := range table.Rows {
		table.Rows[r] = append(table.Rows[r], "")
	}
	return idx
}

func get(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return row[idx]
}

func readEdges(row []string, cols []int) []float64 {
	out := make([]float64, len(cols))
	any := false
	for i, c := range cols {
		s := get(row, c)
		if s == "" {
			continue
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			continue
		}
		out[i] = f
		any = true
	}
	if !any {
		return nil
	}
	return out
}

func writeEdges(row []string, cols []int, edges []float64) {
	if edges == nil {
		return
	}
	for i, c := range cols {
		if c >= len(row) || i >= len(edges) {
			continue
		}
		row[c] = strconv.FormatFloat(edges[i], 'f', -1, 64)
	}
}

package export

import (
	"fmt"
	"io"

	"figimapper/internal/resultset"

	"github.com/olekukonko/tablewriter"
)

// RenderSummary prints up to limit identifiers (all when limit <= 0) with their
// key fields, or the error message for unmatched ones.
func RenderSummary(w io.Writer, rs *resultset.ResultSet, limit int) error {
	table := tablewriter.NewWriter(w)
	table.Header(IndexHeader, "figi", "name", "ticker", "exchCode", "securityType", "error")

	keys := rs.Keys()
	if limit > 0 && len(keys) > limit {
		keys = keys[:limit]
	}

	for _, id := range keys {
		e, _ := rs.Get(id)
		if !e.OK() {
			if err := table.Append(id, "", "", "", "", "", e.Err); err != nil {
				return fmt.Errorf("failed to render row %s: %w", id, err)
			}
			continue
		}
		r := e.Record
		if err := table.Append(id, r.FIGI, r.Name, r.Ticker, r.ExchCode, r.SecurityType, ""); err != nil {
			return fmt.Errorf("failed to render row %s: %w", id, err)
		}
	}

	return table.Render()
}

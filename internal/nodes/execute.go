package nodes

import (
	"context"
	"strings"

	"github.com/aretw0/querent/internal/sqltext"
	"github.com/aretw0/querent/pkg/domain"
)

// ExecuteSQL runs the generated statement and stores at most MaxRows rows.
// Statements carrying a denylisted keyword never reach the warehouse.
func (n *Nodes) ExecuteSQL(ctx context.Context, s domain.State) domain.Update {
	if strings.TrimSpace(s.SQLQuery) == "" {
		return domain.Fail("No SQL query to execute.")
	}
	if n.Engine == nil {
		return domain.Fail(sentence(domain.ErrNoWarehouse))
	}

	vetted := sqltext.Vet(s.SQLQuery)
	if !vetted.OK() {
		n.Logger.Warn("query refused", "node", domain.NodeExecuteSQL, "reason", vetted.Reason)
		return domain.Fail(vetted.Reason)
	}

	n.Logger.Debug("executing query", "node", domain.NodeExecuteSQL, "sql", vetted.SQL)
	rows, err := n.Engine.Run(ctx, vetted.SQL)
	if err != nil {
		n.Logger.Error("query failed", "node", domain.NodeExecuteSQL, "error", err)
		return domain.Fail("Failed to execute query: " + err.Error())
	}
	if rows == nil {
		rows = []domain.Row{}
	}
	if len(rows) > n.MaxRows {
		n.Logger.Warn("truncating query results", "node", domain.NodeExecuteSQL, "rows", len(rows), "limit", n.MaxRows)
		if n.OnTruncate != nil {
			n.OnTruncate(len(rows), n.MaxRows)
		}
		rows = rows[:n.MaxRows]
	}
	n.Logger.Debug("query returned", "node", domain.NodeExecuteSQL, "rows", len(rows))
	return domain.Update{QueryResults: &rows}
}

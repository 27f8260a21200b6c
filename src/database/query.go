package database

import (
	"fmt"

	"github.com/alfonmga/hodlbitcoin/src/engine"
	"github.com/alfonmga/hodlbitcoin/src/logger"
	"github.com/alfonmga/hodlbitcoin/src/models"
)

// PriceQuery is the one query this system issues: a full unfiltered read of
// the prices table in dataset order.
const PriceQuery = "SELECT date, price FROM prices;"

// RunQuery executes the query against the bound dataset and materializes the
// whole result at once. A nil handle yields a nil result without error.
// Query failures (malformed SQL, missing table) propagate to the caller, which
// treats them as fatal: there is no fallback data source.
func RunQuery(h *engine.DBHandle, query string) ([]models.PriceRow, error) {
	if h == nil {
		return nil, nil
	}
	logger.L.Debug("Running dataset query", "query", query)

	rows, err := h.DB.Query(query)
	if err != nil {
		return nil, fmt.Errorf("executing query %q: %w", query, err)
	}
	defer rows.Close()

	var result []models.PriceRow
	for rows.Next() {
		var r models.PriceRow
		if err := rows.Scan(&r.Date, &r.Price); err != nil {
			return nil, fmt.Errorf("scanning price row: %w", err)
		}
		result = append(result, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating price rows: %w", err)
	}

	logger.L.Info("Dataset query complete", "rows", len(result))
	return result, nil
}

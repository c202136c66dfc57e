package postgresql

import (
	"context"
	"fmt"

	"github.com/cmlabs-hris/hris-leave-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

// execCountingBatch sends batch and sums the affected rows of every statement.
func execCountingBatch(ctx context.Context, q database.Querier, batch *pgx.Batch) (int, error) {
	results := q.SendBatch(ctx, batch)
	defer results.Close()

	total := 0
	for i := 0; i < batch.Len(); i++ {
		tag, err := results.Exec()
		if err != nil {
			return total, fmt.Errorf("batch statement %d: %w", i, err)
		}
		total += int(tag.RowsAffected())
	}
	return total, nil
}

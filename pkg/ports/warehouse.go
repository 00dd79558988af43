package ports

import (
	"context"

	"github.com/aretw0/querent/pkg/domain"
)

// QueryEngine runs a SQL statement and materializes its rows.
type QueryEngine interface {
	Run(ctx context.Context, sql string) ([]domain.Row, error)
}

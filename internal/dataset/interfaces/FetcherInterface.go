package interfaces

import (
	"context"

	"pdistats/internal/models"
	"pdistats/internal/structures"
)

// FetcherInterface pulls one remote source and returns it as a table.
type FetcherInterface interface {
	Fetch(ctx context.Context, src structures.SourceConfig) (*models.Table, error)
}

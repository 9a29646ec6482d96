package store

import (
	"context"

	"safaigo/pkg/model"
)

// BinStore handles collection-point persistence.
type BinStore interface {
	GetBin(ctx context.Context, id string) (*model.Bin, error)
	SaveBin(ctx context.Context, bin *model.Bin) error
	DeleteBin(ctx context.Context, id string) error
	ListBins(ctx context.Context) ([]*model.Bin, error)
	// BinsInBounds returns the bins within a lat/lon window, used to
	// pre-filter before exact distance ranking.
	BinsInBounds(ctx context.Context, minLat, maxLat, minLon, maxLon float64) ([]*model.Bin, error)
	CountBins(ctx context.Context) (int, error)
}

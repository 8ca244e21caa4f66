package app

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/kailas-cloud/concierge/internal/domain"
	"github.com/kailas-cloud/concierge/internal/usecase/retrieval"
)

// ProbedCollection is a searchable collection that can report whether its index exists.
type ProbedCollection interface {
	retrieval.Collection
	Exists(ctx context.Context) (bool, error)
}

// SelectContext picks the deployment mode at startup: the combined collection
// when its index exists, otherwise whichever of the split collections exist.
func SelectContext(ctx context.Context, combined, business, event ProbedCollection, logger *zap.Logger) (*retrieval.Context, error) {
	ok, err := combined.Exists(ctx)
	if err != nil {
		return nil, fmt.Errorf("probe %s: %w", combined.Name(), err)
	}
	if ok {
		logger.Info("Using combined collection", zap.String("collection", combined.Name()))
		return retrieval.NewCombined(combined)
	}

	biz, err := present(ctx, business)
	if err != nil {
		return nil, err
	}
	evt, err := present(ctx, event)
	if err != nil {
		return nil, err
	}
	if biz == nil && evt == nil {
		return nil, fmt.Errorf("no index for %s, %s or %s: %w",
			combined.Name(), business.Name(), event.Name(), domain.ErrCollectionNotFound)
	}
	if evt == nil {
		logger.Warn("Event collection not found, serving businesses only", zap.String("collection", event.Name()))
	}
	if biz == nil {
		logger.Warn("Business collection not found, serving events only", zap.String("collection", business.Name()))
	}

	logger.Info("Using split collections",
		zap.String("business", business.Name()),
		zap.String("event", event.Name()),
	)
	return retrieval.NewSplit(biz, evt)
}

// present returns c when its index exists and an untyped nil otherwise.
func present(ctx context.Context, c ProbedCollection) (retrieval.Collection, error) {
	ok, err := c.Exists(ctx)
	if err != nil {
		return nil, fmt.Errorf("probe %s: %w", c.Name(), err)
	}
	if !ok {
		return nil, nil
	}
	return c, nil
}

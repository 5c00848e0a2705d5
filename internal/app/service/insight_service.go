package service

import (
	"context"
	"sync"

	"github.com/ikkim/shopgenie-backend/internal/app/model"
	"github.com/ikkim/shopgenie-backend/pkg/logger"
)

// InsightLoader fetches product insights for the product currently on screen.
// Starting a lookup cancels the one before it, and a lookup that was
// overtaken reports stale instead of its result.
type InsightLoader interface {
	Load(ctx context.Context, product model.Product) (insight model.ProductInsight, current bool)
}

type insightLoader struct {
	advice AdviceService

	mu     sync.Mutex
	seq    uint64
	cancel context.CancelFunc
}

func NewInsightLoader(advice AdviceService) InsightLoader {
	return &insightLoader{advice: advice}
}

func (l *insightLoader) Load(ctx context.Context, product model.Product) (model.ProductInsight, bool) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	l.mu.Lock()
	if l.cancel != nil {
		l.cancel()
	}
	l.seq++
	seq := l.seq
	l.cancel = cancel
	l.mu.Unlock()

	html := l.advice.GetInsight(ctx, product.Name, product.Description)

	l.mu.Lock()
	defer l.mu.Unlock()
	if seq != l.seq {
		logger.Debug("Discarding stale insight", map[string]interface{}{
			"product_id": product.ID,
		})
		return model.ProductInsight{}, false
	}
	l.cancel = nil
	return model.ProductInsight{ProductID: product.ID, HTML: html}, true
}

package textnorm

import (
	"context"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/guillametlucia/relevant-document-retrieval/internal/config"
	"github.com/guillametlucia/relevant-document-retrieval/internal/pkg/logger"
)

// Pipeline normalizes batches of raw text across a bounded worker pool.
// The interface is synchronous batch-in/batch-out: input order is
// preserved in the output regardless of worker scheduling.
type Pipeline struct {
	norm      *Normalizer
	cache     Cache
	workers   int
	batchSize int
	log       *logger.Logger
	progress  *rate.Limiter
}

// NewPipeline creates a normalization pipeline. cache may be nil to
// disable caching.
func NewPipeline(norm *Normalizer, cache Cache, cfg config.NormalizeConfig, log *logger.Logger) *Pipeline {
	workers := cfg.Workers
	if workers < 1 {
		workers = 1
	}
	batchSize := cfg.BatchSize
	if batchSize < 1 {
		batchSize = 256
	}

	return &Pipeline{
		norm:      norm,
		cache:     cache,
		workers:   workers,
		batchSize: batchSize,
		log:       log,
		progress:  rate.NewLimiter(rate.Limit(1), 1), // at most one progress line per second
	}
}

// NormalizeBatch normalizes all texts, returning one token sequence per
// input in input order.
func (p *Pipeline) NormalizeBatch(ctx context.Context, texts []string) ([][]string, error) {
	results := make([][]string, len(texts))
	if len(texts) == 0 {
		return results, nil
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(p.workers)

	done := 0
	for start := 0; start < len(texts); start += p.batchSize {
		end := start + p.batchSize
		if end > len(texts) {
			end = len(texts)
		}

		start, end := start, end
		g.Go(func() error {
			for i := start; i < end; i++ {
				select {
				case <-ctx.Done():
					return ctx.Err()
				default:
				}

				results[i] = p.normalizeOne(ctx, texts[i])
			}
			return nil
		})

		done = end
		if p.log != nil && p.progress.Allow() {
			p.log.Debug("normalizing text", "scheduled", done, "total", len(texts))
		}
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	if p.log != nil {
		p.log.Info("normalized batch", "texts", len(texts))
	}
	return results, nil
}

func (p *Pipeline) normalizeOne(ctx context.Context, text string) []string {
	if p.cache != nil {
		if tokens, ok := p.cache.Get(ctx, text); ok {
			return tokens
		}
	}

	tokens := p.norm.Normalize(text)

	if p.cache != nil {
		p.cache.Set(ctx, text, tokens)
	}
	return tokens
}

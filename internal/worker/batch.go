package worker

import (
	"context"
	"sort"

	"github.com/culthera/enrich/internal/model"
)

// Enhancer defines the interface for enriching a single metadata object.
type Enhancer interface {
	EnhanceObject(ctx context.Context, obj model.Object) (*model.EnhancedRecord, error)
}

// EnhanceJob represents one object enhancement job.
type EnhanceJob struct {
	Index    int
	Object   model.Object
	Enhancer Enhancer
}

// Execute executes the enhancement job.
func (j *EnhanceJob) Execute(ctx context.Context) Result {
	record, err := j.Enhancer.EnhanceObject(ctx, j.Object)
	return &EnhanceResult{
		Index:    j.Index,
		ObjectID: j.Object.ID(),
		Record:   record,
		Error:    err,
	}
}

// EnhanceResult represents the result of an enhancement job.
type EnhanceResult struct {
	Index    int
	ObjectID string
	Record   *model.EnhancedRecord
	Error    error
}

// GetError returns the error from the enhancement result.
func (r *EnhanceResult) GetError() error {
	return r.Error
}

// BatchProcessor enhances multiple objects concurrently.
type BatchProcessor struct {
	enhancer    Enhancer
	concurrency int
}

// NewBatchProcessor creates a new batch processor.
func NewBatchProcessor(enhancer Enhancer, concurrency int) *BatchProcessor {
	return &BatchProcessor{
		enhancer:    enhancer,
		concurrency: concurrency,
	}
}

// ProcessObjects enhances all objects and returns results in feed order.
func (b *BatchProcessor) ProcessObjects(ctx context.Context, objects []model.Object) []*EnhanceResult {
	if len(objects) == 0 {
		return []*EnhanceResult{}
	}

	pool := NewPool(b.concurrency)
	pool.Start()

	// Submit from a goroutine so result collection keeps the channels
	// draining for feeds larger than the pool's buffers.
	go func() {
		for i, obj := range objects {
			pool.Submit(&EnhanceJob{
				Index:    i,
				Object:   obj,
				Enhancer: b.enhancer,
			})
		}
		pool.Close()
	}()

	results := pool.Wait()

	enhanceResults := make([]*EnhanceResult, 0, len(results))
	for _, result := range results {
		enhanceResults = append(enhanceResults, result.(*EnhanceResult))
	}

	// Pool completion order is nondeterministic; restore feed order.
	sort.Slice(enhanceResults, func(a, b int) bool {
		return enhanceResults[a].Index < enhanceResults[b].Index
	})

	return enhanceResults
}

package service

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"

	categoryservice "promptstore-backend/internal/domains/category/service"
	"promptstore-backend/internal/domains/prompt/model"
	"promptstore-backend/internal/domains/prompt/repository"
)

// PublishService moves a batch's publishable rows into the backend store.
// Records are created in fixed-size waves with one goroutine per record, so a
// rejected record never blocks or rolls back its siblings.
type PublishService struct {
	batch     *BatchService
	prompts   repository.PromptRepository
	registry  *categoryservice.Registry
	stream    repository.ChangeStream
	batchSize int
}

// NewPublishService - Constructor
func NewPublishService(
	batch *BatchService,
	prompts repository.PromptRepository,
	registry *categoryservice.Registry,
	stream repository.ChangeStream,
	batchSize int,
) *PublishService {
	if batchSize <= 0 {
		batchSize = 5
	}
	return &PublishService{
		batch:     batch,
		prompts:   prompts,
		registry:  registry,
		stream:    stream,
		batchSize: batchSize,
	}
}

// Publish sends the session's publishable rows (optionally only the selected
// ones) to the backend with the requested target status. Rows that succeed
// are removed from the batch; failures stay behind with their results so the
// caller can retry them.
func (s *PublishService) Publish(ctx context.Context, session string, req model.PublishRequest) (*model.PublishSummary, model.BatchDTO, error) {
	rowIDs, records, err := s.batch.SnapshotForPublish(ctx, session, req.SelectedOnly, req.TargetStatus)
	if err != nil {
		return nil, model.BatchDTO{}, err
	}

	createdCategories := s.ensureCategories(ctx, records)

	summary := &model.PublishSummary{
		Results: make([]model.PublishResult, len(records)),
	}

	for start := 0; start < len(records); start += s.batchSize {
		end := start + s.batchSize
		if end > len(records) {
			end = len(records)
		}

		var wg sync.WaitGroup
		for i := start; i < end; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				summary.Results[i] = s.publishOne(ctx, i, rowIDs[i], records[i])
			}(i)
		}
		wg.Wait()
	}

	for _, result := range summary.Results {
		if result.Success {
			summary.Succeeded++
		} else {
			summary.Failed++
		}
	}

	// One invalidation per publish run is enough: the next registry read
	// re-derives names and counts in a single query.
	if summary.Succeeded > 0 || createdCategories > 0 {
		s.registry.Invalidate(ctx)
	}

	dto, err := s.batch.RemoveRows(ctx, session, summary.SucceededRowIDs())
	if err != nil {
		return summary, model.BatchDTO{}, err
	}

	log.Info().
		Str("session", session).
		Int("succeeded", summary.Succeeded).
		Int("failed", summary.Failed).
		Int("categories_created", createdCategories).
		Msg("publish run finished")
	return summary, dto, nil
}

// publishOne creates one record and emits its change event. The event is
// best-effort: a dead stream does not fail the publish.
func (s *PublishService) publishOne(ctx context.Context, index int, rowID string, record model.PromptRecord) model.PublishResult {
	result := model.PublishResult{
		Index: index,
		RowID: rowID,
		Title: record.Title,
	}

	created, err := s.prompts.CreateOne(ctx, &record)
	if err != nil {
		log.Warn().Str("title", record.Title).Err(err).Msg("record publish failed")
		result.Error = err.Error()
		return result
	}
	result.Success = true

	if err := s.stream.Publish(ctx, model.ChangeEvent{Kind: model.EventInsert, Record: *created}); err != nil {
		log.Warn().Str("id", created.ID).Err(err).Msg("change event emit failed")
	}
	return result
}

// ensureCategories creates registry entries for categories the records use
// that the registry does not know yet. Failures are logged and skipped; a
// record may publish into a category whose metadata creation failed.
func (s *PublishService) ensureCategories(ctx context.Context, records []model.PromptRecord) int {
	known := s.registry.Names(ctx)

	candidates := make([]string, 0, len(records))
	for _, record := range records {
		candidates = append(candidates, record.Category)
	}

	// Also backfill categories already carried by stored prompts. A category
	// whose metadata creation failed on an earlier run heals here instead of
	// staying a dangling name forever.
	inUse, err := s.prompts.CategoriesInUse(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("categories-in-use lookup failed, skipping backfill")
	}
	candidates = append(candidates, inUse...)

	seen := make(map[string]bool)
	created := 0
	for _, name := range candidates {
		if name == "" || known[name] || seen[name] {
			continue
		}
		seen[name] = true

		wasCreated, err := s.registry.EnsureExists(ctx, name)
		if err != nil {
			log.Warn().Str("category", name).Err(err).Msg("category metadata creation failed")
			continue
		}
		if wasCreated {
			created++
			log.Info().Str("category", name).Msg("created category metadata")
		}
	}
	return created
}

package service

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"

	"promptstore-backend/internal/domains/moderation/model"
	promptmodel "promptstore-backend/internal/domains/prompt/model"
	promptrepo "promptstore-backend/internal/domains/prompt/repository"
)

// seedLimit caps how many pending records the initial listing pulls.
const seedLimit = 500

// Reconciler keeps the moderation queue consistent with the prompt
// collection: it seeds from a backend listing, then folds live change events
// into the queue as they arrive.
type Reconciler struct {
	prompts promptrepo.PromptRepository
	stream  promptrepo.ChangeStream

	mu    sync.RWMutex
	queue *model.Queue
	stop  func()
}

// NewReconciler - Constructor
func NewReconciler(prompts promptrepo.PromptRepository, stream promptrepo.ChangeStream) *Reconciler {
	return &Reconciler{
		prompts: prompts,
		stream:  stream,
		queue:   model.NewQueue(nil),
	}
}

// Start seeds the queue and begins consuming the change stream. Events
// published between the subscribe and the seed listing are reapplied over the
// seed, which the idempotent reducer absorbs.
func (r *Reconciler) Start(ctx context.Context) error {
	events, stop, err := r.stream.Subscribe(ctx)
	if err != nil {
		return err
	}

	pending, err := r.prompts.ListByStatus(ctx, promptmodel.StatusPending, seedLimit)
	if err != nil {
		stop()
		return err
	}

	r.mu.Lock()
	r.queue = model.NewQueue(pending)
	r.stop = stop
	r.mu.Unlock()

	go r.consume(events)

	log.Info().Int("pending", len(pending)).Msg("moderation reconciler started")
	return nil
}

func (r *Reconciler) consume(events <-chan promptmodel.ChangeEvent) {
	for event := range events {
		r.mu.Lock()
		r.queue.Apply(event)
		r.mu.Unlock()
		log.Debug().Str("kind", event.Kind).Str("id", event.Record.ID).Msg("moderation queue updated")
	}
}

// Stop ends stream consumption. The queue keeps its last state.
func (r *Reconciler) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.stop != nil {
		r.stop()
		r.stop = nil
	}
}

// Snapshot returns the current queue for display.
func (r *Reconciler) Snapshot() model.QueueDTO {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return model.QueueToDTO(r.queue)
}

// SetSelection applies a moderator's selection request.
func (r *Reconciler) SetSelection(req promptmodel.SelectionRequest) (model.QueueDTO, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if req.SelectAll != nil {
		r.queue.SetSelectAll(*req.SelectAll)
	} else if !r.queue.SetSelected(req.RowID, req.Selected) {
		return model.QueueDTO{}, promptmodel.ErrRowNotFound
	}
	return model.QueueToDTO(r.queue), nil
}

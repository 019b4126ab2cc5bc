package service

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"promptstore-backend/internal/config"
	"promptstore-backend/internal/domains/prompt/model"
	"promptstore-backend/internal/domains/prompt/repository"
)

// BatchService owns the in-progress upload batch of every ingestion session.
// All batch mutations go through its mutex; rows, selection and the draft
// snapshot never change concurrently.
type BatchService struct {
	drafts   repository.DraftRepository
	detector *RatioDetector
	cfg      config.IngestConfig

	mu       sync.Mutex
	sessions map[string]*sessionState
}

// sessionState is the per-session slice of the service: the live batch, the
// single debounced autosave slot, and a detection sequence per row so a stale
// ratio result can never overwrite a newer one.
type sessionState struct {
	batch     *model.UploadBatch
	autosave  *time.Timer
	detectSeq map[string]int
}

// NewBatchService - Constructor
func NewBatchService(drafts repository.DraftRepository, detector *RatioDetector, cfg config.IngestConfig) *BatchService {
	return &BatchService{
		drafts:   drafts,
		detector: detector,
		cfg:      cfg,
		sessions: make(map[string]*sessionState),
	}
}

// state returns the session's live state, restoring a persisted draft on the
// first touch. Restoring never triggers an autosave: the snapshot just loaded
// is already the stored one.
func (s *BatchService) state(ctx context.Context, session string) (*sessionState, error) {
	if session == "" {
		return nil, model.ErrSessionRequired
	}
	if st, ok := s.sessions[session]; ok {
		return st, nil
	}

	st := &sessionState{
		batch:     model.NewUploadBatch(),
		detectSeq: make(map[string]int),
	}

	stored, err := s.drafts.Load(ctx, session)
	if err != nil {
		log.Error().Str("session", session).Err(err).Msg("draft restore failed, starting empty")
	} else if stored != nil {
		st.batch = stored
		log.Info().Str("session", session).Int("rows", stored.Len()).Msg("restored draft batch")
	}
	s.sessions[session] = st

	// A crash mid-detection leaves rows flagged as detecting. Re-run those
	// so they converge instead of spinning forever.
	for _, row := range st.batch.Rows {
		if row.IsDetectingRatio {
			s.startDetection(session, st, row)
		}
	}
	return st, nil
}

// IngestFile parses an uploaded file, validates and normalizes every row, and
// appends the rows to the session's batch. Valid and invalid rows are both
// kept; ratio detection runs in the background per row.
func (s *BatchService) IngestFile(ctx context.Context, session string, data []byte, format, targetStatus string) (model.BatchDTO, error) {
	records, err := ParseRecords(data, format, s.cfg.MaxFileBytes, s.cfg.MaxRows)
	if err != nil {
		return model.BatchDTO{}, err
	}
	targetStatus = model.CanonicalStatus(targetStatus)

	s.mu.Lock()
	defer s.mu.Unlock()

	st, err := s.state(ctx, session)
	if err != nil {
		return model.BatchDTO{}, err
	}
	if st.batch.Len()+len(records) > s.cfg.MaxRows {
		return model.BatchDTO{}, model.ErrTooManyRows
	}

	rows := make([]*model.BatchRow, 0, len(records))
	for _, raw := range records {
		rows = append(rows, s.buildRow(raw, targetStatus))
	}
	st.batch.AddRows(rows)

	// Detection runs for every row with an image, valid or not. A row whose
	// other fields are fixed later keeps the ratio resolved here.
	for _, row := range rows {
		if row.ImageReference() != "" {
			s.startDetection(session, st, row)
		}
	}

	s.scheduleAutosave(session, st)
	return model.BatchToDTO(st.batch), nil
}

// buildRow runs validation and normalization for one raw record. The ratio
// starts at the default; detection updates it later if an image is reachable.
func (s *BatchService) buildRow(raw model.RawRecord, targetStatus string) *model.BatchRow {
	if errs := ValidateRecord(raw); len(errs) > 0 {
		return model.NewInvalidRow(raw, errs)
	}
	return model.NewValidRow(raw, NormalizeRecord(raw, model.DefaultRatio, targetStatus))
}

// startDetection marks the row as detecting and resolves its ratio in the
// background. Only the latest detection per row may apply its result.
func (s *BatchService) startDetection(session string, st *sessionState, row *model.BatchRow) {
	st.detectSeq[row.ID]++
	seq := st.detectSeq[row.ID]
	row.IsDetectingRatio = true
	url := row.ImageReference()

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.cfg.RatioTimeout+time.Second)
		defer cancel()
		ratio := s.detector.DetectFromURL(ctx, url)

		s.mu.Lock()
		defer s.mu.Unlock()

		current, ok := s.sessions[session]
		if !ok || current != st || st.detectSeq[row.ID] != seq {
			return
		}
		live := st.batch.Row(row.ID)
		if live == nil {
			delete(st.detectSeq, row.ID)
			return
		}
		live.ImageRatio = ratio
		live.IsDetectingRatio = false
		if live.Normalized != nil {
			live.Normalized.ImageRatio = ratio
		}
		s.scheduleAutosave(session, st)
	}()
}

// Snapshot returns the current batch for display.
func (s *BatchService) Snapshot(ctx context.Context, session string) (model.BatchDTO, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, err := s.state(ctx, session)
	if err != nil {
		return model.BatchDTO{}, err
	}
	return model.BatchToDTO(st.batch), nil
}

// EditRow replaces a row's raw fields and re-runs validation and normalization
// synchronously, so the caller's response already reflects the new validity.
// Ratio detection restarts only when the image reference actually changed.
func (s *BatchService) EditRow(ctx context.Context, session, rowID string, fields model.RawRecord) (model.BatchDTO, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, err := s.state(ctx, session)
	if err != nil {
		return model.BatchDTO{}, err
	}
	old := st.batch.Row(rowID)
	if old == nil {
		return model.BatchDTO{}, model.ErrRowNotFound
	}

	targetStatus := model.StatusDraft
	if old.Normalized != nil {
		targetStatus = old.Normalized.Status
	}

	updated := s.buildRow(fields, targetStatus)
	updated.ID = old.ID

	sameImage := updated.ImageReference() == old.ImageReference()
	if sameImage {
		updated.ImageRatio = old.ImageRatio
		updated.IsDetectingRatio = old.IsDetectingRatio
		if updated.Normalized != nil {
			updated.Normalized.ImageRatio = old.ImageRatio
		}
	}

	st.batch.ReplaceRow(updated)
	if !sameImage && updated.ImageReference() != "" {
		s.startDetection(session, st, updated)
	}

	s.scheduleAutosave(session, st)
	return model.BatchToDTO(st.batch), nil
}

// DeleteRow removes one row from the batch and from the persisted draft.
func (s *BatchService) DeleteRow(ctx context.Context, session, rowID string) (model.BatchDTO, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, err := s.state(ctx, session)
	if err != nil {
		return model.BatchDTO{}, err
	}
	if !st.batch.RemoveRow(rowID) {
		return model.BatchDTO{}, model.ErrRowNotFound
	}
	delete(st.detectSeq, rowID)

	// Drop the row from the stored snapshot right away so a crash inside the
	// debounce window cannot resurrect it. The autosave reconciles the rest.
	if err := s.drafts.DeleteRow(ctx, session, rowID); err != nil {
		log.Warn().Str("session", session).Str("row", rowID).Err(err).Msg("draft row delete failed")
	}

	s.scheduleAutosave(session, st)
	return model.BatchToDTO(st.batch), nil
}

// SetSelection applies a selection request: one row, or select-all.
func (s *BatchService) SetSelection(ctx context.Context, session string, req model.SelectionRequest) (model.BatchDTO, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, err := s.state(ctx, session)
	if err != nil {
		return model.BatchDTO{}, err
	}

	if req.SelectAll != nil {
		st.batch.SetSelectAll(*req.SelectAll)
	} else if !st.batch.SetSelected(req.RowID, req.Selected) {
		if st.batch.Row(req.RowID) == nil {
			return model.BatchDTO{}, model.ErrRowNotFound
		}
		// Selecting an invalid row is silently ignored; the response shows
		// the selection unchanged.
	}

	s.scheduleAutosave(session, st)
	return model.BatchToDTO(st.batch), nil
}

// ClearBatch discards the session's batch and its persisted draft.
func (s *BatchService) ClearBatch(ctx context.Context, session string) error {
	if session == "" {
		return model.ErrSessionRequired
	}

	s.mu.Lock()
	if st, ok := s.sessions[session]; ok && st.autosave != nil {
		st.autosave.Stop()
	}
	delete(s.sessions, session)
	s.mu.Unlock()

	return s.drafts.Clear(ctx, session)
}

// SnapshotForPublish returns value copies of the publishable rows, in batch
// order. Copies keep the publisher race-free against background ratio updates.
// The status of each copy is re-resolved against the publish-time target: an
// explicit status in the source row wins, everything else goes to the target.
func (s *BatchService) SnapshotForPublish(ctx context.Context, session string, selectedOnly bool, targetStatus string) ([]string, []model.PromptRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, err := s.state(ctx, session)
	if err != nil {
		return nil, nil, err
	}

	rows := st.batch.ValidRows()
	if selectedOnly {
		rows = st.batch.SelectedValidRows()
	}
	if len(rows) == 0 {
		return nil, nil, model.ErrNothingToDo
	}

	ids := make([]string, 0, len(rows))
	records := make([]model.PromptRecord, 0, len(rows))
	for _, row := range rows {
		record := *row.Normalized
		if raw := row.Raw.StringField(model.FieldStatus); raw != "" && model.IsValidStatus(raw) {
			record.Status = model.CanonicalStatus(raw)
		} else {
			record.Status = model.CanonicalStatus(targetStatus)
		}
		ids = append(ids, row.ID)
		records = append(records, record)
	}
	return ids, records, nil
}

// RemoveRows drops the given rows (the ones that published successfully) and
// persists the reduced batch immediately, skipping the debounce.
func (s *BatchService) RemoveRows(ctx context.Context, session string, rowIDs []string) (model.BatchDTO, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, err := s.state(ctx, session)
	if err != nil {
		return model.BatchDTO{}, err
	}
	for _, id := range rowIDs {
		st.batch.RemoveRow(id)
		delete(st.detectSeq, id)
	}

	if st.autosave != nil {
		st.autosave.Stop()
		st.autosave = nil
	}
	if err := s.drafts.Save(ctx, session, st.batch); err != nil {
		log.Error().Str("session", session).Err(err).Msg("draft save after publish failed")
	}
	return model.BatchToDTO(st.batch), nil
}

// scheduleAutosave (re)arms the session's single autosave slot. Must be called
// with the mutex held. A burst of edits collapses into one write after the
// delay; a failed save is logged and dropped, never surfaced to the editor.
func (s *BatchService) scheduleAutosave(session string, st *sessionState) {
	if st.autosave != nil {
		st.autosave.Stop()
	}
	st.autosave = time.AfterFunc(s.cfg.AutosaveDelay, func() {
		s.mu.Lock()
		defer s.mu.Unlock()

		current, ok := s.sessions[session]
		if !ok || current != st {
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.drafts.Save(ctx, session, st.batch); err != nil {
			log.Error().Str("session", session).Err(err).Msg("draft autosave failed")
		}
	})
}

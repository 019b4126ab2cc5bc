package model

// ========================================
// PUBLISH RESULT (Response)
// ========================================

// PublishResult reports the outcome for one attempted record. Index is the
// position in the slice handed to the publisher, so callers can correlate a
// failure back to its batch row.
type PublishResult struct {
	Success bool   `json:"success"`
	Index   int    `json:"index"`
	RowID   string `json:"row_id"`
	Title   string `json:"title"`
	Error   string `json:"error,omitempty"`
}

// PublishSummary is the aggregate outcome returned to the caller.
type PublishSummary struct {
	Succeeded int             `json:"succeeded"`
	Failed    int             `json:"failed"`
	Results   []PublishResult `json:"results"`
}

// SucceededRowIDs returns the batch row IDs that published successfully.
func (s *PublishSummary) SucceededRowIDs() []string {
	var ids []string
	for _, r := range s.Results {
		if r.Success {
			ids = append(ids, r.RowID)
		}
	}
	return ids
}

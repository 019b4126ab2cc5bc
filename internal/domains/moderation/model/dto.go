package model

import (
	promptmodel "promptstore-backend/internal/domains/prompt/model"
)

// QueueDTO is the wire form of the moderation queue.
type QueueDTO struct {
	Items    []promptmodel.PromptRecord `json:"items"`
	Selected []string                   `json:"selected"`
	Total    int                        `json:"total"`
}

// QueueToDTO copies the queue for HTTP responses; the reconciler keeps
// mutating the original.
func QueueToDTO(q *Queue) QueueDTO {
	dto := QueueDTO{
		Items:    append([]promptmodel.PromptRecord(nil), q.Items...),
		Selected: make([]string, 0, len(q.Selected)),
		Total:    q.Len(),
	}
	for _, item := range q.Items {
		if q.Selected[item.ID] {
			dto.Selected = append(dto.Selected, item.ID)
		}
	}
	return dto
}

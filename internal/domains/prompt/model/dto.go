package model

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// ========================================
// REQUEST DTOs
// ========================================

// EditRowRequest carries a full replacement of one row's raw fields.
type EditRowRequest struct {
	Fields RawRecord `json:"fields" binding:"required"`
}

func (r EditRowRequest) Validate() error {
	return validation.Validate(map[string]interface{}(r.Fields),
		validation.Required.Error("fields are required"),
	)
}

// SelectionRequest toggles row selection, or select-all when RowID is empty.
type SelectionRequest struct {
	RowID     string `json:"row_id"`
	Selected  bool   `json:"selected"`
	SelectAll *bool  `json:"select_all,omitempty"`
}

func (r SelectionRequest) Validate() error {
	if r.SelectAll != nil {
		return nil
	}
	return validation.ValidateStruct(&r,
		validation.Field(&r.RowID, validation.Required.Error("row_id is required")),
	)
}

// PublishRequest publishes the whole batch or only the selected rows. The same
// pipeline serves "publish now", "send to review" and "save as draft"; only
// TargetStatus differs.
type PublishRequest struct {
	SelectedOnly bool   `json:"selected_only"`
	TargetStatus string `json:"target_status"`
}

func (r PublishRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.TargetStatus,
			validation.Required.Error("target_status is required"),
			validation.By(func(value interface{}) error {
				s, _ := value.(string)
				if !IsValidStatus(s) {
					return validation.NewError("invalid_status", "target_status must be published, pending or draft")
				}
				return nil
			}),
		),
	)
}

// ========================================
// RESPONSE DTOs
// ========================================

// RowDTO is the wire form of one batch row.
type RowDTO struct {
	ID               string        `json:"id"`
	Raw              RawRecord     `json:"raw"`
	Normalized       *PromptRecord `json:"normalized,omitempty"`
	ValidationErrors []string      `json:"validation_errors,omitempty"`
	ImageRatio       string        `json:"image_ratio"`
	IsDetectingRatio bool          `json:"is_detecting_ratio"`
}

// BatchDTO is the wire form of the whole batch.
type BatchDTO struct {
	Rows      []RowDTO `json:"rows"`
	Selected  []string `json:"selected"`
	SelectAll bool     `json:"select_all"`
	TotalRows int      `json:"total_rows"`
	ValidRows int      `json:"valid_rows"`
}

// BatchToDTO maps an UploadBatch for HTTP responses.
func BatchToDTO(b *UploadBatch) BatchDTO {
	dto := BatchDTO{
		Rows:      make([]RowDTO, 0, len(b.Rows)),
		Selected:  make([]string, 0, len(b.Selected)),
		SelectAll: b.SelectAll,
		TotalRows: len(b.Rows),
	}
	for _, row := range b.Rows {
		if row.IsValid() {
			dto.ValidRows++
		}
		dto.Rows = append(dto.Rows, RowDTO{
			ID:               row.ID,
			Raw:              row.Raw,
			Normalized:       row.Normalized,
			ValidationErrors: row.ValidationErrors,
			ImageRatio:       row.ImageRatio,
			IsDetectingRatio: row.IsDetectingRatio,
		})
	}
	for _, row := range b.Rows {
		if b.Selected[row.ID] {
			dto.Selected = append(dto.Selected, row.ID)
		}
	}
	return dto
}

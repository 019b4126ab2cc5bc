package model

// Change-stream event kinds for the prompt collection.
const (
	EventInsert = "insert"
	EventUpdate = "update"
	EventDelete = "delete"
)

// ChangeEvent is one live mutation of the prompt collection, as delivered to
// stream subscribers. Record is a full snapshot, not a diff.
type ChangeEvent struct {
	Kind   string       `json:"kind"`
	Record PromptRecord `json:"record"`
}

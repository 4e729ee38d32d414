package dto

import "time"

// Status event levels pushed to the UI over the websocket. The client
// renders success/error as a transient banner and clears it itself.
const (
	StatusInfo    = "info"
	StatusSuccess = "success"
	StatusError   = "error"
)

type StatusEvent struct {
	WorkbenchId string    `json:"workbench_id"`
	Level       string    `json:"level"`
	Message     string    `json:"message"`
	At          time.Time `json:"at"`
}

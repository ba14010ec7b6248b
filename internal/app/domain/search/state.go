package search

import "github.com/FACorreiaa/triply/internal/app/models"

type Status string

const (
	StatusIdle       Status = "idle"
	StatusDebouncing Status = "debouncing"
	StatusLoading    Status = "loading"
	StatusSuccess    Status = "success"
	StatusError      Status = "error"
)

// State is an immutable snapshot published after every transition. Results
// is non-empty only in StatusSuccess and Error only in StatusError.
type State struct {
	Query   string            `json:"query"`
	Status  Status            `json:"status"`
	Results []models.Location `json:"results"`
	Error   string            `json:"error,omitempty"`
	Version uint64            `json:"version"`

	IsLoading  bool `json:"isLoading"`
	IsEmpty    bool `json:"isEmpty"`
	HasResults bool `json:"hasResults"`
}

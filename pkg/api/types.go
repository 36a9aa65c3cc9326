package api

import (
	"time"

	"github.com/rubiojr/triplog/pkg/journal"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// DayContentResponse is the per-day fallback document.
type DayContentResponse struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

type SearchResponse struct {
	Query   string                `json:"query"`
	Entries []journal.ContentItem `json:"entries"`
	Count   int                   `json:"count"`
}

type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Version   string    `json:"version"`
	Entries   int       `json:"entries"`
	Tracks    int       `json:"tracks"`
}

package models

import "time"

// History item types: plain generations and smart-tool applications.
const (
	HistoryGeneration = "generation"
	HistoryTool       = "tool"
)

// HistoryItem records one successful generation or tool application.
type HistoryItem struct {
	ID        string    `json:"id"`
	ImageURL  string    `json:"image_url"`
	Prompt    string    `json:"prompt"`
	Timestamp time.Time `json:"timestamp"`
	Model     string    `json:"model"`
	Type      string    `json:"type"`
}

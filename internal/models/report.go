package models

import "time"

// Report is a generated narrative archived as a Markdown file.
type Report struct {
	Path        string    `json:"path"`
	Kind        string    `json:"kind"`
	Subject     string    `json:"subject,omitempty"`
	Title       string    `json:"title"`
	GeneratedAt time.Time `json:"generated_at"`
	Failed      bool      `json:"failed"`
	Checksum    string    `json:"checksum"`
	Body        string    `json:"body,omitempty"`
}

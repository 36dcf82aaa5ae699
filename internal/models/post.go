// Package models defines the domain types shared across the exporter.
package models

import "time"

// Post is one exportable subtree rendered to a markdown document.
type Post struct {
	Path     string    `json:"path"`
	Title    string    `json:"title"`
	Date     time.Time `json:"date,omitzero"`
	Tags     []string  `json:"tags,omitempty"`
	Draft    bool      `json:"draft"`
	Content  []byte    `json:"-"`
	Checksum string    `json:"checksum,omitempty"`
}

package models

import "time"

// Reflection is a journal entry tied to a life-area category
type Reflection struct {
	ID        string    `json:"id"`
	Category  string    `json:"category"`
	Title     string    `json:"title"`
	Text      string    `json:"text"`
	Date      string    `json:"date"` // YYYY-MM-DD
	Timestamp time.Time `json:"timestamp"`
}

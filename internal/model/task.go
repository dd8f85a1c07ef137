package model

import "time"

// Task is the structured record extracted from a single marketplace
// notification message.
type Task struct {
	// UID is the mailbox identifier of the message the task came from.
	UID string `json:"uid"`

	// Subject is the decoded subject line of the source message.
	Subject string `json:"subject"`

	// Title is the subject line with the budget phrase stripped.
	Title string `json:"title"`

	// Description is the body text surviving the noise-keyword filter,
	// joined into a single line.
	Description string `json:"description"`

	// Budget is the client-stated maximum price in currency units, or
	// nil when the message states none.
	Budget *int `json:"budget,omitempty"`

	// FullText is the decoded body the fields were extracted from.
	FullText string `json:"full_text"`

	// Date is the declared send time of the source message.
	Date time.Time `json:"date"`
}

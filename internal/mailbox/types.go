package mailbox

import "time"

// Message is a single fetched mail message before decoding.
type Message struct {
	// UID is the message's identifier within the selected folder.
	UID string

	// Subject is the decoded subject line.
	Subject string

	// From is the sender address or display name.
	From string

	// Date is the declared send time. Falls back to the fetch time when
	// the message carries no usable date.
	Date time.Time

	// Raw is the full RFC 2822 message for MIME parsing.
	Raw []byte
}

package mailbox

import (
	"context"
	"fmt"
	"mime"
	"strconv"
	"time"

	"github.com/emersion/go-imap/v2"
	"github.com/emersion/go-imap/v2/imapclient"
	"github.com/emersion/go-message/charset"
)

// Client wraps go-imap v2 for polling a single mailbox for marketplace
// notifications. A fresh connection is acquired per call and released
// before returning on every path.
type Client struct {
	host     string
	port     string
	username string
	password string
	sender   string
	folder   string
}

// NewClient creates a new mailbox client configuration.
func NewClient(
	host, port, username, password, sender, folder string,
) *Client {
	return &Client{
		host:     host,
		port:     port,
		username: username,
		password: password,
		sender:   sender,
		folder:   folder,
	}
}

// connect establishes a TLS connection to the IMAP server and
// authenticates. The caller is responsible for calling Logout on the
// returned client.
func (c *Client) connect(_ context.Context) (*imapclient.Client, error) {
	addr := c.host + ":" + c.port

	client, err := imapclient.DialTLS(addr, nil)
	if err != nil {
		return nil, fmt.Errorf("connecting to IMAP %s: %w", addr, err)
	}

	if err := client.Login(c.username, c.password).Wait(); err != nil {
		_ = client.Logout().Wait()
		return nil, fmt.Errorf("authenticating %s: %w", c.username, err)
	}

	return client, nil
}

// Unseen connects, selects the configured folder, searches for unseen
// messages from the configured sender, and fetches each match in full.
func (c *Client) Unseen(ctx context.Context) ([]Message, error) {
	client, err := c.connect(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = client.Logout().Wait() }()

	if _, err := client.Select(c.folder, nil).Wait(); err != nil {
		return nil, fmt.Errorf("selecting %s: %w", c.folder, err)
	}

	criteria := &imap.SearchCriteria{
		NotFlag: []imap.Flag{imap.FlagSeen},
		Header: []imap.SearchCriteriaHeaderField{
			{Key: "From", Value: c.sender},
		},
	}

	searchData, err := client.UIDSearch(criteria, nil).Wait()
	if err != nil {
		return nil, fmt.Errorf("searching unseen messages: %w", err)
	}

	uids := searchData.AllUIDs()
	if len(uids) == 0 {
		return nil, nil
	}

	// Fetch without Peek: the server marks fetched messages \Seen, so
	// they drop out of the unseen search on later cycles and restarts.
	bodySection := &imap.FetchItemBodySection{}
	fetchOpts := &imap.FetchOptions{
		Envelope:    true,
		UID:         true,
		BodySection: []*imap.FetchItemBodySection{bodySection},
	}

	fetchCmd := client.Fetch(imap.UIDSetNum(uids...), fetchOpts)

	var msgs []Message
	for {
		raw := fetchCmd.Next()
		if raw == nil {
			break
		}

		buf, err := raw.Collect()
		if err != nil {
			// A single unreadable message skips only that message.
			continue
		}

		msgs = append(msgs, messageFromBuffer(buf, bodySection))
	}

	if err := fetchCmd.Close(); err != nil {
		return msgs, fmt.Errorf("fetching messages: %w", err)
	}

	return msgs, nil
}

// messageFromBuffer maps a fetched buffer to a Message.
func messageFromBuffer(
	buf *imapclient.FetchMessageBuffer,
	section *imap.FetchItemBodySection,
) Message {
	msg := Message{
		UID: strconv.FormatUint(uint64(buf.UID), 10),
	}

	if buf.Envelope != nil {
		msg.Subject = decodeHeader(buf.Envelope.Subject)
		msg.Date = buf.Envelope.Date
		if len(buf.Envelope.From) > 0 {
			from := buf.Envelope.From[0]
			if from.Name != "" {
				msg.From = from.Name
			} else {
				msg.From = from.Addr()
			}
		}
	}
	if msg.Date.IsZero() {
		msg.Date = time.Now()
	}

	msg.Raw = buf.FindBodySection(section)

	return msg
}

// headerDecoder decodes RFC 2047 encoded words with the full charset
// table from go-message.
var headerDecoder = mime.WordDecoder{CharsetReader: charset.Reader}

// decodeHeader decodes encoded words in a header value, falling back to
// the raw value when decoding fails.
func decodeHeader(s string) string {
	decoded, err := headerDecoder.DecodeHeader(s)
	if err != nil {
		return s
	}
	return decoded
}

package mailbox

import (
	"bytes"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/emersion/go-message/mail"
	"golang.org/x/net/html"
	"golang.org/x/text/encoding/charmap"

	// Register charset decoders (windows-1252, iso-8859-*, koi8-r, etc.)
	// for MIME parts with a declared encoding.
	_ "github.com/emersion/go-message/charset"
)

// minPlainTextLen is the minimum trimmed length for a plain-text decode
// to count as usable.
const minPlainTextLen = 20

// charsetLadder lists the legacy encodings tried, in order, when a
// part's bytes are not valid UTF-8. Latin-1 decoding never fails, so the
// ladder always yields at least one candidate.
var charsetLadder = []*charmap.Charmap{
	charmap.ISO8859_1,   // latin-1
	charmap.Windows1252, // cp1252
}

// ExtractText flattens a raw mail message into plain text. Plain-text
// parts are preferred; a markup part is used only when no plain part
// yielded usable text. Attachments are skipped. Returns "" when no part
// produced anything; decoding never errors.
func ExtractText(raw []byte) string {
	if len(raw) == 0 {
		return ""
	}

	mr, err := mail.CreateReader(bytes.NewReader(raw))
	if err != nil {
		// Unparseable structure: treat the whole payload as a bare
		// text body.
		return plainFromBytes(raw)
	}
	defer mr.Close()

	var markupFallback string
	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			break
		}

		h, ok := part.Header.(*mail.InlineHeader)
		if !ok {
			// Attachment part.
			continue
		}

		contentType, _, _ := h.ContentType()
		body, readErr := io.ReadAll(part.Body)
		if readErr != nil {
			continue
		}

		switch {
		case strings.HasPrefix(contentType, "text/plain"):
			if text := plainFromBytes(body); text != "" {
				return text
			}
		case strings.HasPrefix(contentType, "text/html"):
			if markupFallback == "" {
				markupFallback = markupFromBytes(body)
			}
		}
	}

	return markupFallback
}

// plainFromBytes decodes a plain-text payload with the charset ladder
// and returns the first result long enough to be a task body.
func plainFromBytes(body []byte) string {
	for _, text := range decodeAttempts(body) {
		trimmed := strings.TrimSpace(text)
		if len(trimmed) > minPlainTextLen {
			return trimmed
		}
	}
	return ""
}

// markupFromBytes decodes a markup payload with the charset ladder,
// strips non-content elements, removes invisible formatting runes, and
// drops blank or single-character lines.
func markupFromBytes(body []byte) string {
	for _, markup := range decodeAttempts(body) {
		text, err := stripMarkup(markup)
		if err != nil {
			continue
		}
		text = filterLines(StripInvisible(text))
		if text != "" {
			return text
		}
	}
	return ""
}

// decodeAttempts returns candidate decodings of body in ladder order:
// UTF-8 when valid, then each legacy encoding.
func decodeAttempts(body []byte) []string {
	var attempts []string
	if utf8.Valid(body) {
		attempts = append(attempts, string(body))
	}
	for _, cm := range charsetLadder {
		decoded, err := cm.NewDecoder().Bytes(body)
		if err != nil {
			continue
		}
		attempts = append(attempts, string(decoded))
	}
	return attempts
}

// stripMarkup removes script/style/meta/link/noscript elements and joins
// the remaining text nodes with newlines.
func stripMarkup(markup string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return "", err
	}

	doc.Find("script, style, meta, link, noscript").Remove()

	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			if t := strings.TrimSpace(n.Data); t != "" {
				b.WriteString(t)
				b.WriteByte('\n')
			}
			return
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	for _, n := range doc.Nodes {
		walk(n)
	}

	return b.String(), nil
}

// filterLines drops blank lines and lines of a single character.
func filterLines(text string) string {
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if utf8.RuneCountInString(line) <= 1 {
			continue
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

// StripInvisible removes the zero-width and formatting control runes the
// marketplace's mail renders between visible characters: zero-width
// space through right-to-left mark (U+200B–U+200F), word joiner through
// invisible times (U+2060–U+2064), byte-order mark, and soft hyphen.
// Patterns matched against this text stay intact.
func StripInvisible(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 0x200b && r <= 0x200f:
			return -1
		case r >= 0x2060 && r <= 0x2064:
			return -1
		case r == 0xfeff, r == 0x00ad:
			return -1
		}
		return r
	}, s)
}

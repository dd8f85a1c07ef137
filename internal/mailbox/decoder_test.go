package mailbox

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

// rawMessage assembles an RFC 2822 message from header and body lines.
func rawMessage(lines ...string) []byte {
	return []byte(strings.Join(lines, "\r\n") + "\r\n")
}

func TestExtractText_PlainPart(t *testing.T) {
	raw := rawMessage(
		"From: YouDo <noreply@youdo.com>",
		"To: dev@example.com",
		"Subject: task",
		"Content-Type: text/plain; charset=utf-8",
		"",
		"Нужно написать скрипт для парсинга сайта.",
	)

	got := ExtractText(raw)
	assert.Equal(t, "Нужно написать скрипт для парсинга сайта.", got)
}

func TestExtractText_PrefersPlainOverMarkup(t *testing.T) {
	raw := rawMessage(
		"From: YouDo <noreply@youdo.com>",
		"To: dev@example.com",
		"Subject: task",
		"MIME-Version: 1.0",
		`Content-Type: multipart/alternative; boundary="b1"`,
		"",
		"--b1",
		"Content-Type: text/html; charset=utf-8",
		"",
		"<html><body><p>Версия письма в разметке, длинная строка</p></body></html>",
		"--b1",
		"Content-Type: text/plain; charset=utf-8",
		"",
		"Простая текстовая версия этого же письма",
		"--b1--",
	)

	got := ExtractText(raw)
	assert.Equal(t, "Простая текстовая версия этого же письма", got)
}

func TestExtractText_MarkupFallbackStripsInvisibleRunes(t *testing.T) {
	raw := rawMessage(
		"From: YouDo <noreply@youdo.com>",
		"To: dev@example.com",
		"Subject: task",
		"MIME-Version: 1.0",
		`Content-Type: multipart/alternative; boundary="b1"`,
		"",
		"--b1",
		"Content-Type: text/html; charset=utf-8",
		"",
		"<html><head><style>body { color: red }</style>"+
			"<script>alert(1)</script></head>"+
			"<body><p>Ну\u200dжен скри\u200bпт для автоматизации</p>"+
			"<p>x</p>"+
			"<p>Бюджет до 3000 ₽</p></body></html>",
		"--b1--",
	)

	got := ExtractText(raw)

	assert.Equal(t, "Нужен скрипт для автоматизации\nБюджет до 3000 ₽", got)
	assert.NotContains(t, got, "alert")
	assert.NotContains(t, got, "color")
	assert.NotContains(t, got, "\u200d")
}

func TestExtractText_ShortPlainFallsBackToMarkup(t *testing.T) {
	raw := rawMessage(
		"From: YouDo <noreply@youdo.com>",
		"To: dev@example.com",
		"Subject: task",
		"MIME-Version: 1.0",
		`Content-Type: multipart/alternative; boundary="b1"`,
		"",
		"--b1",
		"Content-Type: text/plain; charset=utf-8",
		"",
		"коротко",
		"--b1",
		"Content-Type: text/html; charset=utf-8",
		"",
		"<html><body><p>Полное описание задачи в разметке письма</p></body></html>",
		"--b1--",
	)

	got := ExtractText(raw)
	assert.Equal(t, "Полное описание задачи в разметке письма", got)
}

func TestExtractText_SkipsAttachments(t *testing.T) {
	raw := rawMessage(
		"From: YouDo <noreply@youdo.com>",
		"To: dev@example.com",
		"Subject: task",
		"MIME-Version: 1.0",
		`Content-Type: multipart/mixed; boundary="b1"`,
		"",
		"--b1",
		"Content-Type: text/plain; charset=utf-8",
		`Content-Disposition: attachment; filename="task.txt"`,
		"",
		"содержимое вложения достаточно длинное для порога",
		"--b1",
		"Content-Type: text/plain; charset=utf-8",
		"",
		"Настоящий текст письма с описанием задачи",
		"--b1--",
	)

	got := ExtractText(raw)
	assert.Equal(t, "Настоящий текст письма с описанием задачи", got)
}

func TestExtractText_LegacyCharsetFallback(t *testing.T) {
	body := "caf\xe9 au lait, s'il vous plait, longue ligne"
	raw := append(rawMessage(
		"From: sender@example.com",
		"To: dev@example.com",
		"Subject: task",
		"Content-Type: text/plain",
		"",
	), []byte(body)...)

	got := ExtractText(raw)
	assert.Equal(t, "café au lait, s'il vous plait, longue ligne", got)
}

func TestExtractText_UnparseableFallsBackToRaw(t *testing.T) {
	got := ExtractText([]byte("plain payload without any mail headers at all"))
	assert.Equal(t, "plain payload without any mail headers at all", got)
}

func TestExtractText_Empty(t *testing.T) {
	assert.Empty(t, ExtractText(nil))
	assert.Empty(t, ExtractText([]byte{}))
}

func TestStripInvisible(t *testing.T) {
	in := "сло\u200bво\u200d с\u2060 мусором\ufeff и дефисом\u00ad"
	assert.Equal(t, "слово с мусором и дефисом", StripInvisible(in))
}

func TestFilterLines(t *testing.T) {
	in := "первая строка\n\nx\n  \nвторая строка\n"
	assert.Equal(t, "первая строка\nвторая строка", filterLines(in))
}

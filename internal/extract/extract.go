// Package extract turns decoded marketplace mail into structured task
// records. All extraction is best-effort: malformed input degrades to
// empty fields, never to an error.
package extract

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/vrudakov/taskwatch/internal/mailbox"
	"github.com/vrudakov/taskwatch/internal/model"
)

var (
	// budgetPattern matches the marketplace's "до 12 000 ₽" budget
	// phrase. The digit group may contain internal spaces.
	budgetPattern = regexp.MustCompile(`до\s*(\d[\d\s]*)\s*₽`)

	// titleBudgetPattern matches the budget phrase as it appears in
	// subject lines, for stripping.
	titleBudgetPattern = regexp.MustCompile(`до\s*\d+[\d\s]*₽`)

	whitespaceRun = regexp.MustCompile(`\s+`)
)

// noiseKeywords mark body lines that carry marketplace boilerplate
// rather than task content. Matched case-insensitively.
var noiseKeywords = []string{
	"youdo",
	"откликнуться",
	"новое задание",
	"подборка",
	"рекомендуем",
	"письма",
	"gmail",
}

// priceRequestPhrases are the wordings task posters use to ask for a
// price in the reply.
var priceRequestPhrases = []string{
	"напиши стоимость",
	"указать цену",
	"с ценой",
	"сколько стоит",
	"укажи цену",
	"цена в отклике",
	"стоимость в отклике",
	"напиши цену",
}

// Task builds a structured task record from decoded body text and the
// message subject. Invisible formatting runes are stripped from both
// sources before any pattern matching.
func Task(body, subject string) model.Task {
	body = mailbox.StripInvisible(body)
	subject = mailbox.StripInvisible(subject)

	title := strings.TrimSpace(
		titleBudgetPattern.ReplaceAllString(subject, ""),
	)

	return model.Task{
		Subject:     subject,
		Title:       title,
		Description: description(body),
		Budget:      Budget(subject, body),
		FullText:    body,
	}
}

// Budget extracts the stated budget, preferring the subject over the
// body. Returns nil when neither matches or the amount is not positive.
func Budget(subject, body string) *int {
	m := budgetPattern.FindStringSubmatch(subject)
	if m == nil {
		m = budgetPattern.FindStringSubmatch(body)
	}
	if m == nil {
		return nil
	}

	digits := whitespaceRun.ReplaceAllString(m[1], "")
	n, err := strconv.Atoi(digits)
	if err != nil || n <= 0 {
		return nil
	}
	return &n
}

// WantsPriceInReply reports whether the task poster explicitly asks for
// a price in the reply.
func WantsPriceInReply(subject, body string) bool {
	full := strings.ToLower(subject + " " + body)
	for _, phrase := range priceRequestPhrases {
		if strings.Contains(full, phrase) {
			return true
		}
	}
	return false
}

// description joins the body lines that survive the noise filter,
// collapsing whitespace runs to single spaces.
func description(body string) string {
	var parts []string
	for _, line := range strings.Split(body, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || containsNoise(line) {
			continue
		}
		parts = append(parts, line)
	}

	joined := strings.Join(parts, " ")
	return strings.TrimSpace(whitespaceRun.ReplaceAllString(joined, " "))
}

func containsNoise(line string) bool {
	lower := strings.ToLower(line)
	for _, kw := range noiseKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

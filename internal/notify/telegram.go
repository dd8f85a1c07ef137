// Package notify delivers finished proposals to the operator.
package notify

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/vrudakov/taskwatch/internal/model"
)

// requestTimeout bounds each Bot API call.
const requestTimeout = 30 * time.Second

// Telegram sends offer notifications to a fixed operator chat.
type Telegram struct {
	bot    *tgbotapi.BotAPI
	chatID int64
}

// NewTelegram creates the notifier, verifying the token against the Bot
// API.
func NewTelegram(token string, chatID int64) (*Telegram, error) {
	bot, err := tgbotapi.NewBotAPIWithClient(
		token,
		tgbotapi.APIEndpoint,
		&http.Client{Timeout: requestTimeout},
	)
	if err != nil {
		return nil, fmt.Errorf("creating Telegram bot: %w", err)
	}

	return &Telegram{bot: bot, chatID: chatID}, nil
}

// SendOffer formats the task summary and proposal as an HTML message and
// sends it to the operator chat.
func (t *Telegram) SendOffer(
	_ context.Context,
	task model.Task,
	proposal string,
) error {
	var sb strings.Builder

	sb.WriteString("🔔 <b>Новое задание</b>\n\n")
	sb.WriteString(fmt.Sprintf(
		"📋 %s\n\n",
		tgbotapi.EscapeText(tgbotapi.ModeHTML, task.Title),
	))

	if task.Budget != nil {
		sb.WriteString(fmt.Sprintf(
			"💰 Бюджет: %s ₽\n\n", formatThousands(*task.Budget),
		))
	}

	sb.WriteString(fmt.Sprintf(
		"<b>ОТКЛИК:</b>\n<code>%s</code>",
		tgbotapi.EscapeText(tgbotapi.ModeHTML, proposal),
	))

	msg := tgbotapi.NewMessage(t.chatID, sb.String())
	msg.ParseMode = tgbotapi.ModeHTML

	if _, err := t.bot.Send(msg); err != nil {
		return fmt.Errorf("sending Telegram message: %w", err)
	}
	return nil
}

// formatThousands renders 12000 as "12 000".
func formatThousands(n int) string {
	s := strconv.Itoa(n)
	if len(s) <= 3 {
		return s
	}

	var groups []string
	for len(s) > 3 {
		groups = append([]string{s[len(s)-3:]}, groups...)
		s = s[:len(s)-3]
	}
	return s + " " + strings.Join(groups, " ")
}

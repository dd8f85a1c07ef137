package generate

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/vrudakov/taskwatch/internal/model"
)

// systemPrompt sets the voice for generated proposals.
const systemPrompt = "Ты опытный разработчик, который пишет короткие, " +
	"честные и цепляющие отклики на заказы. Без шаблонов и штампов. " +
	"Язык - русский."

// leadingEnumeration matches a stray "1. " prefix models sometimes emit.
var leadingEnumeration = regexp.MustCompile(`^\d+\.\s+`)

// Client drafts proposals through the OpenAI chat-completion API.
type Client struct {
	client    *openai.Client
	model     string
	maxTokens int
	signature string
}

// NewClient creates a generation client from the generator settings.
func NewClient(cfg model.GeneratorConfig) (*Client, error) {
	modelName := cfg.Model
	if modelName == "" {
		modelName = defaultModel
	}
	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}

	httpClient, err := newHTTPClient(cfg.ProxyURL)
	if err != nil {
		return nil, err
	}

	apiConfig := openai.DefaultConfig(cfg.APIKey)
	apiConfig.HTTPClient = httpClient

	return &Client{
		client:    openai.NewClientWithConfig(apiConfig),
		model:     modelName,
		maxTokens: maxTokens,
		signature: cfg.Signature,
	}, nil
}

// GenerateProposal asks the model for a short business-like reply to the
// task. priceSection, when non-empty, is woven into the prompt so the
// reply states the offered price.
func (c *Client) GenerateProposal(
	ctx context.Context,
	task model.Task,
	priceSection string,
) (string, error) {
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: buildPrompt(task, priceSection, c.signature),
			},
		},
		Temperature: 0.8,
		MaxTokens:   c.maxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no response choices")
	}

	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	text = strings.Trim(text, `"'`)
	text = leadingEnumeration.ReplaceAllString(text, "")
	return text, nil
}

// buildPrompt constructs the proposal brief from the task fields.
func buildPrompt(task model.Task, priceSection, signature string) string {
	var sb strings.Builder

	sb.WriteString("Ты — профессиональный разработчик, который пишет ")
	sb.WriteString("короткие, деловые и уверенные отклики на заказы на ")
	sb.WriteString("фриланс-бирже. Твоя цель — показать компетентность и ")
	sb.WriteString("серьёзный подход, не расписывая лишнего.\n\n")

	sb.WriteString("Информация о заказе:\n")
	sb.WriteString("ЗАДАНИЕ: " + task.Title + "\n")
	sb.WriteString("ОПИСАНИЕ: " + task.Description + "\n\n")

	sb.WriteString("Правила написания отклика:\n")
	sb.WriteString("1. Начни с \"Добрый день!\".\n")
	sb.WriteString("2. Сразу по делу — одно предложение, где ты ")
	sb.WriteString("показываешь, что понял задачу и готов выполнить её ")
	sb.WriteString("в полном объёме.\n")
	sb.WriteString("3. Одно-два предложения — чётко опиши, что именно ")
	sb.WriteString("ты сделаешь и как, без технических деталей.\n")

	if priceSection != "" {
		sb.WriteString("4. Укажи цену: " + priceSection + "\n")
	} else {
		sb.WriteString("4. Без цены — укажи, что детали и бюджет можно ")
		sb.WriteString("обсудить отдельно.\n")
	}

	if signature != "" {
		sb.WriteString("5. Заверши так: " + signature + "\n")
	}

	sb.WriteString("6. Не используй markdown, списки, кавычки и ")
	sb.WriteString("восклицательные знаки.\n")
	sb.WriteString("7. Стиль — деловой, уверенный, лаконичный.\n\n")
	sb.WriteString("Выведи только сам отклик, без пояснений.")

	return sb.String()
}

// Package insight реализует клиент LLM-провайдера Groq
// (OpenAI-совместимый chat completions API) для генерации
// технических разборов и тизеров.
package insight

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"time"

	"github.com/aicryptogpt/crypto-radar-bot/internal/models"
)

// Ответы на арабском прогоняются через белый список символов:
// модель иногда вставляет markdown-мусор и латинскую пунктуацию,
// ломающие отображение RTL-текста.
var arabicFilter = regexp.MustCompile(`[^\x{0600}-\x{06FF}0-9A-Za-z.,:%$؟! \n\-]+`)

// Client — HTTP-клиент Groq.
type Client struct {
	apiKey     string
	model      string
	apiURL     string
	httpClient *http.Client
}

// NewClient создаёт новый клиент Groq.
func NewClient(apiKey, model string, timeout time.Duration) *Client {
	return &Client{
		apiKey:     apiKey,
		model:      model,
		apiURL:     "https://api.groq.com/openai/v1",
		httpClient: &http.Client{Timeout: timeout},
	}
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Ask отправляет prompt модели и возвращает текст ответа.
// Для lang=ar ответ фильтруется под арабский алфавит.
func (c *Client) Ask(ctx context.Context, prompt, lang string) (string, error) {
	const op = "insight.Ask"

	body := chatRequest{
		Model:    c.model,
		Messages: []chatMessage{{Role: "user", Content: prompt}},
	}
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL+"/chat/completions", &buf)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%s: unexpected status %s", op, resp.Status)
	}

	var payload chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	if len(payload.Choices) == 0 {
		return "", fmt.Errorf("%s: %w", op, errors.New("empty choices"))
	}

	answer := payload.Choices[0].Message.Content
	if lang == models.LangArabic {
		answer = arabicFilter.ReplaceAllString(answer, "")
	}
	return answer, nil
}

package questiongensvc

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"

	"github.com/pkg/errors"

	"github.com/pogorelof/ai-exam/core"
	"github.com/pogorelof/ai-exam/core/quiz"
)

// systemPrompt instructs the model to answer with the exact JSON contract
// quiz.GeneratedQuestion expects. Any deviation is treated as a failure.
const systemPrompt = `You are a teacher's assistant that writes multiple-choice test questions.
The user message is a JSON object: {"name": <subject>, "number_questions": <count>}.
Produce exactly <count> questions about <subject>. Each question has exactly 4 options
and exactly one of them is correct.
Respond with JSON only, no prose, in this exact shape:
{"questions": [{"question": "...", "options": [{"option": "...", "is_correct": true|false}, ...]}, ...]}`

type openaiGenerator struct {
	baseURL string
	model   string
	client  *http.Client
}

var _ quiz.Generator = (*openaiGenerator)(nil)

// NewOpenAIGenerator returns a quiz.Generator backed by an OpenAI-compatible
// chat completions endpoint. The API token is per-call: each teacher brings
// their own credential.
func NewOpenAIGenerator(conf *core.Config) quiz.Generator {
	return &openaiGenerator{
		baseURL: conf.OpenAI.BaseURL,
		model:   conf.OpenAI.Model,
		client:  &http.Client{Timeout: conf.OpenAI.Timeout},
	}
}

type (
	chatMessage struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	}

	chatRequest struct {
		Model    string        `json:"model"`
		Messages []chatMessage `json:"messages"`
	}

	chatResponse struct {
		Choices []struct {
			Message chatMessage `json:"message"`
		} `json:"choices"`
	}

	generationPayload struct {
		Questions []quiz.GeneratedQuestion `json:"questions"`
	}
)

func (g *openaiGenerator) Generate(ctx context.Context, apiToken, subject string, count int) ([]quiz.GeneratedQuestion, error) {
	task, err := json.Marshal(map[string]interface{}{
		"name":             subject,
		"number_questions": count,
	})
	if err != nil {
		return nil, errors.Wrap(err, "marshalling task")
	}

	body, err := json.Marshal(chatRequest{
		Model: g.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: string(task)},
		},
	})
	if err != nil {
		return nil, errors.Wrap(err, "marshalling request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, errors.Wrap(err, "building request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+apiToken)

	res, err := g.client.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "calling completion API")
	}
	defer func() { _ = res.Body.Close() }()

	if res.StatusCode != http.StatusOK {
		return nil, errors.Errorf("completion API returned %s", res.Status)
	}

	var cr chatResponse
	if err = json.NewDecoder(res.Body).Decode(&cr); err != nil {
		return nil, errors.Wrap(err, "decoding completion response")
	}
	if len(cr.Choices) == 0 {
		return nil, errors.New("completion response has no choices")
	}

	return ParseGenerated(cr.Choices[0].Message.Content, count)
}

// ParseGenerated validates the model's JSON content against the generation
// contract: `count` questions, 4 options each, exactly one correct.
func ParseGenerated(content string, count int) ([]quiz.GeneratedQuestion, error) {
	var payload generationPayload
	if err := json.Unmarshal([]byte(content), &payload); err != nil {
		return nil, errors.Wrap(err, "malformed generation content")
	}
	if len(payload.Questions) == 0 {
		return nil, errors.New("generation content has no questions")
	}
	if len(payload.Questions) != count {
		return nil, errors.Errorf("expected %d questions, got %d", count, len(payload.Questions))
	}
	for i, q := range payload.Questions {
		if q.Question == "" {
			return nil, errors.Errorf("question %d has no text", i+1)
		}
		if len(q.Options) != 4 {
			return nil, errors.Errorf("question %d has %d options, want 4", i+1, len(q.Options))
		}
		var correct int
		for _, opt := range q.Options {
			if opt.IsCorrect {
				correct++
			}
		}
		if correct != 1 {
			return nil, errors.Errorf("question %d has %d correct options, want 1", i+1, correct)
		}
	}
	return payload.Questions, nil
}

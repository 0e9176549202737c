package questiongensvc

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/pogorelof/ai-exam/core"
	"github.com/pogorelof/ai-exam/core/quiz"
)

func validContent(count int) string {
	questions := make([]quiz.GeneratedQuestion, 0, count)
	for i := 1; i <= count; i++ {
		q := quiz.GeneratedQuestion{Question: fmt.Sprintf("Question %d?", i)}
		for j := 0; j < 4; j++ {
			q.Options = append(q.Options, quiz.GeneratedOption{
				Option:    fmt.Sprintf("Option %d", j+1),
				IsCorrect: j == 0,
			})
		}
		questions = append(questions, q)
	}
	data, _ := json.Marshal(map[string]interface{}{"questions": questions})
	return string(data)
}

func TestParseGenerated(t *testing.T) {
	mutate := func(f func([]quiz.GeneratedQuestion)) string {
		var payload struct {
			Questions []quiz.GeneratedQuestion `json:"questions"`
		}
		_ = json.Unmarshal([]byte(validContent(2)), &payload)
		f(payload.Questions)
		data, _ := json.Marshal(payload)
		return string(data)
	}

	tests := []struct {
		name    string
		content string
		count   int
		wantErr string
	}{
		{name: "not JSON", content: "the mitochondria is the powerhouse of the cell", count: 2, wantErr: "malformed generation content"},
		{name: "no questions", content: `{"questions": []}`, count: 2, wantErr: "generation content has no questions"},
		{name: "wrong count", content: validContent(3), count: 2, wantErr: "expected 2 questions, got 3"},
		{
			name:    "empty question text",
			content: mutate(func(qs []quiz.GeneratedQuestion) { qs[1].Question = "" }),
			count:   2, wantErr: "question 2 has no text",
		},
		{
			name:    "wrong option count",
			content: mutate(func(qs []quiz.GeneratedQuestion) { qs[0].Options = qs[0].Options[:3] }),
			count:   2, wantErr: "question 1 has 3 options, want 4",
		},
		{
			name:    "no correct option",
			content: mutate(func(qs []quiz.GeneratedQuestion) { qs[0].Options[0].IsCorrect = false }),
			count:   2, wantErr: "question 1 has 0 correct options, want 1",
		},
		{
			name:    "several correct options",
			content: mutate(func(qs []quiz.GeneratedQuestion) { qs[1].Options[1].IsCorrect = true }),
			count:   2, wantErr: "question 2 has 2 correct options, want 1",
		},
		{name: "valid", content: validContent(2), count: 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			questions, err := ParseGenerated(tt.content, tt.count)
			if tt.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
					t.Errorf("ParseGenerated() error = %v, wantErr %q", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseGenerated() failed: %v", err)
			}
			if len(questions) != tt.count {
				t.Errorf("len(questions) = %d, want %d", len(questions), tt.count)
			}
		})
	}
}

func TestOpenAIGenerator_Generate(t *testing.T) {
	newGen := func(baseURL string) quiz.Generator {
		return NewOpenAIGenerator(&core.Config{
			OpenAI: core.OpenAIConfig{BaseURL: baseURL, Model: "gpt-4.1-nano", Timeout: 5 * time.Second},
		})
	}
	completion := func(content string) string {
		data, _ := json.Marshal(map[string]interface{}{
			"choices": []map[string]interface{}{
				{"message": map[string]string{"role": "assistant", "content": content}},
			},
		})
		return string(data)
	}

	t.Run("success", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/chat/completions" {
				t.Errorf("path = %s, want /chat/completions", r.URL.Path)
			}
			if got := r.Header.Get("Authorization"); got != "Bearer sk-test-123" {
				t.Errorf("Authorization = %s, want Bearer sk-test-123", got)
			}

			var req struct {
				Model    string `json:"model"`
				Messages []struct {
					Role    string `json:"role"`
					Content string `json:"content"`
				} `json:"messages"`
			}
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				t.Errorf("decoding request: %v", err)
			}
			if req.Model != "gpt-4.1-nano" {
				t.Errorf("model = %s, want gpt-4.1-nano", req.Model)
			}
			if len(req.Messages) != 2 || req.Messages[0].Role != "system" || req.Messages[1].Role != "user" {
				t.Errorf("unexpected messages: %+v", req.Messages)
			}
			var task struct {
				Name            string `json:"name"`
				NumberQuestions int    `json:"number_questions"`
			}
			if err := json.Unmarshal([]byte(req.Messages[1].Content), &task); err != nil {
				t.Errorf("decoding task: %v", err)
			}
			if task.Name != "Cells" || task.NumberQuestions != 2 {
				t.Errorf("task = %+v, want {Cells 2}", task)
			}

			_, _ = w.Write([]byte(completion(validContent(2))))
		}))
		defer srv.Close()

		questions, err := newGen(srv.URL).Generate(context.Background(), "sk-test-123", "Cells", 2)
		if err != nil {
			t.Fatalf("Generate() failed: %v", err)
		}
		if len(questions) != 2 {
			t.Errorf("len(questions) = %d, want 2", len(questions))
		}
	})

	t.Run("API error status", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, `{"error": "invalid api key"}`, http.StatusUnauthorized)
		}))
		defer srv.Close()

		if _, err := newGen(srv.URL).Generate(context.Background(), "bad", "Cells", 2); err == nil {
			t.Error("Generate() succeeded, want error")
		}
	})

	t.Run("no choices", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"choices": []}`))
		}))
		defer srv.Close()

		_, err := newGen(srv.URL).Generate(context.Background(), "sk-test-123", "Cells", 2)
		if err == nil || !strings.Contains(err.Error(), "no choices") {
			t.Errorf("Generate() error = %v, want no choices error", err)
		}
	})

	t.Run("prose instead of JSON", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(completion("Sure! Here are your questions: ...")))
		}))
		defer srv.Close()

		_, err := newGen(srv.URL).Generate(context.Background(), "sk-test-123", "Cells", 2)
		if err == nil || !strings.Contains(err.Error(), "malformed generation content") {
			t.Errorf("Generate() error = %v, want malformed content error", err)
		}
	})
}

func TestPlaceholderGenerator(t *testing.T) {
	questions, err := NewPlaceholderGenerator().Generate(context.Background(), "", "Cells", 3)
	if err != nil {
		t.Fatalf("Generate() failed: %v", err)
	}
	if len(questions) != 3 {
		t.Fatalf("len(questions) = %d, want 3", len(questions))
	}
	for i, q := range questions {
		if !strings.Contains(q.Question, "Cells") {
			t.Errorf("question %d does not mention the subject: %q", i+1, q.Question)
		}
		if len(q.Options) != 4 {
			t.Fatalf("question %d has %d options, want 4", i+1, len(q.Options))
		}
		var correct int
		for _, opt := range q.Options {
			if opt.IsCorrect {
				correct++
			}
		}
		if correct != 1 {
			t.Errorf("question %d has %d correct options, want 1", i+1, correct)
		}
	}

	// contract also holds through ParseGenerated
	data, _ := json.Marshal(map[string]interface{}{"questions": questions})
	if _, err := ParseGenerated(string(data), 3); err != nil {
		t.Errorf("ParseGenerated() rejected placeholder output: %v", err)
	}
}

package contentanalysis

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/anonto42/nano-social/backend/pkg/logger"
	generativelanguage "google.golang.org/api/generativelanguage/v1beta"
	"google.golang.org/api/option"
)

const maxReasonRunes = 450

const promptTemplate = `You moderate a social network. Decide whether the following user text may be published.
Reject hate speech, harassment, threats, sexual content involving minors, spam and instructions for violence.
Answer with JSON only, exactly in the form {"IsAccepted": true|false, "Reason": "<short explanation>"}.

Text:
%s`

// generator is the slice of the Generative Language API the analyzer needs.
type generator interface {
	generate(ctx context.Context, prompt string) (string, error)
}

// GeminiAnalyzer classifies text with a Gemini model.
type GeminiAnalyzer struct {
	gen     generator
	timeout time.Duration
}

func NewGeminiAnalyzer(ctx context.Context, apiKey, model string, timeout time.Duration) (*GeminiAnalyzer, error) {
	svc, err := generativelanguage.NewService(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("error creating generative language client: %w", err)
	}
	return &GeminiAnalyzer{
		gen:     &apiGenerator{svc: svc, model: "models/" + strings.TrimPrefix(model, "models/")},
		timeout: timeout,
	}, nil
}

func (a *GeminiAnalyzer) Analyze(ctx context.Context, text string) Result {
	if a.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.timeout)
		defer cancel()
	}

	raw, err := a.gen.generate(ctx, fmt.Sprintf(promptTemplate, text))
	if err != nil {
		logger.Error("content analysis request failed", "error", err)
		return Result{ErrorMessage: err.Error()}
	}
	return parseVerdict(raw)
}

type verdict struct {
	IsAccepted bool   `json:"IsAccepted"`
	Reason     string `json:"Reason"`
}

func parseVerdict(raw string) Result {
	cleaned := stripCodeFence(raw)
	if cleaned == "" {
		return Result{ErrorMessage: "empty response from content analysis"}
	}

	var v verdict
	if err := json.Unmarshal([]byte(cleaned), &v); err != nil {
		return Result{ErrorMessage: fmt.Sprintf("unreadable content analysis response: %v", err)}
	}

	return Result{
		Success:    true,
		IsAccepted: v.IsAccepted,
		Reason:     truncateRunes(strings.TrimSpace(v.Reason), maxReasonRunes),
	}
}

// stripCodeFence removes a surrounding ```json ... ``` block if present.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimPrefix(s, "json")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

type apiGenerator struct {
	svc   *generativelanguage.Service
	model string
}

func (g *apiGenerator) generate(ctx context.Context, prompt string) (string, error) {
	resp, err := g.svc.Models.GenerateContent(g.model, &generativelanguage.GenerateContentRequest{
		Contents: []*generativelanguage.Content{{
			Role:  "user",
			Parts: []*generativelanguage.Part{{Text: prompt}},
		}},
		GenerationConfig: &generativelanguage.GenerationConfig{
			MaxOutputTokens: 256,
		},
	}).Context(ctx).Do()
	if err != nil {
		return "", err
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0] == nil || resp.Candidates[0].Content == nil {
		return "", nil
	}

	var sb strings.Builder
	for _, p := range resp.Candidates[0].Content.Parts {
		if p != nil {
			sb.WriteString(p.Text)
		}
	}
	return sb.String(), nil
}

package narrative

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// Fail-soft messages returned in place of generated text.
const (
	MsgMissingKey    = "AI analysis could not be performed. API key is missing."
	msgProviderError = "An error occurred during AI analysis: %v"
)

// DefaultSystemPrompt is used when no system prompt is configured.
const DefaultSystemPrompt = "You are a helpful expert consultant."

// Draft is the outcome of a generation request. Failed drafts carry a
// human readable message in Text.
type Draft struct {
	Prompt      string    `json:"prompt"`
	Title       string    `json:"title"`
	Text        string    `json:"text"`
	Failed      bool      `json:"failed"`
	GeneratedAt time.Time `json:"generated_at"`
}

// Drafter renders prompts and calls a Generator without ever failing.
type Drafter struct {
	gen    Generator
	system string
	logger *slog.Logger
}

// NewDrafter creates a Drafter. A nil gen behaves like a client with no key.
func NewDrafter(gen Generator, system string, logger *slog.Logger) *Drafter {
	if system == "" {
		system = DefaultSystemPrompt
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Drafter{gen: gen, system: system, logger: logger}
}

// Draft renders prompt with vars and generates the narrative. Errors are
// folded into a failed Draft.
func (d *Drafter) Draft(ctx context.Context, prompt string, vars map[string]any) Draft {
	out := Draft{Prompt: prompt, GeneratedAt: time.Now().UTC()}
	p, ok := Lookup(prompt)
	if !ok {
		return d.fail(out, fmt.Errorf("unknown prompt %q", prompt))
	}
	out.Title = p.Title

	if d.gen == nil {
		return d.fail(out, ErrMissingKey)
	}
	user, err := p.Render(vars)
	if err != nil {
		return d.fail(out, err)
	}
	text, err := d.gen.Generate(ctx, d.system, user)
	if err != nil {
		return d.fail(out, err)
	}
	out.Text = text
	return out
}

func (d *Drafter) fail(out Draft, err error) Draft {
	out.Failed = true
	if errors.Is(err, ErrMissingKey) {
		out.Text = MsgMissingKey
	} else {
		out.Text = fmt.Sprintf(msgProviderError, err)
	}
	d.logger.Warn("narrative: draft failed", slog.String("prompt", out.Prompt), slog.String("error", err.Error()))
	return out
}

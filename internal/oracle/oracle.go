// File: internal/oracle/oracle.go

// Package oracle implements the decision oracle: it renders the goal,
// the current perception and the recent history into prompts, sends them
// to an LLM provider and reduces whatever comes back to exactly one
// structured action.
package oracle

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/xkilldash9x/aviator-cli/api/schemas"
	"github.com/xkilldash9x/aviator-cli/internal/config"
)

// generator is the provider transport: prompts in, raw text out.
type generator interface {
	Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// Client implements schemas.Oracle on top of a provider transport. A
// rate limiter smooths request bursts across cycles.
type Client struct {
	gen     generator
	limiter *rate.Limiter
	logger  *zap.Logger
	maxRaw  int
}

// New builds the oracle for the configured provider.
func New(cfg config.OracleConfig, logger *zap.Logger) (*Client, error) {
	var gen generator
	switch strings.ToLower(cfg.Provider) {
	case "", "gemini":
		g, err := newGeminiClient(cfg, logger)
		if err != nil {
			return nil, err
		}
		gen = g
	default:
		return nil, fmt.Errorf("unsupported oracle provider %q", cfg.Provider)
	}

	rpm := cfg.RequestsPerMinute
	if rpm <= 0 {
		rpm = 30
	}

	return &Client{
		gen:     gen,
		limiter: rate.NewLimiter(rate.Limit(rpm/60.0), 1),
		logger:  logger.Named("oracle"),
		maxRaw:  cfg.MaxRawResponse,
	}, nil
}

// Decide asks the provider for the next action. Transport failures come
// back as errors; responses that cannot be reduced to a decision are
// coerced into an error-kind action so the loop can terminate cleanly.
func (c *Client) Decide(ctx context.Context, req schemas.Request) (schemas.Decision, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return schemas.Decision{}, fmt.Errorf("rate limit wait aborted: %w", err)
	}

	raw, err := c.gen.Generate(ctx, systemPrompt, c.buildUserPrompt(req))
	if err != nil {
		return schemas.Decision{}, fmt.Errorf("oracle generation failed: %w", err)
	}

	decision, perr := parseDecision(raw)
	if perr != nil {
		c.logger.Warn("Coercing unparsable oracle response into an error action",
			zap.String("raw_response", truncate(raw, c.maxRaw)),
			zap.Error(perr))
		return coerceToError(raw, c.maxRaw), nil
	}
	return decision, nil
}

// systemPrompt is the fixed instruction set: the action vocabulary and
// the required response shape.
const systemPrompt = `You are the mind of 'aviator', an autonomous agent that operates a computer on behalf of its user.
You perceive the screen, decide one action at a time, and work toward the stated goal.
Respond with a single JSON object: {"thought": "...", "action": {"kind": "...", "params": {...}}}.

Available action kinds:

    Pointer:
    - click: Click at coordinates. (params: x, y, button ["left"|"right"|"middle"], optional text describing the target)
    - drag: Drag with the primary button held. (params: x, y, x2, y2)
    - find_and_click: Click the element whose visible text matches. (params: text, button)

    Keyboard:
    - type: Type text into the focused element. (params: text, optional delay_ms per key)
    - key: Press a key combo. (params: combo, e.g. "ctrl+shift+t")

    Viewport:
    - scroll: Scroll the view. (params: direction ["up"|"down"], amount in ticks)

    Navigation:
    - open_url: Open a URL in the browser. (params: url)
    - navigate: Go to a URL or view in the current surface. (params: url or name)
    - open_app: Launch an application. (params: name)
    - window_manage: Manage the active window. (params: window_op ["minimize"|"maximize"|"restore"|"close"|"snap_left"|"snap_right"|"info"])

    Control:
    - wait: Pause before the next look at the screen. (params: ms)
    - done: The goal is complete. (params: summary)
    - error: The goal cannot be completed. (params: message)

Rules:
    - Exactly one action per response. No prose outside the JSON object.
    - Coordinates are pixels from the top-left of the provided screen.
    - If the previous step is annotated with a failure, choose a different approach instead of repeating it.
    - When the goal is achieved, respond with "done" and a short summary; do not keep acting.`

// buildUserPrompt renders the per-cycle state: goal, screen, elements
// and the bounded history window in chronological order.
func (c *Client) buildUserPrompt(req schemas.Request) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Goal: %s\n\n", req.Goal)

	if snap := req.Snapshot; snap != nil {
		fmt.Fprintf(&b, "Screen: %dx%d", snap.Width, snap.Height)
		if snap.ActiveTarget != "" {
			fmt.Fprintf(&b, ", active target: %s", snap.ActiveTarget)
		}
		b.WriteString("\n")
		if snap.Summary != "" {
			fmt.Fprintf(&b, "Screen content:\n%s\n", snap.Summary)
		}
		b.WriteString("\n")
	}

	if len(req.Elements) > 0 {
		b.WriteString("Interactive elements:\n")
		for _, el := range req.Elements {
			fmt.Fprintf(&b, "  - <%s>", el.Tag)
			if el.Text != "" {
				fmt.Fprintf(&b, " %q", el.Text)
			}
			if el.Selector != "" {
				fmt.Fprintf(&b, " (%s)", el.Selector)
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	if len(req.History) > 0 {
		b.WriteString("Recent steps (oldest first):\n")
		for _, line := range req.History {
			fmt.Fprintf(&b, "  %s\n", line)
		}
		b.WriteString("\n")
	}

	b.WriteString("Decide the next action. Respond with a single JSON object.")
	return b.String()
}

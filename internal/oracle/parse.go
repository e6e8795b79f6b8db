// File: internal/oracle/parse.go
package oracle

import (
	"fmt"
	"regexp"
	"strings"

	jsoniter "github.com/json-iterator/go"

	"github.com/xkilldash9x/aviator-cli/api/schemas"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// A regex to robustly extract a JSON object from a markdown code block.
var jsonBlockRegex = regexp.MustCompile(fmt.Sprintf("(?s)%s(?:json)?\\s*(.*?)\\s*%s", "```", "```"))

// wireDecision is the shape the oracle is instructed to produce. Kind is
// kept as a raw string so unknown vocabulary fails here, not downstream.
type wireDecision struct {
	Thought string `json:"thought"`
	Action  struct {
		Kind   string         `json:"kind"`
		Params schemas.Params `json:"params"`
	} `json:"action"`
}

// parseDecision extracts a decision from the raw model output, handling
// markdown code fences and surrounding prose.
func parseDecision(response string) (schemas.Decision, error) {
	response = strings.TrimSpace(response)
	var jsonStringToParse string

	matches := jsonBlockRegex.FindStringSubmatch(response)
	if len(matches) > 1 {
		jsonStringToParse = strings.TrimSpace(matches[1])
	} else {
		firstBracket := strings.Index(response, "{")
		lastBracket := strings.LastIndex(response, "}")
		if firstBracket != -1 && lastBracket != -1 && lastBracket > firstBracket {
			jsonStringToParse = response[firstBracket : lastBracket+1]
		} else {
			jsonStringToParse = response
		}
	}

	if jsonStringToParse == "" {
		return schemas.Decision{}, fmt.Errorf("could not find any JSON in the response")
	}

	var wire wireDecision
	if err := json.Unmarshal([]byte(jsonStringToParse), &wire); err != nil {
		return schemas.Decision{}, fmt.Errorf("failed to unmarshal extracted JSON: %w", err)
	}

	kind, ok := schemas.ParseKind(wire.Action.Kind)
	if !ok {
		return schemas.Decision{}, fmt.Errorf("unknown action kind %q", wire.Action.Kind)
	}

	decision := schemas.Decision{
		Thought: wire.Thought,
		Action:  schemas.Action{Kind: kind, Params: wire.Action.Params},
	}
	if err := decision.Action.Validate(); err != nil {
		return schemas.Decision{}, fmt.Errorf("decision failed validation: %w", err)
	}
	return decision, nil
}

// coerceToError wraps an unusable response in an error-kind action so the
// loop terminates with a diagnosable result instead of crashing.
func coerceToError(raw string, maxRaw int) schemas.Decision {
	return schemas.Decision{
		Thought: "oracle produced an unusable response",
		Action: schemas.Action{
			Kind: schemas.KindError,
			Params: schemas.Params{
				Message: "unusable oracle response: " + truncate(raw, maxRaw),
			},
		},
	}
}

func truncate(s string, max int) string {
	if max <= 0 {
		max = 500
	}
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}

// Package gate decides which interactive events must be completed before a
// dialogue step lets the player move forward.
//
// Requirements come from static per-dialogue configuration plus synthetic step
// rules. The evaluator is pure: every caller re-evaluates against the current
// completed-event set instead of caching a decision.
package gate

import (
	"fmt"
	"slices"
	"sort"
	"strconv"
	"strings"

	apperrors "github.com/louisbranch/theorem-trail/internal/platform/errors"
	"github.com/zyedidia/generic/mapset"
)

// Config maps a dialogue key to index-as-string to a comma separated event list.
type Config map[string]map[string]string

// StepRule appends one synthetic event id per dialogue index in [First, Last].
type StepRule struct {
	DialogueKey string
	First       int
	Last        int
	// Format receives the dialogue index.
	Format string
}

// LadderSteps gates each of the first six ladder steps on its quiz event.
var LadderSteps = StepRule{
	DialogueKey: "ladder",
	First:       0,
	Last:        5,
	Format:      "ladder_step_%d_completed",
}

// Evaluator answers gating questions for a fixed configuration.
type Evaluator struct {
	required map[string]map[int][]string
	rules    []StepRule
}

// NewEvaluator parses cfg and attaches rules. Index keys must be non-negative
// integers and event lists must not contain blank ids.
func NewEvaluator(cfg Config, rules ...StepRule) (*Evaluator, error) {
	required := make(map[string]map[int][]string, len(cfg))
	for dialogueKey, steps := range cfg {
		key := strings.TrimSpace(dialogueKey)
		if key == "" {
			return nil, invalid("dialogue key is blank")
		}
		parsed := make(map[int][]string, len(steps))
		for rawIndex, list := range steps {
			index, err := strconv.Atoi(strings.TrimSpace(rawIndex))
			if err != nil || index < 0 {
				return nil, invalid(fmt.Sprintf("%s: index %q is not a non-negative integer", key, rawIndex))
			}
			events, err := splitEvents(list)
			if err != nil {
				return nil, invalid(fmt.Sprintf("%s[%d]: %v", key, index, err))
			}
			parsed[index] = events
		}
		required[key] = parsed
	}
	for _, rule := range rules {
		if strings.TrimSpace(rule.DialogueKey) == "" || rule.First < 0 || rule.Last < rule.First || !strings.Contains(rule.Format, "%d") {
			return nil, invalid(fmt.Sprintf("step rule %+v is malformed", rule))
		}
	}
	return &Evaluator{required: required, rules: slices.Clone(rules)}, nil
}

// RequiredEvents returns the event ids that must be completed before leaving
// the given dialogue step. Configured ids come first, synthetic ids last, with
// duplicates removed.
func (e *Evaluator) RequiredEvents(dialogueKey string, index int) []string {
	if e == nil {
		return nil
	}
	var out []string
	seen := mapset.New[string]()
	add := func(id string) {
		if seen.Has(id) {
			return
		}
		seen.Put(id)
		out = append(out, id)
	}

	for _, id := range e.required[dialogueKey][index] {
		add(id)
	}
	for _, rule := range e.rules {
		if rule.DialogueKey == dialogueKey && index >= rule.First && index <= rule.Last {
			add(fmt.Sprintf(rule.Format, index))
		}
	}
	return out
}

// NextEnabled reports whether the forward control for the step may be used.
func (e *Evaluator) NextEnabled(dialogueKey string, index int, completed mapset.Set[string]) bool {
	return IsUnblocked(e.RequiredEvents(dialogueKey, index), completed)
}

// Missing returns the required ids not yet completed, sorted.
func (e *Evaluator) Missing(dialogueKey string, index int, completed mapset.Set[string]) []string {
	var missing []string
	for _, id := range e.RequiredEvents(dialogueKey, index) {
		if !completed.Has(id) {
			missing = append(missing, id)
		}
	}
	sort.Strings(missing)
	return missing
}

// DialogueKeys returns the configured dialogue keys, sorted.
func (e *Evaluator) DialogueKeys() []string {
	if e == nil {
		return nil
	}
	keys := make([]string, 0, len(e.required))
	for key := range e.required {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// IsUnblocked reports whether required is a subset of completed. An empty
// requirement is always satisfied.
func IsUnblocked(required []string, completed mapset.Set[string]) bool {
	for _, id := range required {
		if !completed.Has(id) {
			return false
		}
	}
	return true
}

func splitEvents(list string) ([]string, error) {
	if strings.TrimSpace(list) == "" {
		return nil, nil
	}
	parts := strings.Split(list, ",")
	events := make([]string, 0, len(parts))
	for _, part := range parts {
		id := strings.TrimSpace(part)
		if id == "" {
			return nil, fmt.Errorf("blank event id in %q", list)
		}
		events = append(events, id)
	}
	return events, nil
}

func invalid(reason string) error {
	return apperrors.WithMetadata(apperrors.CodeContentInvalid, "gate config: "+reason, map[string]string{"Reason": reason})
}

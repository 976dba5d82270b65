package dialogue

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// QuestionKind distinguishes free numeric input from multiple choice.
type QuestionKind int

const (
	QuestionNumeric QuestionKind = iota + 1
	QuestionRadio
)

// String returns the content name of the question kind.
func (k QuestionKind) String() string {
	switch k {
	case QuestionNumeric:
		return "numeric"
	case QuestionRadio:
		return "radio"
	default:
		return "unknown"
	}
}

// defaultTolerance absorbs float formatting noise in numeric answers.
const defaultTolerance = 1e-9

// Question is attached to a dialogue entry the player must answer correctly
// before moving on.
type Question struct {
	Kind   QuestionKind
	Answer string
	// Options lists the choices of a radio question.
	Options []string
	// Tolerance is the accepted absolute error of a numeric answer.
	Tolerance float64
}

// Check reports whether answer is correct. Numeric answers accept a comma as
// decimal separator; radio answers compare case-insensitively.
func (q Question) Check(answer string) bool {
	answer = strings.TrimSpace(answer)
	if answer == "" {
		return false
	}
	switch q.Kind {
	case QuestionNumeric:
		got, err := parseNumber(answer)
		if err != nil {
			return false
		}
		want, err := parseNumber(q.Answer)
		if err != nil {
			return false
		}
		tolerance := q.Tolerance
		if tolerance <= 0 {
			tolerance = defaultTolerance
		}
		return math.Abs(got-want) <= tolerance
	case QuestionRadio:
		return strings.EqualFold(answer, strings.TrimSpace(q.Answer))
	default:
		return false
	}
}

func parseNumber(value string) (float64, error) {
	return strconv.ParseFloat(strings.ReplaceAll(strings.TrimSpace(value), ",", "."), 64)
}

// Entry is one dialogue step.
type Entry struct {
	Speaker  string
	Text     string
	Avatar   string
	Question *Question
}

// HasQuestion reports whether the entry carries a question.
func (e Entry) HasQuestion() bool {
	return e.Question != nil
}

// Placeholder is shown when dialogue data is missing or malformed, so the
// scene stays navigable.
func Placeholder() []Entry {
	return []Entry{
		{Speaker: "...", Text: "..."},
		{Speaker: "...", Text: "..."},
	}
}

// FromObject converts a translated dialogue object (a list of maps with
// speaker, text, avatar and question fields) into entries. Anything it cannot
// read yields the placeholder list and false.
func FromObject(obj any) ([]Entry, bool) {
	items, ok := asList(obj)
	if !ok || len(items) == 0 {
		return Placeholder(), false
	}
	entries := make([]Entry, 0, len(items))
	for _, item := range items {
		fields, ok := item.(map[string]any)
		if !ok {
			return Placeholder(), false
		}
		entry, err := entryFromMap(fields)
		if err != nil {
			return Placeholder(), false
		}
		entries = append(entries, entry)
	}
	return entries, true
}

func asList(obj any) ([]any, bool) {
	switch value := obj.(type) {
	case []any:
		return value, true
	case []map[string]any:
		out := make([]any, len(value))
		for i := range value {
			out[i] = value[i]
		}
		return out, true
	default:
		return nil, false
	}
}

func entryFromMap(fields map[string]any) (Entry, error) {
	text, ok := fields["text"].(string)
	if !ok || strings.TrimSpace(text) == "" {
		return Entry{}, fmt.Errorf("text is required")
	}
	entry := Entry{Text: text}
	entry.Speaker, _ = fields["speaker"].(string)
	entry.Avatar, _ = fields["avatar"].(string)

	raw, present := fields["question"]
	if !present || raw == nil {
		return entry, nil
	}
	questionFields, ok := raw.(map[string]any)
	if !ok {
		return Entry{}, fmt.Errorf("question must be a map")
	}
	question, err := questionFromMap(questionFields)
	if err != nil {
		return Entry{}, err
	}
	entry.Question = &question
	return entry, nil
}

func questionFromMap(fields map[string]any) (Question, error) {
	var question Question
	switch kind, _ := fields["type"].(string); kind {
	case "numeric":
		question.Kind = QuestionNumeric
	case "radio":
		question.Kind = QuestionRadio
	default:
		return Question{}, fmt.Errorf("unknown question type %q", kind)
	}

	answer, ok := fields["answer"]
	if !ok || answer == nil {
		return Question{}, fmt.Errorf("question answer is required")
	}
	question.Answer = strings.TrimSpace(fmt.Sprint(answer))
	if question.Answer == "" {
		return Question{}, fmt.Errorf("question answer is required")
	}

	switch tolerance := fields["tolerance"].(type) {
	case nil:
	case int:
		question.Tolerance = float64(tolerance)
	case float64:
		question.Tolerance = tolerance
	default:
		return Question{}, fmt.Errorf("tolerance must be a number")
	}

	if question.Kind == QuestionNumeric {
		if _, err := parseNumber(question.Answer); err != nil {
			return Question{}, fmt.Errorf("numeric answer %q: %w", question.Answer, err)
		}
		return question, nil
	}

	options, ok := asList(fields["options"])
	if !ok || len(options) < 2 {
		return Question{}, fmt.Errorf("radio question needs at least two options")
	}
	found := false
	for _, option := range options {
		label := strings.TrimSpace(fmt.Sprint(option))
		question.Options = append(question.Options, label)
		if strings.EqualFold(label, question.Answer) {
			found = true
		}
	}
	if !found {
		return Question{}, fmt.Errorf("radio answer %q is not an option", question.Answer)
	}
	return question, nil
}

// AudioPath returns the voice-over file for one dialogue step.
func AudioPath(locale, dialogueKey string, index int) string {
	return fmt.Sprintf("audio/dialogs/%s/%s_%d.mp3", locale, dialogueKey, index)
}

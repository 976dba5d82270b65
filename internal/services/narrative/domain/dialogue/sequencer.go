// Package dialogue runs the per-visit cursor over a scene's dialogue entries.
//
// A Sequencer owns the typing phase and question bookkeeping of one scene
// visit. Every index change is written to the game state first and published
// on the bus second, so subscribers never observe an index that is not yet
// recorded.
package dialogue

import (
	"strings"
	"time"
	"unicode/utf8"

	apperrors "github.com/louisbranch/theorem-trail/internal/platform/errors"
	"github.com/louisbranch/theorem-trail/internal/services/narrative/domain/bus"
	"github.com/louisbranch/theorem-trail/internal/services/narrative/domain/state"
	"github.com/zyedidia/generic/mapset"
	"go.uber.org/zap"
)

// Phase is the sequencer state for the current entry.
type Phase int

const (
	PhaseTyping Phase = iota + 1
	PhaseIdle
	PhaseQuestionPending
	PhaseQuestionAnswered
	PhaseExhausted
)

// String returns the phase name used in logs and views.
func (p Phase) String() string {
	switch p {
	case PhaseTyping:
		return "typing"
	case PhaseIdle:
		return "idle"
	case PhaseQuestionPending:
		return "question-pending"
	case PhaseQuestionAnswered:
		return "question-answered"
	case PhaseExhausted:
		return "exhausted"
	default:
		return "unknown"
	}
}

var (
	// ErrNoQuestion is returned when answering an entry without a question.
	ErrNoQuestion = apperrors.New(apperrors.CodeNoQuestion, "current dialogue step has no question")
	// ErrAnswerEmpty is returned for blank submissions.
	ErrAnswerEmpty = apperrors.New(apperrors.CodeAnswerEmpty, "answer is empty")
	// ErrAnswerLocked is returned once a question was answered correctly.
	ErrAnswerLocked = apperrors.New(apperrors.CodeAnswerLocked, "question already answered correctly")
)

// AnswerState records the latest submission for one dialogue index.
type AnswerState struct {
	Answer    string
	IsCorrect bool
}

// Hooks are the scene callbacks. A nil hook is skipped; a nil OnBack makes
// Retreat at the first entry a no-op.
type Hooks struct {
	OnTypingStart    func(index int, entry Entry)
	OnTypingComplete func(index int, entry Entry)
	OnComplete       func()
	OnBack           func()
}

// Scheduler runs delayed callbacks and returns a cancel function.
type Scheduler interface {
	After(d time.Duration, fn func()) func()
}

// Gate answers whether the forward control of a step is enabled.
type Gate interface {
	NextEnabled(dialogueKey string, index int, completed mapset.Set[string]) bool
}

// Config identifies the visit and sets its pacing.
type Config struct {
	// SceneKey is the key the index is persisted under.
	SceneKey    string
	DialogueKey string
	QuestID     string
	// CharDelay is the typing time per rune. Zero completes typing at once.
	CharDelay time.Duration
	// SettleDelay separates a correct answer from the automatic advance.
	SettleDelay time.Duration
}

// Deps are the collaborators of a sequencer.
type Deps struct {
	Store  *state.Store
	Bus    *bus.Bus
	Timers Scheduler
	Gate   Gate
	Logger *zap.Logger
}

// Step is a read-only view of the current entry.
type Step struct {
	Index       int
	Total       int
	Entry       Entry
	Phase       Phase
	Answer      *AnswerState
	NextEnabled bool
	CanAdvance  bool
}

// Sequencer is the dialogue cursor of one scene visit. It is not safe for
// concurrent use; callers serialise access through the event loop.
type Sequencer struct {
	cfg     Config
	entries []Entry
	deps    Deps
	hooks   Hooks
	log     *zap.Logger

	index        int
	typing       bool
	exhausted    bool
	closed       bool
	answers      map[int]AnswerState
	cancelTyping func()
	cancelSettle func()
}

// New creates a sequencer. Empty entries are replaced by the placeholder list.
func New(cfg Config, entries []Entry, deps Deps, hooks Hooks) *Sequencer {
	if len(entries) == 0 {
		entries = Placeholder()
	}
	if strings.TrimSpace(cfg.SceneKey) == "" {
		cfg.SceneKey = cfg.DialogueKey
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Sequencer{
		cfg:     cfg,
		entries: append([]Entry(nil), entries...),
		deps:    deps,
		hooks:   hooks,
		log:     logger.With(zap.String("scene_key", cfg.SceneKey), zap.String("dialogue_key", cfg.DialogueKey)),
		answers: map[int]AnswerState{},
	}
}

// Mount positions the cursor and starts the first entry. With resume the
// cursor starts at the persisted index for the scene, clamped to the entries;
// otherwise it starts at zero.
func (s *Sequencer) Mount(resume bool) {
	start := 0
	if resume && s.deps.Store != nil {
		if stored, ok := s.deps.Store.Snapshot().DialogueIndex(s.cfg.SceneKey); ok {
			start = clamp(stored, len(s.entries))
		}
	}
	s.index = start
	s.record()
	s.enter()
}

// Index returns the current dialogue index.
func (s *Sequencer) Index() int {
	return s.index
}

// Len returns the number of entries.
func (s *Sequencer) Len() int {
	return len(s.entries)
}

// Phase returns the current phase.
func (s *Sequencer) Phase() Phase {
	switch {
	case s.exhausted:
		return PhaseExhausted
	case s.typing:
		return PhaseTyping
	case s.entries[s.index].HasQuestion():
		if s.answers[s.index].IsCorrect {
			return PhaseQuestionAnswered
		}
		return PhaseQuestionPending
	default:
		return PhaseIdle
	}
}

// Step returns the view of the current entry.
func (s *Sequencer) Step() Step {
	step := Step{
		Index:       s.index,
		Total:       len(s.entries),
		Entry:       s.entries[s.index],
		Phase:       s.Phase(),
		NextEnabled: s.gateOpen(),
	}
	if answer, ok := s.answers[s.index]; ok {
		step.Answer = &answer
	}
	step.CanAdvance = step.NextEnabled && s.questionSatisfied() && !s.exhausted
	return step
}

// Advance moves to the next entry. It does nothing while the current question
// is not answered correctly or the event gate is closed. On the last entry it
// marks the visit exhausted and calls OnComplete instead. It reports whether
// anything happened.
func (s *Sequencer) Advance() bool {
	if s.closed || s.exhausted {
		return false
	}
	if !s.questionSatisfied() {
		s.log.Debug("advance blocked by question", zap.Int("index", s.index))
		return false
	}
	if !s.gateOpen() {
		s.log.Debug("advance blocked by event gate", zap.Int("index", s.index))
		return false
	}

	s.stopTimers()
	if s.index == len(s.entries)-1 {
		s.typing = false
		s.exhausted = true
		if s.hooks.OnComplete != nil {
			s.hooks.OnComplete()
		}
		return true
	}

	s.index++
	s.record()
	s.enter()
	return true
}

// Retreat moves to the previous entry. At the first entry it resets the
// persisted index and calls OnBack when one is set, and does nothing
// otherwise. It reports whether anything happened.
func (s *Sequencer) Retreat() bool {
	if s.closed || s.exhausted {
		return false
	}
	if s.index > 0 {
		s.stopTimers()
		s.index--
		s.record()
		s.enter()
		return true
	}
	if s.hooks.OnBack == nil {
		return false
	}
	s.stopTimers()
	if s.deps.Store != nil {
		s.deps.Store.Update(state.RememberDialogueIndex(s.cfg.SceneKey, 0))
	}
	s.hooks.OnBack()
	return true
}

// SkipTyping finishes the typing effect of the current entry immediately.
func (s *Sequencer) SkipTyping() bool {
	if s.closed || !s.typing {
		return false
	}
	if s.cancelTyping != nil {
		s.cancelTyping()
		s.cancelTyping = nil
	}
	s.finishTyping(s.index)
	return true
}

// Submit records an answer for the current question. A correct answer locks
// the question and schedules Advance after the settle delay.
func (s *Sequencer) Submit(answer string) (AnswerState, error) {
	if s.closed || s.exhausted {
		return AnswerState{}, ErrNoQuestion
	}
	question := s.entries[s.index].Question
	if question == nil {
		return AnswerState{}, ErrNoQuestion
	}
	if previous, ok := s.answers[s.index]; ok && previous.IsCorrect {
		return previous, ErrAnswerLocked
	}
	answer = strings.TrimSpace(answer)
	if answer == "" {
		return AnswerState{}, ErrAnswerEmpty
	}

	result := AnswerState{Answer: answer, IsCorrect: question.Check(answer)}
	s.answers[s.index] = result
	s.log.Debug("answer submitted", zap.Int("index", s.index), zap.Bool("correct", result.IsCorrect))
	if result.IsCorrect {
		s.scheduleSettle()
	}
	return result, nil
}

// ChangeAnswer clears an incorrect submission so the player can retry.
func (s *Sequencer) ChangeAnswer() error {
	if s.closed || s.exhausted || s.entries[s.index].Question == nil {
		return ErrNoQuestion
	}
	previous, ok := s.answers[s.index]
	if ok && previous.IsCorrect {
		return ErrAnswerLocked
	}
	delete(s.answers, s.index)
	return nil
}

// Close cancels every pending timer of the visit. The sequencer ignores all
// calls afterwards.
func (s *Sequencer) Close() {
	if s.closed {
		return
	}
	s.closed = true
	s.stopTimers()
}

func (s *Sequencer) questionSatisfied() bool {
	if !s.entries[s.index].HasQuestion() {
		return true
	}
	return s.answers[s.index].IsCorrect
}

func (s *Sequencer) gateOpen() bool {
	if s.deps.Gate == nil {
		return true
	}
	var open bool
	if s.deps.Store == nil {
		return s.deps.Gate.NextEnabled(s.cfg.DialogueKey, s.index, mapset.New[string]())
	}
	s.deps.Store.View(func(current state.GameState) {
		open = s.deps.Gate.NextEnabled(s.cfg.DialogueKey, s.index, current.CompletedEvents)
	})
	return open
}

// record persists the index, then announces it.
func (s *Sequencer) record() {
	if s.deps.Store != nil {
		s.deps.Store.Update(state.RememberDialogueIndex(s.cfg.SceneKey, s.index))
	}
	if s.deps.Bus != nil {
		s.deps.Bus.Publish(bus.TopicDialogueProgress, bus.DialogueProgress{
			DialogueIndex: s.index,
			QuestID:       s.cfg.QuestID,
			DialogueKey:   s.cfg.DialogueKey,
		})
	}
}

func (s *Sequencer) enter() {
	index := s.index
	entry := s.entries[index]
	s.typing = true
	if s.hooks.OnTypingStart != nil {
		s.hooks.OnTypingStart(index, entry)
	}

	delay := s.cfg.CharDelay * time.Duration(utf8.RuneCountInString(entry.Text))
	if delay <= 0 || s.deps.Timers == nil {
		s.finishTyping(index)
		return
	}
	s.cancelTyping = s.deps.Timers.After(delay, func() {
		s.cancelTyping = nil
		s.finishTyping(index)
	})
}

func (s *Sequencer) finishTyping(index int) {
	if s.closed || !s.typing || index != s.index {
		return
	}
	s.typing = false
	if s.hooks.OnTypingComplete != nil {
		s.hooks.OnTypingComplete(index, s.entries[index])
	}
}

func (s *Sequencer) scheduleSettle() {
	if s.cancelSettle != nil {
		s.cancelSettle()
	}
	index := s.index
	if s.deps.Timers == nil {
		s.Advance()
		return
	}
	s.cancelSettle = s.deps.Timers.After(s.cfg.SettleDelay, func() {
		s.cancelSettle = nil
		if s.index == index {
			s.Advance()
		}
	})
}

func (s *Sequencer) stopTimers() {
	if s.cancelTyping != nil {
		s.cancelTyping()
		s.cancelTyping = nil
	}
	if s.cancelSettle != nil {
		s.cancelSettle()
		s.cancelSettle = nil
	}
	s.typing = false
}

func clamp(index, length int) int {
	if index < 0 {
		return 0
	}
	if index > length-1 {
		return length - 1
	}
	return index
}

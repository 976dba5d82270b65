package app

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	apperrors "github.com/louisbranch/theorem-trail/internal/platform/errors"
	"github.com/louisbranch/theorem-trail/internal/platform/i18n/catalog"
	"github.com/louisbranch/theorem-trail/internal/platform/logging"
	"github.com/louisbranch/theorem-trail/internal/platform/otel"
	"github.com/louisbranch/theorem-trail/internal/services/narrative/content"
	"github.com/louisbranch/theorem-trail/internal/services/narrative/domain/bus"
	"github.com/louisbranch/theorem-trail/internal/services/narrative/domain/dialogue"
	"github.com/louisbranch/theorem-trail/internal/services/narrative/domain/pacing"
	"github.com/louisbranch/theorem-trail/internal/services/narrative/domain/quest"
	"github.com/louisbranch/theorem-trail/internal/services/narrative/domain/scene"
	"github.com/louisbranch/theorem-trail/internal/services/narrative/domain/state"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const tracerName = "github.com/louisbranch/theorem-trail/internal/services/narrative/app"

var (
	// ErrNotStarted is returned by navigation before Start or after Close.
	ErrNotStarted = errors.New("router is not running")
	// ErrNotHub is returned when selecting a quest outside the library or the map.
	ErrNotHub = apperrors.New(apperrors.CodeQuestNotSelectable, "quests are launched from the library or the map")
)

// Deps are the collaborators of a Router. Every field is optional.
type Deps struct {
	// Store defaults to a fresh session positioned at the first scene.
	Store *state.Store
	// Bus defaults to the process-wide bus.
	Bus *bus.Bus
	// Content defaults to the embedded scenes, quests and gates.
	Content *content.Content
	// Translator defaults to the embedded catalog for Config.Locale.
	Translator Translator
	Audio      Audio
	Preloader  Preloader
	// Clock defaults to wall-clock time.
	Clock  pacing.Clock
	Logger *zap.Logger
	// Tracer defaults to the global OpenTelemetry provider.
	Tracer trace.Tracer
}

// Router drives scene progression for one game session.
type Router struct {
	cfg        Config
	store      *state.Store
	bus        *bus.Bus
	content    *content.Content
	tracker    *quest.Tracker
	translator Translator
	audio      Audio
	preloader  Preloader
	clock      pacing.Clock
	log        *zap.Logger
	tracer     trace.Tracer
	audioQueue *audioQueue
	sessionID  string

	loop pacing.Loop

	ctx      context.Context
	cancel   context.CancelFunc
	recorder bus.Unsubscribe
	started  bool
	closed   bool
	visit    *visit
}

// New wires a router. It fails only when the embedded content is invalid.
func New(cfg Config, deps Deps) (*Router, error) {
	cfg = cfg.normalize()

	c := deps.Content
	if c == nil {
		embedded, err := content.Embedded()
		if err != nil {
			return nil, fmt.Errorf("load content: %w", err)
		}
		c = embedded
	}

	store := deps.Store
	if store == nil {
		store = state.NewStore(c.Scenes.First().ID)
	}
	b := deps.Bus
	if b == nil {
		b = bus.Default()
	}
	var translator Translator = deps.Translator
	if translator == nil {
		translator = catalog.Default().Translator(cfg.Locale)
	}
	var audio Audio = nopAudio{}
	if deps.Audio != nil {
		audio = deps.Audio
	}
	var preloader Preloader = nopPreloader{}
	if deps.Preloader != nil {
		preloader = deps.Preloader
	}
	clock := deps.Clock
	if clock == nil {
		clock = pacing.RealClock{}
	}
	tracer := deps.Tracer
	if tracer == nil {
		tracer = otel.Tracer(tracerName)
	}

	sessionID := store.Snapshot().SessionID
	logger := logging.OrNop(deps.Logger).With(zap.String("session_id", sessionID))

	return &Router{
		cfg:        cfg,
		store:      store,
		bus:        b,
		content:    c,
		tracker:    quest.NewTracker(c.Quests, c.Scenes),
		translator: translator,
		audio:      audio,
		preloader:  preloader,
		clock:      clock,
		log:        logger,
		tracer:     tracer,
		audioQueue: newAudioQueue(logger),
		sessionID:  sessionID,
		ctx:        context.Background(),
		cancel:     func() {},
	}, nil
}

// Store returns the session state store.
func (r *Router) Store() *state.Store {
	return r.store
}

// Start subscribes the session to completed events and mounts the current
// scene. An empty current scene starts at the first scene of the sequence.
func (r *Router) Start(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	var err error
	r.loop.Do(func() {
		if r.closed {
			err = ErrNotStarted
			return
		}
		if r.started {
			return
		}
		r.started = true
		r.ctx, r.cancel = context.WithCancel(ctx)
		r.recorder = state.RecordCompletedEvents(r.bus, r.store)
		r.audioQueue.start()

		sceneID := r.store.Snapshot().CurrentSceneID
		if strings.TrimSpace(sceneID) == "" {
			sceneID = r.content.Scenes.First().ID
			r.store.Update(state.EnterScene(sceneID))
		}
		r.log.Info("session started", zap.String("scene_id", sceneID))
		r.mount(sceneID)
	})
	return err
}

// Close tears down the active scene and stops the session.
func (r *Router) Close() {
	r.loop.Do(func() {
		if r.closed {
			return
		}
		r.closed = true
		r.teardown()
		if r.started {
			r.audioQueue.enqueue(context.WithoutCancel(r.ctx), "pause_bgm", r.audio.PauseBgm)
		}
		if r.recorder != nil {
			r.recorder()
		}
		r.cancel()
	})
	r.audioQueue.stop()
}

// CurrentScene returns the view of the active scene.
func (r *Router) CurrentScene() View {
	var view View
	r.loop.Do(func() {
		r.active()
		view = r.view()
	})
	return view
}

// Advance moves forward in the active scene. It reports whether anything happened.
func (r *Router) Advance() bool {
	var moved bool
	r.loop.Do(func() { moved = r.advance() })
	return moved
}

// Retreat moves backward in the active scene. It reports whether anything happened.
func (r *Router) Retreat() bool {
	var moved bool
	r.loop.Do(func() { moved = r.retreat() })
	return moved
}

// SkipTyping finishes the typing effect of the current line.
func (r *Router) SkipTyping() bool {
	var skipped bool
	r.loop.Do(func() {
		if v := r.active(); v != nil && v.dialogue != nil {
			skipped = v.dialogue.SkipTyping()
		}
	})
	return skipped
}

// SubmitAnswer answers the question of the current dialogue step.
func (r *Router) SubmitAnswer(answer string) (dialogue.AnswerState, error) {
	var (
		result dialogue.AnswerState
		err    error
	)
	r.loop.Do(func() {
		v := r.active()
		if v == nil || v.dialogue == nil {
			err = dialogue.ErrNoQuestion
			return
		}
		result, err = v.dialogue.Submit(answer)
		if err != nil {
			return
		}
		sfx := SfxAnswerWrong
		if result.IsCorrect {
			sfx = SfxAnswerCorrect
		}
		r.playSfx(sfx)
	})
	return result, err
}

// ChangeAnswer clears an incorrect answer so the player can retry.
func (r *Router) ChangeAnswer() error {
	var err error
	r.loop.Do(func() {
		v := r.active()
		if v == nil || v.dialogue == nil {
			err = dialogue.ErrNoQuestion
			return
		}
		err = v.dialogue.ChangeAnswer()
	})
	return err
}

// SelectQuest launches questID from the active hub scene.
func (r *Router) SelectQuest(questID string) error {
	questID = strings.TrimSpace(questID)
	var err error
	r.loop.Do(func() {
		v := r.active()
		if v == nil || !v.known || !v.descriptor.Kind.Hub() {
			err = ErrNotHub
			return
		}
		branchID, _ := scene.BranchFor(v.sceneID)
		if err = r.tracker.CanSelect(r.store.Snapshot(), v.sceneID, questID); err != nil {
			r.log.Info("quest selection rejected", zap.String("quest_id", questID), apperrors.Field(err))
			return
		}
		_, span := r.startSpan("narrative.select_quest", v, attribute.String("quest.id", questID))
		defer span.End()

		r.store.Update(state.SelectQuest(questID))
		r.navigate(branchID)
	})
	return err
}

// OnInteractiveEventCompleted is the single ingress for mini-game milestones.
// The event is published on the bus and recorded in the game state before it
// returns.
func (r *Router) OnInteractiveEventCompleted(eventID string, data map[string]any) {
	eventID = strings.TrimSpace(eventID)
	if eventID == "" {
		return
	}
	r.loop.Do(func() {
		if r.active() == nil {
			r.log.Warn("event dropped, session not running", zap.String("event_id", eventID))
			return
		}
		r.bus.Publish(bus.TopicEventCompleted, bus.EventCompleted{EventID: eventID, Data: data})
	})
}

// IsNextEnabled reports whether every event required by the dialogue step is
// completed.
func (r *Router) IsNextEnabled(dialogueKey string, index int) bool {
	var enabled bool
	r.loop.Do(func() {
		r.store.View(func(current state.GameState) {
			enabled = r.content.Gates.NextEnabled(dialogueKey, index, current.CompletedEvents)
		})
	})
	return enabled
}

// GoTo mounts sceneID. An id that resolves to nothing renders the unknown
// scene placeholder and returns an UNKNOWN_SCENE error; it never panics
// unless the router runs in strict mode.
func (r *Router) GoTo(sceneID string) error {
	sceneID = strings.TrimSpace(sceneID)
	var err error
	r.loop.Do(func() {
		if r.active() == nil {
			err = ErrNotStarted
			return
		}
		r.navigate(sceneID)
		if v := r.visit; v != nil && !v.known {
			err = v.cause
		}
	})
	return err
}

// active returns the mounted visit, first remounting when the store's current
// scene was changed without going through the router.
func (r *Router) active() *visit {
	if !r.started || r.closed {
		return nil
	}
	if sceneID := r.store.Snapshot().CurrentSceneID; r.visit == nil || r.visit.sceneID != sceneID {
		r.log.Info("current scene changed in store, remounting", zap.String("scene_id", sceneID))
		r.teardown()
		r.mount(sceneID)
	}
	return r.visit
}

func (r *Router) advance() bool {
	v := r.active()
	if v == nil || !v.known {
		return false
	}
	_, span := r.startSpan("narrative.advance", v)
	defer span.End()

	if v.dialogue != nil {
		return v.dialogue.Advance()
	}
	switch v.descriptor.Kind {
	case scene.KindTitle, scene.KindLibrary, scene.KindEnding:
		r.navigate(r.nextSceneID(v.sceneID))
		return true
	case scene.KindLoading, scene.KindMap, scene.KindNarrator, scene.KindMainCharacter, scene.KindInteractive, scene.KindUnknown:
		return false
	default:
		return false
	}
}

func (r *Router) retreat() bool {
	v := r.active()
	if v == nil || !v.known {
		return false
	}
	_, span := r.startSpan("narrative.retreat", v)
	defer span.End()

	if v.dialogue != nil {
		return v.dialogue.Retreat()
	}
	switch v.descriptor.Kind {
	case scene.KindLibrary, scene.KindMap, scene.KindEnding:
		back := r.backHook(v)
		if back == nil {
			return false
		}
		back()
		return true
	case scene.KindLoading, scene.KindTitle, scene.KindNarrator, scene.KindMainCharacter, scene.KindInteractive, scene.KindUnknown:
		return false
	default:
		return false
	}
}

// nextSceneID returns the scene after id, looping to the title at the end of
// the sequence.
func (r *Router) nextSceneID(id string) string {
	if next, ok := r.content.Scenes.Next(id); ok {
		return next.ID
	}
	return scene.IDTitle
}

func (r *Router) backHook(v *visit) func() {
	previous, ok := r.content.Scenes.Previous(v.sceneID)
	if !ok {
		return nil
	}
	return func() { r.navigate(previous.ID) }
}

func (r *Router) navigate(sceneID string) {
	r.teardown()
	r.store.Update(state.EnterScene(sceneID))
	r.mount(sceneID)
}

func (r *Router) teardown() {
	v := r.visit
	if v == nil {
		return
	}
	r.visit = nil
	v.close()
	r.audioQueue.enqueue(context.WithoutCancel(r.ctx), "pause_dialog", r.audio.PauseDialog)
	r.log.Debug("scene unmounted", zap.String("scene_id", v.sceneID))
}

func (r *Router) newVisit(sceneID string) *visit {
	ctx, cancel := context.WithCancel(r.ctx)
	return &visit{
		sceneID: sceneID,
		timers:  pacing.NewGroup(r.clock, &r.loop),
		ctx:     ctx,
		cancel:  cancel,
	}
}

func (r *Router) mount(sceneID string) {
	v := r.newVisit(sceneID)
	r.visit = v
	_, span := r.startSpan("narrative.mount", v)
	defer span.End()

	if scene.IsBranch(sceneID) {
		r.mountBranch(v)
		return
	}

	d, ok := r.content.Scenes.Resolve(sceneID)
	if !ok {
		v.cause = apperrors.WithMetadata(apperrors.CodeUnknownScene, "scene "+sceneID+" does not exist", map[string]string{"SceneID": sceneID})
		span.SetStatus(codes.Error, "unknown scene")
		r.log.Warn("unknown scene, showing placeholder", zap.String("scene_id", sceneID))
		return
	}
	v.known = true
	v.descriptor = d

	switch d.Kind {
	case scene.KindLoading:
		r.mountLoading(v)
	case scene.KindTitle:
		r.audioQueue.enqueue(r.ctx, "play_bgm", func(ctx context.Context) error {
			return r.audio.PlayBgm(ctx, ThemeMusic)
		})
	case scene.KindNarrator, scene.KindMainCharacter:
		r.startDialogue(v, d.DialogueKey, d.ID, "", d.ResumeFromLast, false, func() {
			r.navigate(r.nextSceneID(v.sceneID))
		}, r.backHook(v))
	case scene.KindInteractive:
		v.questID = d.QuestID
		r.startDialogue(v, d.DialogueKey, d.ID, d.QuestID, false, false, func() {
			r.finishQuest(v.questID)
		}, r.backHook(v))
	case scene.KindLibrary, scene.KindMap:
		r.mountHub(v)
	case scene.KindEnding:
		r.playSfx(SfxEnding)
	case scene.KindUnknown:
		v.known = false
		v.cause = apperrors.WithMetadata(apperrors.CodeUnknownScene, "scene "+sceneID+" has no kind", map[string]string{"SceneID": sceneID})
	}
	r.log.Debug("scene mounted", zap.String("scene_id", sceneID), zap.Stringer("kind", d.Kind))
}

func (r *Router) mountLoading(v *visit) {
	v.loading = true
	assets := slices.Clone(v.descriptor.Assets)
	ctx, cancel := context.WithTimeout(v.ctx, r.cfg.PreloadTimeout)
	go func() {
		defer cancel()
		err := r.preloader.Preload(ctx, assets)
		r.loop.Do(func() {
			if r.closed || r.visit != v {
				return
			}
			if err != nil {
				r.log.Warn("asset preload failed, continuing", zap.Int("assets", len(assets)), zap.Error(err))
			}
			v.loading = false
			r.navigate(r.nextSceneID(v.sceneID))
		})
	}()
}

func (r *Router) mountHub(v *visit) {
	snapshot := r.store.Snapshot()
	for _, questID := range snapshot.FadingBadges {
		v.timers.After(r.cfg.BadgeFadeDelay, func() {
			r.store.Update(state.RemoveFadingBadge(questID))
		})
	}

	key := v.descriptor.IntroDialogueKey
	if key == "" || snapshot.LibraryDialogueShown[key] {
		return
	}
	r.store.Update(state.MarkDialogueShown(key))
	r.startDialogue(v, key, key, "", false, true, func() {
		if v.dialogue != nil {
			v.dialogue.Close()
			v.dialogue = nil
		}
	}, r.backHook(v))
}

func (r *Router) mountBranch(v *visit) {
	hubID, _ := scene.BranchOwner(v.sceneID)
	snapshot := r.store.Snapshot()
	questID := snapshot.ActiveQuest
	if err := r.tracker.CanSelect(snapshot, hubID, questID); err != nil {
		r.fail(apperrors.WrapWithMetadata(apperrors.CodeBranchQuestMissing,
			"branch scene "+v.sceneID+" has no playable quest",
			map[string]string{"SceneID": v.sceneID, "QuestID": questID}, err))
		return
	}
	q, _ := r.tracker.Registry().Get(questID)

	v.known = true
	v.branch = true
	v.hubID = hubID
	v.questID = q.ID
	v.descriptor = scene.Descriptor{
		ID:          v.sceneID,
		Kind:        scene.KindInteractive,
		TitleKey:    q.TitleKey,
		DialogueKey: q.DialogueKey,
		QuestID:     q.ID,
	}
	r.startDialogue(v, q.DialogueKey, branchSceneKey(v.sceneID, q.ID), q.ID, false, false, func() {
		r.finishQuest(v.questID)
	}, func() {
		r.store.Update(state.ClearActiveQuest())
		r.navigate(hubID)
	})
}

func (r *Router) startDialogue(v *visit, key, sceneKey, questID string, resume, intro bool, onComplete, onBack func()) {
	entries, ok := dialogue.FromObject(r.translator.Object(key))
	if !ok {
		r.log.Warn("dialogue data missing, showing placeholder", zap.String("dialogue_key", key))
	}
	v.dialogueKey = key
	v.sceneKey = sceneKey
	v.intro = intro
	v.dialogue = dialogue.New(dialogue.Config{
		SceneKey:    sceneKey,
		DialogueKey: key,
		QuestID:     questID,
		CharDelay:   r.cfg.CharDelay,
		SettleDelay: r.cfg.SettleDelay,
	}, entries, dialogue.Deps{
		Store:  r.store,
		Bus:    r.bus,
		Timers: v.timers,
		Gate:   r.content.Gates,
		Logger: r.log,
	}, dialogue.Hooks{
		OnTypingStart: func(index int, _ dialogue.Entry) {
			path := dialogue.AudioPath(r.cfg.Locale, key, index)
			r.audioQueue.enqueue(v.ctx, "play_dialog", func(ctx context.Context) error {
				return r.audio.PlayDialog(ctx, path)
			})
		},
		OnTypingComplete: func(index int, _ dialogue.Entry) {
			r.log.Debug("line typed", zap.String("dialogue_key", key), zap.Int("index", index))
		},
		OnComplete: onComplete,
		OnBack:     onBack,
	})
	v.dialogue.Mount(resume)
}

func (r *Router) finishQuest(questID string) {
	_, span := r.startSpan("narrative.finish_quest", r.visit, attribute.String("quest.id", questID))
	defer span.End()

	outcome, err := r.tracker.Finish(r.store, questID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "finish quest")
		r.fail(err)
		return
	}
	span.SetAttributes(
		attribute.String("scene.destination", outcome.Destination),
		attribute.Bool("quest.totality", outcome.Totality),
	)
	r.log.Info("quest finished",
		zap.String("quest_id", questID),
		zap.String("destination", outcome.Destination),
		zap.Bool("first_completion", outcome.FirstCompletion),
		zap.Bool("totality", outcome.Totality),
	)
	r.playSfx(SfxQuestComplete)
	r.navigate(outcome.Destination)
}

// fail handles engine-internal failures: strict mode panics, otherwise the
// active scene degrades to the unknown-scene placeholder.
func (r *Router) fail(err error) {
	if r.cfg.Strict {
		panic(err)
	}
	sceneID := ""
	if r.visit != nil {
		sceneID = r.visit.sceneID
	}
	r.log.Error("narrative engine failure", zap.String("scene_id", sceneID), apperrors.Field(err))
	r.teardown()
	v := r.newVisit(sceneID)
	v.cause = err
	r.visit = v
}

func (r *Router) playSfx(name string) {
	r.audioQueue.enqueue(r.ctx, "play_sfx", func(ctx context.Context) error {
		return r.audio.PlaySfx(ctx, name)
	})
}

func (r *Router) startSpan(name string, v *visit, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	attrs = append(attrs, attribute.String("session.id", r.sessionID))
	if v != nil {
		attrs = append(attrs, attribute.String("scene.id", v.sceneID))
	}
	return r.tracer.Start(r.ctx, name, trace.WithAttributes(attrs...))
}

func (r *Router) view() View {
	snapshot := r.store.Snapshot()
	v := r.visit
	if v == nil || !v.known {
		sceneID := snapshot.CurrentSceneID
		var cause error
		if v != nil {
			sceneID, cause = v.sceneID, v.cause
		}
		return View{
			SceneID:  sceneID,
			Kind:     scene.KindUnknown,
			Unknown:  r.unknownView(cause),
			Progress: r.tracker.Progress(snapshot),
		}
	}

	view := View{
		SceneID:    v.sceneID,
		Kind:       v.descriptor.Kind,
		Known:      true,
		Branch:     v.branch,
		HubID:      v.hubID,
		QuestID:    v.questID,
		Descriptor: v.descriptor,
		Loading:    v.loading,
		Progress:   r.tracker.Progress(snapshot),
	}
	if v.descriptor.TitleKey != "" {
		view.Title = r.translator.Text(v.descriptor.TitleKey)
	}
	if v.dialogue != nil {
		view.Dialogue = &DialogueView{
			Key:      v.dialogueKey,
			SceneKey: v.sceneKey,
			Intro:    v.intro,
			Step:     v.dialogue.Step(),
		}
	}
	if v.descriptor.Kind.Hub() {
		view.Hub = r.hubView(v.sceneID, snapshot)
	}
	return view
}

func (r *Router) hubView(hubID string, snapshot state.GameState) *HubView {
	owner := quest.OwnerMap
	if hubID == scene.IDLibrary {
		owner = quest.OwnerLibrary
	}
	hub := &HubView{}
	for _, q := range r.tracker.Registry().OwnedBy(owner) {
		hub.Quests = append(hub.Quests, QuestCard{
			ID:        q.ID,
			Title:     r.translator.Text(q.TitleKey),
			Kind:      q.Kind,
			Completed: snapshot.HasCompletedQuest(q.ID),
			Unlocked:  r.tracker.Unlocked(snapshot, q.ID),
			Fading:    slices.Contains(snapshot.FadingBadges, q.ID),
		})
	}
	return hub
}

func (r *Router) unknownView(cause error) *UnknownView {
	view := &UnknownView{
		Title: r.translator.Text("core.unknown_scene.title"),
		Body:  r.translator.Text("core.unknown_scene.body"),
	}
	if cause != nil {
		view.Reason = apperrors.Localize(cause, r.cfg.Locale)
	}
	return view
}

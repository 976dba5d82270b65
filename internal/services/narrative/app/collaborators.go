package app

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// Translator resolves localized text and structured content. Lookups never
// fail: a missing key is returned as-is.
type Translator interface {
	Text(key string) string
	Object(key string) any
}

// Audio plays dialogue voice lines, background music and effects. Calls are
// fire-and-forget; errors are logged by the router and never block progression.
type Audio interface {
	PlayDialog(ctx context.Context, path string) error
	PauseDialog(ctx context.Context) error
	PlayBgm(ctx context.Context, path string) error
	PauseBgm(ctx context.Context) error
	PlaySfx(ctx context.Context, name string) error
}

// Preloader warms asset caches for the loading scene.
type Preloader interface {
	Preload(ctx context.Context, paths []string) error
}

// Sound effects played by the router.
const (
	SfxAnswerCorrect = "answer_correct"
	SfxAnswerWrong   = "answer_wrong"
	SfxQuestComplete = "quest_complete"
	SfxEnding        = "ending"
)

// ThemeMusic is the background track started on the title scene.
const ThemeMusic = "audio/bgm/theme.mp3"

type nopAudio struct{}

func (nopAudio) PlayDialog(context.Context, string) error { return nil }
func (nopAudio) PauseDialog(context.Context) error        { return nil }
func (nopAudio) PlayBgm(context.Context, string) error    { return nil }
func (nopAudio) PauseBgm(context.Context) error           { return nil }
func (nopAudio) PlaySfx(context.Context, string) error    { return nil }

type nopPreloader struct{}

func (nopPreloader) Preload(context.Context, []string) error { return nil }

const audioQueueSize = 64

type audioRequest struct {
	ctx context.Context
	op  string
	run func(context.Context) error
}

// audioQueue runs audio calls in order on one goroutine. A request whose
// context is cancelled before it starts is skipped.
type audioQueue struct {
	log      *zap.Logger
	requests chan audioRequest
	done     chan struct{}

	mu      sync.Mutex
	started bool
	stopped bool
}

func newAudioQueue(log *zap.Logger) *audioQueue {
	return &audioQueue{
		log:      log,
		requests: make(chan audioRequest, audioQueueSize),
		done:     make(chan struct{}),
	}
}

func (q *audioQueue) start() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.started || q.stopped {
		return
	}
	q.started = true
	go q.run()
}

func (q *audioQueue) run() {
	defer close(q.done)
	for req := range q.requests {
		if req.ctx.Err() != nil {
			continue
		}
		if err := req.run(req.ctx); err != nil {
			q.log.Warn("audio request failed", zap.String("op", req.op), zap.Error(err))
		}
	}
}

// enqueue never blocks. A full queue drops the request.
func (q *audioQueue) enqueue(ctx context.Context, op string, run func(context.Context) error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.stopped {
		return
	}
	select {
	case q.requests <- audioRequest{ctx: ctx, op: op, run: run}:
	default:
		q.log.Warn("audio queue full, dropping request", zap.String("op", op))
	}
}

func (q *audioQueue) stop() {
	q.mu.Lock()
	if q.stopped {
		q.mu.Unlock()
		return
	}
	q.stopped = true
	started := q.started
	close(q.requests)
	q.mu.Unlock()

	if started {
		<-q.done
	}
}

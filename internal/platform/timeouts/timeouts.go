// Package timeouts defines shared durations used across the engine.
// Centralizing these values prevents drift between components and makes the
// pacing of the game discoverable in one place.
package timeouts

import "time"

// TypingCharDelay is the typing-effect time per rune of a dialogue line.
const TypingCharDelay = 30 * time.Millisecond

// AnswerSettle separates a correct answer from the automatic advance.
const AnswerSettle = 1500 * time.Millisecond

// BadgeFade is how long a completed quest badge plays its exit animation.
const BadgeFade = 1200 * time.Millisecond

// Preload caps the time the loading scene waits for asset preloading.
const Preload = 10 * time.Second

// TelemetryShutdown limits how long a command waits to flush traces.
const TelemetryShutdown = 5 * time.Second

// Package app composes the narrative engine into a Router, the single object
// the game shell talks to.
//
// The Router owns the active scene visit. A visit is everything mounted for
// one scene: its dialogue sequencer, its timers, its bus subscriptions and the
// context its audio requests run on. Leaving a scene tears the visit down, so
// no timer or pending audio request outlives the scene that created it.
//
// Every exported method runs as one turn of the engine event loop. Timer
// callbacks and preload completion run as turns too, so progression logic
// never observes a half-applied transition.
package app

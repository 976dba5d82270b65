// Package playthrough runs scripted game sessions against the narrative
// engine.
//
// Scripts are Lua files that build a Playthrough with chained steps:
//
//	local p = Playthrough.new("library", {scene = "library"})
//	p:advance():advance()
//	p:select_quest("thales"):expect_scene("library-interactive")
//	return p
//
// The runner replays the steps on a fresh session with virtual time, so
// typing effects and answer settle delays only elapse through wait steps.
package playthrough

// Package errors provides structured error handling with i18n support.
package errors

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unknown error.
	CodeUnknown Code = "UNKNOWN"

	// Scene errors
	CodeUnknownScene        Code = "UNKNOWN_SCENE"
	CodeBranchQuestMissing  Code = "BRANCH_QUEST_MISSING"
	CodeSceneNotInteractive Code = "SCENE_NOT_INTERACTIVE"

	// Quest errors
	CodeQuestNotFound      Code = "QUEST_NOT_FOUND"
	CodeQuestLocked        Code = "QUEST_LOCKED"
	CodeQuestNotSelectable Code = "QUEST_NOT_SELECTABLE"

	// Dialogue errors
	CodeAnswerEmpty  Code = "ANSWER_EMPTY"
	CodeAnswerLocked Code = "ANSWER_LOCKED"
	CodeNoQuestion   Code = "NO_QUESTION"

	// Content errors
	CodeContentInvalid Code = "CONTENT_INVALID"
)

// Category groups codes by how the shell should react to them.
type Category int

const (
	// CategoryInternal marks engine faults: broken content or routing invariants.
	CategoryInternal Category = iota
	// CategoryInvalidInput marks player input that was rejected locally.
	CategoryInvalidInput
	// CategoryFailedPrecondition marks actions the current progression does not allow.
	CategoryFailedPrecondition
	// CategoryNotFound marks references to ids that do not exist.
	CategoryNotFound
)

// String returns the category name used in logs.
func (c Category) String() string {
	switch c {
	case CategoryInvalidInput:
		return "invalid_input"
	case CategoryFailedPrecondition:
		return "failed_precondition"
	case CategoryNotFound:
		return "not_found"
	default:
		return "internal"
	}
}

// Category maps domain codes to categories.
func (c Code) Category() Category {
	switch c {
	// InvalidInput - rejected submissions, nothing changed
	case CodeAnswerEmpty,
		CodeNoQuestion:
		return CategoryInvalidInput

	// FailedPrecondition - progression doesn't allow the action yet
	case CodeAnswerLocked,
		CodeQuestLocked,
		CodeQuestNotSelectable,
		CodeSceneNotInteractive:
		return CategoryFailedPrecondition

	// NotFound - unknown ids
	case CodeUnknownScene,
		CodeQuestNotFound:
		return CategoryNotFound

	default:
		return CategoryInternal
	}
}

// Internal reports whether the code signals an engine fault rather than a
// rejected player action.
func (c Code) Internal() bool {
	return c.Category() == CategoryInternal
}

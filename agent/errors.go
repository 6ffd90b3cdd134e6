package agent

import "errors"

// Sentinel errors for the orchestration loop. Callers match these with
// errors.Is; all of them abandon the current tool cycle but leave the
// session usable.
var (
	// ErrUnknownTool is returned when a tool call names a tool that is not
	// registered.
	ErrUnknownTool = errors.New("unknown tool")

	// ErrLoopDetected is returned when the same tool call is repeated beyond
	// the loop guard threshold.
	ErrLoopDetected = errors.New("tool call loop detected")

	// ErrInvalidQuery is returned when a search query is blank and cannot be
	// recovered from the conversation.
	ErrInvalidQuery = errors.New("invalid query")

	// ErrInvalidArgument is returned when a tool argument is malformed or
	// missing with no recovery heuristic.
	ErrInvalidArgument = errors.New("invalid argument")
)

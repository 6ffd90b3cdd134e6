package agent

import "encoding/json"

// loopThreshold is the number of identical consecutive tool calls allowed
// before the guard blocks. The first occurrence counts as 1, so the fourth
// identical call is the first one blocked.
const loopThreshold = 3

// loopGuard detects runaway repeated tool invocations. It is stateful
// across the entire session, not per turn.
type loopGuard struct {
	lastSignature string
	repeatCount   int
}

// allow records the call and reports whether it may proceed. A different
// signature resets the counter implicitly.
func (g *loopGuard) allow(tool string, args map[string]any) bool {
	sig := callSignature(tool, args)
	if sig == g.lastSignature {
		g.repeatCount++
	} else {
		g.lastSignature = sig
		g.repeatCount = 1
	}
	return g.repeatCount <= loopThreshold
}

// callSignature produces a stable serialization of a tool call.
// encoding/json sorts map keys, which makes the output canonical.
func callSignature(tool string, args map[string]any) string {
	payload := struct {
		Tool string         `json:"tool"`
		Args map[string]any `json:"args"`
	}{Tool: tool, Args: args}

	data, err := json.Marshal(payload)
	if err != nil {
		// Unserializable arguments still need a deterministic signature.
		return tool
	}
	return string(data)
}

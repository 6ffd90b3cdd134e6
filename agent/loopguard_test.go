package agent

import "testing"

func TestLoopGuardBlocksRepeatedCalls(t *testing.T) {
	var g loopGuard
	args := map[string]any{"query": "go"}

	for i := 1; i <= 3; i++ {
		if !g.allow("web_search", args) {
			t.Fatalf("call %d should be allowed", i)
		}
	}
	if g.allow("web_search", args) {
		t.Fatal("4th identical call should be blocked")
	}
	if g.allow("web_search", args) {
		t.Fatal("5th identical call should be blocked")
	}
}

func TestLoopGuardResetsOnDifferentCall(t *testing.T) {
	var g loopGuard

	for i := 0; i < 3; i++ {
		g.allow("web_search", map[string]any{"query": "a"})
	}
	if !g.allow("web_search", map[string]any{"query": "b"}) {
		t.Fatal("different arguments should reset the counter")
	}
	if !g.allow("read_url", map[string]any{"query": "b"}) {
		t.Fatal("different tool should reset the counter")
	}
}

func TestCallSignatureStable(t *testing.T) {
	a := callSignature("t", map[string]any{"x": 1, "y": "z"})
	b := callSignature("t", map[string]any{"y": "z", "x": 1})
	if a != b {
		t.Errorf("signatures differ for equal calls: %q vs %q", a, b)
	}

	c := callSignature("t", map[string]any{"x": 2, "y": "z"})
	if a == c {
		t.Error("signatures equal for different arguments")
	}
}

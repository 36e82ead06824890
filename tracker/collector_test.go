package tracker

import (
	"testing"
	"time"

	"faction-oc-bot/clock"
)

func TestCollectorFirstReactionWins(t *testing.T) {
	clk := clock.Fake(now)
	c := NewCollectors(clk)
	var verdicts []Verdict
	c.Open("m1", 5*time.Minute, func(v Verdict) { verdicts = append(verdicts, v) })

	if c.Collect("m1", "👍") {
		t.Fatal("Collect(unrelated emoji) = true, want false")
	}
	if !c.Collect("m1", EmojiApprove) {
		t.Fatal("Collect(approve) = false, want true")
	}
	if c.Collect("m1", EmojiDismiss) {
		t.Fatal("second Collect = true, want false")
	}
	clk.Advance(10 * time.Minute)

	if len(verdicts) != 1 || verdicts[0] != VerdictApprove {
		t.Fatalf("verdicts = %v, want [approve]", verdicts)
	}
	if c.Len() != 0 || clk.Pending() != 0 {
		t.Fatalf("Len() = %d, Pending() = %d after close, want 0/0", c.Len(), clk.Pending())
	}
}

func TestCollectorTimeout(t *testing.T) {
	clk := clock.Fake(now)
	c := NewCollectors(clk)
	var verdicts []Verdict
	c.Open("m1", 5*time.Minute, func(v Verdict) { verdicts = append(verdicts, v) })

	clk.Advance(5*time.Minute - time.Second)
	if len(verdicts) != 0 {
		t.Fatalf("window closed early: %v", verdicts)
	}
	clk.Advance(time.Second)
	if len(verdicts) != 1 || verdicts[0] != VerdictTimeout {
		t.Fatalf("verdicts = %v, want [timeout]", verdicts)
	}
	if c.Collect("m1", EmojiApprove) {
		t.Fatal("Collect after timeout = true, want false")
	}
}

func TestCollectorUnknownMessage(t *testing.T) {
	c := NewCollectors(clock.Fake(now))
	if c.Collect("nope", EmojiApprove) {
		t.Fatal("Collect(unknown message) = true, want false")
	}
}

func TestCollectorsAreIndependent(t *testing.T) {
	clk := clock.Fake(now)
	c := NewCollectors(clk)
	got := map[string]Verdict{}
	c.Open("a", 5*time.Minute, func(v Verdict) { got["a"] = v })
	c.Open("b", 5*time.Minute, func(v Verdict) { got["b"] = v })

	c.Collect("b", EmojiDismiss)
	clk.Advance(5 * time.Minute)

	if got["a"] != VerdictTimeout || got["b"] != VerdictDismiss {
		t.Fatalf("verdicts = %v, want a:timeout b:dismiss", got)
	}
}

package tracker

import (
	"fmt"
	"strings"
	"time"
)

// Reactions offered on an escalation alert.
const (
	EmojiApprove = "✅"
	EmojiDismiss = "❌"
)

// FormatDuration renders d as "Xh Ym", dropping the hours segment when it is zero.
// Seconds are truncated and negative durations render as "0m".
func FormatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	seconds := int64(d / time.Second)
	hours := seconds / 3600
	minutes := (seconds % 3600) / 60
	if hours > 0 {
		return fmt.Sprintf("%dh %dm", hours, minutes)
	}
	return fmt.Sprintf("%dm", minutes)
}

// Since formats the time elapsed from a unix timestamp; a zero timestamp renders as "0m".
func Since(ts int64, now time.Time) string {
	if ts == 0 {
		return "0m"
	}
	return FormatDuration(now.Sub(time.Unix(ts, 0)))
}

func sinceTime(t *time.Time, now time.Time) string {
	if t == nil {
		return "0m"
	}
	return FormatDuration(now.Sub(*t))
}

// NextUpdate returns the next top-of-minute boundary strictly after now.
func NextUpdate(now time.Time) time.Time {
	ts := now.Unix()
	return time.Unix(ts+(60-ts%60), 0)
}

// RenderSummary builds the status message body.
func RenderSummary(s Summary, now time.Time) string {
	var b strings.Builder
	b.WriteString("**Faction OC Status**\n")
	fmt.Fprintf(&b, "Total: %d\nIn OC: %d\nNot in OC: %d", s.Total, s.InOC, s.NotInOC)

	b.WriteString("\n\n**Not in OC:**\n")
	if len(s.Outside) == 0 {
		b.WriteString("None!")
	}
	for i, m := range s.Outside {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "• %s (Not in OC: %s, Last action: %s)", m.Name, m.NotInOCFor, m.LastActionAgo)
	}

	fmt.Fprintf(&b, "\n\nLast updated: <t:%d:R>", now.Unix())
	fmt.Fprintf(&b, "\nNext update in: <t:%d:R>", NextUpdate(now).Unix())
	return b.String()
}

// AlertText is the escalation message for a member out of OC past the threshold.
func AlertText(mention, name string) string {
	prefix := "⚠️ "
	if mention != "" {
		prefix += mention + " "
	}
	return fmt.Sprintf("%s%s has not been in an OC for 24h! React %s to increment their tally, %s to ignore.",
		prefix, name, EmojiApprove, EmojiDismiss)
}

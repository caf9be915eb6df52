// Package export renders a conversation log as a downloadable plain-text
// transcript. Formatting takes "now" as an explicit argument so callers
// and tests stay deterministic.
package export

import (
	"fmt"
	"strings"
	"time"

	"github.com/moloudamini/chatbot/internal/model/chat"
)

// FormatTimestamp renders ts for display: same-day timestamps show only
// the clock time, older ones get a month/day prefix. 12-hour clock.
func FormatTimestamp(ts, now time.Time) string {
	if sameDay(ts, now) {
		return ts.Format("3:04 PM")
	}
	return ts.Format("Jan 2, 3:04 PM")
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// Transcript renders one line per message in log order:
// "<timestamp> - <SENDER>: <text>".
func Transcript(messages []chat.Message, now time.Time) string {
	lines := make([]string, 0, len(messages))
	for _, m := range messages {
		line := fmt.Sprintf("%s - %s: %s", FormatTimestamp(m.CreatedAt, now), strings.ToUpper(string(m.Sender)), m.Text)
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

// Filename names the export artifact after the export time, not the
// message times: chat-history-<YYYY-MM-DD>-<unix-millis>.txt.
func Filename(now time.Time) string {
	return fmt.Sprintf("chat-history-%s-%d.txt", now.Format("2006-01-02"), now.UnixMilli())
}

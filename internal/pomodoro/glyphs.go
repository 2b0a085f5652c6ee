package pomodoro

import "strings"

const (
	DoneGlyph      = "🍅"
	ActiveGlyph    = "🍊"
	LongBreakGlyph = "-"
)

// Glyphs draws one tomato per completed pomodoro and an orange for the one in
// progress, with a dash before every PerLongBreak-th glyph after the first.
func Glyphs(done int, active bool) string {
	n := done
	if active {
		n++
	}
	var b strings.Builder
	for i := 0; i < n; i++ {
		if (i+1)%PerLongBreak == 1 && i != 0 {
			b.WriteString(LongBreakGlyph)
		}
		if i < done {
			b.WriteString(DoneGlyph)
		} else {
			b.WriteString(ActiveGlyph)
		}
	}
	return b.String()
}

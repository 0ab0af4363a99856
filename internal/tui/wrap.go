package tui

import (
	"strings"
	"unicode"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

type styledRune struct {
	s       string
	width   int
	isSpace bool
}

// styleLine colours one line of feedback: MISS and the no-such-input
// placeholder red, gap counts grey, labels bright. Lines that are not
// practice output are rendered as prompts.
func styleLine(line string) []styledRune {
	practice := isPracticeLine(line)
	out := make([]styledRune, 0, len(line))
	for _, tok := range splitTokens(line) {
		style := promptStyle
		if practice {
			style = tokenStyle(tok)
		}
		for _, r := range tok {
			out = append(out, styledRune{
				s:       style.Render(string(r)),
				width:   runewidth.RuneWidth(r),
				isSpace: r == ' ',
			})
		}
	}
	return out
}

func tokenStyle(tok string) lipgloss.Style {
	switch {
	case tok == "MISS" || tok == "-":
		return missStyle
	case strings.TrimSpace(tok) == "":
		return gapStyle
	case strings.IndexFunc(tok, func(r rune) bool { return !unicode.IsDigit(r) }) < 0:
		return gapStyle
	default:
		return labelStyle
	}
}

// isPracticeLine reports whether every token is a label, a gap count, MISS
// or the placeholder.
func isPracticeLine(line string) bool {
	if strings.TrimSpace(line) == "" {
		return false
	}
	for _, tok := range strings.Fields(line) {
		if tok == "MISS" || tok == "-" {
			continue
		}
		for _, r := range tok {
			if !unicode.IsDigit(r) && (r < 'a' || r > 'z') {
				return false
			}
		}
	}
	return true
}

// splitTokens splits s into alternating runs of spaces and non-spaces.
func splitTokens(s string) []string {
	var out []string
	start := 0
	for i, r := range s {
		if i == 0 {
			continue
		}
		prev := s[i-1] == ' '
		if (r == ' ') != prev {
			out = append(out, s[start:i])
			start = i
		}
	}
	if start < len(s) {
		out = append(out, s[start:])
	}
	return out
}

// renderFeedback styles the feedback text and wraps each line to width.
func renderFeedback(text string, width int) string {
	lines := strings.Split(text, "\n")
	out := make([]string, len(lines))
	for i, line := range lines {
		out[i] = wrapStyledRunes(styleLine(line), width)
	}
	return strings.Join(out, "\n")
}

func renderStyledRunes(runes []styledRune) string {
	var b strings.Builder
	for _, item := range runes {
		b.WriteString(item.s)
	}
	return b.String()
}

func wrapStyledRunes(runes []styledRune, width int) string {
	if width <= 0 {
		return renderStyledRunes(runes)
	}
	var out strings.Builder
	line := make([]styledRune, 0, len(runes))
	lineWidth := 0
	lastSpaceIdx := -1

	for i := 0; i < len(runes); {
		item := runes[i]
		if lineWidth+item.width > width && len(line) > 0 {
			if lastSpaceIdx >= 0 {
				out.WriteString(renderStyledRunes(line[:lastSpaceIdx]))
				out.WriteRune('\n')
				line = append([]styledRune{}, line[lastSpaceIdx+1:]...)
				lineWidth = lineWidthOf(line)
				lastSpaceIdx = lastSpaceIndex(line)
			} else {
				out.WriteString(renderStyledRunes(line))
				out.WriteRune('\n')
				line = line[:0]
				lineWidth = 0
				lastSpaceIdx = -1
			}
			continue
		}
		line = append(line, item)
		lineWidth += item.width
		if item.isSpace {
			lastSpaceIdx = len(line) - 1
		}
		i++
	}
	out.WriteString(renderStyledRunes(line))
	return out.String()
}

func lineWidthOf(line []styledRune) int {
	total := 0
	for _, item := range line {
		total += item.width
	}
	return total
}

func lastSpaceIndex(line []styledRune) int {
	for i := len(line) - 1; i >= 0; i-- {
		if line[i].isSpace {
			return i
		}
	}
	return -1
}

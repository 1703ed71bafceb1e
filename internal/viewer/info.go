package viewer

import (
	"strings"
	"unicode/utf8"

	"github.com/Faultbox/midgard-gallery/internal/catalog"
)

// InfoLine is one line of the detail panel text.
type InfoLine struct {
	Text    string
	Heading bool
	Dim     bool
}

// InfoLines lays out the panel text for entry in lines of at most cols
// characters. Empty fields are left out.
func InfoLines(e catalog.Entry, cols int) []InfoLine {
	var out []InfoLine
	add := func(text string, heading, dim bool) {
		for _, l := range WrapText(text, cols) {
			out = append(out, InfoLine{Text: l, Heading: heading, Dim: dim})
		}
	}

	title := e.Title
	if title == "" {
		title = e.Key()
	}
	add(title, true, false)
	if e.Author != "" {
		add(e.Author, false, false)
	}
	if e.Role != "" {
		add(e.Role, false, true)
	}
	if e.Technique != "" {
		add("Técnica: "+e.Technique, false, true)
	}
	if e.Size != "" {
		add("Tamaño: "+e.Size, false, true)
	}
	if e.Description != "" {
		out = append(out, InfoLine{})
		add(e.Description, false, false)
	}
	return out
}

// WrapText breaks s into lines of at most cols runes, splitting on spaces
// and hard-splitting words longer than a line. Newlines in s start a new
// line.
func WrapText(s string, cols int) []string {
	if cols <= 0 {
		cols = 1
	}
	var lines []string
	for _, para := range strings.Split(s, "\n") {
		words := strings.Fields(para)
		if len(words) == 0 {
			lines = append(lines, "")
			continue
		}
		var cur strings.Builder
		curLen := 0
		flush := func() {
			lines = append(lines, cur.String())
			cur.Reset()
			curLen = 0
		}
		for _, w := range words {
			for utf8.RuneCountInString(w) > cols {
				if curLen > 0 {
					flush()
				}
				head, tail := splitRunes(w, cols)
				lines = append(lines, head)
				w = tail
			}
			n := utf8.RuneCountInString(w)
			if curLen > 0 && curLen+1+n > cols {
				flush()
			}
			if curLen > 0 {
				cur.WriteByte(' ')
				curLen++
			}
			cur.WriteString(w)
			curLen += n
		}
		if curLen > 0 {
			flush()
		}
	}
	return lines
}

func splitRunes(s string, n int) (string, string) {
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos], s[pos:]
		}
		i++
	}
	return s, ""
}

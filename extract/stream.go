package extract

import (
	"bytes"
	"strings"
	"unicode"
)

// streamText parses a PDF page content stream and assembles the text shown
// by its operators. It understands the common text-showing operators:
//
//	(text) Tj          show text
//	[(a) -120 (b)] TJ  show text with positioning
//	(text) '           next line, then show text
//	x y Td / x y TD    position to next line
//	T*                 move to start of next line
//
// Anything else is ignored. The result has whitespace normalized per line.
func streamText(data []byte) string {
	var sb strings.Builder

	for _, line := range bytes.Split(data, []byte{'\n'}) {
		line = bytes.TrimSpace(line)
		if len(line) == 0 {
			continue
		}

		switch {
		case bytes.HasSuffix(line, []byte("Tj")), bytes.HasSuffix(line, []byte("TJ")):
			for _, lit := range stringLiterals(line) {
				sb.WriteString(lit)
			}
		case bytes.HasSuffix(line, []byte("'")) && bytes.Contains(line, []byte("(")):
			for _, lit := range stringLiterals(line) {
				sb.WriteByte('\n')
				sb.WriteString(lit)
			}
		case bytes.HasSuffix(line, []byte("Td")), bytes.HasSuffix(line, []byte("TD")):
			if sb.Len() > 0 {
				sb.WriteByte('\n')
			}
		case bytes.Equal(line, []byte("T*")):
			sb.WriteByte('\n')
		}
	}

	return normalizeStreamText(sb.String())
}

// stringLiterals extracts every decoded (...) string literal from a content
// stream line, honoring escaped parentheses and octal escapes.
func stringLiterals(line []byte) []string {
	var out []string
	for i := 0; i < len(line); i++ {
		if line[i] != '(' {
			continue
		}
		lit, end, ok := scanLiteral(line, i)
		if !ok {
			break
		}
		if lit != "" {
			out = append(out, lit)
		}
		i = end
	}
	return out
}

// scanLiteral decodes one string literal starting at the '(' at position
// start. It returns the decoded text, the index of the closing ')', and
// whether a balanced literal was found.
func scanLiteral(line []byte, start int) (string, int, bool) {
	var sb strings.Builder
	depth := 1
	for i := start + 1; i < len(line); i++ {
		c := line[i]
		switch c {
		case '\\':
			if i+1 >= len(line) {
				return "", 0, false
			}
			i++
			switch line[i] {
			case 'n':
				sb.WriteByte('\n')
			case 'r':
				sb.WriteByte('\r')
			case 't':
				sb.WriteByte('\t')
			case '\\', '(', ')':
				sb.WriteByte(line[i])
			default:
				if line[i] >= '0' && line[i] <= '7' {
					val := int(line[i] - '0')
					for n := 0; n < 2 && i+1 < len(line) && line[i+1] >= '0' && line[i+1] <= '7'; n++ {
						i++
						val = val*8 + int(line[i]-'0')
					}
					sb.WriteByte(byte(val))
				} else {
					sb.WriteByte(line[i])
				}
			}
		case '(':
			depth++
			sb.WriteByte(c)
		case ')':
			depth--
			if depth == 0 {
				return sb.String(), i, true
			}
			sb.WriteByte(c)
		default:
			sb.WriteByte(c)
		}
	}
	return "", 0, false
}

// normalizeStreamText drops non-printable characters and edge whitespace
// per line, keeping line breaks intact. Interior whitespace runs survive:
// multi-space and tab gaps mark table columns, so collapsing them would
// blind table recovery downstream. A run containing a tab comes out as a
// single tab; a run of spaces keeps its width.
func normalizeStreamText(text string) string {
	lines := strings.Split(text, "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		var sb strings.Builder
		spaces := 0
		tab := false
		for _, r := range line {
			switch {
			case r == '\t':
				tab = true
			case unicode.IsSpace(r):
				spaces++
			case unicode.IsPrint(r):
				if sb.Len() > 0 {
					if tab {
						sb.WriteByte('\t')
					} else {
						for ; spaces > 0; spaces-- {
							sb.WriteByte(' ')
						}
					}
				}
				spaces, tab = 0, false
				sb.WriteRune(r)
			}
		}
		if sb.Len() > 0 {
			out = append(out, sb.String())
		}
	}
	return strings.Join(out, "\n")
}

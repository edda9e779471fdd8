package wikitext

import (
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Param is one argument of a template invocation. Key and Value hold the
// raw text, whitespace included, so String reproduces the input.
type Param struct {
	Key     string
	Value   string
	Showkey bool

	name string
}

// Name returns the parameter name: the trimmed key for named arguments,
// or the 1-based position among unnamed arguments.
func (p *Param) Name() string {
	return p.name
}

// Template is a parsed {{name|arg|key=value}} invocation.
type Template struct {
	RawName string
	Params  []*Param
}

// Span is a top-level template together with its byte offsets in the
// text it was found in.
type Span struct {
	Start, End int
	Template   *Template
}

// Name returns the trimmed template name.
func (t *Template) Name() string {
	return strings.TrimSpace(t.RawName)
}

// Matches reports whether the template name equals name the way MediaWiki
// compares titles: comments and surrounding space ignored, underscores
// equal spaces and the first letter case-insensitive.
func (t *Template) Matches(name string) bool {
	return normalizeTitle(t.RawName) == normalizeTitle(name)
}

// Get returns the parameter called name. When a name repeats, the last
// occurrence wins, as it does when MediaWiki expands the template.
func (t *Template) Get(name string) (*Param, bool) {
	name = strings.TrimSpace(name)
	for i := len(t.Params) - 1; i >= 0; i-- {
		if t.Params[i].name == name {
			return t.Params[i], true
		}
	}
	return nil, false
}

// Has reports whether the template has a parameter called name.
func (t *Template) Has(name string) bool {
	_, ok := t.Get(name)
	return ok
}

// Value returns the raw value of parameter name and whether it exists.
func (t *Template) Value(name string) (string, bool) {
	p, ok := t.Get(name)
	if !ok {
		return "", false
	}
	return p.Value, true
}

func (t *Template) String() string {
	var b strings.Builder
	b.WriteString("{{")
	b.WriteString(t.RawName)
	for _, p := range t.Params {
		b.WriteByte('|')
		if p.Showkey {
			b.WriteString(p.Key)
			b.WriteByte('=')
		}
		b.WriteString(p.Value)
	}
	b.WriteString("}}")
	return b.String()
}

// ParseTemplate parses the text between the outer braces of a template.
func ParseTemplate(inner string) *Template {
	parts := splitTopLevel(inner, '|')
	t := &Template{RawName: parts[0]}
	pos := 0
	for _, raw := range parts[1:] {
		p := &Param{Value: raw}
		if eq := indexTopLevel(raw, '='); eq >= 0 {
			p.Key, p.Value, p.Showkey = raw[:eq], raw[eq+1:], true
			p.name = strings.TrimSpace(p.Key)
		} else {
			pos++
			p.name = strconv.Itoa(pos)
		}
		t.Params = append(t.Params, p)
	}
	return t
}

// FindTemplates returns the top-level templates of text in order. Template
// argument placeholders ({{{1}}}) and anything inside comments are skipped.
func FindTemplates(text string) []Span {
	var spans []Span
	for i := 0; i < len(text); {
		if end := commentEnd(text, i); end >= 0 {
			i = end
			continue
		}
		if !strings.HasPrefix(text[i:], "{{") {
			i++
			continue
		}
		end := closingBraces(text, i)
		if end < 0 {
			i++
			continue
		}
		inner := text[i+2 : end-2]
		if !strings.HasPrefix(inner, "{") {
			spans = append(spans, Span{Start: i, End: end, Template: ParseTemplate(inner)})
		}
		i = end
	}
	return spans
}

// ReplaceTemplates rewrites templates for which fn returns true, innermost
// first, so a replacement is visible to the template enclosing it.
// Everything else, comments included, is copied unchanged.
func ReplaceTemplates(text string, fn func(*Template) (string, bool)) string {
	if !strings.Contains(text, "{{") {
		return text
	}

	var b strings.Builder
	for i := 0; i < len(text); {
		if end := commentEnd(text, i); end >= 0 {
			b.WriteString(text[i:end])
			i = end
			continue
		}
		if !strings.HasPrefix(text[i:], "{{") {
			b.WriteByte(text[i])
			i++
			continue
		}
		end := closingBraces(text, i)
		if end < 0 {
			b.WriteByte(text[i])
			i++
			continue
		}
		inner := ReplaceTemplates(text[i+2:end-2], fn)
		i = end
		if !strings.HasPrefix(inner, "{") {
			if repl, ok := fn(ParseTemplate(inner)); ok {
				b.WriteString(repl)
				continue
			}
		}
		b.WriteString("{{")
		b.WriteString(inner)
		b.WriteString("}}")
	}
	return b.String()
}

// Argument returns parameter param of the first template matching name.
func Argument(text, name, param string) (string, bool) {
	for _, s := range FindTemplates(text) {
		if s.Template.Matches(name) {
			return s.Template.Value(param)
		}
	}
	return "", false
}

// closingBraces returns the offset just past the "}}" that closes the
// "{{" at start, or -1 when the braces never balance.
func closingBraces(s string, start int) int {
	depth := 0
	for i := start; i+1 < len(s); {
		if end := commentEnd(s, i); end >= 0 {
			i = end
			continue
		}
		switch {
		case s[i] == '{' && s[i+1] == '{':
			depth++
			i += 2
		case s[i] == '}' && s[i+1] == '}':
			depth--
			i += 2
			if depth == 0 {
				return i
			}
		default:
			i++
		}
	}
	return -1
}

// commentEnd returns the offset just past the comment starting at i, or -1
// when no comment starts there. An unclosed comment runs to the end of s.
func commentEnd(s string, i int) int {
	if !strings.HasPrefix(s[i:], "<!--") {
		return -1
	}
	end := strings.Index(s[i+4:], "-->")
	if end < 0 {
		return len(s)
	}
	return i + 4 + end + 3
}

// splitTopLevel splits s on sep outside nested templates, links and
// comments.
func splitTopLevel(s string, sep byte) []string {
	var parts []string
	last := 0
	walkTopLevel(s, func(i int) bool {
		if s[i] == sep {
			parts = append(parts, s[last:i])
			last = i + 1
		}
		return true
	})
	return append(parts, s[last:])
}

func indexTopLevel(s string, c byte) int {
	idx := -1
	walkTopLevel(s, func(i int) bool {
		if s[i] == c {
			idx = i
			return false
		}
		return true
	})
	return idx
}

// walkTopLevel calls fn with every byte offset of s that is not inside
// {{ }}, [[ ]] or <!-- -->. It stops when fn returns false.
func walkTopLevel(s string, fn func(i int) bool) {
	braces, brackets := 0, 0
	for i := 0; i < len(s); {
		if end := commentEnd(s, i); end >= 0 {
			i = end
			continue
		}
		rest := s[i:]
		switch {
		case strings.HasPrefix(rest, "{{"):
			braces++
			i += 2
			continue
		case strings.HasPrefix(rest, "}}") && braces > 0:
			braces--
			i += 2
			continue
		case strings.HasPrefix(rest, "[["):
			brackets++
			i += 2
			continue
		case strings.HasPrefix(rest, "]]") && brackets > 0:
			brackets--
			i += 2
			continue
		}
		if braces == 0 && brackets == 0 && !fn(i) {
			return
		}
		i++
	}
}

func normalizeTitle(s string) string {
	s = strings.TrimSpace(strings.ReplaceAll(StripComments(s), "_", " "))
	r, size := utf8.DecodeRuneInString(s)
	if size == 0 {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}

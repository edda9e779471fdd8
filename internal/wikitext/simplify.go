package wikitext

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/dlclark/regexp2"
)

// DefaultInterwikiLanguage is the language {{w}} links to when neither
// argument 3 nor an inline prefix names one.
const DefaultInterwikiLanguage = "en"

var (
	categoryLink = regexp2.MustCompile(`\[\[:Category:(.*?)\]\]`, regexp2.None)
	selfLink     = regexp2.MustCompile(`\[\[(.*?)\|\1\]\]`, regexp2.None)

	htmlComment = regexp.MustCompile(`(?s)<!--.*?-->`)
)

// Normalizer simplifies wiki links for one home wiki. It holds no mutable
// state and may be shared between goroutines.
type Normalizer struct {
	home     string
	homeLink *regexp2.Regexp
}

// NewNormalizer returns a Normalizer for the wiki whose language code is
// home.
func NewNormalizer(home string) *Normalizer {
	return &Normalizer{
		home:     home,
		homeLink: regexp2.MustCompile(`\[\[:`+regexp2.Escape(home)+`:(.*?)\]\]`, regexp2.None),
	}
}

// Home returns the home language code.
func (n *Normalizer) Home() string {
	return n.home
}

// Simplify expands {{w}} shorthand links and then simplifies links:
// categories move to Commons, links into the home wiki lose their
// language prefix and [[X|X]] becomes [[X]].
func (n *Normalizer) Simplify(text string) string {
	if text == "" {
		return ""
	}
	text = ExpandInterwiki(text)
	text = replaceAll(categoryLink, text, func(g []regexp2.Group) string {
		return "[[:c:Category:" + g[1].String() + "]]"
	})
	text = replaceAll(n.homeLink, text, func(g []regexp2.Group) string {
		return "[[" + g[1].String() + "]]"
	})
	text = replaceAll(selfLink, text, func(g []regexp2.Group) string {
		return "[[" + g[1].String() + "]]"
	})
	return text
}

// Simplify is shorthand for NewNormalizer(home).Simplify(text).
func Simplify(text, home string) string {
	return NewNormalizer(home).Simplify(text)
}

// ExpandInterwiki replaces every {{w|article|display|lang}} with the link
// [[:lang:article|display]]. An inline "lang:" prefix in the article wins
// over argument 3, and an empty display falls back to the article.
func ExpandInterwiki(text string) string {
	return ReplaceTemplates(text, func(t *Template) (string, bool) {
		if !t.Matches("w") {
			return "", false
		}
		lang := DefaultInterwikiLanguage
		if v, ok := t.Value("3"); ok {
			lang = v
		}
		article, _ := t.Value("1")
		if prefix, rest, ok := strings.Cut(article, ":"); ok {
			lang, article = prefix, rest
		}
		display := article
		if v, ok := t.Value("2"); ok && v != "" {
			display = v
		}
		return fmt.Sprintf("[[:%s:%s|%s]]", lang, article, display), true
	})
}

// StripComments removes HTML comments, including ones spanning lines.
func StripComments(text string) string {
	return htmlComment.ReplaceAllString(text, "")
}

func replaceAll(re *regexp2.Regexp, text string, fn func([]regexp2.Group) string) string {
	out, err := re.ReplaceFunc(text, func(m regexp2.Match) string {
		return fn(m.Groups())
	}, -1, -1)
	if err != nil {
		// No match timeout is set, so the input is returned untouched only
		// on an internal engine error.
		return text
	}
	return out
}

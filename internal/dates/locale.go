package dates

import (
	"errors"
	"fmt"
	"sort"
)

// ErrUnknownLocale is returned when no profile exists for a language code.
var ErrUnknownLocale = errors.New("unknown locale")

// LocaleProfile holds the month abbreviations and list conjunction for
// one language. Months[0] is January.
type LocaleProfile struct {
	Lang     string
	Months   [12]string
	JoinWord string
}

// Month returns the abbreviation for a calendar month (1-12).
func (l LocaleProfile) Month(m int) string {
	return l.Months[m-1]
}

var (
	// Dutch is the profile for nl.wikipedia.
	Dutch = LocaleProfile{
		Lang:     "nl",
		Months:   [12]string{"jan", "feb", "mrt", "apr", "mei", "jun", "jul", "aug", "sep", "okt", "nov", "dec"},
		JoinWord: "en",
	}

	// Papiamentu is the profile for pap.wikipedia.
	Papiamentu = LocaleProfile{
		Lang:     "pap",
		Months:   [12]string{"yan", "feb", "mrt", "apr", "mei", "yün", "jül", "oug", "sèp", "okt", "nov", "des"},
		JoinWord: "i",
	}
)

// LocaleSet maps language codes to profiles.
type LocaleSet map[string]LocaleProfile

// Builtin returns a fresh set holding the built-in profiles.
func Builtin() LocaleSet {
	return LocaleSet{
		Dutch.Lang:      Dutch,
		Papiamentu.Lang: Papiamentu,
	}
}

// Lookup returns the profile for lang.
func (s LocaleSet) Lookup(lang string) (LocaleProfile, error) {
	p, ok := s[lang]
	if !ok {
		return LocaleProfile{}, fmt.Errorf("%w: %q (known: %v)", ErrUnknownLocale, lang, s.langs())
	}
	return p, nil
}

func (s LocaleSet) langs() []string {
	out := make([]string, 0, len(s))
	for k := range s {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Lookup returns the built-in profile for lang.
func Lookup(lang string) (LocaleProfile, error) {
	return Builtin().Lookup(lang)
}

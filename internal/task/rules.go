package task

import (
	"regexp"
	"strings"
	"sync"

	"github.com/kballard/go-shellquote"
)

// Rule maps free text to a task when every phrase occurs as a word in the
// lower-cased text. A phrase also matches its common inflections, so
// "contact" matches "contacts" but "log" does not match "blog".
type Rule struct {
	Phrases []string

	// the rule is skipped when any of these occur
	Except []string

	// target task, empty for a deny rule
	Task string

	// Arg extracts the handler argument from the original text.
	// With capture groups the submatches are used, otherwise all matches.
	Arg *regexp.Regexp

	// the rule only applies when Arg finds something
	NeedArg bool
}

func (r *Rule) Deny() bool {
	return r.Task == ""
}

var (
	urlArg   = regexp.MustCompile(`https?://[^\s"'<>]+`)
	imageArg = regexp.MustCompile(`[^\s"']+\.(?i:png|jpe?g|gif)\b`)
	audioArg = regexp.MustCompile(`[^\s"']+\.(?i:mp3|wav|m4a|ogg|flac)\b`)
	mdArg    = regexp.MustCompile(`[^\s"']+\.(?i:md|markdown)\b`)
	csvArg   = regexp.MustCompile(`([^\s"']+\.(?i:csv))\s+(?:where|by|with|on)\s+(.+?)\s*$`)
)

// Rules are evaluated in order, the first match wins.
// Deny rules come first so no phrasing can reach a destructive operation.
var Rules = []Rule{
	{Phrases: []string{"delete"}},
	{Phrases: []string{"remove"}, Except: []string{"space", "whitespace"}},
	{Phrases: []string{"erase"}},
	{Phrases: []string{"drop table"}},
	{Phrases: []string{"truncate"}},

	{Phrases: []string{"datagen"}, Task: "A1"},
	{Phrases: []string{"format", "prettier"}, Task: "A2"},
	{Phrases: []string{"count", "wednesday"}, Task: "A3"},
	{Phrases: []string{"sort", "contact"}, Task: "A4"},
	{Phrases: []string{"recent", "log"}, Task: "A5"},
	{Phrases: []string{"markdown", "html"}, Task: "B9", Arg: mdArg},
	{Phrases: []string{"html"}, Task: "B9", Arg: mdArg, NeedArg: true},
	{Phrases: []string{"index", "markdown"}, Task: "A6"},
	{Phrases: []string{"extract", "email"}, Task: "A7"},
	{Phrases: []string{"sender", "email"}, Task: "A7"},
	{Phrases: []string{"credit card"}, Task: "A8"},
	{Phrases: []string{"card number"}, Task: "A8"},
	{Phrases: []string{"similar", "comment"}, Task: "A9"},
	{Phrases: []string{"gold", "ticket"}, Task: "A10"},
	{Phrases: []string{"transcribe"}, Task: "B8", Arg: audioArg},
	{Phrases: []string{"clone"}, Task: "B4", Arg: urlArg, NeedArg: true},
	{Phrases: []string{"scrape"}, Task: "B6", Arg: urlArg, NeedArg: true},
	{Phrases: []string{"fetch"}, Task: "B3", Arg: urlArg, NeedArg: true},
	{Phrases: []string{"resize"}, Task: "B7", Arg: imageArg, NeedArg: true},
	{Phrases: []string{"compress", "image"}, Task: "B7", Arg: imageArg, NeedArg: true},
	{Phrases: []string{"filter", "csv"}, Task: "B10", Arg: csvArg, NeedArg: true},
}

// Match returns the first rule matching text and the argument it extracted.
func Match(text string) (*Rule, string, bool) {
	lower := strings.ToLower(text)
	for i := range Rules {
		r := &Rules[i]
		if !containsAll(lower, r.Phrases) || containsAny(lower, r.Except) {
			continue
		}
		arg := r.extract(text)
		if r.NeedArg && arg == "" {
			continue
		}
		return r, arg, true
	}
	return nil, "", false
}

func containsAll(s string, phrases []string) bool {
	for _, p := range phrases {
		if !phraseRegexp(p).MatchString(s) {
			return false
		}
	}
	return len(phrases) > 0
}

func containsAny(s string, phrases []string) bool {
	for _, p := range phrases {
		if phraseRegexp(p).MatchString(s) {
			return true
		}
	}
	return false
}

var (
	phraseMu    sync.Mutex
	phraseCache = map[string]*regexp.Regexp{}
)

// phraseRegexp matches p as whole words, allowing a plural or verb suffix.
// A trailing "e" may be dropped: "scrape" matches "scraping".
func phraseRegexp(p string) *regexp.Regexp {
	phraseMu.Lock()
	defer phraseMu.Unlock()
	if re, ok := phraseCache[p]; ok {
		return re
	}

	words := strings.Fields(p)
	if len(words) == 0 {
		// never matches
		re := regexp.MustCompile(`[^\s\S]`)
		phraseCache[p] = re
		return re
	}
	last := len(words) - 1
	for i, w := range words {
		words[i] = regexp.QuoteMeta(w)
	}
	suffix := `(?:s|es|ed|ing|ting|ion)?`
	if stem, ok := strings.CutSuffix(words[last], "e"); ok && len(stem) > 0 {
		words[last] = stem
		suffix = `(?:e|es|ed|ing|ion)`
	}
	re := regexp.MustCompile(`\b` + strings.Join(words, `\s+`) + suffix + `\b`)
	phraseCache[p] = re
	return re
}

func (r *Rule) extract(text string) string {
	if r.Arg == nil {
		return ""
	}
	var args []string
	if r.Arg.NumSubexp() > 0 {
		m := r.Arg.FindStringSubmatch(text)
		if m == nil {
			return ""
		}
		args = m[1:]
	} else {
		args = r.Arg.FindAllString(text, -1)
	}
	if len(args) == 0 {
		return ""
	}
	return shellquote.Join(args...)
}

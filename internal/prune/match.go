package prune

import (
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

var (
	toHyphen     = strings.NewReplacer("_", "-")
	toUnderscore = strings.NewReplacer("-", "_")
)

// Candidates builds the set of file names that keep a locale unit alive.
// Every token contributes a hyphen and an underscore spelling, lower-cased
// and suffixed with ext, so "en_US" with "pak" yields en-us.pak and en_us.pak.
func Candidates(languages []string, ext string) map[string]struct{} {
	set := make(map[string]struct{}, len(languages)*2)
	for _, l := range languages {
		for _, name := range []string{toHyphen.Replace(l), toUnderscore.Replace(l)} {
			set[strings.ToLower(name)+"."+ext] = struct{}{}
		}
	}
	return set
}

// Partition splits entries into retained and excluded, preserving order.
// An entry is retained when its lower-cased name is a candidate or matches
// one of the keep globs.
func Partition(entries []string, candidates map[string]struct{}, keep []string) (retained, excluded []string) {
	for _, e := range entries {
		name := strings.ToLower(e)
		if _, ok := candidates[name]; ok || matchesAny(keep, name) {
			retained = append(retained, e)
			continue
		}
		excluded = append(excluded, e)
	}
	return retained, excluded
}

func matchesAny(patterns []string, name string) bool {
	for _, p := range patterns {
		// patterns are validated when config loads; a bad one never matches
		if ok, _ := doublestar.Match(strings.ToLower(p), name); ok {
			return true
		}
	}
	return false
}

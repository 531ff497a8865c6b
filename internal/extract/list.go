// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package extract recovers structured values from free-form model output.
// Model replies wrap the data they were asked for in prose, code fences, or
// numbered lines; the parsers here try a fixed sequence of strategies and
// degrade to an empty result instead of failing.
package extract

import (
	"encoding/json"
	"regexp"
	"strings"

	"go.uber.org/zap"
)

// minFallbackLines is the number of non-empty lines the line fallback needs
// before it trusts the reply to be a plain list.
const minFallbackLines = 3

var (
	fencedListRe  = regexp.MustCompile("(?s)```(?:json)?\\s*(\\[.*?\\])\\s*```")
	bracketSpanRe = regexp.MustCompile(`(?s)\[(.*?)\]`)
	linePrefixRe  = regexp.MustCompile(`^[\d\.\[\]"']*\s*`)
	lineSuffixRe  = regexp.MustCompile(`[,\.\[\]"']*$`)
)

// strategy attempts to decode a JSON list from text. The boolean reports
// whether a list was found.
type strategy struct {
	name  string
	parse func(string) ([]any, bool)
}

// strategies run in order; the first that yields a list wins.
var strategies = []strategy{
	{"whole", parseWhole},
	{"fenced", parseFenced},
	{"bracket", parseBracket},
	{"lines", parseLines},
}

func decodeList(s string) ([]any, bool) {
	var v any
	if err := json.Unmarshal([]byte(strings.TrimSpace(s)), &v); err != nil {
		return nil, false
	}
	list, ok := v.([]any)
	if !ok {
		return nil, false
	}
	return list, true
}

func parseWhole(text string) ([]any, bool) {
	return decodeList(text)
}

func parseFenced(text string) ([]any, bool) {
	m := fencedListRe.FindStringSubmatch(text)
	if m == nil {
		return nil, false
	}
	return decodeList(m[1])
}

// parseBracket decodes the balanced JSON value starting at the first '[',
// which keeps nested lists whole. It falls back to the shortest bracket span
// when that value is not valid JSON.
func parseBracket(text string) ([]any, bool) {
	i := strings.IndexByte(text, '[')
	if i < 0 {
		return nil, false
	}
	var v any
	if err := json.NewDecoder(strings.NewReader(text[i:])).Decode(&v); err == nil {
		if list, ok := v.([]any); ok {
			return list, true
		}
	}

	m := bracketSpanRe.FindStringSubmatch(text)
	if m == nil {
		return nil, false
	}
	return decodeList("[" + m[1] + "]")
}

// parseLines treats the first three non-empty lines as list items, stripping
// enumeration and quoting debris.
func parseLines(text string) ([]any, bool) {
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	if len(lines) < minFallbackLines {
		return nil, false
	}

	var out []any
	for _, line := range lines[:minFallbackLines] {
		cleaned := linePrefixRe.ReplaceAllString(line, "")
		cleaned = lineSuffixRe.ReplaceAllString(cleaned, "")
		if cleaned != "" {
			out = append(out, cleaned)
		}
	}
	return out, len(out) > 0
}

// run applies the strategies in order, handing each decoded list to
// normalize. A list that fails normalisation counts as a failed strategy.
func run[T any](text string, log *zap.Logger, normalize func([]any) (T, bool)) (T, bool) {
	var zero T
	if log == nil {
		log = zap.NewNop()
	}
	if strings.TrimSpace(text) == "" {
		return zero, false
	}

	for _, s := range strategies {
		raw, ok := s.parse(text)
		if !ok {
			continue
		}
		out, ok := normalize(raw)
		if !ok {
			log.Debug("extracted list could not be normalised", zap.String("strategy", s.name))
			continue
		}
		return out, true
	}

	log.Warn("no list found in model response", zap.Int("length", len(text)))
	return zero, false
}

// List recovers a flat list of strings from text. It never fails: when no
// strategy produces a list, it logs a warning and returns an empty slice.
//
// String elements are kept verbatim; numbers and booleans are rendered as
// their JSON text. Nested lists or objects make the candidate invalid.
func List(text string, log *zap.Logger) []string {
	out, ok := run(text, log, normalizeFlat)
	if !ok {
		return []string{}
	}
	return out
}

// Groups recovers a list of string groups from text, as produced by prompts
// that ask for several keyword combinations. A bare string element becomes a
// one-element group. Returns an empty slice when nothing can be recovered.
func Groups(text string, log *zap.Logger) [][]string {
	out, ok := run(text, log, normalizeGroups)
	if !ok {
		return [][]string{}
	}
	return out
}

func normalizeFlat(raw []any) ([]string, bool) {
	out := make([]string, 0, len(raw))
	for _, v := range raw {
		s, ok := scalarString(v)
		if !ok {
			return nil, false
		}
		out = append(out, s)
	}
	return out, true
}

func normalizeGroups(raw []any) ([][]string, bool) {
	out := make([][]string, 0, len(raw))
	for _, v := range raw {
		if inner, ok := v.([]any); ok {
			group, ok := normalizeFlat(inner)
			if !ok {
				return nil, false
			}
			out = append(out, group)
			continue
		}
		s, ok := scalarString(v)
		if !ok {
			return nil, false
		}
		out = append(out, []string{s})
	}
	return out, true
}

func scalarString(v any) (string, bool) {
	switch x := v.(type) {
	case string:
		return x, true
	case float64, bool, nil:
		b, err := json.Marshal(x)
		if err != nil {
			return "", false
		}
		return string(b), true
	}
	return "", false
}

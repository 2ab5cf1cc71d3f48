package urn

import "strings"

// CellMethod is one CF statistical-treatment tag, e.g. {time mean}.
type CellMethod struct {
	Domain string
	Method string
}

// tokenKind discriminates the cell-methods token stream.
type tokenKind int

const (
	tokKey tokenKind = iota
	tokValue
	tokIntervalSuffix
)

type token struct {
	kind tokenKind
	text string
}

// tokenizeCellMethods splits a CF cell_methods value such as
//
//	time: mean area: point (interval: 1 hour)
//
// into key, value and interval-suffix tokens. A parenthesized
// "(interval: X)" group is a suffix token of its own, never a key.
func tokenizeCellMethods(s string) []token {
	var toks []token
	var value []string

	flush := func() {
		if len(value) > 0 {
			toks = append(toks, token{tokValue, strings.Join(value, " ")})
			value = nil
		}
	}

	fields := strings.Fields(s)
	for i := 0; i < len(fields); i++ {
		f := fields[i]
		switch {
		case strings.HasPrefix(f, "(interval:"):
			flush()
			var inner []string
			if rest := strings.TrimPrefix(f, "(interval:"); rest != "" {
				inner = append(inner, rest)
			}
			for !strings.HasSuffix(f, ")") && i+1 < len(fields) {
				i++
				f = fields[i]
				inner = append(inner, f)
			}
			text := strings.TrimSuffix(strings.Join(inner, " "), ")")
			toks = append(toks, token{tokIntervalSuffix, strings.TrimSpace(text)})
		case strings.HasSuffix(f, ":"):
			flush()
			toks = append(toks, token{tokKey, cleanToken(strings.TrimSuffix(f, ":"))})
		default:
			value = append(value, f)
		}
	}
	flush()
	return toks
}

// ParseCellMethods parses a CF cell_methods attribute value into its
// domain/method pairs and any interval values, whether the intervals are
// fused "(interval: X)" suffixes or plain "interval: X" entries.
func ParseCellMethods(s string) (methods []CellMethod, intervals []string) {
	toks := tokenizeCellMethods(s)
	key := ""
	for _, t := range toks {
		switch t.kind {
		case tokKey:
			key = t.text
		case tokValue:
			if key == "" {
				continue
			}
			if key == "interval" {
				intervals = append(intervals, cleanToken(t.text))
			} else {
				methods = append(methods, CellMethod{Domain: key, Method: t.text})
			}
			key = ""
		case tokIntervalSuffix:
			intervals = append(intervals, t.text)
		}
	}
	return methods, intervals
}

// cleanToken normalizes a value for embedding in an identifier: parentheses
// are dropped and spaces become underscores.
func cleanToken(s string) string {
	s = strings.ReplaceAll(s, "(", "")
	s = strings.ReplaceAll(s, ")", "")
	return strings.ReplaceAll(strings.TrimSpace(s), " ", "_")
}

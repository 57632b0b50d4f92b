// Package css analyzes theme stylesheets before they are folded into the
// aggregated document bundle: it harvests :root custom properties, collects
// warnings for constructs the bridge cannot carry over, and rewrites
// relative url() references against the site URL.
package css

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"

	parse "github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/css"
	"go.uber.org/zap"
)

// Variable is a single custom property declaration. Order is significant -
// later declarations for the same name win.
type Variable struct {
	Name  string // without the leading "--"
	Value string
}

// Analysis is the result of parsing a theme stylesheet.
type Analysis struct {
	// Variables holds custom properties harvested from :root rules in
	// source order.
	Variables []Variable
	// Imports lists @import URLs; the bridge cannot follow them, they are
	// reported as warnings and left in place.
	Imports []string
	// Warnings describe constructs that will not survive aggregation.
	Warnings []string
}

// Parser parses theme CSS.
type Parser struct {
	log *zap.Logger
}

// NewParser creates a theme CSS parser.
func NewParser(log *zap.Logger) *Parser {
	if log == nil {
		log = zap.NewNop()
	}
	return &Parser{log: log.Named("css")}
}

// Analyze scans the stylesheet text. It never fails - unparseable input
// yields an empty analysis with warnings.
func (p *Parser) Analyze(data []byte) *Analysis {
	a := &Analysis{
		Variables: make([]Variable, 0),
		Warnings:  make([]string, 0),
	}

	input := parse.NewInput(bytes.NewReader(data))
	parser := css.NewParser(input, false)

	var inRoot bool

	for {
		gt, _, gdata := parser.Next()

		switch gt {
		case css.ErrorGrammar:
			if err := parser.Err(); err != nil && err.Error() != "EOF" {
				p.log.Debug("CSS parse stopped", zap.Error(err))
			}
			return a

		case css.AtRuleGrammar:
			if string(gdata) == "@import" {
				url := importURL(parser.Values())
				if url != "" {
					a.Imports = append(a.Imports, url)
					a.Warnings = append(a.Warnings, fmt.Sprintf("@import %q is not followed during aggregation", url))
				}
			}

		case css.BeginAtRuleGrammar:
			if string(gdata) == "@font-face" {
				a.Warnings = append(a.Warnings, "@font-face sources must be reachable from the forum origin")
			}

		case css.BeginRulesetGrammar:
			inRoot = isRootSelector(gdata, parser.Values())

		case css.EndRulesetGrammar:
			inRoot = false

		case css.CustomPropertyGrammar:
			if !inRoot {
				continue
			}
			name := strings.TrimPrefix(string(gdata), "--")
			value := strings.TrimSpace(tokensText(parser.Values()))
			if name != "" && value != "" {
				a.Variables = append(a.Variables, Variable{Name: name, Value: value})
			}
		}
	}
}

// isRootSelector reports whether the ruleset selector list contains :root.
func isRootSelector(data []byte, values []css.Token) bool {
	var sb strings.Builder
	sb.Write(data)
	for _, v := range values {
		sb.Write(v.Data)
	}
	for sel := range strings.SplitSeq(sb.String(), ",") {
		if strings.TrimSpace(sel) == ":root" {
			return true
		}
	}
	return false
}

// tokensText joins value tokens back into their textual form.
func tokensText(tokens []css.Token) string {
	var sb strings.Builder
	for _, t := range tokens {
		sb.Write(t.Data)
	}
	return sb.String()
}

// importURL extracts the URL from @import tokens. Handles @import "url",
// @import url("url") and @import url(url).
func importURL(tokens []css.Token) string {
	for _, t := range tokens {
		switch t.TokenType {
		case css.StringToken:
			return unquote(string(t.Data))
		case css.URLToken:
			s := strings.TrimSuffix(strings.TrimPrefix(string(t.Data), "url("), ")")
			return unquote(strings.TrimSpace(s))
		}
	}
	return ""
}

func unquote(s string) string {
	if len(s) >= 2 && (s[0] == '"' || s[0] == '\'') && s[len(s)-1] == s[0] {
		return s[1 : len(s)-1]
	}
	return s
}

// urlRewritePattern matches url() references in CSS text for RewriteURLs.
// Handles: url("path"), url('path'), url(path)
var urlRewritePattern = regexp.MustCompile(`url\s*\(\s*(?:["']([^"']*)["']|([^)"]*))\s*\)`)

// RewriteURLs replaces every relative url() reference in the stylesheet text
// with fn's result. Absolute and data: references are passed to fn as well so
// the caller decides; fn returning the original string leaves it untouched.
func RewriteURLs(text string, fn func(originalURL string) string) string {
	return urlRewritePattern.ReplaceAllStringFunc(text, func(match string) string {
		sub := urlRewritePattern.FindStringSubmatch(match)
		if len(sub) < 3 {
			return match
		}
		// Group 1 is quoted URL, group 2 is unquoted URL
		originalURL := sub[1]
		if originalURL == "" {
			originalURL = sub[2]
		}
		originalURL = strings.TrimSpace(originalURL)
		newURL := fn(originalURL)
		return fmt.Sprintf("url(\"%s\")", cssEscapeDoubleQuoted(newURL))
	})
}

// cssEscapeDoubleQuoted escapes a string for use inside CSS double quotes.
func cssEscapeDoubleQuoted(s string) string {
	if !strings.ContainsAny(s, `"\`) {
		return s
	}
	var b strings.Builder
	b.Grow(len(s) + 4)
	for _, r := range s {
		switch r {
		case '\\':
			b.WriteString(`\\`)
		case '"':
			b.WriteString(`\"`)
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

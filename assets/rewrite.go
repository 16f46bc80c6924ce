/*************************************************************************
 * Copyright 2026 the servicenow-agent authors. All rights reserved.
 *
 * This software may be modified and distributed under the terms of the
 * BSD 2-clause license. See the LICENSE file for details.
 **************************************************************************/

/*
Package assets rewrites relative resource references inside stylesheets so
the development server can serve images from a different path root than the
packaged bundle.

Only background-image declarations are touched. Each url(...) token in a
matching declaration is evaluated independently: references that already use
a data: scheme or an absolute http(s) scheme pass through untouched, anything
else is resolved against the development-server origin. The original quoting
style of each token is preserved.

The scan is a small tokenizer rather than a single regular expression so that
quoted references and multiple tokens per declaration are handled correctly.
*/
package assets

import (
	"net/url"
	"strings"
)

// DefaultBase is the development-server origin used when none is configured.
const DefaultBase = "http://localhost:3000"

// properties whose values are rewritten, longest match first
var targetProps = []string{"background-image", "background"}

// RewriteStylesheet rewrites every background-image declaration in a CSS
// document against the given base origin. All other text passes through
// byte-for-byte.
func RewriteStylesheet(css, base string) string {
	var sb strings.Builder
	sb.Grow(len(css))
	i := 0
	for i < len(css) {
		prop := matchTargetProp(css, i)
		if prop == "" || !atDeclBoundary(css, i) {
			sb.WriteByte(css[i])
			i++
			continue
		}
		j := i + len(prop)
		k := skipSpace(css, j)
		if k >= len(css) || css[k] != ':' {
			// property-looking text that is not a declaration
			sb.WriteString(css[i:j])
			i = j
			continue
		}
		vstart := k + 1
		vend := declValueEnd(css, vstart)
		sb.WriteString(css[i:vstart])
		sb.WriteString(RewriteDeclValue(css[vstart:vend], base))
		i = vend
	}
	return sb.String()
}

// RewriteDeclValue rewrites each url(...) token within a single declaration
// value. Non-token text and excluded references are left unchanged.
func RewriteDeclValue(value, base string) string {
	var sb strings.Builder
	sb.Grow(len(value))
	i := 0
	for i < len(value) {
		idx := indexURLToken(value, i)
		if idx < 0 {
			sb.WriteString(value[i:])
			break
		}
		sb.WriteString(value[i:idx])
		ref, quote, end, ok := parseURLToken(value, idx)
		if !ok {
			// unterminated token; emit as-is and stop scanning
			sb.WriteString(value[idx:])
			break
		}
		if excluded(ref) {
			sb.WriteString(value[idx:end])
		} else {
			sb.WriteString("url(")
			if quote != 0 {
				sb.WriteByte(quote)
			}
			sb.WriteString(resolve(base, ref))
			if quote != 0 {
				sb.WriteByte(quote)
			}
			sb.WriteString(")")
		}
		i = end
	}
	return sb.String()
}

// excluded reports whether ref must not be rewritten: embedded data or an
// already-absolute HTTP(S) location.
func excluded(ref string) bool {
	lower := strings.ToLower(ref)
	return strings.HasPrefix(lower, "data:") ||
		strings.HasPrefix(lower, "http://") ||
		strings.HasPrefix(lower, "https://")
}

// resolve joins a relative reference to the base origin. Unparseable input is
// returned untouched; emitting the original beats emitting garbage.
func resolve(base, ref string) string {
	b, err := url.Parse(base)
	if err != nil {
		return ref
	}
	r, err := url.Parse(ref)
	if err != nil {
		return ref
	}
	return b.ResolveReference(r).String()
}

func isIdentByte(c byte) bool {
	return c == '-' || c == '_' ||
		(c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}

func isSpaceByte(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\f'
}

func skipSpace(s string, i int) int {
	for i < len(s) && isSpaceByte(s[i]) {
		i++
	}
	return i
}

// matchTargetProp returns the target property name present at s[i:], or "".
func matchTargetProp(s string, i int) string {
	for _, prop := range targetProps {
		end := i + len(prop)
		if end > len(s) {
			continue
		}
		if !strings.EqualFold(s[i:end], prop) {
			continue
		}
		// reject longer identifiers, e.g. "background-color"
		if end < len(s) && isIdentByte(s[end]) {
			continue
		}
		return prop
	}
	return ""
}

// atDeclBoundary reports whether position i begins a declaration: the
// preceding non-space byte must open a rule or terminate a prior declaration.
func atDeclBoundary(s string, i int) bool {
	for j := i - 1; j >= 0; j-- {
		if isSpaceByte(s[j]) {
			continue
		}
		return s[j] == '{' || s[j] == ';' || s[j] == '}'
	}
	return true
}

// declValueEnd returns the exclusive end of a declaration value starting at
// i, honoring quotes and parentheses so a ';' inside url(...) does not
// terminate the value early.
func declValueEnd(s string, i int) int {
	var quote byte
	depth := 0
	for ; i < len(s); i++ {
		c := s[i]
		if quote != 0 {
			if c == quote {
				quote = 0
			}
			continue
		}
		switch c {
		case '\'', '"':
			quote = c
		case '(':
			depth++
		case ')':
			if depth > 0 {
				depth--
			}
		case ';', '}':
			if depth == 0 {
				return i
			}
		}
	}
	return len(s)
}

// indexURLToken finds the next url( token at or after i, skipping matches
// embedded in longer identifiers.
func indexURLToken(s string, i int) int {
	for i < len(s) {
		idx := strings.Index(strings.ToLower(s[i:]), "url(")
		if idx < 0 {
			return -1
		}
		idx += i
		if idx == 0 || !isIdentByte(s[idx-1]) {
			return idx
		}
		i = idx + 1
	}
	return -1
}

// parseURLToken parses the url(...) token beginning at idx. It returns the
// inner reference, the quote byte used (0 for unquoted), and the exclusive
// end of the token.
func parseURLToken(s string, idx int) (ref string, quote byte, end int, ok bool) {
	i := skipSpace(s, idx+len("url("))
	if i >= len(s) {
		return "", 0, 0, false
	}
	if s[i] == '\'' || s[i] == '"' {
		quote = s[i]
		i++
		close := strings.IndexByte(s[i:], quote)
		if close < 0 {
			return "", 0, 0, false
		}
		ref = s[i : i+close]
		i = skipSpace(s, i+close+1)
		if i >= len(s) || s[i] != ')' {
			return "", 0, 0, false
		}
		return ref, quote, i + 1, true
	}
	close := strings.IndexByte(s[i:], ')')
	if close < 0 {
		return "", 0, 0, false
	}
	ref = strings.TrimRight(s[i:i+close], " \t\n\r\f")
	return ref, 0, i + close + 1, true
}

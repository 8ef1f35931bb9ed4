package extension

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"go.yaml.in/yaml/v3"
)

var keywordArg = regexp.MustCompile(`(?s)^\s*([A-Za-z_][A-Za-z0-9_]*)\s*=([^=].*)$`)

// callArgs holds the decoded arguments of a decorator call.
type callArgs struct {
	positional []string
	keywords   map[string]string
}

// arg returns the raw source of the argument at position pos or named name.
func (a callArgs) arg(pos int, name string) (string, bool) {
	if v, ok := a.keywords[name]; ok {
		return v, true
	}
	if pos < len(a.positional) {
		return a.positional[pos], true
	}
	return "", false
}

func parseCallArgs(args string) callArgs {
	out := callArgs{keywords: map[string]string{}}
	for _, part := range splitTopLevel(args, ',') {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if m := keywordArg.FindStringSubmatch(part); m != nil {
			out.keywords[m[1]] = strings.TrimSpace(m[2])
			continue
		}
		out.positional = append(out.positional, part)
	}
	return out
}

// splitTopLevel splits s on sep, ignoring separators nested in brackets or
// quoted strings.
func splitTopLevel(s string, sep rune) []string {
	var (
		parts []string
		depth int
		quote rune
		start int
		prev  rune
	)
	for i, r := range s {
		switch {
		case quote != 0:
			if r == quote && prev != '\\' {
				quote = 0
			}
		case r == '\'' || r == '"':
			quote = r
		case r == '(' || r == '[' || r == '{':
			depth++
		case r == ')' || r == ']' || r == '}':
			depth--
		case r == sep && depth == 0:
			parts = append(parts, s[start:i])
			start = i + len(string(r))
		}
		prev = r
	}
	return append(parts, s[start:])
}

// maxConstDepth bounds how many module constants may refer to each other.
const maxConstDepth = 8

// decodeLiteral decodes a Python literal (strings, numbers, booleans, None,
// lists, tuples and dicts) into plain Go values. Bare names are replaced by
// the module-level literal assigned to them in consts.
func decodeLiteral(src string, consts map[string]string) (any, error) {
	flow, err := toYAMLFlow(src, consts, 0)
	if err != nil {
		return nil, fmt.Errorf("decoding literal %q: %w", src, err)
	}
	var v any
	if err := yaml.Unmarshal([]byte(flow), &v); err != nil {
		return nil, fmt.Errorf("decoding literal %q: %w", src, err)
	}
	return v, nil
}

// toYAMLFlow rewrites a Python literal as a YAML flow document: strings become
// double-quoted (adjacent ones joined), tuples become sequences, Python
// constants become YAML ones and names are expanded from consts.
func toYAMLFlow(src string, consts map[string]string, depth int) (string, error) {
	var out []byte
	for i := 0; i < len(src); {
		c := src[i]
		if stringPrefixLen(src, i) >= 0 {
			s, next, err := readStrings(src, i)
			if err != nil {
				return "", err
			}
			out = strconv.AppendQuote(out, s)
			i = next
			continue
		}
		switch {
		case c == '#':
			for i < len(src) && src[i] != '\n' {
				i++
			}
		case c == '\\' || c == '\n' || c == '\r' || c == '\t':
			out = append(out, ' ')
			i++
		case c == '(' || c == '[' || c == '{':
			out = append(out, flowOpen(c))
			i++
		case c == ')' || c == ']' || c == '}':
			out = append(trimTrailingComma(out), flowClose(c))
			i++
		case isIdentStart(c) && (i == 0 || !isIdentByte(src[i-1])):
			j := i
			for j < len(src) && isIdentByte(src[j]) {
				j++
			}
			repl, err := expandName(src[i:j], consts, depth)
			if err != nil {
				return "", err
			}
			out = append(out, repl...)
			i = j
		default:
			out = append(out, c)
			i++
		}
	}
	return string(out), nil
}

func flowOpen(c byte) byte {
	if c == '(' {
		return '['
	}
	return c
}

func flowClose(c byte) byte {
	if c == ')' {
		return ']'
	}
	return c
}

// trimTrailingComma drops a comma left before a closing bracket, as in
// "(1,)" or a multi-line list ending in ",".
func trimTrailingComma(out []byte) []byte {
	trimmed := bytes.TrimRight(out, " ")
	if len(trimmed) > 0 && trimmed[len(trimmed)-1] == ',' {
		return trimmed[:len(trimmed)-1]
	}
	return out
}

func expandName(word string, consts map[string]string, depth int) (string, error) {
	switch word {
	case "True":
		return "true", nil
	case "False":
		return "false", nil
	case "None":
		return "null", nil
	}
	raw, ok := consts[word]
	if !ok {
		return "", fmt.Errorf("name %s is not a module-level literal", word)
	}
	if depth >= maxConstDepth {
		return "", fmt.Errorf("name %s is nested too deeply", word)
	}
	return toYAMLFlow(raw, consts, depth+1)
}

// stringPrefixLen returns the length of the string prefix (r, b, u, f and
// their pairs) when a string literal starts at i, and -1 otherwise.
func stringPrefixLen(src string, i int) int {
	if i > 0 && isIdentByte(src[i-1]) {
		return -1
	}
	for n := 0; n <= 2 && i+n < len(src); n++ {
		c := src[i+n]
		if c == '\'' || c == '"' {
			return n
		}
		if !strings.ContainsRune("rRbBuUfF", rune(c)) {
			return -1
		}
	}
	return -1
}

// readStrings reads the string literal at i and every literal adjacent to
// it, returning their joined value and the index after the last one.
func readStrings(src string, i int) (string, int, error) {
	var b strings.Builder
	for {
		s, next, err := readString(src, i)
		if err != nil {
			return "", 0, err
		}
		b.WriteString(s)
		i = next

		j := skipBlank(src, i)
		if j >= len(src) || stringPrefixLen(src, j) < 0 {
			return b.String(), i, nil
		}
		i = j
	}
}

// skipBlank skips whitespace, line continuations and comments from i.
func skipBlank(src string, i int) int {
	for i < len(src) {
		switch src[i] {
		case ' ', '\t', '\n', '\r', '\\':
			i++
		case '#':
			for i < len(src) && src[i] != '\n' {
				i++
			}
		default:
			return i
		}
	}
	return i
}

func readString(src string, i int) (string, int, error) {
	n := stringPrefixLen(src, i)
	prefix := strings.ToLower(src[i : i+n])
	i += n
	quote := src[i : i+1]
	if strings.HasPrefix(src[i:], strings.Repeat(quote, 3)) {
		quote = strings.Repeat(quote, 3)
	}
	start := i + len(quote)
	for j := start; j < len(src); j++ {
		if src[j] == '\\' {
			j++
			continue
		}
		if !strings.HasPrefix(src[j:], quote) {
			continue
		}
		body := src[start:j]
		next := j + len(quote)
		switch {
		case strings.Contains(prefix, "f") && strings.ContainsAny(body, "{}"):
			return "", 0, fmt.Errorf("f-string %s is not a literal", src[i-n:next])
		case strings.Contains(prefix, "r"):
			return body, next, nil
		}
		return unescape(body), next, nil
	}
	return "", 0, fmt.Errorf("unterminated string literal at offset %d", i)
}

// unescape applies Python backslash escapes. Unknown escapes are kept as
// written.
func unescape(s string) string {
	if !strings.Contains(s, "\\") {
		return s
	}
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '\\' || i+1 == len(s) {
			b.WriteByte(c)
			continue
		}
		i++
		switch e := s[i]; e {
		case '\n':
		case '\\', '\'', '"':
			b.WriteByte(e)
		case 'a':
			b.WriteByte('\a')
		case 'b':
			b.WriteByte('\b')
		case 'f':
			b.WriteByte('\f')
		case 'n':
			b.WriteByte('\n')
		case 'r':
			b.WriteByte('\r')
		case 't':
			b.WriteByte('\t')
		case 'v':
			b.WriteByte('\v')
		case 'x', 'u', 'U':
			size := hexEscapeSize(e)
			if i+size < len(s) {
				if r, err := strconv.ParseUint(s[i+1:i+1+size], 16, 32); err == nil {
					b.WriteRune(rune(r))
					i += size
					continue
				}
			}
			b.WriteByte('\\')
			b.WriteByte(e)
		case '0', '1', '2', '3', '4', '5', '6', '7':
			j := i
			for j < len(s) && j < i+3 && s[j] >= '0' && s[j] <= '7' {
				j++
			}
			r, _ := strconv.ParseUint(s[i:j], 8, 32)
			b.WriteRune(rune(r))
			i = j - 1
		default:
			b.WriteByte('\\')
			b.WriteByte(e)
		}
	}
	return b.String()
}

func hexEscapeSize(e byte) int {
	switch e {
	case 'x':
		return 2
	case 'u':
		return 4
	}
	return 8
}

func isIdentStart(c byte) bool {
	return c == '_' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z'
}

func isIdentByte(c byte) bool {
	return c == '_' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9'
}

func decodeString(src string, consts map[string]string) (string, error) {
	v, err := decodeLiteral(src, consts)
	if err != nil {
		return "", err
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("expected a string literal, got %s", src)
	}
	return s, nil
}

func decodeStrings(src string, consts map[string]string) ([]string, error) {
	v, err := decodeLiteral(src, consts)
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, nil
	}
	items, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("expected a list of strings, got %s", src)
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		s, ok := item.(string)
		if !ok {
			return nil, fmt.Errorf("expected a list of strings, got %s", src)
		}
		out = append(out, s)
	}
	return out, nil
}

// TypeName renders the Python type of a decoded value, e.g. "<class 'int'>".
func TypeName(v any) string {
	name := "object"
	switch x := v.(type) {
	case nil:
		name = "NoneType"
	case string:
		name = "str"
	case bool:
		name = "bool"
	case int, int64, uint64:
		name = "int"
	case float64:
		name = "float"
	case json.Number:
		name = "int"
		if strings.ContainsAny(x.String(), ".eE") {
			name = "float"
		}
	case []any:
		name = "list"
	case map[string]any:
		name = "dict"
	}
	return fmt.Sprintf("<class '%s'>", name)
}

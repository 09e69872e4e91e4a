package task

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"
)

// FormatVersion identifies the on-disk record format negotiated from the
// first bytes of a line (spec.md §4.5 "Version negotiation").
type FormatVersion int

const (
	FormatUnknown FormatVersion = iota
	FormatV3
	FormatV4
)

// DetectVersion inspects a single line and reports which record format
// it is, without fully parsing it.
func DetectVersion(line string) FormatVersion {
	line = strings.TrimRight(line, "\n")
	if strings.HasPrefix(line, "[") && strings.Contains(line, `uuid:"`) {
		return FormatV4
	}
	if len(line) > 36 {
		candidate := line[:36]
		if looksLikeUUID(candidate) && len(line) > 36 && isStatusChar(line[36]) {
			return FormatV3
		}
	}
	return FormatUnknown
}

func looksLikeUUID(s string) bool {
	if len(s) != 36 {
		return false
	}
	for i, c := range s {
		switch i {
		case 8, 13, 18, 23:
			if c != '-' {
				return false
			}
		default:
			if !isHex(byte(c)) {
				return false
			}
		}
	}
	return true
}

func isHex(b byte) bool {
	return (b >= '0' && b <= '9') || (b >= 'a' && b <= 'f') || (b >= 'A' && b <= 'F')
}

func isStatusChar(b byte) bool {
	switch b {
	case 'P', 'C', 'D', 'R', 'W':
		return true
	}
	return false
}

// EncodeV4 renders a task as a version-4 record line:
// `[ name:"value" name:"value" ... ]` with JSON-escaped values, keys in
// stable sorted order so byte-for-byte diffs (used by revert/merge) are
// meaningful.
func EncodeV4(t *Task) string {
	keys := make([]string, 0, len(t.attrs))
	for k := range t.attrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString("[")
	for _, k := range keys {
		v := t.attrs[k]
		if v == "" {
			continue
		}
		b.WriteString(" ")
		b.WriteString(k)
		b.WriteString(":")
		b.WriteString(encodeJSONString(v))
	}
	b.WriteString(" ]")
	return b.String()
}

// DecodeV4 parses a version-4 record line into a Task.
func DecodeV4(line string) (*Task, error) {
	line = strings.TrimRight(line, "\n")
	line = strings.TrimSpace(line)
	if !strings.HasPrefix(line, "[") || !strings.HasSuffix(line, "]") {
		return nil, fmt.Errorf("malformed record: missing brackets")
	}
	inner := strings.TrimSpace(line[1 : len(line)-1])
	attrs := map[string]string{}
	i := 0
	for i < len(inner) {
		for i < len(inner) && inner[i] == ' ' {
			i++
		}
		if i >= len(inner) {
			break
		}
		colon := strings.IndexByte(inner[i:], ':')
		if colon < 0 {
			return nil, fmt.Errorf("malformed record: missing ':' at offset %d", i)
		}
		name := inner[i : i+colon]
		i += colon + 1
		if i >= len(inner) || inner[i] != '"' {
			return nil, fmt.Errorf("malformed record: expected quoted value for %q", name)
		}
		val, n, err := decodeJSONString(inner[i:])
		if err != nil {
			return nil, fmt.Errorf("malformed record: %w", err)
		}
		attrs[name] = val
		i += n
	}
	return FromAttrs(attrs), nil
}

func encodeJSONString(s string) string {
	var b strings.Builder
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		default:
			if r < 0x20 {
				fmt.Fprintf(&b, `\u%04x`, r)
			} else {
				b.WriteRune(r)
			}
		}
	}
	b.WriteByte('"')
	return b.String()
}

func decodeJSONString(s string) (string, int, error) {
	if len(s) == 0 || s[0] != '"' {
		return "", 0, fmt.Errorf("expected opening quote")
	}
	var b strings.Builder
	i := 1
	for i < len(s) {
		c := s[i]
		if c == '"' {
			return b.String(), i + 1, nil
		}
		if c == '\\' && i+1 < len(s) {
			switch s[i+1] {
			case '"':
				b.WriteByte('"')
				i += 2
			case '\\':
				b.WriteByte('\\')
				i += 2
			case 'n':
				b.WriteByte('\n')
				i += 2
			case 'r':
				b.WriteByte('\r')
				i += 2
			case 't':
				b.WriteByte('\t')
				i += 2
			case 'u':
				if i+6 > len(s) {
					return "", 0, fmt.Errorf("truncated unicode escape")
				}
				n, err := strconv.ParseUint(s[i+2:i+6], 16, 32)
				if err != nil {
					return "", 0, err
				}
				var buf [utf8.UTFMax]byte
				w := utf8.EncodeRune(buf[:], rune(n))
				b.Write(buf[:w])
				i += 6
			default:
				b.WriteByte(s[i+1])
				i += 2
			}
			continue
		}
		b.WriteByte(c)
		i++
	}
	return "", 0, fmt.Errorf("unterminated string")
}

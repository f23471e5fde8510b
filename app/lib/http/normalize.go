package http

import (
	"strings"
)

// Normalize percent-decodes a request path and collapses it into a canonical
// form. It is the only check that keeps a request inside its base directory.
func Normalize(raw string) (string, error) {
	decoded, err := PercentDecode(raw)
	if err != nil {
		return "", err
	}
	return Canonicalize(decoded)
}

func PercentDecode(s string) (string, error) {
	if strings.IndexByte(s, '%') < 0 {
		if strings.IndexByte(s, 0) >= 0 {
			return "", ErrNulByte
		}
		return s, nil
	}

	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '%' {
			if c == 0 {
				return "", ErrNulByte
			}
			b.WriteByte(c)
			continue
		}

		if i+2 >= len(s) {
			return "", ErrInvalidEscape
		}
		hi, ok1 := unhex(s[i+1])
		lo, ok2 := unhex(s[i+2])
		if !ok1 || !ok2 {
			return "", ErrInvalidEscape
		}
		decoded := hi<<4 | lo
		if decoded == 0 {
			return "", ErrNulByte
		}
		b.WriteByte(decoded)
		i += 2
	}

	return b.String(), nil
}

func unhex(c byte) (byte, bool) {
	switch {
	case '0' <= c && c <= '9':
		return c - '0', true
	case 'a' <= c && c <= 'f':
		return c - 'a' + 10, true
	case 'A' <= c && c <= 'F':
		return c - 'A' + 10, true
	}
	return 0, false
}

// Canonicalize drops empty and "." segments and resolves ".." against the
// segments emitted so far. Rising above the root is an error.
func Canonicalize(p string) (string, error) {
	segments := make([]string, 0, strings.Count(p, "/"))
	for _, part := range strings.Split(p, "/") {
		switch part {
		case "", ".":
			continue
		case "..":
			if len(segments) == 0 {
				return "", ErrEscapesRoot
			}
			segments = segments[:len(segments)-1]
		default:
			segments = append(segments, part)
		}
	}

	if len(segments) == 0 {
		return "/", nil
	}
	return "/" + strings.Join(segments, "/"), nil
}

// hasDotDotSegment reports whether ".." appears as a whole segment. Names
// that merely contain ".." are allowed.
func hasDotDotSegment(p string) bool {
	for _, part := range strings.Split(p, "/") {
		if part == ".." {
			return true
		}
	}
	return false
}

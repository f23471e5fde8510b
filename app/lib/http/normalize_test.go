package http

import (
	"errors"
	"testing"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		input    string
		expected string
		err      error
	}{
		{input: "", expected: "/"},
		{input: "/", expected: "/"},
		{input: "/a/../b", expected: "/b"},
		{input: "/a//b/./c", expected: "/a/b/c"},
		{input: "///a///", expected: "/a"},
		{input: "/a/b/..", expected: "/a"},
		{input: "/a..b/c", expected: "/a..b/c"},
		{input: "/a%2Fb", expected: "/a/b"},
		{input: "/%7Ealice/x", expected: "/~alice/x"},
		{input: "/a%20b", expected: "/a b"},
		{input: "/a%2e%2e/b", expected: "/a../b"},
		{input: "/a/%2e%2e/b", expected: "/b"},
		{input: "/../x", err: ErrEscapesRoot},
		{input: "/a/../../x", err: ErrEscapesRoot},
		{input: "/%2e%2e/etc/passwd", err: ErrEscapesRoot},
		{input: "/a%2", err: ErrInvalidEscape},
		{input: "/a%", err: ErrInvalidEscape},
		{input: "/a%zz", err: ErrInvalidEscape},
		{input: "/a%00b", err: ErrNulByte},
	}

	for _, test := range tests {
		t.Run(test.input, func(t *testing.T) {
			// act
			actual, err := Normalize(test.input)

			// assert
			if test.err != nil {
				if !errors.Is(err, test.err) {
					t.Errorf("expected error %v but got %v (result %q)", test.err, err, actual)
				}
				if !errors.Is(err, ErrBadRequest) {
					t.Errorf("expected %v to map to a bad request", err)
				}
				return
			}

			if err != nil {
				t.Errorf("expected no error but got %v", err)
				return
			}

			if actual != test.expected {
				t.Errorf("expected %q but got %q", test.expected, actual)
			}
		})
	}
}

func TestNormalizeIsIdempotent(t *testing.T) {
	inputs := []string{
		"",
		"/",
		"/a/b/c",
		"//a/./b//",
		"/a/b/../c/./d/..",
		"/x/y/z/../../w",
		"/~bob//docs/./",
		"/cgi-bin/env.sh?x=1&y=2",
		"/a..b/..c/d..",
	}

	for _, input := range inputs {
		// act
		once, err := Normalize(input)
		if err != nil {
			t.Errorf("expected %q to normalize but got %v", input, err)
			continue
		}
		twice, err := Normalize(once)

		// assert
		if err != nil {
			t.Errorf("expected %q to normalize again but got %v", once, err)
			continue
		}
		if once != twice {
			t.Errorf("expected normalize to be idempotent for %q: %q then %q", input, once, twice)
		}
	}
}

func TestCanonicalizeNeverEmitsDotSegments(t *testing.T) {
	inputs := []string{"/.", "/./.", "/a/.", "/a/b/./../c", "/a/./b/.."}

	for _, input := range inputs {
		actual, err := Canonicalize(input)
		if err != nil {
			t.Errorf("expected no error for %q but got %v", input, err)
			continue
		}
		if hasDotDotSegment(actual) {
			t.Errorf("expected no .. segment in %q", actual)
		}
		for _, part := range splitSegments(actual) {
			if part == "." || part == "" {
				t.Errorf("expected no empty or . segment in %q", actual)
			}
		}
	}
}

func splitSegments(p string) []string {
	if p == "/" {
		return nil
	}
	out := []string{}
	start := 1
	for i := 1; i <= len(p); i++ {
		if i == len(p) || p[i] == '/' {
			out = append(out, p[start:i])
			start = i + 1
		}
	}
	return out
}

func TestHasDotDotSegment(t *testing.T) {
	tests := []struct {
		input    string
		expected bool
	}{
		{"/..", true},
		{"/a/../b", true},
		{"/a/..", true},
		{"/a..", false},
		{"/..a/b", false},
		{"/a/b..c", false},
		{"/", false},
	}

	for _, test := range tests {
		if actual := hasDotDotSegment(test.input); actual != test.expected {
			t.Errorf("expected %v for %q but got %v", test.expected, test.input, actual)
		}
	}
}

package cgi

import (
	"testing"
)

func TestParseOutput(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		contentType string
		body        string
	}{
		{
			name:        "crlf separator",
			input:       "Content-Type: text/plain\r\n\r\nhello",
			contentType: "text/plain",
			body:        "hello",
		},
		{
			name:        "lf separator",
			input:       "Content-Type: text/html\n\n<p>hi</p>",
			contentType: "text/html",
			body:        "<p>hi</p>",
		},
		{
			name:        "no separator is all body",
			input:       "just text",
			contentType: "text/plain",
			body:        "just text",
		},
		{
			name:        "case insensitive header among others",
			input:       "X-Other: 1\r\ncontent-TYPE:   application/json  \r\nStatus: 200\r\n\r\n{}",
			contentType: "application/json",
			body:        "{}",
		},
		{
			name:        "headers without content type",
			input:       "X-Other: 1\r\n\r\nbody",
			contentType: "text/plain",
			body:        "body",
		},
		{
			name:        "empty content type falls back",
			input:       "Content-Type:\r\n\r\nbody",
			contentType: "text/plain",
			body:        "body",
		},
		{
			name:        "separator ends at the last byte",
			input:       "Content-Type: image/png\r\n\r\n",
			contentType: "image/png",
			body:        "",
		},
		{
			name:        "lf separator ends at the last byte",
			input:       "Content-Type: image/png\n\n",
			contentType: "image/png",
			body:        "",
		},
		{
			name:        "crlf separator wins over an earlier lf pair",
			input:       "Content-Type: text/html\r\n\r\nline\n\nline",
			contentType: "text/html",
			body:        "line\n\nline",
		},
		{
			name:        "body keeps later separators",
			input:       "Content-Type: text/plain\n\na\n\nb",
			contentType: "text/plain",
			body:        "a\n\nb",
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			// act
			out := ParseOutput([]byte(test.input))

			// assert
			if out.ContentType != test.contentType {
				t.Errorf("expected content type %q but got %q", test.contentType, out.ContentType)
			}
			if string(out.Body) != test.body {
				t.Errorf("expected body %q but got %q", test.body, out.Body)
			}
		})
	}
}

func TestParseOutputFindsSeparatorAnywhere(t *testing.T) {
	header := "Content-Type: text/x\r\n"
	for pad := 0; pad < 8; pad++ {
		input := header
		for i := 0; i < pad; i++ {
			input += "X: y\r\n"
		}
		input += "\r\n"

		out := ParseOutput([]byte(input))

		if out.ContentType != "text/x" || len(out.Body) != 0 {
			t.Errorf("expected separator at end of %d header lines to be found, got %q %q", pad, out.ContentType, out.Body)
		}
	}
}

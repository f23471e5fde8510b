package cgi

import (
	"bytes"
	"strings"
)

var DefaultContentType = "text/plain"

var contentTypeHeader = "content-type:"

type Output struct {
	ContentType string
	Body        []byte
}

// ParseOutput splits captured script output into its header block and body.
// Output without a blank-line separator is all body.
func ParseOutput(raw []byte) Output {
	headerEnd := -1
	if i := bytes.Index(raw, []byte("\r\n\r\n")); i >= 0 {
		headerEnd = i + 4
	} else if i := bytes.Index(raw, []byte("\n\n")); i >= 0 {
		headerEnd = i + 2
	}

	if headerEnd < 0 {
		return Output{ContentType: DefaultContentType, Body: raw}
	}

	return Output{
		ContentType: contentTypeOf(raw[:headerEnd]),
		Body:        raw[headerEnd:],
	}
}

func contentTypeOf(headers []byte) string {
	text := strings.ReplaceAll(string(headers), "\r", "\n")

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimLeft(line, " \t")
		if line == "" {
			continue
		}
		if len(line) < len(contentTypeHeader) || !strings.EqualFold(line[:len(contentTypeHeader)], contentTypeHeader) {
			continue
		}
		if value := strings.TrimSpace(line[len(contentTypeHeader):]); value != "" {
			return value
		}
	}

	return DefaultContentType
}

package http

import (
	"bufio"
	"bytes"
	"errors"
	"io"
	"strconv"
	"strings"
	"time"
)

/*
---------------------------------
REQUEST
---------------------------------

// Request line, single spaces, CRLF required
GET /~alice/notes.txt HTTP/1.0\r\n

// Headers, only If-Modified-Since is read
If-Modified-Since: Sun, 06 Nov 1994 08:49:37 GMT\r\n
User-Agent: curl/8.0\r\n
\r\n

---------------------------------
RESPONSE
---------------------------------

HTTP/1.0 200 OK\r\n
Date: Sun, 06 Nov 1994 08:49:37 GMT\r\n
Server: sws/1.0\r\n
Last-Modified: Sun, 06 Nov 1994 08:00:00 GMT\r\n   // static resources only
Content-Length: 3\r\n
Content-Type: text/plain\r\n                          // omitted on 304
\r\n
abc                                                  // omitted for HEAD

---------------------------------
*/

// ReadRequest reads and validates the request line and headers. Whatever
// could be parsed is returned alongside a non-Ok outcome so it can still be
// logged.
func ReadRequest(reader *bufio.Reader) (HttpRequest, ParseOutcome) {
	req := HttpRequest{}

	line, outcome := readRequestLine(reader)
	req.RequestLine = strings.TrimRight(line, "\r\n")
	if outcome != ParseOk {
		return req, outcome
	}

	fields := strings.Split(line, " ")
	if len(fields) != 3 || fields[0] == "" || fields[1] == "" || fields[2] == "" {
		return req, ParseLineFailure
	}

	req.HttpMethod = fields[0]
	req.RawPath = fields[1]
	req.HttpVersion = fields[2]

	if req.HttpMethod != MethodGet && req.HttpMethod != MethodHead {
		return req, ParseInvalidMethod
	}

	if !validUri(req.RawPath) {
		return req, ParseInvalidURI
	}

	if req.HttpVersion != Http1Dot0Version {
		return req, ParseInvalidVersion
	}

	req.IfModifiedSince = readHeaderLines(reader)

	return req, ParseOk
}

func validUri(uri string) bool {
	if !strings.HasPrefix(uri, "/") {
		return false
	}
	if len(uri) >= MaxUriLength {
		return false
	}
	return !hasDotDotSegment(uri)
}

// readRequestLine returns the line without its CRLF terminator.
func readRequestLine(reader *bufio.Reader) (string, ParseOutcome) {
	line, err := reader.ReadSlice('\n')
	if err != nil {
		if errors.Is(err, bufio.ErrBufferFull) {
			return string(line), ParseLineFailure
		}
		if len(line) == 0 {
			return "", ParseEndOfStream
		}
		// stream ended mid-line
		return string(line), ParseLineFailure
	}

	if len(line) == 1 || (len(line) == 2 && line[0] == '\r') {
		return "", ParseEndOfStream
	}

	if !bytes.HasSuffix(line, []byte("\r\n")) {
		return string(line), ParseLineFailure
	}

	return string(line[:len(line)-2]), ParseOk
}

// readHeaderLines consumes headers up to the blank line or end of stream and
// returns the If-Modified-Since value, if any.
func readHeaderLines(reader *bufio.Reader) string {
	ifModifiedSince := ""

	for {
		line, err := reader.ReadSlice('\n')
		if errors.Is(err, bufio.ErrBufferFull) {
			// over-long header, skip the rest of it
			for errors.Is(err, bufio.ErrBufferFull) {
				_, err = reader.ReadSlice('\n')
			}
			if err != nil {
				return ifModifiedSince
			}
			continue
		}

		text := string(line)
		if text == "\r\n" || text == "\n" {
			break
		}

		if value, ok := extractHeader(text, HeaderIfModifiedSince); ok {
			ifModifiedSince = value
		}

		if err != nil {
			break
		}
	}

	return ifModifiedSince
}

func extractHeader(line string, name string) (string, bool) {
	if len(line) <= len(name) || line[len(name)] != ':' {
		return "", false
	}
	if !strings.EqualFold(line[:len(name)], name) {
		return "", false
	}
	return strings.TrimSpace(line[len(name)+1:]), true
}

// WriteResponse serializes reply to w. Content-Length always describes the
// body a GET would carry; with head set the body itself is not sent.
func WriteResponse(w io.Writer, reply Reply, head bool, now time.Time) (HttpResponse, error) {
	res := HttpResponse{
		StatusCode:    reply.Status.Code,
		ContentLength: int64(len(reply.Body)),
	}

	var builder strings.Builder

	// Status line
	builder.WriteString(Http1Dot0Version)
	builder.WriteString(" ")
	builder.WriteString(reply.Status.String())
	builder.WriteString("\r\n")

	// Headers
	writeHeader(&builder, HeaderDate, now.UTC().Format(TimeFormat))
	writeHeader(&builder, HeaderServer, ServerName)
	if reply.LastModified != "" {
		writeHeader(&builder, HeaderLastModified, reply.LastModified)
	}
	writeHeader(&builder, HeaderContentLength, strconv.FormatInt(res.ContentLength, 10))
	if reply.Status != Status304NotModified {
		contentType := reply.ContentType
		if contentType == "" {
			contentType = TextPlainContentType
		}
		writeHeader(&builder, HeaderContentType, contentType)
	}

	builder.WriteString("\r\n")

	if _, err := io.WriteString(w, builder.String()); err != nil {
		return res, err
	}

	// Response Body
	if head || len(reply.Body) == 0 {
		return res, nil
	}
	_, err := w.Write(reply.Body)
	return res, err
}

func writeHeader(builder *strings.Builder, key string, val string) {
	builder.WriteString(key)
	builder.WriteString(": ")
	builder.WriteString(val)
	builder.WriteString("\r\n")
}

// ErrorReply builds the short plain-text reply sent for failures.
func ErrorReply(status Status) Reply {
	return Reply{
		Status:      status,
		Body:        []byte(status.String() + "\n"),
		ContentType: TextPlainContentType,
	}
}

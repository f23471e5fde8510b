package http

import (
	"path/filepath"
	"strconv"
	"strings"
)

type Status struct {
	Code int
	Text string
}

func (s Status) String() string {
	return strconv.Itoa(s.Code) + " " + s.Text
}

var (
	Status200OK                  = Status{200, "OK"}
	Status304NotModified         = Status{304, "Not Modified"}
	Status400BadRequest          = Status{400, "Bad Request"}
	Status403Forbidden           = Status{403, "Forbidden"}
	Status404NotFound            = Status{404, "Not Found"}
	Status500InternalServerError = Status{500, "Internal Server Error"}
	Status501NotImplemented      = Status{501, "Not Implemented"}
)

var (
	HeaderDate            = "Date"
	HeaderServer          = "Server"
	HeaderLastModified    = "Last-Modified"
	HeaderContentType     = "Content-Type"
	HeaderContentLength   = "Content-Length"
	HeaderIfModifiedSince = "If-Modified-Since"
)

var (
	TextPlainContentType   = "text/plain"
	TextHtmlContentType    = "text/html"
	ImageJpegContentType   = "image/jpeg"
	ImagePngContentType    = "image/png"
	OctetStreamContentType = "application/octet-stream"
)

var (
	Http1Dot0Version = "HTTP/1.0"
	ServerName       = "sws/1.0"
)

var (
	MethodGet  = "GET"
	MethodHead = "HEAD"
)

// TimeFormat is the RFC 1123 layout used on the wire, always in GMT.
const TimeFormat = "Mon, 02 Jan 2006 15:04:05 GMT"

const (
	MaxRequestLine = 2048
	MaxUriLength   = 1024
	MaxPathLength  = 4096
)

var contentTypes = map[string]string{
	".html": TextHtmlContentType,
	".htm":  TextHtmlContentType,
	".txt":  TextPlainContentType,
	".jpg":  ImageJpegContentType,
	".jpeg": ImageJpegContentType,
	".png":  ImagePngContentType,
}

func ContentTypeFor(name string) string {
	if ct, ok := contentTypes[strings.ToLower(filepath.Ext(name))]; ok {
		return ct
	}
	return OctetStreamContentType
}

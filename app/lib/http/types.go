package http

import (
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/sws-server/sws/app/lib/cgi"
)

type HttpRequest struct {
	HttpMethod      string
	RawPath         string
	Path            string // normalized, empty until the pipeline normalizes RawPath
	Query           string // raw text after the first '?', never decoded
	HasQuery        bool
	HttpVersion     string
	IfModifiedSince string
	RequestLine     string
	Peer            Peer
	Logger          zerolog.Logger
}

func (r *HttpRequest) IsHead() bool {
	return r.HttpMethod == MethodHead
}

// LogPath is the path reported in the access log.
func (r *HttpRequest) LogPath() string {
	if r.Path != "" {
		if r.HasQuery {
			return r.Path + "?" + r.Query
		}
		return r.Path
	}
	return r.RawPath
}

type HttpResponse struct {
	StatusCode    int
	ContentLength int64
}

// Reply is what a route handler hands to the response writer.
type Reply struct {
	Status       Status
	Body         []byte
	ContentType  string
	LastModified string
}

// Peer describes the client side of a connection and the ambient CGI
// variables the dispatcher derived for it.
type Peer struct {
	ConnId     uuid.UUID
	RemoteAddr string
	Ambient    cgi.Environment
}

type ParseOutcome int

const (
	ParseOk ParseOutcome = iota
	ParseInvalidMethod
	ParseInvalidURI
	ParseInvalidVersion
	ParseLineFailure
	ParseEndOfStream
)

func (o ParseOutcome) String() string {
	switch o {
	case ParseOk:
		return "ok"
	case ParseInvalidMethod:
		return "invalid method"
	case ParseInvalidURI:
		return "invalid uri"
	case ParseInvalidVersion:
		return "invalid version"
	case ParseLineFailure:
		return "line failure"
	case ParseEndOfStream:
		return "end of stream"
	}
	return "unknown"
}

type DirectoryEntry struct {
	Name  string
	IsDir bool
}

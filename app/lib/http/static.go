package http

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/user"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/sys/unix"
)

// UserDirName is the directory under a user's home that /~user/ maps to.
const UserDirName = "sws"

const indexFileName = "index.html"

type HomeLookup func(username string) (string, error)

type StaticResolver struct {
	DocRoot    string
	LookupHome HomeLookup
}

func NewStaticResolver(docroot string) *StaticResolver {
	return &StaticResolver{
		DocRoot:    docroot,
		LookupHome: lookupHome,
	}
}

func lookupHome(username string) (string, error) {
	u, err := user.Lookup(username)
	if err != nil {
		return "", err
	}
	return u.HomeDir, nil
}

// Resolve maps the normalized request path onto the filesystem and builds
// the reply for it.
func (r *StaticResolver) Resolve(req *HttpRequest) (Reply, error) {
	base, sub, err := r.locate(req.Path)
	if err != nil {
		return Reply{}, err
	}

	if len(base)+len(sub) > MaxPathLength {
		return Reply{}, ErrPathTooLong
	}
	candidate := filepath.Join(base, sub)

	req.Logger.Debug().Str("file", candidate).Msg("resolving static resource")

	info, err := os.Stat(candidate)
	if err != nil {
		return Reply{}, statError(err)
	}

	if info.IsDir() {
		index := filepath.Join(candidate, indexFileName)
		indexInfo, err := os.Stat(index)
		if err != nil || !indexInfo.Mode().IsRegular() {
			return r.listDirectory(req, candidate, info)
		}
		candidate, info = index, indexInfo
	}

	lastModified := info.ModTime().UTC().Format(TimeFormat)
	if notModified(req.IfModifiedSince, info.ModTime()) {
		return Reply{Status: Status304NotModified, LastModified: lastModified}, nil
	}

	if !info.Mode().IsRegular() {
		return Reply{}, fmt.Errorf("%w: %s is not a regular file", ErrForbidden, req.Path)
	}

	body, err := os.ReadFile(candidate)
	if err != nil {
		if errors.Is(err, fs.ErrPermission) {
			return Reply{}, fmt.Errorf("%w: %v", ErrForbidden, err)
		}
		return Reply{}, fmt.Errorf("%w: %v", ErrInternal, err)
	}

	return Reply{
		Status:       Status200OK,
		Body:         body,
		ContentType:  ContentTypeFor(candidate),
		LastModified: lastModified,
	}, nil
}

// locate splits a normalized path into the base directory it is served from
// and the path below that base.
func (r *StaticResolver) locate(p string) (string, string, error) {
	if !strings.HasPrefix(p, "/~") {
		return r.DocRoot, p, nil
	}

	rest := p[2:]
	username, sub, found := strings.Cut(rest, "/")
	if username == "" {
		return "", "", ErrUnknownUser
	}
	sub = "/" + sub
	if !found {
		sub = "/"
	}

	home, err := r.LookupHome(username)
	if err != nil || home == "" {
		return "", "", fmt.Errorf("%w: %s", ErrUnknownUser, username)
	}

	return filepath.Join(home, UserDirName), sub, nil
}

func (r *StaticResolver) listDirectory(req *HttpRequest, dir string, info fs.FileInfo) (Reply, error) {
	lastModified := info.ModTime().UTC().Format(TimeFormat)
	if notModified(req.IfModifiedSince, info.ModTime()) {
		return Reply{Status: Status304NotModified, LastModified: lastModified}, nil
	}

	entries, err := readEntries(dir)
	if err != nil {
		if errors.Is(err, fs.ErrPermission) {
			return Reply{}, fmt.Errorf("%w: %v", ErrForbidden, err)
		}
		return Reply{}, fmt.Errorf("%w: %v", ErrInternal, err)
	}

	body, err := renderListing(req.Path, entries)
	if err != nil {
		return Reply{}, fmt.Errorf("%w: %v", ErrInternal, err)
	}

	req.Logger.Debug().Int("entries", len(entries)).Msg("generated directory listing")

	return Reply{
		Status:       Status200OK,
		Body:         body,
		ContentType:  TextHtmlContentType,
		LastModified: lastModified,
	}, nil
}

// notModified reports whether a resource last changed at mtime can be
// answered with 304 for the given If-Modified-Since value.
func notModified(ifModifiedSince string, mtime time.Time) bool {
	if ifModifiedSince == "" {
		return false
	}
	since, err := time.Parse(time.RFC1123, ifModifiedSince)
	if err != nil {
		return false
	}
	return !mtime.UTC().Truncate(time.Second).After(since.UTC())
}

func statError(err error) error {
	if errors.Is(err, fs.ErrNotExist) || errors.Is(err, unix.ENOTDIR) {
		return fmt.Errorf("%w: %v", ErrNotFound, err)
	}
	if errors.Is(err, unix.ENAMETOOLONG) {
		return fmt.Errorf("%w: %v", ErrPathTooLong, err)
	}
	return fmt.Errorf("%w: %v", ErrForbidden, err)
}

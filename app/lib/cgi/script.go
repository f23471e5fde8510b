package cgi

import (
	"errors"
	"fmt"
	"strings"
)

// Prefix is the URI prefix that routes a request to the CGI directory.
const Prefix = "/cgi-bin/"

const maxPathLength = 4096

var (
	ErrMapping        = errors.New("cgi: cannot map request to a script")
	ErrNotExecutable  = errors.New("cgi: script missing or not executable")
	ErrSpawn          = errors.New("cgi: failed to start script")
	ErrEmptyOutput    = errors.New("cgi: script produced no output")
	ErrOutputTooLarge = errors.New("cgi: script output exceeds limit")
	ErrKilled         = errors.New("cgi: script killed before completion")
)

type Script struct {
	Name   string // SCRIPT_NAME, "/cgi-bin/<rel>"
	Target string // filesystem path of the program
	Query  string
}

func IsCgiPath(p string) bool {
	return strings.HasPrefix(p, Prefix)
}

// MapScript splits a normalized "/cgi-bin/..." path into the program to run
// and its query string.
func MapScript(dir string, p string) (Script, error) {
	if dir == "" {
		return Script{}, fmt.Errorf("%w: no cgi directory configured", ErrMapping)
	}
	if !IsCgiPath(p) {
		return Script{}, fmt.Errorf("%w: %s is not under %s", ErrMapping, p, Prefix)
	}

	rel, query, _ := strings.Cut(strings.TrimPrefix(p, Prefix), "?")
	if rel == "" {
		return Script{}, fmt.Errorf("%w: empty script name", ErrMapping)
	}

	script := Script{
		Name:   Prefix + rel,
		Target: strings.TrimSuffix(dir, "/") + "/" + rel,
		Query:  query,
	}

	if len(script.Name) >= maxPathLength || len(script.Target) >= maxPathLength {
		return Script{}, fmt.Errorf("%w: path too long", ErrMapping)
	}

	return script, nil
}

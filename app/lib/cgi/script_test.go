package cgi

import (
	"errors"
	"strings"
	"testing"
)

func TestMapScript(t *testing.T) {
	tests := []struct {
		name   string
		dir    string
		path   string
		script Script
		err    error
	}{
		{
			name:   "plain script",
			dir:    "/srv/cgi",
			path:   "/cgi-bin/env.sh",
			script: Script{Name: "/cgi-bin/env.sh", Target: "/srv/cgi/env.sh", Query: ""},
		},
		{
			name:   "query string",
			dir:    "/srv/cgi/",
			path:   "/cgi-bin/sub/run?a=1&b=2?c",
			script: Script{Name: "/cgi-bin/sub/run", Target: "/srv/cgi/sub/run", Query: "a=1&b=2?c"},
		},
		{
			name:   "empty query",
			dir:    "/srv/cgi",
			path:   "/cgi-bin/run?",
			script: Script{Name: "/cgi-bin/run", Target: "/srv/cgi/run", Query: ""},
		},
		{name: "no cgi dir", dir: "", path: "/cgi-bin/run", err: ErrMapping},
		{name: "not a cgi path", dir: "/srv/cgi", path: "/index.html", err: ErrMapping},
		{name: "no script name", dir: "/srv/cgi", path: "/cgi-bin/", err: ErrMapping},
		{name: "only a query", dir: "/srv/cgi", path: "/cgi-bin/?x", err: ErrMapping},
		{name: "too long", dir: "/srv/cgi", path: "/cgi-bin/" + strings.Repeat("a", maxPathLength), err: ErrMapping},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			// act
			script, err := MapScript(test.dir, test.path)

			// assert
			if test.err != nil {
				if !errors.Is(err, test.err) {
					t.Errorf("expected %v but got %v", test.err, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("expected no error but got %v", err)
			}
			if script != test.script {
				t.Errorf("expected %+v but got %+v", test.script, script)
			}
		})
	}
}

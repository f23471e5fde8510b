package http

import (
	"bytes"
	"html/template"
	"io/fs"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
)

var listingTemplate = template.Must(template.New("listing").Parse(strings.TrimSpace(`
<!DOCTYPE html>
<html>
<head><title>Index of {{.Path}}</title></head>
<body>
<h1>Index of {{.Path}}</h1>
<ul>
{{- range .Entries}}
<li><a href="{{.Href}}">{{.Label}}</a></li>
{{- end}}
</ul>
</body>
</html>
`) + "\n"))

type listingEntry struct {
	Href  string
	Label string
}

type listingVars struct {
	Path    string
	Entries []listingEntry
}

// readEntries returns the visible entries of dir sorted by name. Hidden
// names (leading '.') are skipped.
func readEntries(dir string) ([]DirectoryEntry, error) {
	dirents, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	entries := make([]DirectoryEntry, 0, len(dirents))
	for _, d := range dirents {
		name := d.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}

		isDir := d.IsDir()
		if d.Type()&fs.ModeSymlink != 0 {
			if target, err := os.Stat(filepath.Join(dir, name)); err == nil {
				isDir = target.IsDir()
			}
		}

		entries = append(entries, DirectoryEntry{Name: name, IsDir: isDir})
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name < entries[j].Name
	})

	return entries, nil
}

func renderListing(requestPath string, entries []DirectoryEntry) ([]byte, error) {
	vars := listingVars{
		Path:    requestPath,
		Entries: make([]listingEntry, 0, len(entries)),
	}

	for _, e := range entries {
		label := e.Name
		href := path.Join(requestPath, url.PathEscape(e.Name))
		if e.IsDir {
			label += "/"
			href += "/"
		}
		vars.Entries = append(vars.Entries, listingEntry{Href: href, Label: label})
	}

	var buf bytes.Buffer
	if err := listingTemplate.Execute(&buf, vars); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

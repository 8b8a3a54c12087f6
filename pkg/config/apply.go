package config

import (
	"errors"
	"fmt"
	"maps"
	"net/http"
	"os"
	"path/filepath"
	"slices"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/getmockd/stubserver/pkg/expect"
	"github.com/getmockd/stubserver/pkg/ftpstub"
	"github.com/getmockd/stubserver/pkg/httpstub"
)

// Expectation converts the entry into an unregistered expectation. A
// response without content or file answers with its status, 200 by default.
func (e ExpectationConfig) Expectation() (*expect.Expectation, error) {
	r := e.Response
	if r.Content != nil && r.File != "" {
		return nil, errors.New("response content and file are mutually exclusive")
	}

	var resp expect.Response
	switch {
	case r.Content != nil:
		resp = expect.ContentResponse(*r.Content, r.MimeType)
	case r.File != "":
		resp = expect.FileResponse(r.File, r.MimeType)
	default:
		resp = expect.StatusResponse(http.StatusOK)
	}
	if r.Status != 0 {
		resp = resp.WithStatus(r.Status)
	}
	for _, k := range slices.Sorted(maps.Keys(r.Headers)) {
		resp = resp.WithHeader(k, r.Headers[k])
	}

	exp := &expect.Expectation{
		Name:     e.Name,
		Matcher:  e.Matcher,
		Response: resp,
	}
	if e.Capture {
		exp.Capture = &expect.Capture{}
	}
	return exp, nil
}

// ApplyHTTP registers the file's expectations on srv in declaration order
// and returns them. It does nothing when the file has no http section.
func (f *File) ApplyHTTP(srv *httpstub.Server) ([]*expect.Expectation, error) {
	if f.HTTP == nil {
		return nil, nil
	}

	added := make([]*expect.Expectation, 0, len(f.HTTP.Expectations))
	for i, e := range f.HTTP.Expectations {
		exp, err := e.Expectation()
		if err == nil {
			err = srv.Add(exp)
		}
		if err != nil {
			return added, fmt.Errorf("http.expectations[%d]: %w", i, err)
		}
		added = append(added, exp)
	}
	return added, nil
}

// ApplyFTP seeds srv with the file's inline files, in name order, then with
// every file matching the seed globs. A glob match is stored under its base
// name. It returns the number of files seeded.
func (f *File) ApplyFTP(srv *ftpstub.Server) (int, error) {
	if f.FTP == nil {
		return 0, nil
	}

	n := 0
	for _, name := range slices.Sorted(maps.Keys(f.FTP.Files)) {
		srv.AddFile(name, f.FTP.Files[name])
		n++
	}

	for _, pattern := range f.FTP.SeedGlobs {
		matches, err := doublestar.FilepathGlob(ResolvePath(f.BaseDir, pattern))
		if err != nil {
			return n, fmt.Errorf("expanding glob pattern %q: %w", pattern, err)
		}
		slices.Sort(matches)

		for _, match := range matches {
			info, err := os.Stat(match)
			if err != nil {
				return n, fmt.Errorf("seeding %s: %w", match, err)
			}
			if info.IsDir() {
				continue
			}
			data, err := os.ReadFile(match)
			if err != nil {
				return n, fmt.Errorf("seeding %s: %w", match, err)
			}
			srv.AddFile(filepath.Base(match), string(data))
			n++
		}
	}
	return n, nil
}

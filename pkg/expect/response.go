package expect

import (
	"errors"
	"fmt"
	"net/http"
)

// ResponseKind selects how a Response produces its body.
type ResponseKind int

const (
	// KindStatus answers with a status code and an empty body.
	KindStatus ResponseKind = iota
	// KindContent answers with literal bytes.
	KindContent
	// KindFile answers with the contents of a file read when the request is served.
	KindFile
)

func (k ResponseKind) String() string {
	switch k {
	case KindStatus:
		return "status"
	case KindContent:
		return "content"
	case KindFile:
		return "file"
	default:
		return fmt.Sprintf("ResponseKind(%d)", int(k))
	}
}

// Response describes what a consumed expectation sends back.
type Response struct {
	Kind     ResponseKind
	Status   int
	Content  []byte
	File     string
	MimeType string
	Headers  map[string]string
}

// StatusResponse answers with code and an empty body.
func StatusResponse(code int) Response {
	return Response{Kind: KindStatus, Status: code}
}

// ContentResponse answers 200 with content as the body.
func ContentResponse(content, mimeType string) Response {
	return Response{Kind: KindContent, Status: http.StatusOK, Content: []byte(content), MimeType: mimeType}
}

// FileResponse answers 200 with the contents of path. The file is read each
// time the response is served, so edits made after declaration are seen.
func FileResponse(path, mimeType string) Response {
	return Response{Kind: KindFile, Status: http.StatusOK, File: path, MimeType: mimeType}
}

// WithStatus returns a copy of r with the status replaced.
func (r Response) WithStatus(code int) Response {
	r.Status = code
	return r
}

// WithHeader returns a copy of r with an extra response header.
func (r Response) WithHeader(key, value string) Response {
	headers := make(map[string]string, len(r.Headers)+1)
	for k, v := range r.Headers {
		headers[k] = v
	}
	headers[key] = value
	r.Headers = headers
	return r
}

// ValidStatus reports whether code can be sent as a final response.
// Informational 1xx codes are excluded: net/http follows them with an
// implicit 200, so the client would never see them.
func ValidStatus(code int) bool {
	return code >= 200 && code <= 599
}

// Validate checks the response is well formed.
func (r Response) Validate() error {
	if !ValidStatus(r.Status) {
		return fmt.Errorf("invalid status code %d: must be 200-599", r.Status)
	}
	switch r.Kind {
	case KindStatus, KindContent:
	case KindFile:
		if r.File == "" {
			return errors.New("file response needs a path")
		}
	default:
		return fmt.Errorf("unknown response kind %v", r.Kind)
	}
	return nil
}

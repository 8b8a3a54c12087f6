package requestlog

import "time"

// Protocol constants for request logging.
const (
	ProtocolHTTP = "http"
	ProtocolFTP  = "ftp"
)

// MaxBodyLog is the largest body kept on an entry. Longer bodies are cut and
// BodySize still records the original length.
const MaxBodyLog = 10 * 1024

// Entry captures one request served by a stub and what it answered.
type Entry struct {
	// ID is a unique identifier for the log entry.
	ID string `json:"id"`

	// Timestamp is when the request was received.
	Timestamp time.Time `json:"timestamp"`

	// Protocol is ProtocolHTTP or ProtocolFTP.
	Protocol string `json:"protocol"`

	// Method is the HTTP method, or the FTP command (STOR, RETR, LIST).
	Method string `json:"method"`

	// Path is the request URL path, or the FTP file name.
	Path string `json:"path"`

	// QueryString is the raw query string (HTTP only).
	QueryString string `json:"queryString,omitempty"`

	// Headers are the request headers (HTTP only).
	Headers map[string][]string `json:"headers,omitempty"`

	// Body is the request body or uploaded content, cut at MaxBodyLog.
	Body string `json:"body,omitempty"`

	// BodySize is the original body size in bytes.
	BodySize int `json:"bodySize"`

	// RemoteAddr is the client address.
	RemoteAddr string `json:"remoteAddr"`

	// MatchedID is the ID of the expectation that consumed the request.
	MatchedID string `json:"matchedId,omitempty"`

	// ResponseStatus is the HTTP status or FTP reply code sent back.
	ResponseStatus int `json:"responseStatus"`

	// DurationMs is the request processing time in milliseconds.
	DurationMs int `json:"durationMs"`

	// Error describes why the request failed, if it did.
	Error string `json:"error,omitempty"`

	// NearMisses summarises the closest expectations for unmatched HTTP requests.
	NearMisses []NearMissInfo `json:"nearMisses,omitempty"`

	// FTP is set for entries recorded by the FTP stub.
	FTP *FTPMeta `json:"ftp,omitempty"`
}

// FTPMeta contains FTP-specific transfer metadata.
type FTPMeta struct {
	// SessionID identifies the control connection.
	SessionID string `json:"sessionId"`

	// User is the login name the client sent.
	User string `json:"user,omitempty"`

	// TransferType is "A" for ASCII or "I" for binary.
	TransferType string `json:"transferType"`

	// Bytes is the number of bytes moved over the data connection.
	Bytes int64 `json:"bytes"`
}

// SetBody stores body on the entry, truncating it for the log.
func (e *Entry) SetBody(body []byte) {
	e.BodySize = len(body)
	if len(body) > MaxBodyLog {
		e.Body = string(body[:MaxBodyLog])
		return
	}
	e.Body = string(body)
}

// Package requestlog records the requests a stub server handled.
//
// It is distinct from operational logging, which uses log/slog. The journal
// answers "what did my client actually send?" after a test: which
// expectation consumed each HTTP request, which requests went unmatched and
// why, and which FTP transfers happened on which session.
//
//	store := requestlog.NewMemoryStore(100)
//	srv := httpstub.New(0, httpstub.WithRequestLog(store))
//	...
//	for _, e := range store.List(&requestlog.Filter{Unmatched: true}) {
//	    t.Logf("unmatched %s %s: %v", e.Method, e.Path, e.NearMisses)
//	}
//
// This is a leaf package so both servers can import it.
package requestlog

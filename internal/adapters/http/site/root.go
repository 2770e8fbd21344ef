// Package site serves the embedded upload console.
package site

import (
	"context"
	"net/http"
)

// Register attaches the console to the root path of mux. Only "/" itself is
// claimed so unknown paths still 404.
func Register(_ context.Context, mux *http.ServeMux) {
	if mux == nil {
		panic("mux is nil")
	}
	mux.Handle("GET /{$}", http.FileServer(FS()))
}

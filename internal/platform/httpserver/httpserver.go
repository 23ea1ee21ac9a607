// Package httpserver builds the API's *http.Server.
package httpserver

import (
	"net/http"
	"time"

	"afi/internal/platform/config"
)

// headerTimeout bounds slow-loris style clients independently of uploads.
const headerTimeout = 5 * time.Second

// New builds the server for cfg. Read and write deadlines sit above the
// request timeout so a full dataset upload can stream and be answered.
func New(cfg config.Server, handler http.Handler) *http.Server {
	body := cfg.RequestTimeout + 30*time.Second
	return &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: headerTimeout,
		ReadTimeout:       body,
		WriteTimeout:      body,
		IdleTimeout:       90 * time.Second,
	}
}

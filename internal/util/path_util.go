package util

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
)

// URLParamUint parses a positive integer path parameter.
func URLParamUint(r *http.Request, key string) (uint, bool) {
	v, err := strconv.ParseUint(chi.URLParam(r, key), 10, 64)
	if err != nil || v == 0 {
		return 0, false
	}
	return uint(v), true
}

// AbsoluteRoot is scheme://host/ of the incoming request as the browser sees it.
func AbsoluteRoot(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if fwd := r.Header.Get("X-Forwarded-Proto"); fwd != "" {
		scheme = fwd
	}
	return scheme + "://" + r.Host + "/"
}

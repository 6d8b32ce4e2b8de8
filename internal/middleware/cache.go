package middleware

import (
	"net/http"
)

// NoStore sets strict no-cache headers. Builder fragments change on every gesture and are
// rendered per locale, so nothing may be served from a cache.
func NoStore(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "no-store, no-cache, must-revalidate, max-age=0")
		w.Header().Set("Pragma", "no-cache")
		w.Header().Set("Expires", "0")
		w.Header().Add("Vary", "Accept-Language")
		next.ServeHTTP(w, r)
	})
}

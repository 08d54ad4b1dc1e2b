package middleware

import (
	"net/http"
	"slices"
)

// CORSOptions configures cross-origin access.
type CORSOptions struct {
	// AllowedOrigins lists accepted origins; "*" accepts any.
	AllowedOrigins []string
	AllowedMethods string
	AllowedHeaders string
}

// CORS sets cross-origin headers when the request origin is allowed.
func CORS(opts CORSOptions) func(http.Handler) http.Handler {
	anyOrigin := slices.Contains(opts.AllowedOrigins, "*")
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			if origin != "" && (anyOrigin || slices.Contains(opts.AllowedOrigins, origin)) {
				if anyOrigin {
					w.Header().Set("Access-Control-Allow-Origin", "*")
				} else {
					w.Header().Set("Access-Control-Allow-Origin", origin)
					w.Header().Add("Vary", "Origin")
				}
				if opts.AllowedMethods != "" {
					w.Header().Set("Access-Control-Allow-Methods", opts.AllowedMethods)
				}
				if opts.AllowedHeaders != "" {
					w.Header().Set("Access-Control-Allow-Headers", opts.AllowedHeaders)
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

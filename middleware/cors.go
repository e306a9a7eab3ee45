package middleware

import (
	"net/http"
	"strings"
)

// exposedHeaders are readable by the dashboard: the export file name and the
// request id shown in error notices.
const exposedHeaders = "Content-Disposition, X-Request-ID"

type CORSConfig struct {
	origins        map[string]struct{}
	anyOrigin      bool
	AllowedMethods string
	AllowedHeaders string
}

func NewCORSConfig(originsCSV, methods, headers string) *CORSConfig {
	c := &CORSConfig{
		origins:        make(map[string]struct{}),
		AllowedMethods: methods,
		AllowedHeaders: headers,
	}
	for _, o := range strings.Split(originsCSV, ",") {
		switch v := strings.TrimSpace(o); v {
		case "":
		case "*":
			c.anyOrigin = true
		default:
			c.origins[strings.TrimRight(v, "/")] = struct{}{}
		}
	}
	return c
}

func (c *CORSConfig) enabled() bool {
	return c.anyOrigin || len(c.origins) > 0
}

// allowOrigin returns the Access-Control-Allow-Origin value for origin, or ""
// when it is not allowed. Listed origins win over "*" so the session cookie
// can travel with credentialed requests.
func (c *CORSConfig) allowOrigin(origin string) string {
	if _, ok := c.origins[origin]; ok {
		return origin
	}
	if c.anyOrigin {
		return "*"
	}
	return ""
}

func (c *CORSConfig) Handle(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin == "" || !c.enabled() {
			next.ServeHTTP(w, r)
			return
		}

		allow := c.allowOrigin(origin)
		if allow != "" {
			h := w.Header()
			h.Set("Access-Control-Allow-Origin", allow)
			h.Set("Access-Control-Allow-Methods", c.AllowedMethods)
			h.Set("Access-Control-Allow-Headers", c.AllowedHeaders)
			h.Set("Access-Control-Expose-Headers", exposedHeaders)
			if allow != "*" {
				h.Set("Access-Control-Allow-Credentials", "true")
				h.Add("Vary", "Origin")
			}
		}

		if r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != "" {
			if allow == "" {
				w.WriteHeader(http.StatusForbidden)
				return
			}
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

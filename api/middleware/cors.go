package middleware

import (
	"net/http"
	"strings"

	"github.com/go-chi/cors"

	"github.com/wooftrace/wooftrace-backend/pkg/config"
)

var defaultCORSOrigins = []string{
	"http://localhost:3000", // local dev
}

// CORS returns middleware that applies the API's allowed origin policy. The
// configured frontend URL is appended to the defaults when present.
func CORS(cfg config.FrontendConfig) func(http.Handler) http.Handler {
	origins := append([]string{}, defaultCORSOrigins...)
	if url := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"); url != "" {
		origins = append(origins, url)
	}
	return cors.New(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
		MaxAge:           300,
	}).Handler
}

package middleware

import (
	"net/http"

	"starter-api/pkg/utils"

	"github.com/go-chi/cors"
)

// CORS allows every origin outside production. In production only the
// configured origins are accepted.
func CORS(config *utils.Config) func(http.Handler) http.Handler {
	origins := []string{"*"}
	credentials := false
	if config.App.IsProduction() {
		origins = config.CORS.Origins
		credentials = true
	}

	return cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: credentials,
		MaxAge:           300,
	})
}

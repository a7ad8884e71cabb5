package middleware

import (
	"net/http"

	log "github.com/sirupsen/logrus"

	"github.com/Motzart/exercises-app/internal/auth"
)

func LogRequest() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, _ := auth.UserIDFromContext(r.Context())
			log.WithFields(log.Fields{
				"method": r.Method,
				"path":   r.URL.Path,
				"user":   userID,
				"ua":     r.Header.Get("User-Agent"),
			}).Trace(" ====> request")
			next.ServeHTTP(w, r)
		})
	}
}

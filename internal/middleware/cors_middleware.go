package middleware

import (
	"errors"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// CORSMiddleware allows the web client at clientURL, which may be a
// comma-separated list, to call the API with cookies.
func CORSMiddleware(clientURL string) (gin.HandlerFunc, error) {
	var origins []string
	for _, o := range strings.Split(clientURL, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, strings.TrimRight(o, "/"))
		}
	}
	if len(origins) == 0 {
		return nil, errors.New("CLIENT_URL for CORS is not configured")
	}

	return cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}), nil
}

package api

import (
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

// NewServer creates the HTTP server with all routes configured
func NewServer(handler *Handler, apiAccessKey string) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	r.Use(gin.LoggerWithConfig(gin.LoggerConfig{
		Formatter: func(param gin.LogFormatterParams) string {
			return fmt.Sprintf("%s - [%s] \"%s %s %s %d %s \"%s\" %s\"\n",
				param.ClientIP,
				param.TimeStamp.Format(time.RFC3339),
				param.Method,
				logPath(param.Request.URL),
				param.Request.Proto,
				param.StatusCode,
				param.Latency,
				param.Request.UserAgent(),
				param.ErrorMessage,
			)
		},
		SkipPaths: []string{"/health"},
	}))

	r.Use(gin.Recovery())

	r.SetHTMLTemplate(settingsTemplate)

	r.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization, X-API-Key")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	setupRoutes(r, handler, apiAccessKey)

	return r
}

func setupRoutes(r *gin.Engine, handler *Handler, apiAccessKey string) {
	r.GET("/health", handler.GetHealth)

	// The control panel stores credentials, so it stays off without a key.
	if apiAccessKey != "" {
		api := r.Group("/api")
		api.Use(authMiddleware(apiAccessKey))
		{
			api.GET("/settings", handler.APIListSettings)
			api.PUT("/settings/:name", handler.APIUpdateSetting)
			api.DELETE("/settings/:name", handler.APIDeleteSetting)
			api.GET("/settings/form", handler.SettingsForm)
			api.POST("/settings/form", handler.SaveSettingsForm)

			api.GET("/runs", handler.APIListRuns)
			api.POST("/runs", handler.APITriggerRun)
			api.GET("/runs/:id", handler.APIGetRun)
			api.GET("/runs/:id/events", handler.APIListRunEvents)

			api.GET("/events", handler.APIListEvents)
			api.GET("/history", handler.APIListHistory)
		}
		slog.Info("API endpoints enabled with authentication")
	} else {
		slog.Warn("API endpoints disabled (API_ACCESS_KEY not set)")
	}

	r.GET("/", func(c *gin.Context) {
		endpoints := map[string]string{
			"health": "/health",
		}

		if apiAccessKey != "" {
			endpoints["settings"] = "/api/settings (GET, PUT/DELETE /api/settings/<name>)"
			endpoints["settings_form"] = "/api/settings/form?key=<api key>"
			endpoints["runs"] = "/api/runs (GET, POST to trigger a run)"
			endpoints["run"] = "/api/runs/<id> and /api/runs/<id>/events"
			endpoints["events"] = "/api/events"
			endpoints["history"] = "/api/history"
		}

		c.JSON(200, gin.H{
			"service":     "Pitch Post",
			"version":     handler.version,
			"description": "Football news relay: collects league news, rewrites it and publishes it to a social page",
			"endpoints":   endpoints,
			"api_status": map[string]interface{}{
				"enabled":       apiAccessKey != "",
				"auth_required": apiAccessKey != "",
				"header":        "X-API-Key",
			},
		})
	})

	r.GET("/favicon.ico", func(c *gin.Context) {
		c.Status(204)
	})
}

// logPath renders the request path for the access log with the API key
// query parameter masked.
func logPath(u *url.URL) string {
	if u.RawQuery == "" {
		return u.Path
	}

	query := u.Query()
	if query.Has("key") {
		query.Set("key", "REDACTED")
	}
	return u.Path + "?" + query.Encode()
}

// authMiddleware accepts the key from the X-API-Key header, a Bearer token
// or the key query parameter used by the settings form.
func authMiddleware(apiAccessKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		providedKey := c.GetHeader("X-API-Key")

		if providedKey == "" {
			authHeader := c.GetHeader("Authorization")
			if strings.HasPrefix(authHeader, "Bearer ") {
				providedKey = strings.TrimPrefix(authHeader, "Bearer ")
			}
		}

		if providedKey == "" {
			providedKey = c.Query("key")
		}

		if providedKey == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error":   "API key required",
				"message": "Provide API key in X-API-Key header or Authorization: Bearer <key>",
			})
			c.Abort()
			return
		}

		if providedKey != apiAccessKey {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error":   "Invalid API key",
				"message": "The provided API key is not valid",
			})
			c.Abort()
			return
		}

		c.Next()
	}
}

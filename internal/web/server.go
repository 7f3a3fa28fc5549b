// Package web gin server
package web

import (
	"net/http"
	"net/url"
	"strings"

	gmw "github.com/Laisky/gin-middlewares/v7"
	gconfig "github.com/Laisky/go-config/v2"
	"github.com/Laisky/zap"
	"github.com/gin-gonic/gin"

	"github.com/Laisky/word-association/internal/web/lwow/controller"
	"github.com/Laisky/word-association/library/log"
	"github.com/Laisky/word-association/library/throttle"
)

// ServerOption is the wiring of the HTTP server.
type ServerOption struct {
	Controller *controller.Controller
	// Throttle is optional; nil disables throttling.
	Throttle *throttle.ClientThrottle
	// AllowedOrigins are the hosts CORS accepts, subdomains included.
	AllowedOrigins []string
}

// NewServer builds the gin engine with every route mounted.
func NewServer(opt ServerOption) (*gin.Engine, error) {
	if !gconfig.Shared.GetBool("debug") {
		gin.SetMode(gin.ReleaseMode)
	}

	server := gin.New()
	server.Use(
		gin.Recovery(),
		gmw.NewLoggerMiddleware(
			gmw.WithLoggerMwColored(),
			gmw.WithLevel(log.Logger.Level().String()),
			gmw.WithLogger(log.Logger.Named("gin")),
		),
		allowCORS(opt.AllowedOrigins),
		throttleByClient(opt.Throttle),
	)

	if err := gmw.EnableMetric(server); err != nil {
		return nil, err
	}

	server.Any("/health", func(ctx *gin.Context) {
		ctx.String(http.StatusOK, "hello, world")
	})
	opt.Controller.Register(server)

	return server, nil
}

// RunServer blocks serving on addr
func RunServer(addr string, opt ServerOption) {
	server, err := NewServer(opt)
	if err != nil {
		log.Logger.Panic("new server", zap.Error(err))
	}

	log.Logger.Info("listening on http", zap.String("addr", addr))
	log.Logger.Panic("httpServer exit", zap.Error(server.Run(addr)))
}

func throttleByClient(t *throttle.ClientThrottle) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		if t != nil && !t.Allow(ctx.ClientIP()) {
			ctx.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"ok":    false,
				"error": "too many requests",
			})
			return
		}

		ctx.Next()
	}
}

// originAllowed matches origin's host against allowed hosts and their subdomains.
func originAllowed(origin string, allowed []string) bool {
	parsed, err := url.Parse(origin)
	if err != nil {
		return false
	}

	host := strings.ToLower(parsed.Hostname())
	if host == "" {
		return false
	}
	for _, a := range allowed {
		a = strings.ToLower(strings.TrimSpace(a))
		if a == "" {
			continue
		}
		if host == a || strings.HasSuffix(host, "."+a) {
			return true
		}
	}

	return false
}

func allowCORS(allowed []string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		origin := ctx.Request.Header.Get("Origin")

		if origin != "" && originAllowed(origin, allowed) {
			ctx.Header("Access-Control-Allow-Origin", origin)
			ctx.Header("Access-Control-Allow-Credentials", "true")
			ctx.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS, HEAD")
			ctx.Header("Access-Control-Allow-Headers", "Content-Type, Accept, Origin, X-Requested-With")
			ctx.Header("Access-Control-Max-Age", "86400") // 24 hours
			ctx.Header("Vary", "Origin")

			if ctx.Request.Method == http.MethodOptions {
				ctx.AbortWithStatus(http.StatusNoContent)
				return
			}
		} else if origin != "" && ctx.Request.Method == http.MethodOptions {
			// deny preflight from disallowed origins
			ctx.AbortWithStatus(http.StatusForbidden)
			return
		}

		ctx.Next()
	}
}

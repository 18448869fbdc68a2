package router

import (
	"net/http"
	"net/url"

	"github.com/envelope-zero/ledger/pkg/controllers"
	"github.com/envelope-zero/ledger/pkg/controllers/healthz"
	"github.com/envelope-zero/ledger/pkg/controllers/root"
	"github.com/envelope-zero/ledger/pkg/controllers/version"
	"github.com/envelope-zero/ledger/pkg/httperrors"
	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/logger"
	"github.com/gin-contrib/pprof"
	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Options configures the optional parts of the router.
type Options struct {
	CORSAllowOrigins []string // Origins allowed for CORS requests. CORS is disabled if empty
	EnablePprof      bool     // Serve pprof profiles under /debug/pprof
}

// Config sets up the router and its middlewares.
//
// The returned teardown function unregisters the Prometheus metrics
// and must be called before Config is called again.
func Config(url *url.URL, opts Options) (*gin.Engine, func(), error) {
	// Set up the router and middlewares
	r := gin.New()

	// Don’t process X-Forwarded-For header as we do not do anything with
	// client IPs
	r.ForwardedByClientIP = false

	// Send a HTTP 405 (Method not allowed) for all paths where there is
	// a handler, but not for the specific method used
	r.HandleMethodNotAllowed = true

	err := registerPrometheusMetrics()
	if err != nil {
		return nil, nil, err
	}

	r.Use(gin.Recovery())
	r.Use(requestid.New())
	r.Use(URLMiddleware(url))
	r.Use(MetricsMiddleware())
	r.NoMethod(func(c *gin.Context) {
		httperrors.New(c, http.StatusMethodNotAllowed, "This HTTP method is not allowed for the endpoint you called")
	})
	r.Use(logger.SetLogger(
		logger.WithDefaultLevel(zerolog.InfoLevel),
		logger.WithClientErrorLevel(zerolog.InfoLevel),
		logger.WithServerErrorLevel(zerolog.ErrorLevel),
		logger.WithLogger(func(c *gin.Context, logger zerolog.Logger) zerolog.Logger {
			return logger.With().
				Str("request-id", requestid.Get(c)).
				Str("method", c.Request.Method).
				Str("path", c.Request.URL.Path).
				Int("status", c.Writer.Status()).
				Int("size", c.Writer.Size()).
				Str("user-agent", c.Request.UserAgent()).
				Logger()
		})))

	if len(opts.CORSAllowOrigins) > 0 {
		log.Debug().Strs("CORS Allowed Origins", opts.CORSAllowOrigins).Msg("Router")

		r.Use(cors.New(cors.Config{
			AllowOrigins:     opts.CORSAllowOrigins,
			AllowMethods:     []string{"OPTIONS", "GET", "POST", "PATCH"},
			AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type"},
			AllowCredentials: true,
		}))
	}

	if opts.EnablePprof {
		pprof.Register(r)
	}

	// Disable the gin debug route printing as it clutters logs (and test logs)
	gin.DebugPrintRouteFunc = func(httpMethod, absolutePath, handlerName string, numHandlers int) {}

	// Don’t trust any proxy. We do not process any client IPs,
	// therefore we don’t need to trust anyone here.
	_ = r.SetTrustedProxies([]string{})

	log.Debug().Str("API Base URL", url.String()).Str("Host", url.Host).Str("Path", url.Path).Msg("Router")

	return r, unregisterPrometheusMetrics, nil
}

// AttachRoutes attaches the API routes to the router group that is passed in.
func AttachRoutes(group *gin.RouterGroup, co controllers.Controller, v string) {
	root.RegisterRoutes(group.Group(""))
	healthz.RegisterRoutes(group.Group("/healthz"), co.Engine.Store().DB())
	version.RegisterRoutes(group.Group("/version"), version.Object{
		Version:  v,
		Currency: co.Currency.String(),
	})

	group.GET("/metrics", gin.WrapH(promhttp.Handler()))

	co.RegisterRoutes(group.Group("/v1"))
}

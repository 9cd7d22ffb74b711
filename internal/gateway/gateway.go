// Package gateway serves the HTTP face of the service: JSON routes under
// /api, a gRPC-web bridge, health and metrics.
package gateway

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"google.golang.org/grpc"

	"doctor-booking-api/internal/auth"
	"doctor-booking-api/internal/handler"
	"doctor-booking-api/internal/middleware"
	"doctor-booking-api/internal/rpc"
)

type Config struct {
	Handler *handler.Handler
	Issuer  *auth.Issuer
	Limiter *middleware.RateLimiter
	// Conn is the gRPC server the web bridge forwards to. Nil disables it.
	Conn          grpc.ClientConnInterface
	Gatherer      prometheus.Gatherer
	Logger        zerolog.Logger
	CORSOrigins   []string
	SecureCookies bool
}

type server struct {
	h      *handler.Handler
	iss    *auth.Issuer
	conn   grpc.ClientConnInterface
	log    zerolog.Logger
	secure bool
}

func corsConfig(origins []string) cors.Config {
	c := cors.Config{
		AllowMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Authorization",
			"X-Grpc-Web", "X-User-Agent"},
		ExposeHeaders: []string{"Grpc-Status", "Grpc-Message", "Grpc-Status-Details-Bin"},
		MaxAge:        24 * time.Hour,
	}
	all := len(origins) == 0
	for _, o := range origins {
		if o == "*" {
			all = true
		}
	}
	if all {
		c.AllowAllOrigins = true
	} else {
		c.AllowOrigins = origins
		c.AllowCredentials = true
	}
	return c
}

func noStore(c *gin.Context) {
	c.Header("Cache-Control", "no-store")
	c.Next()
}

// New builds the gin engine.
func New(cfg Config) *gin.Engine {
	s := &server{
		h:      cfg.Handler,
		iss:    cfg.Issuer,
		conn:   cfg.Conn,
		log:    cfg.Logger,
		secure: cfg.SecureCookies,
	}

	r := gin.New()
	r.Use(middleware.GinRecovery(cfg.Logger), middleware.GinLogger(cfg.Logger))
	r.Use(cors.New(corsConfig(cfg.CORSOrigins)))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if cfg.Gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(cfg.Gatherer, promhttp.HandlerOpts{})))
	}

	api := r.Group("/api", noStore)

	public := api.Group("")
	if cfg.Limiter != nil {
		public.Use(middleware.GinRateLimit(cfg.Limiter))
	}
	public.POST("/register", s.register)
	public.POST("/login", s.login)
	public.POST("/refresh", s.refresh)

	authed := api.Group("", middleware.GinAuth(cfg.Issuer))
	authed.POST("/logout", s.logout)
	authed.GET("/doctors", s.listDoctors)
	authed.GET("/doctors/:id", s.getDoctor)
	authed.GET("/userappointments", s.listAppointments)
	authed.GET("/userappointments/all", s.listAppointments)
	authed.POST("/userappointments", s.createAppointment)
	authed.DELETE("/userappointments/:id", s.deleteAppointment)

	if cfg.Conn != nil {
		r.POST("/"+rpc.ServiceName+"/:method", s.grpcWeb)
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{
			"error":   "Route not found",
			"message": "The route you are looking for does not exist",
		})
	})
	return r
}

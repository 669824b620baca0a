package server

import (
	"context"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/nexusverde/console/internal/adminregistry"
	gatepkg "github.com/nexusverde/console/internal/adminregistry/gate"
	"github.com/nexusverde/console/internal/audit"
	auditdomain "github.com/nexusverde/console/internal/audit/domain"
	"github.com/nexusverde/console/internal/auth"
	authdomain "github.com/nexusverde/console/internal/auth/domain"
	"github.com/nexusverde/console/internal/auth/identity"
	"github.com/nexusverde/console/internal/auth/session"
	"github.com/nexusverde/console/internal/company"
	companydomain "github.com/nexusverde/console/internal/company/domain"
	"github.com/nexusverde/console/internal/config"
	"github.com/nexusverde/console/internal/observability"
	obsmiddleware "github.com/nexusverde/console/internal/observability/logger"
	obsmetrics "github.com/nexusverde/console/internal/observability/metrics"
	obstracing "github.com/nexusverde/console/internal/observability/tracing"
	"github.com/nexusverde/console/internal/provisioning"
	provisioningdomain "github.com/nexusverde/console/internal/provisioning/domain"
	"github.com/nexusverde/console/internal/ratelimit"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("http.server",
	fx.Provide(registerGin),
	auth.Module,
	adminregistry.Module,
	company.Module,
	provisioning.Module,
	audit.Module,
	ratelimit.Module,
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(obsCfg observability.Config) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obsmiddleware.GinMiddleware(obsmiddleware.MiddlewareConfig{
		Debug:           obsCfg.Debug(),
		ErrorClassifier: classifyErrorForLog,
	}))
	r.Use(obstracing.GinMiddleware())
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func registerGin(obsCfg observability.Config) *gin.Engine {
	return NewEngine(obsCfg)
}

func run(lc fx.Lifecycle, r *gin.Engine, cfg config.Config) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					panic(err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine          *gin.Engine
	cfg             config.Config
	db              *gorm.DB
	authsvc         authdomain.Service
	sessions        *session.Manager
	genID           *snowflake.Node
	gate            *gatepkg.Gate
	identityHub     *identity.Hub
	companySvc      companydomain.Service
	provisioningSvc provisioningdomain.Service
	auditSvc        auditdomain.Service
	loginLimiter    *ratelimit.LoginLimiter
	obsMetrics      *obsmetrics.Metrics
}

type ServerParams struct {
	fx.In

	Gin             *gin.Engine
	Cfg             config.Config
	DB              *gorm.DB
	Authsvc         authdomain.Service
	Sessions        *session.Manager
	GenID           *snowflake.Node
	Gate            *gatepkg.Gate
	IdentityHub     *identity.Hub
	CompanySvc      companydomain.Service
	ProvisioningSvc provisioningdomain.Service
	AuditSvc        auditdomain.Service
	LoginLimiter    *ratelimit.LoginLimiter `optional:"true"`
	ObsMetrics      *obsmetrics.Metrics     `optional:"true"`
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:          p.Gin,
		cfg:             p.Cfg,
		db:              p.DB,
		authsvc:         p.Authsvc,
		sessions:        p.Sessions,
		genID:           p.GenID,
		gate:            p.Gate,
		identityHub:     p.IdentityHub,
		companySvc:      p.CompanySvc,
		provisioningSvc: p.ProvisioningSvc,
		auditSvc:        p.AuditSvc,
		loginLimiter:    p.LoginLimiter,
		obsMetrics:      p.ObsMetrics,
	}

	svc.registerAuthRoutes()
	svc.registerAdminRoutes()
	svc.registerUIRoutes()
	svc.registerFallback()

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerAuthRoutes() {
	auth := s.engine.Group("/auth")

	auth.POST("/login", s.Login)
	auth.POST("/logout", s.Logout)
	auth.GET("/me", s.Me)
	auth.GET("/watch", s.AuthRequired(), s.WatchAuthorization)
}

func (s *Server) registerAdminRoutes() {
	admin := s.engine.Group("/admin")

	admin.Use(s.AuthRequired())
	admin.Use(s.AdminRequired())

	admin.POST("/companies", s.ProvisionCompany)
	admin.GET("/companies", s.ListCompanies)
	admin.GET("/companies/:id", s.GetCompanyByID)

	admin.GET("/audit-logs", s.ListAuditLogs)
}

func (s *Server) registerUIRoutes() {
	r := s.engine.Group("/")

	r.GET("/", s.redirectUnlessAllowed(), serveIndex)
	r.GET("/login", s.redirectIfLoggedIn(), serveIndex)
	r.GET("/register-company", s.redirectUnlessAllowed(), serveIndex)
}

func (s *Server) registerFallback() {
	s.engine.NoRoute(func(c *gin.Context) {
		// static assets (vite)
		if fileExists("./public", c.Request.URL.Path) {
			c.File("./public" + c.Request.URL.Path)
			return
		}

		// SPA fallback
		c.File("./public/index.html")
	})
}

func fileExists(publicDir, reqPath string) bool {
	clean := filepath.Clean(reqPath)

	// prevent path traversal
	if clean == "." || clean == "/" || clean == ".." {
		return false
	}

	fullPath := filepath.Join(publicDir, clean)

	info, err := os.Stat(fullPath)
	if err != nil {
		return false
	}

	return !info.IsDir()
}

func serveIndex(c *gin.Context) {
	c.File("./public/index.html")
}

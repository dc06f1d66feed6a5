// Package router mounts the HTTP surface of the API on a gin engine.
package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/noah-isme/educrm-api/internal/handler"
	"github.com/noah-isme/educrm-api/internal/middleware"
	"github.com/noah-isme/educrm-api/internal/models"
	"github.com/noah-isme/educrm-api/internal/service"
	"github.com/noah-isme/educrm-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/educrm-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/educrm-api/pkg/middleware/requestid"
)

// Options controls mount points and optional surfaces.
type Options struct {
	APIPrefix        string
	AllowedOrigins   []string
	UploadDir        string
	UploadPublicPath string
	EnableDocs       bool
}

// Handlers bundles every HTTP handler the router mounts.
type Handlers struct {
	Auth         *handler.AuthHandler
	Users        *handler.UserHandler
	Leads        *handler.LeadHandler
	Students     *handler.StudentHandler
	Applications *handler.ApplicationHandler
	Admissions   *handler.AdmissionHandler
	Search       *handler.SearchHandler
	Activities   *handler.ActivityHandler
	Dropdowns    *handler.DropdownHandler
	Workflow     *handler.WorkflowHandler
	Universities *handler.UniversityHandler
	Events       *handler.EventHandler
	Dashboard    *handler.DashboardHandler
	Reports      *handler.ReportHandler
	Uploads      *handler.UploadHandler
	Metrics      *handler.MetricsHandler
}

// New builds the engine with the shared middleware chain and every route.
func New(opts Options, log *zap.Logger, metrics *service.MetricsService, tokens middleware.TokenValidator, h Handlers) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(log))
	r.Use(corsmiddleware.New(opts.AllowedOrigins))
	r.Use(middleware.Metrics(metrics, "/metrics", "/health", "/ready"))
	r.Use(middleware.WithResponseMeta())

	Register(r, opts, tokens, h)
	return r
}

// Register mounts the routes on r.
func Register(r *gin.Engine, opts Options, tokens middleware.TokenValidator, h Handlers) {
	if h.Metrics != nil {
		r.GET("/health", h.Metrics.Health)
		r.GET("/ready", h.Metrics.Ready)
		r.GET("/metrics", h.Metrics.Prometheus)
	}
	if opts.UploadDir != "" {
		r.Static(publicPath(opts.UploadPublicPath), opts.UploadDir)
	}
	if opts.EnableDocs {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}
	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": gin.H{"code": "NOT_FOUND", "message": "route not found", "status": http.StatusNotFound}})
	})

	api := r.Group(opts.APIPrefix)

	auth := api.Group("/auth")
	auth.POST("/login", h.Auth.Login)
	auth.POST("/register", h.Auth.Register)
	auth.POST("/refresh", h.Auth.Refresh)

	secured := api.Group("")
	secured.Use(middleware.JWT(tokens))
	admin := middleware.RBAC(models.AdminRoles...)

	secured.POST("/auth/logout", h.Auth.Logout)
	secured.GET("/auth/me", h.Auth.Me)
	if h.Metrics != nil {
		secured.GET("/metrics/summary", admin, h.Metrics.Snapshot)
	}

	users := secured.Group("/users")
	users.GET("", admin, h.Users.List)
	users.POST("", admin, h.Users.Create)
	users.GET("/:id", middleware.RBAC(string(models.RoleSuperAdmin), string(models.RoleAdminStaff), "SELF"), h.Users.Get)
	users.PUT("/:id", admin, h.Users.Update)
	users.DELETE("/:id", admin, h.Users.Delete)

	leads := secured.Group("/leads")
	leads.GET("", h.Leads.List)
	leads.POST("", h.Leads.Create)
	leads.GET("/:id", h.Leads.Get)
	leads.PUT("/:id", h.Leads.Update)
	leads.DELETE("/:id", h.Leads.Delete)
	leads.PATCH("/:id/status", h.Leads.SetStatus)
	leads.POST("/:id/lost", h.Leads.MarkLost)

	students := secured.Group("/students")
	students.GET("", h.Students.List)
	students.POST("", h.Students.Create)
	students.POST("/convert-from-lead", h.Students.ConvertFromLead)
	students.GET("/:id", h.Students.Get)
	students.PUT("/:id", h.Students.Update)
	students.DELETE("/:id", h.Students.Delete)

	applications := secured.Group("/applications")
	applications.GET("", h.Applications.List)
	applications.POST("", h.Applications.Create)
	applications.GET("/:id", h.Applications.Get)
	applications.PUT("/:id", h.Applications.Update)
	applications.DELETE("/:id", h.Applications.Delete)

	admissions := secured.Group("/admissions")
	admissions.GET("", h.Admissions.List)
	admissions.POST("", h.Admissions.Create)
	admissions.GET("/:id", h.Admissions.Get)
	admissions.PUT("/:id", h.Admissions.Update)
	admissions.DELETE("/:id", h.Admissions.Delete)

	secured.GET("/search/leads", h.Search.Leads)
	secured.GET("/search/students", h.Search.Students)

	secured.GET("/activities/:entityType/:entityId", h.Activities.Timeline)
	secured.POST("/activities", h.Activities.Create)

	dropdowns := secured.Group("/dropdowns")
	dropdowns.GET("", h.Dropdowns.All)
	dropdowns.GET("/:module", h.Dropdowns.Module)
	dropdowns.POST("", admin, h.Dropdowns.Create)
	dropdowns.PUT("/:id", admin, h.Dropdowns.Update)
	dropdowns.DELETE("/:id", admin, h.Dropdowns.Delete)

	secured.GET("/workflow", h.Workflow.List)
	secured.GET("/workflow/:entity", h.Workflow.Describe)

	universities := secured.Group("/universities")
	universities.GET("", h.Universities.List)
	universities.GET("/:id", h.Universities.Get)
	universities.POST("", admin, h.Universities.Create)

	events := secured.Group("/events")
	events.GET("", h.Events.List)
	events.POST("", h.Events.Create)
	events.GET("/:id", h.Events.Get)
	events.PUT("/:id", h.Events.Update)
	events.DELETE("/:id", h.Events.Delete)
	events.GET("/:id/registrations", h.Events.Registrations)
	events.POST("/:id/registrations", h.Events.Register)
	events.POST("/:id/registrations/:registrationId/convert", h.Events.ConvertRegistration)

	secured.GET("/dashboard", h.Dashboard.Summary)
	secured.GET("/reports", h.Reports.Pipeline)
	secured.GET("/reports/export", h.Reports.Export)
	secured.POST("/upload/profile-picture", h.Uploads.ProfilePicture)
}

func publicPath(p string) string {
	if p == "" {
		return "/uploads"
	}
	return p
}

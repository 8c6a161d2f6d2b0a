package api

import (
	"net/http"

	"github.com/htech-wordpress/vibefit-studio-admin/internal/auth"
	"github.com/htech-wordpress/vibefit-studio-admin/internal/blob"
	"github.com/htech-wordpress/vibefit-studio-admin/internal/services"
	"github.com/htech-wordpress/vibefit-studio-admin/internal/website"
	"github.com/htech-wordpress/vibefit-studio-admin/internal/ws"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Deps is everything the HTTP surface is built from.
type Deps struct {
	ProjectID  string
	CORSOrigin string
	Services   *services.Services
	Website    *website.Aggregator
	Auth       *auth.Service
	Blobs      blob.Store
	Hub        *ws.Hub
}

func NewRouter(d Deps) *gin.Engine {
	RegisterValidators()

	r := gin.New()
	r.Use(gin.Recovery(), RequestLogger(), CORS(d.CORSOrigin))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "project": d.ProjectID})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	if fsStore, ok := d.Blobs.(*blob.Filesystem); ok {
		r.Static("/uploads", fsStore.Root())
	}

	authHandler := NewAuthHandler(d.Auth)
	dashboardHandler := NewDashboardHandler(d.Services)
	customerHandler := NewCustomerHandler(d.Services)
	programHandler := NewContentHandler(d.Services.Programs, d.Website.SyncPrograms, "program")
	testimonialHandler := NewContentHandler(d.Services.Testimonials, d.Website.SyncTestimonials, "testimonial")
	galleryHandler := NewGalleryHandler(NewContentHandler(d.Services.Gallery, d.Website.SyncGallery, "image"), d.Blobs)
	whatsappHandler := &SettingsHandler{
		Name:  "whatsapp",
		Fetch: d.Services.Settings.FetchWhatsApp,
		Save:  d.Services.Settings.UpdateWhatsApp,
		Sync:  d.Website.SyncWhatsApp,
	}
	socialHandler := &SettingsHandler{
		Name:  "social",
		Fetch: d.Services.Settings.FetchSocial,
		Save:  d.Services.Settings.UpdateSocial,
		Sync:  d.Website.SyncSocialMedia,
	}
	websiteHandler := NewWebsiteHandler(d.Website)

	apiGroup := r.Group("/api")
	apiGroup.POST("/auth/login", authHandler.Login)

	protected := apiGroup.Group("")
	protected.Use(auth.Guard(d.Auth.Provider, d.Auth.Checker))
	{
		protected.GET("/auth/me", authHandler.Me)
		protected.POST("/auth/logout", authHandler.Logout)

		protected.GET("/dashboard", dashboardHandler.GetStats)

		// Customer (inquiry) Routes
		protected.GET("/customers", customerHandler.GetCustomers)
		protected.GET("/customers/export", customerHandler.ExportCustomers)
		protected.GET("/customers/:id", customerHandler.GetCustomer)
		protected.PUT("/customers/:id/status", customerHandler.UpdateStatus)
		protected.DELETE("/customers/:id", customerHandler.DeleteCustomer)

		// Website Content Routes
		protected.GET("/programs", programHandler.List)
		protected.POST("/programs", programHandler.Create)
		protected.GET("/programs/:id", programHandler.Get)
		protected.PUT("/programs/:id", programHandler.Update)
		protected.DELETE("/programs/:id", programHandler.Delete)

		protected.GET("/gallery", galleryHandler.List)
		protected.POST("/gallery", galleryHandler.Create)
		protected.POST("/gallery/upload", galleryHandler.UploadImage)
		protected.GET("/gallery/:id", galleryHandler.Get)
		protected.PUT("/gallery/:id", galleryHandler.Update)
		protected.PATCH("/gallery/:id/caption", galleryHandler.UpdateCaption)
		protected.DELETE("/gallery/:id", galleryHandler.DeleteImage)

		protected.GET("/testimonials", testimonialHandler.List)
		protected.POST("/testimonials", testimonialHandler.Create)
		protected.GET("/testimonials/:id", testimonialHandler.Get)
		protected.PUT("/testimonials/:id", testimonialHandler.Update)
		protected.DELETE("/testimonials/:id", testimonialHandler.Delete)

		// Settings Routes
		protected.GET("/settings/whatsapp", whatsappHandler.Get)
		protected.PUT("/settings/whatsapp", whatsappHandler.Update)
		protected.GET("/settings/social", socialHandler.Get)
		protected.PUT("/settings/social", socialHandler.Update)

		// Public Website Config Routes
		protected.GET("/website", websiteHandler.GetConfig)
		protected.POST("/website/sync", websiteHandler.Sync)

		protected.GET("/ws", func(c *gin.Context) {
			d.Hub.ServeWs(c.Writer, c.Request)
		})
	}

	return r
}

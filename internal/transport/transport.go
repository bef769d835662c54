package transport

import (
	"net/http"
	"time"

	"github.com/ds124wfegd/eventsphere/internal/transport/middleware"

	"github.com/gin-gonic/gin"
)

// HealthChecker reports whether a backing broker connection is usable.
type HealthChecker interface {
	HealthCheck() error
}

type Handlers struct {
	Event        *EventHandler
	Registration *RegistrationHandler
	Export       *ExportHandler
	Admin        *AdminHandler
	Profile      *ProfileHandler
}

type RouterConfig struct {
	JWTSecret      string
	RequestTimeout time.Duration
	AppVersion     string
	Notifier       HealthChecker
}

func InitRoutes(h Handlers, cfg RouterConfig) *gin.Engine {
	RegisterValidators()

	router := gin.New()

	router.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})

	// Middleware
	router.Use(gin.Recovery())
	router.Use(middleware.Logger())
	router.Use(middleware.Timeout(cfg.RequestTimeout))
	router.Use(middleware.Auth(cfg.JWTSecret))

	// API routes
	api := router.Group("/api/v1")
	{
		// Event routes
		events := api.Group("/events")
		{
			events.GET("", h.Event.ListEvents)
			events.GET("/upcoming", h.Event.ListUpcoming)
			events.GET("/pending", h.Event.ListPendingApproval)
			events.GET("/:id", h.Event.GetEvent)

			events.POST("", h.Event.CreateEvent)
			events.PUT("/:id", h.Event.UpdateEvent)
			events.DELETE("/:id", h.Event.DeleteEvent)

			events.POST("/:id/rsvp", h.Registration.SubmitRSVP)
			events.DELETE("/:id/rsvp", h.Registration.WithdrawRSVP)
			events.GET("/:id/rsvps", h.Registration.ListRSVPs)

			events.POST("/:id/volunteers", h.Registration.RegisterVolunteer)
			events.PATCH("/:id/volunteers/me", h.Registration.UpdateVolunteerRole)
			events.DELETE("/:id/volunteers/me", h.Registration.WithdrawVolunteer)
			events.GET("/:id/volunteers", h.Registration.ListVolunteers)
			events.PUT("/:id/volunteers/:actor_id/decision", h.Registration.DecideVolunteer)

			events.GET("/:id/participants/export", h.Export.ExportParticipants)
			events.GET("/:id/volunteers/export", h.Export.ExportVolunteers)
		}

		api.GET("/organizers/:id/events", h.Event.ListByOrganizer)

		// Caller routes
		me := api.Group("/me", middleware.RequireActor())
		{
			me.GET("/profile", h.Profile.GetProfile)
			me.PUT("/profile", h.Profile.SaveProfile)
			me.GET("/rsvps", h.Registration.MyRSVPs)
			me.GET("/volunteering", h.Registration.MyVolunteering)
		}

		// Admin routes
		admin := api.Group("/admin", middleware.RequireActor())
		{
			admin.GET("/stats", h.Admin.Stats)

			admin.GET("/users", h.Admin.ListUsers)
			admin.POST("/users/:id/enable", h.Admin.EnableUser)
			admin.POST("/users/:id/disable", h.Admin.DisableUser)
			admin.PUT("/users/:id/role", h.Admin.ChangeUserRole)
			admin.DELETE("/users/:id", h.Admin.DeleteUser)

			admin.GET("/events", h.Admin.ListEvents)
			admin.POST("/events/:id/activate", h.Admin.ActivateEvent)
			admin.POST("/events/:id/deactivate", h.Admin.DeactivateEvent)
			admin.DELETE("/events/:id", h.Admin.DeleteEvent)

			admin.POST("/purge", h.Admin.Purge)
		}
	}

	// Health check
	router.GET("/health", func(c *gin.Context) {
		status, code := "ok", http.StatusOK
		notifier := "ok"
		if cfg.Notifier != nil {
			if err := cfg.Notifier.HealthCheck(); err != nil {
				status, code = "degraded", http.StatusServiceUnavailable
				notifier = err.Error()
			}
		}

		c.JSON(code, gin.H{
			"status":    status,
			"version":   cfg.AppVersion,
			"notifier":  notifier,
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
	})

	return router
}

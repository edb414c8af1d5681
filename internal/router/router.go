package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf-popaccueil/popaccueil-backend/config"
	"github.com/spf-popaccueil/popaccueil-backend/internal/app/controller"
	"github.com/spf-popaccueil/popaccueil-backend/internal/middleware"
)

type Router struct {
	authController         *controller.AuthController
	eventController        *controller.EventController
	postController         *controller.PostController
	basicServiceController *controller.BasicServiceController
	authMiddleware         *middleware.AuthMiddleware
	config                 *config.Config
}

func NewRouter(
	authController *controller.AuthController,
	eventController *controller.EventController,
	postController *controller.PostController,
	basicServiceController *controller.BasicServiceController,
	authMiddleware *middleware.AuthMiddleware,
	cfg *config.Config,
) *Router {
	return &Router{
		authController:         authController,
		eventController:        eventController,
		postController:         postController,
		basicServiceController: basicServiceController,
		authMiddleware:         authMiddleware,
		config:                 cfg,
	}
}

func (r *Router) Setup() *gin.Engine {
	gin.SetMode(r.config.Server.GinMode)

	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.LoggingMiddleware())
	router.Use(middleware.MetricsMiddleware())
	router.Use(middleware.CORSMiddleware(r.config.CORS.AllowedOrigins))

	router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"greeting": "Hello world in JSON"})
	})

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"message": "Pop Accueil API is running",
		})
	})

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	router.POST("/login", r.authController.Login)
	router.POST("/forgotten-password", r.authController.ForgottenPassword)
	router.POST("/reset-password", r.authController.ResetPassword)

	authenticated := router.Group("")
	authenticated.Use(r.authMiddleware.Authenticate())
	{
		authenticated.GET("/whoami", r.authController.WhoAmI)
		authenticated.POST("/signup", r.authMiddleware.RequireVolunteer(), r.authController.Signup)

		events := authenticated.Group("/events")
		{
			events.GET("", r.eventController.ListEvents)
			events.GET("/:id", r.eventController.GetEvent)
			events.POST("", r.authMiddleware.RequireVolunteer(), r.eventController.CreateEvent)
			events.PUT("/:id", r.authMiddleware.RequireVolunteer(), r.eventController.UpdateEvent)
			events.DELETE("/:id", r.authMiddleware.RequireVolunteer(), r.eventController.DeleteEvent)
		}

		posts := authenticated.Group("/posts")
		{
			posts.GET("", r.postController.ListPosts)
			posts.GET("/:id", r.postController.GetPost)
			posts.POST("", r.authMiddleware.RequireVolunteer(), r.postController.CreatePost)
			posts.PUT("/:id", r.authMiddleware.RequireVolunteer(), r.postController.UpdatePost)
			posts.DELETE("/:id", r.authMiddleware.RequireVolunteer(), r.postController.DeletePost)
		}

		basicServices := authenticated.Group("/basic-services")
		{
			basicServices.GET("", r.basicServiceController.ListBasicServices)
			basicServices.GET("/:id", r.basicServiceController.GetBasicService)
			basicServices.POST("", r.authMiddleware.RequireVolunteer(), r.basicServiceController.CreateBasicService)
			basicServices.PUT("/:id", r.authMiddleware.RequireVolunteer(), r.basicServiceController.UpdateBasicService)
			basicServices.DELETE("/:id", r.authMiddleware.RequireVolunteer(), r.basicServiceController.DeleteBasicService)
			basicServices.POST("/:id/subscribe", r.basicServiceController.Subscribe)
			basicServices.POST("/:id/unsubscribe", r.basicServiceController.Unsubscribe)
		}
	}

	return router
}

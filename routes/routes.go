package routes

import (
	"HospitalHub/controllers"
	"HospitalHub/metrics"
	"HospitalHub/middleware"
	"HospitalHub/services"
	"HospitalHub/util"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// Engine builds the router with the middleware chain every request passes through.
func Engine(origins []string, s *services.Services) *gin.Engine {
	r := gin.New()
	r.Use(middleware.RequestID(), middleware.Logger(), middleware.Recovery(), metrics.Middleware())
	corsConfig := cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", middleware.RequestIDHeader},
		ExposeHeaders:    []string{middleware.RequestIDHeader},
		AllowCredentials: true,
	}
	if len(origins) == 0 {
		corsConfig.AllowOrigins = nil
		corsConfig.AllowAllOrigins = true
		corsConfig.AllowCredentials = false
	}
	r.Use(cors.New(corsConfig))
	Routes(r, s)
	return r
}

func Routes(r *gin.Engine, s *services.Services) {
	util.RegisterValidators()

	r.GET("/health", controllers.Health)
	r.GET("/metrics", metrics.Handler())

	api := r.Group("/api")

	//public
	public := api.Group("")
	//private routes
	private := api.Group("", middleware.Auth(s.Auth))

	controllers.Auth(public, private, s)
	controllers.Appointment(private, s)
	controllers.Doctor(private, s)
	controllers.Department(private, s)
	controllers.Notification(private, s)
	controllers.Admin(private, s)
}

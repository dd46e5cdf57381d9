package controllers

import (
	"HospitalHub/dto"
	"HospitalHub/services"
	"HospitalHub/util"

	"github.com/gin-gonic/gin"
)

// Auth registers the public sign-in routes on public and /auth/me on private.
func Auth(public, private *gin.RouterGroup, s *services.Services) {
	auth := public.Group("/auth")
	{
		auth.POST("/register", Register(s.Auth))
		auth.POST("/login", Login(s.Auth))
	}
	private.GET("/auth/me", Me(s.Auth))
}

/*
* Bind the credentials
* Pass to the service and hand back the token
 */
func Login(svc *services.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req dto.LoginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			util.Fail(c, util.BindingError(err))
			return
		}
		resp, err := svc.Login(c.Request.Context(), req)
		if err != nil {
			util.Fail(c, err)
			return
		}
		util.OK(c, "Login successful", resp)
	}
}

func Register(svc *services.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req dto.RegisterRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			util.Fail(c, util.BindingError(err))
			return
		}
		user, err := svc.Register(c.Request.Context(), req)
		if err != nil {
			util.Fail(c, err)
			return
		}
		util.Created(c, "Registration successful", user)
	}
}

func Me(svc *services.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := svc.Me(c.Request.Context(), actor(c))
		if err != nil {
			util.Fail(c, err)
			return
		}
		util.OK(c, "", user)
	}
}

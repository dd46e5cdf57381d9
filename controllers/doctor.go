package controllers

import (
	"HospitalHub/dto"
	"HospitalHub/middleware"
	"HospitalHub/role"
	"HospitalHub/services"
	"HospitalHub/util"

	"github.com/gin-gonic/gin"
)

// Doctor registers the public doctor directory and the doctor portal.
func Doctor(r *gin.RouterGroup, s *services.Services) {
	doctors := r.Group("/doctors")
	{
		doctors.GET("", ListDoctors(s.Doctors))
		doctors.GET("/:id", GetDoctor(s.Doctors))
	}

	portal := r.Group("/doctor", middleware.RequireRole(role.Doctor))
	{
		portal.GET("/appointments", ListAppointments(s.Appointments))
		portal.PATCH("/appointments/:id/status", UpdateAppointmentStatus(s.Appointments))
		portal.POST("/appointments/:id/prescription", CreatePrescription(s.Appointments))
		portal.POST("/leaves", RequestLeave(s.Leaves))
		portal.GET("/leaves", ListLeaves(s.Leaves))
		portal.PATCH("/leaves/:id/cancel", CancelLeave(s.Leaves))
		portal.PATCH("/availability", UpdateAvailability(s.Doctors))
	}
}

func ListDoctors(svc *services.DoctorService) gin.HandlerFunc {
	return func(c *gin.Context) {
		q, err := doctorQuery(c)
		if err != nil {
			util.Fail(c, err)
			return
		}
		page, err := svc.ListPublic(c.Request.Context(), q)
		if err != nil {
			util.Fail(c, err)
			return
		}
		util.List(c, listResponse(page.Items, len(page.Items), page.Total, page.Page))
	}
}

func GetDoctor(svc *services.DoctorService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := idParam(c, "id")
		if err != nil {
			util.Fail(c, err)
			return
		}
		resp, err := svc.GetPublic(c.Request.Context(), id)
		if err != nil {
			util.Fail(c, err)
			return
		}
		util.OK(c, "", resp)
	}
}

func UpdateAvailability(svc *services.DoctorService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req dto.AvailabilityRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			util.Fail(c, util.BindingError(err))
			return
		}
		resp, err := svc.UpdateAvailability(c.Request.Context(), actor(c), req)
		if err != nil {
			util.Fail(c, err)
			return
		}
		util.OK(c, "Availability updated successfully", resp)
	}
}

package controllers

import (
	"HospitalHub/dto"
	"HospitalHub/middleware"
	"HospitalHub/role"
	"HospitalHub/services"
	"HospitalHub/util"

	"github.com/gin-gonic/gin"
)

func Appointment(r *gin.RouterGroup, s *services.Services) {
	appointments := r.Group("/appointments")
	{
		appointments.POST("", middleware.RequireRole(role.Patient), BookAppointment(s.Appointments))
		appointments.GET("/my-appointments", middleware.RequireRole(role.Patient, role.Doctor), ListAppointments(s.Appointments))
		appointments.GET("/:id", GetAppointment(s.Appointments))
		appointments.PATCH("/:id/cancel", middleware.RequireRole(role.Patient), CancelAppointment(s.Appointments))
	}
}

/*
* Bind and validate the booking
* Pass to the service
 */
func BookAppointment(svc *services.AppointmentService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req dto.BookAppointmentRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			util.Fail(c, util.BindingError(err))
			return
		}
		resp, err := svc.Book(c.Request.Context(), actor(c), req)
		if err != nil {
			util.Fail(c, err)
			return
		}
		util.Created(c, "Appointment booked successfully", resp)
	}
}

/*
* Build the filter from the query string
* The service narrows it to the caller
 */
func ListAppointments(svc *services.AppointmentService) gin.HandlerFunc {
	return func(c *gin.Context) {
		q, err := appointmentQuery(c)
		if err != nil {
			util.Fail(c, err)
			return
		}
		page, err := svc.List(c.Request.Context(), actor(c), q)
		if err != nil {
			util.Fail(c, err)
			return
		}
		util.List(c, listResponse(page.Items, len(page.Items), page.Total, page.Page))
	}
}

func GetAppointment(svc *services.AppointmentService) gin.HandlerFunc {
	return func(c *gin.Context) {
		resp, err := svc.Get(c.Request.Context(), actor(c), c.Param("id"))
		if err != nil {
			util.Fail(c, err)
			return
		}
		util.OK(c, "", resp)
	}
}

/*
* Patients and admins cancel through here with a reason
* The lifecycle decides whether the reason is long enough
 */
func CancelAppointment(svc *services.AppointmentService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req dto.CancelRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			util.Fail(c, util.BindingError(err))
			return
		}
		resp, err := svc.Cancel(c.Request.Context(), actor(c), c.Param("id"), req.CancellationReason)
		if err != nil {
			util.Fail(c, err)
			return
		}
		util.OK(c, "Appointment cancelled successfully", resp)
	}
}

func UpdateAppointmentStatus(svc *services.AppointmentService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req dto.StatusUpdateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			util.Fail(c, util.BindingError(err))
			return
		}
		resp, err := svc.UpdateStatus(c.Request.Context(), actor(c), c.Param("id"), req)
		if err != nil {
			util.Fail(c, err)
			return
		}
		util.OK(c, "Appointment status updated successfully", resp)
	}
}

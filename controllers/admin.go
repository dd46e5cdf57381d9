package controllers

import (
	"strconv"

	"HospitalHub/dto"
	"HospitalHub/middleware"
	"HospitalHub/role"
	"HospitalHub/services"
	"HospitalHub/util"

	"github.com/gin-gonic/gin"
)

/*
* Every admin route needs the admin role
* Each area is further gated by its permission flag
 */
func Admin(r *gin.RouterGroup, s *services.Services) {
	admin := r.Group("/admin", middleware.RequireRole(role.Admin))
	perm := func(p string) gin.HandlerFunc { return middleware.RequirePermission(s.Admin, p) }
	{
		admin.GET("/activity", AdminActivity(s.Admin))

		admin.GET("/appointments", perm(role.ManageAppointments), ListAppointments(s.Appointments))
		admin.PATCH("/appointments/:id/cancel", perm(role.ManageAppointments), CancelAppointment(s.Appointments))

		admin.GET("/doctors", perm(role.ManageDoctors), AdminListDoctors(s.Admin))
		admin.PATCH("/doctors/:id/approval", perm(role.ManageDoctors), ReviewDoctor(s.Admin))
		admin.DELETE("/doctors/:id", perm(role.ManageDoctors), RemoveDoctor(s.Admin))
		admin.DELETE("/patients/:id", perm(role.ManagePatients), RemovePatient(s.Admin))

		admin.GET("/leaves", perm(role.ManageLeaves), ListLeaves(s.Leaves))
		admin.PATCH("/leaves/:id/approval", perm(role.ManageLeaves), ReviewLeave(s.Leaves))

		admin.POST("/departments", perm(role.ManageDepartments), CreateDepartment(s.Departments))
		admin.PATCH("/departments/:id/beds", perm(role.ManageDepartments), UpdateDepartmentBeds(s.Departments))
		admin.DELETE("/departments/:id", perm(role.ManageDepartments), DeleteDepartment(s.Departments))

		admin.GET("/stats/appointments", perm(role.ViewReports), AppointmentStats(s.Stats))
		admin.GET("/dashboard", perm(role.ViewReports), Dashboard(s.Stats))
	}
}

func AdminActivity(svc *services.AdminService) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit, _ := strconv.Atoi(c.Query("limit"))
		entries, err := svc.Activity(c.Request.Context(), actor(c), limit)
		if err != nil {
			util.Fail(c, err)
			return
		}
		util.List(c, util.NewListResponse(entries, len(entries), int64(len(entries)), 1, len(entries)))
	}
}

func AdminListDoctors(svc *services.AdminService) gin.HandlerFunc {
	return func(c *gin.Context) {
		q, err := doctorQuery(c)
		if err != nil {
			util.Fail(c, err)
			return
		}
		page, err := svc.ListDoctors(c.Request.Context(), q)
		if err != nil {
			util.Fail(c, err)
			return
		}
		util.List(c, listResponse(page.Items, len(page.Items), page.Total, page.Page))
	}
}

func ReviewDoctor(svc *services.AdminService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := idParam(c, "id")
		if err != nil {
			util.Fail(c, err)
			return
		}
		var req dto.DoctorApprovalRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			util.Fail(c, util.BindingError(err))
			return
		}
		d, err := svc.ReviewDoctor(c.Request.Context(), actor(c), id, req.Status)
		if err != nil {
			util.Fail(c, err)
			return
		}
		util.OK(c, "Doctor "+d.ApprovalStatus+" successfully", d)
	}
}

/*
* Deactivate the doctor
* Their pending and confirmed appointments are cancelled with both parties notified
 */
func RemoveDoctor(svc *services.AdminService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := idParam(c, "id")
		if err != nil {
			util.Fail(c, err)
			return
		}
		res, err := svc.RemoveDoctor(c.Request.Context(), actor(c), id)
		if err != nil {
			util.Fail(c, err)
			return
		}
		util.OK(c, "Doctor removed successfully", res)
	}
}

func RemovePatient(svc *services.AdminService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := idParam(c, "id")
		if err != nil {
			util.Fail(c, err)
			return
		}
		res, err := svc.RemovePatient(c.Request.Context(), actor(c), id)
		if err != nil {
			util.Fail(c, err)
			return
		}
		util.OK(c, "Patient removed successfully", res)
	}
}

func AppointmentStats(svc *services.StatsService) gin.HandlerFunc {
	return func(c *gin.Context) {
		stats, err := svc.Appointments(c.Request.Context(), c.Query("period"))
		if err != nil {
			util.Fail(c, err)
			return
		}
		util.OK(c, "", stats)
	}
}

func Dashboard(svc *services.StatsService) gin.HandlerFunc {
	return func(c *gin.Context) {
		d, err := svc.Dashboard(c.Request.Context())
		if err != nil {
			util.Fail(c, err)
			return
		}
		util.OK(c, "", d)
	}
}

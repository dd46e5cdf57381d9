package controllers

import (
	"HospitalHub/dto"
	"HospitalHub/role"
	"HospitalHub/services"
	"HospitalHub/util"

	"github.com/gin-gonic/gin"
)

func Department(r *gin.RouterGroup, s *services.Services) {
	r.GET("/departments", ListDepartments(s.Departments))
}

// ListDepartments shows active departments, admins can pass all=true.
func ListDepartments(svc *services.DepartmentService) gin.HandlerFunc {
	return func(c *gin.Context) {
		activeOnly := c.Query("all") != "true" || actor(c).Role != role.Admin
		items, err := svc.List(c.Request.Context(), activeOnly)
		if err != nil {
			util.Fail(c, err)
			return
		}
		util.List(c, util.NewListResponse(items, len(items), int64(len(items)), 1, len(items)))
	}
}

func CreateDepartment(svc *services.DepartmentService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req dto.DepartmentRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			util.Fail(c, util.BindingError(err))
			return
		}
		d, err := svc.Create(c.Request.Context(), actor(c), req)
		if err != nil {
			util.Fail(c, err)
			return
		}
		util.Created(c, "Department created successfully", d)
	}
}

/*
* Total is required
* Available or occupied may follow, never both
 */
func UpdateDepartmentBeds(svc *services.DepartmentService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := idParam(c, "id")
		if err != nil {
			util.Fail(c, err)
			return
		}
		var req dto.BedUpdateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			util.Fail(c, util.BindingError(err))
			return
		}
		d, err := svc.UpdateBeds(c.Request.Context(), actor(c), id, req)
		if err != nil {
			util.Fail(c, err)
			return
		}
		util.OK(c, "Bed capacity updated successfully", d)
	}
}

func DeleteDepartment(svc *services.DepartmentService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := idParam(c, "id")
		if err != nil {
			util.Fail(c, err)
			return
		}
		if err := svc.Delete(c.Request.Context(), actor(c), id); err != nil {
			util.Fail(c, err)
			return
		}
		util.OK(c, "Department deleted successfully", nil)
	}
}

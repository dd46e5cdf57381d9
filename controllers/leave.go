package controllers

import (
	"strings"

	"HospitalHub/dto"
	"HospitalHub/repository"
	"HospitalHub/services"
	"HospitalHub/util"

	"github.com/gin-gonic/gin"
)

func RequestLeave(svc *services.LeaveService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req dto.LeaveRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			util.Fail(c, util.BindingError(err))
			return
		}
		l, err := svc.Request(c.Request.Context(), actor(c), req)
		if err != nil {
			util.Fail(c, err)
			return
		}
		util.Created(c, "Leave request submitted successfully", l)
	}
}

/*
* Doctors see their own leaves
* Admins may filter by status and doctorId
 */
func ListLeaves(svc *services.LeaveService) gin.HandlerFunc {
	return func(c *gin.Context) {
		q := repository.LeaveQuery{
			Page:   pageFrom(c),
			Status: strings.ToLower(strings.TrimSpace(c.Query("status"))),
		}
		doctor, err := optionalID(c, "doctorId")
		if err != nil {
			util.Fail(c, err)
			return
		}
		q.Doctor = doctor
		page, err := svc.List(c.Request.Context(), actor(c), q)
		if err != nil {
			util.Fail(c, err)
			return
		}
		util.List(c, listResponse(page.Items, len(page.Items), page.Total, page.Page))
	}
}

func CancelLeave(svc *services.LeaveService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := idParam(c, "id")
		if err != nil {
			util.Fail(c, err)
			return
		}
		l, err := svc.Cancel(c.Request.Context(), actor(c), id)
		if err != nil {
			util.Fail(c, err)
			return
		}
		util.OK(c, "Leave request cancelled successfully", l)
	}
}

/*
* Approve needs only the status
* Reject also needs a reason of at least ten characters
 */
func ReviewLeave(svc *services.LeaveService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := idParam(c, "id")
		if err != nil {
			util.Fail(c, err)
			return
		}
		var req dto.LeaveApprovalRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			util.Fail(c, util.BindingError(err))
			return
		}
		l, err := svc.Review(c.Request.Context(), actor(c), id, req)
		if err != nil {
			util.Fail(c, err)
			return
		}
		util.OK(c, "Leave request "+l.Status+" successfully", l)
	}
}

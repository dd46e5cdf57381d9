package controllers

import (
	"HospitalHub/dto"
	"HospitalHub/services"
	"HospitalHub/util"

	"github.com/gin-gonic/gin"
)

/*
* Bind the diagnosis and medications
* The appointment must be completed and not linked yet
 */
func CreatePrescription(svc *services.AppointmentService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req dto.PrescriptionRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			util.Fail(c, util.BindingError(err))
			return
		}
		resp, err := svc.CreatePrescription(c.Request.Context(), actor(c), c.Param("id"), req)
		if err != nil {
			util.Fail(c, err)
			return
		}
		util.Created(c, "Prescription created successfully", resp)
	}
}

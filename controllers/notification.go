package controllers

import (
	"net/http"

	"HospitalHub/services"
	"HospitalHub/util"

	"github.com/gin-gonic/gin"
)

func Notification(r *gin.RouterGroup, s *services.Services) {
	notifications := r.Group("/notifications")
	{
		notifications.GET("", ListNotifications(s.Notifications))
		notifications.PATCH("/:id/read", MarkNotificationRead(s.Notifications))
	}
}

type notificationList struct {
	util.ListResponse
	Unread int64 `json:"unread"`
}

func ListNotifications(svc *services.NotificationService) gin.HandlerFunc {
	return func(c *gin.Context) {
		page, err := svc.List(c.Request.Context(), actor(c), c.Query("unread") == "true", pageFrom(c))
		if err != nil {
			util.Fail(c, err)
			return
		}
		c.JSON(http.StatusOK, notificationList{
			ListResponse: listResponse(page.Items, len(page.Items), page.Total, page.Page),
			Unread:       page.Unread,
		})
	}
}

func MarkNotificationRead(svc *services.NotificationService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := idParam(c, "id")
		if err != nil {
			util.Fail(c, err)
			return
		}
		n, err := svc.MarkRead(c.Request.Context(), actor(c), id)
		if err != nil {
			util.Fail(c, err)
			return
		}
		util.OK(c, "Notification marked as read", n)
	}
}

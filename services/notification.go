package services

import (
	"context"
	"time"

	"HospitalHub/models"
	"HospitalHub/repository"
	"HospitalHub/role"
	"HospitalHub/util"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type NotificationService struct {
	repos repository.Set
	now   func() time.Time
}

type NotificationPage struct {
	Items  []models.Notification
	Total  int64
	Unread int64
	Page   repository.Page
}

func (s *NotificationService) List(ctx context.Context, actor role.Actor, unreadOnly bool, page repository.Page) (*NotificationPage, error) {
	q := repository.NotificationQuery{Page: page, Recipient: actor.ProfileID, UnreadOnly: unreadOnly}
	q.Normalize()
	items, total, err := s.repos.Notifications.List(ctx, q)
	if err != nil {
		return nil, storeError(err, util.NOTIFICATION_NOT_FOUND)
	}
	unread, err := s.repos.Notifications.CountUnread(ctx, actor.ProfileID)
	if err != nil {
		return nil, storeError(err, util.NOTIFICATION_NOT_FOUND)
	}
	return &NotificationPage{Items: items, Total: total, Unread: unread, Page: q.Page}, nil
}

// MarkRead only touches notifications addressed to the caller.
func (s *NotificationService) MarkRead(ctx context.Context, actor role.Actor, id primitive.ObjectID) (*models.Notification, error) {
	n, err := s.repos.Notifications.MarkRead(ctx, id, actor.ProfileID, s.now())
	if err != nil {
		return nil, storeError(err, util.NOTIFICATION_NOT_FOUND)
	}
	return n, nil
}

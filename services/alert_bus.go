package services

import (
	"context"
	"fmt"

	"nutribalance/models"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// Broadcaster delivers a payload to a user's open sockets.
type Broadcaster interface {
	BroadcastAlert(userID string, payload any)
}

// Pusher delivers a mobile push notification.
type Pusher interface {
	PushToUser(ctx context.Context, userID, title, body string, data map[string]string)
}

// AlertMailer emails an alert message.
type AlertMailer interface {
	SendAlertEmail(ctx context.Context, to, message string) error
}

// AlertBus stores alerts and fans them out over every configured channel.
// Nil channels are skipped.
type AlertBus struct {
	db     *gorm.DB
	hub    Broadcaster
	push   Pusher
	mailer AlertMailer
}

func NewAlertBus(db *gorm.DB, hub Broadcaster, push Pusher, mailer AlertMailer) *AlertBus {
	return &AlertBus{db: db, hub: hub, push: push, mailer: mailer}
}

// Emit records the alert and delivers it. Only the store is fatal; delivery
// failures are logged.
func (b *AlertBus) Emit(ctx context.Context, userID, typ, message string) error {
	a := &models.Alert{UserID: userID, Type: typ, Message: message}
	if err := b.db.WithContext(ctx).Create(a).Error; err != nil {
		return fmt.Errorf("failed to save alert: %w", err)
	}

	if b.hub != nil {
		b.hub.BroadcastAlert(userID, map[string]any{
			"kind":  "alert.created",
			"alert": a,
		})
	}
	if b.push != nil {
		b.push.PushToUser(ctx, userID, "New Alert", message, map[string]string{
			"type": typ, "alertId": a.ID.String(),
		})
	}
	if b.mailer != nil && typ == models.AlertWarning {
		b.email(ctx, userID, message)
	}
	return nil
}

// Recent returns the user's newest alerts.
func (b *AlertBus) Recent(ctx context.Context, userID string, limit int) ([]models.Alert, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	alerts := []models.Alert{}
	if err := b.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&alerts).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch alerts: %w", err)
	}
	return alerts, nil
}

func (b *AlertBus) email(ctx context.Context, userID, message string) {
	var p models.Profile
	if err := b.db.WithContext(ctx).Select("email").Where("user_id = ?", userID).First(&p).Error; err != nil || p.Email == "" {
		return
	}
	if err := b.mailer.SendAlertEmail(ctx, p.Email, message); err != nil {
		log.Warn().Err(err).Str("user_id", userID).Msg("alert email failed")
	}
}

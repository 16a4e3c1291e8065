package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"nutribalance/models"

	"github.com/aws/aws-sdk-go-v2/aws"
	awssns "github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// SNSAPI is the part of the SNS client the push service needs.
type SNSAPI interface {
	CreatePlatformEndpoint(ctx context.Context, in *awssns.CreatePlatformEndpointInput, optFns ...func(*awssns.Options)) (*awssns.CreatePlatformEndpointOutput, error)
	Publish(ctx context.Context, in *awssns.PublishInput, optFns ...func(*awssns.Options)) (*awssns.PublishOutput, error)
}

type PushService struct {
	db          *gorm.DB
	sns         SNSAPI
	platformARN string
}

func NewPushService(db *gorm.DB, sns SNSAPI, platformARN string) *PushService {
	return &PushService{db: db, sns: sns, platformARN: platformARN}
}

type RegisterDeviceReq struct {
	Platform string `json:"platform" binding:"required"` // "android" | "ios"
	Token    string `json:"token" binding:"required"`
}

func tokenHash(tok string) string {
	h := sha256.Sum256([]byte(tok))
	return hex.EncodeToString(h[:])
}

// RegisterDevice creates an SNS endpoint for the device token and records
// it. Registering the same token again refreshes the stored endpoint.
func (p *PushService) RegisterDevice(ctx context.Context, userID, platform, token string) (*models.UserDevice, error) {
	platform = strings.ToLower(platform)
	if platform != "android" && platform != "ios" {
		return nil, fmt.Errorf("%w: unknown platform %q", models.ErrValidation, platform)
	}
	if p.sns == nil || p.platformARN == "" {
		return nil, fmt.Errorf("push notifications are not configured: %w", models.ErrUnavailable)
	}

	out, err := p.sns.CreatePlatformEndpoint(ctx, &awssns.CreatePlatformEndpointInput{
		PlatformApplicationArn: aws.String(p.platformARN),
		Token:                  aws.String(token),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: create platform endpoint: %v", models.ErrUpstream, err)
	}

	db := p.db.WithContext(ctx)
	hash := tokenHash(token)

	var dev models.UserDevice
	err = db.Where("user_id = ? AND token_hash = ?", userID, hash).First(&dev).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to fetch device: %w", err)
	}
	dev.UserID = userID
	dev.Platform = platform
	dev.TokenHash = hash
	dev.EndpointARN = aws.ToString(out.EndpointArn)
	dev.Enabled = true

	if err := db.Save(&dev).Error; err != nil {
		return nil, fmt.Errorf("failed to save device: %w", err)
	}
	return &dev, nil
}

// SetEnabled turns push delivery on or off for all of the user's devices.
func (p *PushService) SetEnabled(ctx context.Context, userID string, enabled bool) (int64, error) {
	res := p.db.WithContext(ctx).
		Model(&models.UserDevice{}).
		Where("user_id = ?", userID).
		Update("enabled", enabled)
	if res.Error != nil {
		return 0, fmt.Errorf("failed to update devices: %w", res.Error)
	}
	return res.RowsAffected, nil
}

// PushToUser publishes a notification to every enabled device of the user.
// Delivery failures are logged per endpoint.
func (p *PushService) PushToUser(ctx context.Context, userID, title, body string, data map[string]string) {
	if p == nil || p.sns == nil {
		return
	}
	var devices []models.UserDevice
	if err := p.db.WithContext(ctx).Where("user_id = ? AND enabled = ?", userID, true).Find(&devices).Error; err != nil {
		log.Warn().Err(err).Str("user_id", userID).Msg("failed to load push devices")
		return
	}
	if len(devices) == 0 {
		return
	}

	gcm, _ := json.Marshal(map[string]any{
		"notification": map[string]string{"title": title, "body": body},
		"data":         data,
	})
	raw, _ := json.Marshal(map[string]string{
		"default": body,
		"GCM":     string(gcm),
	})

	for _, d := range devices {
		if _, err := p.sns.Publish(ctx, &awssns.PublishInput{
			MessageStructure: aws.String("json"),
			Message:          aws.String(string(raw)),
			TargetArn:        aws.String(d.EndpointARN),
		}); err != nil {
			log.Warn().Err(err).Str("user_id", userID).Str("endpoint", d.EndpointARN).Msg("push publish failed")
		}
	}
}

package utils

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"mime"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// ObjectPutter is the part of the S3 client the uploader needs.
type ObjectPutter interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// ImageUploader stores data-URI images in S3 and returns their CloudFront URL.
type ImageUploader struct {
	client  ObjectPutter
	bucket  string
	baseURL string
	now     func() time.Time
}

func NewImageUploader(client ObjectPutter, bucket, cloudFrontURL string) *ImageUploader {
	return &ImageUploader{
		client:  client,
		bucket:  bucket,
		baseURL: strings.TrimRight(cloudFrontURL, "/"),
		now:     time.Now,
	}
}

// ErrInvalidImage marks a malformed or unsupported data URI.
var ErrInvalidImage = errors.New("invalid base64 image")

// DataURI is a decoded "data:<mime>;base64,<payload>" string.
type DataURI struct {
	ContentType string
	Ext         string
	Data        []byte
}

// ParseDataURI decodes a base64 data URI.
func ParseDataURI(raw string) (*DataURI, error) {
	meta, data, ok := strings.Cut(raw, ",")
	if !ok || !strings.HasPrefix(meta, "data:") || !strings.HasSuffix(meta, ";base64") {
		return nil, ErrInvalidImage
	}

	// "data:image/jpeg;base64" -> "image/jpeg"
	contentType := strings.TrimSuffix(strings.TrimPrefix(meta, "data:"), ";base64")
	if !strings.HasPrefix(contentType, "image/") {
		return nil, fmt.Errorf("%w: unsupported content type %q", ErrInvalidImage, contentType)
	}

	var ext string
	switch contentType {
	case "image/jpeg", "image/jpg":
		ext = ".jpg"
	default:
		if exts, _ := mime.ExtensionsByType(contentType); len(exts) > 0 {
			ext = exts[0]
		} else {
			ext = "." + strings.TrimPrefix(contentType, "image/")
		}
	}

	decoded, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}
	if len(decoded) == 0 {
		return nil, fmt.Errorf("%w: empty image", ErrInvalidImage)
	}
	return &DataURI{ContentType: contentType, Ext: ext, Data: decoded}, nil
}

// Upload puts the image under prefix/ and returns its public URL.
func (u *ImageUploader) Upload(ctx context.Context, dataURI, prefix string) (string, error) {
	img, err := ParseDataURI(dataURI)
	if err != nil {
		return "", err
	}

	key := fmt.Sprintf("%s/%d%s", strings.Trim(prefix, "/"), u.now().UnixNano(), img.Ext)

	_, err = u.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(u.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(img.Data),
		ContentType: aws.String(img.ContentType),
		ACL:         s3types.ObjectCannedACLPublicRead,
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload to S3: %w", err)
	}

	return fmt.Sprintf("%s/%s", u.baseURL, key), nil
}

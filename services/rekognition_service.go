package services

import (
	"context"
	"errors"
	"fmt"

	"nutribalance/models"
	"nutribalance/utils"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/rekognition"
	"github.com/aws/aws-sdk-go-v2/service/rekognition/types"
)

// LabelDetector is the part of the Rekognition client the service needs.
type LabelDetector interface {
	DetectLabels(ctx context.Context, in *rekognition.DetectLabelsInput, optFns ...func(*rekognition.Options)) (*rekognition.DetectLabelsOutput, error)
}

type RekognitionService struct {
	client LabelDetector
}

func NewRekognitionService(client LabelDetector) *RekognitionService {
	return &RekognitionService{client: client}
}

// RecognizeLabels returns up to five labels detected with at least 75%
// confidence in a data-URI image, most confident first.
func (r *RekognitionService) RecognizeLabels(ctx context.Context, dataURI string) ([]string, error) {
	img, err := utils.ParseDataURI(dataURI)
	if errors.Is(err, utils.ErrInvalidImage) {
		return nil, fmt.Errorf("%w: %v", models.ErrValidation, err)
	}
	if err != nil {
		return nil, err
	}

	out, err := r.client.DetectLabels(ctx, &rekognition.DetectLabelsInput{
		Image:         &types.Image{Bytes: img.Data},
		MaxLabels:     aws.Int32(5),
		MinConfidence: aws.Float32(75),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: detect labels: %v", models.ErrUpstream, err)
	}

	labels := make([]string, 0, len(out.Labels))
	for _, l := range out.Labels {
		if name := aws.ToString(l.Name); name != "" {
			labels = append(labels, name)
		}
	}
	return labels, nil
}

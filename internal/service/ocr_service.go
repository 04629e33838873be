package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/aws/aws-sdk-go-v2/service/rekognition"
	"github.com/aws/aws-sdk-go-v2/service/rekognition/types"
)

var ErrNoTextDetected = errors.New("no text detected in the image")

// TextRecognizer turns an image into raw text. SignService depends on
// this interface rather than the Rekognition client directly.
type TextRecognizer interface {
	RecognizeText(ctx context.Context, imageBytes []byte) (string, error)
}

// OCRService reads sign text out of images with AWS Rekognition.
type OCRService struct {
	rekognitionClient *rekognition.Client
}

func NewOCRService(rekClient *rekognition.Client) *OCRService {
	return &OCRService{rekognitionClient: rekClient}
}

// RecognizeText runs Rekognition DetectText over the image bytes and
// joins the detected lines, top to bottom, into the raw sign text.
// Word-level detections are skipped; they duplicate the lines.
func (s *OCRService) RecognizeText(ctx context.Context, imageBytes []byte) (string, error) {
	if s.rekognitionClient == nil {
		return "", fmt.Errorf("rekognition client is not configured")
	}

	input := &rekognition.DetectTextInput{
		Image: &types.Image{
			Bytes: imageBytes,
		},
	}

	result, err := s.rekognitionClient.DetectText(ctx, input)
	if err != nil {
		log.Printf("OCRService: DetectText call failed: %v", err)
		return "", fmt.Errorf("rekognition DetectText: %w", err)
	}

	var lines []string
	for _, detection := range result.TextDetections {
		if detection.Type != types.TextTypesLine || detection.DetectedText == nil {
			continue
		}
		if line := strings.TrimSpace(*detection.DetectedText); line != "" {
			lines = append(lines, line)
		}
	}
	log.Printf("OCRService: Rekognition returned %d text detections, %d usable lines", len(result.TextDetections), len(lines))

	if len(lines) == 0 {
		return "", ErrNoTextDetected
	}
	return strings.Join(lines, "\n"), nil
}

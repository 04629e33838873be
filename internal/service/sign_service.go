package service

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"parkingpal/internal/domain"
	"parkingpal/internal/repository"
	"parkingpal/internal/rules"
)

var ErrImageUnreadable = errors.New("could not read text from the image")
var ErrInvalidImageData = errors.New("invalid image data")

// ScanNotifier pushes scan events to connected clients. Implemented by
// the WebSocket manager; may be nil when no feed is wired.
type ScanNotifier interface {
	BroadcastScan(notification domain.ScanNotification)
}

// SignService runs the full analyze pipeline: OCR, rule extraction,
// admissibility evaluation, then best-effort persistence and the live
// scan feed. Only the OCR step can fail the request; a storage or feed
// problem never withholds a verdict from the caller.
type SignService struct {
	recognizer  TextRecognizer
	signRepo    repository.ParkingSignRepository
	historyRepo repository.ParkingHistoryRepository
	notifier    ScanNotifier
	now         func() time.Time
}

func NewSignService(recognizer TextRecognizer, signRepo repository.ParkingSignRepository,
	historyRepo repository.ParkingHistoryRepository, notifier ScanNotifier) *SignService {
	return &SignService{
		recognizer:  recognizer,
		signRepo:    signRepo,
		historyRepo: historyRepo,
		notifier:    notifier,
		now:         time.Now,
	}
}

// AnalyzeSign processes one submitted sign image for the given user
// and returns the verdict.
func (s *SignService) AnalyzeSign(ctx context.Context, userID int, dto domain.AnalyzeSignDTO) (*domain.AnalysisResult, error) {
	imageBytes, err := decodeImageData(dto.ImageData)
	if err != nil {
		return nil, err
	}

	text, err := s.recognizer.RecognizeText(ctx, imageBytes)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrImageUnreadable, err)
	}

	ruleSet := rules.ExtractRules(text)
	now := s.now()
	result := rules.Evaluate(ruleSet, now)

	signID := s.recordScan(ctx, userID, dto.Location, ruleSet, result, now)

	if s.notifier != nil {
		s.notifier.BroadcastScan(domain.ScanNotification{
			EventID:       uuid.New().String(),
			UserID:        userID,
			SignID:        signID,
			IsAllowed:     result.IsAllowed,
			TimeRemaining: result.TimeRemaining,
			Reason:        result.Reason,
			Location:      dto.Location,
			Timestamp:     now,
		})
	}

	return &result, nil
}

// recordScan persists the sign and its evaluation. Failures are logged
// and swallowed; the verdict does not depend on storage succeeding.
// Returns the stored sign id, or 0 when the sign was not stored.
func (s *SignService) recordScan(ctx context.Context, userID int, location string,
	ruleSet domain.RuleSet, result domain.AnalysisResult, now time.Time) int {
	sign, err := s.signRepo.Create(ctx, &domain.ParkingSign{
		UserID:    userID,
		ImageText: ruleSet.SignText,
		Rules:     ruleSet,
		Location:  location,
	})
	if err != nil {
		log.Printf("SignService: failed to store parking sign for user %d: %v", userID, err)
		return 0
	}

	history := &domain.ParkingHistory{
		UserID:        userID,
		SignID:        sign.ID,
		IsAllowed:     result.IsAllowed,
		TimeRemaining: result.TimeRemaining,
		StartTime:     now,
		EndTime:       clockOnDay(result.EndTime, now),
	}
	if _, err := s.historyRepo.Create(ctx, history); err != nil {
		log.Printf("SignService: failed to store parking history for sign %d: %v", sign.ID, err)
	}
	return sign.ID
}

// GetHistory lists the user's scans, newest first, each enriched with
// its stored sign.
func (s *SignService) GetHistory(ctx context.Context, userID int) ([]domain.HistoryEntry, error) {
	records, err := s.historyRepo.FindByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("listing parking history: %w", err)
	}

	entries := make([]domain.HistoryEntry, 0, len(records))
	for _, record := range records {
		entry := domain.HistoryEntry{ParkingHistory: record}
		sign, err := s.signRepo.FindByID(ctx, record.SignID)
		if err != nil {
			if !errors.Is(err, repository.ErrNotFound) {
				log.Printf("SignService: failed to load sign %d for history entry %d: %v", record.SignID, record.ID, err)
			}
		} else {
			entry.Sign = sign
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// GetRecentHistory lists the newest scans across all users, for the
// operations dashboard.
func (s *SignService) GetRecentHistory(ctx context.Context, limit int) ([]domain.ParkingHistory, error) {
	records, err := s.historyRepo.FindRecent(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("listing recent parking history: %w", err)
	}
	return records, nil
}

func (s *SignService) GetSign(ctx context.Context, id int) (*domain.ParkingSign, error) {
	return s.signRepo.FindByID(ctx, id)
}

// decodeImageData accepts plain base64 or a data URL as produced by
// canvas.toDataURL on the capture client.
func decodeImageData(imageData string) ([]byte, error) {
	if strings.HasPrefix(imageData, "data:image") {
		_, encoded, found := strings.Cut(imageData, ",")
		if !found {
			return nil, fmt.Errorf("%w: malformed data URL", ErrInvalidImageData)
		}
		imageData = encoded
	}

	imageBytes, err := base64.StdEncoding.DecodeString(imageData)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidImageData, err)
	}
	if len(imageBytes) == 0 {
		return nil, fmt.Errorf("%w: empty image", ErrInvalidImageData)
	}
	return imageBytes, nil
}

// clockOnDay anchors an extracted "HH:MM" window bound to the scan's
// date. Display-form bounds (e.g. the "4:00 PM" next-window hint) and
// absent bounds yield nil.
func clockOnDay(clock string, day time.Time) *time.Time {
	parsed, err := time.Parse("15:04", clock)
	if err != nil {
		return nil
	}
	t := time.Date(day.Year(), day.Month(), day.Day(), parsed.Hour(), parsed.Minute(), 0, 0, day.Location())
	return &t
}

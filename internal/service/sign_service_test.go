package service

import (
	"context"
	"encoding/base64"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"parkingpal/internal/domain"
	"parkingpal/internal/repository"
)

type recognizerMock struct {
	text      string
	err       error
	calls     int
	lastBytes []byte
}

func (m *recognizerMock) RecognizeText(_ context.Context, imageBytes []byte) (string, error) {
	m.calls++
	m.lastBytes = imageBytes
	return m.text, m.err
}

type signRepoMock struct {
	createErr   error
	findSign    *domain.ParkingSign
	findErr     error
	createCalls int
	lastCreated *domain.ParkingSign
}

func (m *signRepoMock) Create(_ context.Context, sign *domain.ParkingSign) (*domain.ParkingSign, error) {
	m.createCalls++
	if m.createErr != nil {
		return nil, m.createErr
	}
	sign.ID = 42
	sign.CreatedAt = time.Now()
	m.lastCreated = sign
	return sign, nil
}

func (m *signRepoMock) FindByID(_ context.Context, _ int) (*domain.ParkingSign, error) {
	return m.findSign, m.findErr
}

func (m *signRepoMock) FindByUserID(_ context.Context, _ int) ([]domain.ParkingSign, error) {
	return nil, nil
}

type historyRepoMock struct {
	records     []domain.ParkingHistory
	findErr     error
	createErr   error
	createCalls int
	lastCreated *domain.ParkingHistory
}

func (m *historyRepoMock) Create(_ context.Context, history *domain.ParkingHistory) (*domain.ParkingHistory, error) {
	m.createCalls++
	if m.createErr != nil {
		return nil, m.createErr
	}
	history.ID = 7
	m.lastCreated = history
	return history, nil
}

func (m *historyRepoMock) FindByUserID(_ context.Context, _ int) ([]domain.ParkingHistory, error) {
	return m.records, m.findErr
}

func (m *historyRepoMock) FindRecent(_ context.Context, _ int) ([]domain.ParkingHistory, error) {
	return m.records, m.findErr
}

type notifierMock struct {
	calls int
	last  domain.ScanNotification
}

func (m *notifierMock) BroadcastScan(n domain.ScanNotification) {
	m.calls++
	m.last = n
}

func encodedImage() string {
	return base64.StdEncoding.EncodeToString([]byte("fake-image-bytes"))
}

// Jan 5 2026 is a Monday.
func newTestSignService(rec *recognizerMock, signs *signRepoMock, history *historyRepoMock, notifier *notifierMock) *SignService {
	var n ScanNotifier
	if notifier != nil {
		n = notifier
	}
	s := NewSignService(rec, signs, history, n)
	s.now = func() time.Time {
		return time.Date(2026, time.January, 5, 15, 45, 0, 0, time.UTC)
	}
	return s
}

func TestAnalyzeSignSuccess(t *testing.T) {
	rec := &recognizerMock{text: "2 HOUR PARKING 8AM - 6PM MON - FRI"}
	signs := &signRepoMock{}
	history := &historyRepoMock{}
	notifier := &notifierMock{}
	s := newTestSignService(rec, signs, history, notifier)

	result, err := s.AnalyzeSign(context.Background(), 1, domain.AnalyzeSignDTO{
		ImageData: encodedImage(),
		Location:  "5th and Main",
	})

	require.NoError(t, err)
	assert.True(t, result.IsAllowed)
	assert.Equal(t, "2h", result.TimeRemaining)
	assert.Equal(t, rec.text, result.SignText)
	assert.Equal(t, []byte("fake-image-bytes"), rec.lastBytes)

	require.Equal(t, 1, signs.createCalls)
	assert.Equal(t, rec.text, signs.lastCreated.ImageText)
	assert.Equal(t, "5th and Main", signs.lastCreated.Location)

	require.Equal(t, 1, history.createCalls)
	assert.Equal(t, 42, history.lastCreated.SignID)
	assert.True(t, history.lastCreated.IsAllowed)
	assert.Equal(t, "2h", history.lastCreated.TimeRemaining)
	require.NotNil(t, history.lastCreated.EndTime)
	assert.Equal(t, 18, history.lastCreated.EndTime.Hour())

	require.Equal(t, 1, notifier.calls)
	assert.Equal(t, 42, notifier.last.SignID)
	assert.True(t, notifier.last.IsAllowed)
	assert.NotEmpty(t, notifier.last.EventID)
}

func TestAnalyzeSignAcceptsDataURL(t *testing.T) {
	rec := &recognizerMock{text: "no parking"}
	s := newTestSignService(rec, &signRepoMock{}, &historyRepoMock{}, nil)

	_, err := s.AnalyzeSign(context.Background(), 1, domain.AnalyzeSignDTO{
		ImageData: "data:image/jpeg;base64," + encodedImage(),
	})

	require.NoError(t, err)
	assert.Equal(t, []byte("fake-image-bytes"), rec.lastBytes)
}

func TestAnalyzeSignRejectsBadImageData(t *testing.T) {
	rec := &recognizerMock{}
	s := newTestSignService(rec, &signRepoMock{}, &historyRepoMock{}, nil)

	_, err := s.AnalyzeSign(context.Background(), 1, domain.AnalyzeSignDTO{ImageData: "%%% not base64 %%%"})

	require.ErrorIs(t, err, ErrInvalidImageData)
	assert.Zero(t, rec.calls, "OCR must not run on undecodable input")
}

func TestAnalyzeSignOCRFailure(t *testing.T) {
	rec := &recognizerMock{err: ErrNoTextDetected}
	signs := &signRepoMock{}
	notifier := &notifierMock{}
	s := newTestSignService(rec, signs, &historyRepoMock{}, notifier)

	_, err := s.AnalyzeSign(context.Background(), 1, domain.AnalyzeSignDTO{ImageData: encodedImage()})

	require.ErrorIs(t, err, ErrImageUnreadable)
	assert.Zero(t, signs.createCalls, "nothing is persisted when OCR fails")
	assert.Zero(t, notifier.calls)
}

func TestAnalyzeSignStorageFailureStillReturnsVerdict(t *testing.T) {
	rec := &recognizerMock{text: "NO PARKING"}
	signs := &signRepoMock{createErr: errors.New("db down")}
	history := &historyRepoMock{}
	notifier := &notifierMock{}
	s := newTestSignService(rec, signs, history, notifier)

	result, err := s.AnalyzeSign(context.Background(), 1, domain.AnalyzeSignDTO{ImageData: encodedImage()})

	require.NoError(t, err, "a storage problem never withholds the verdict")
	assert.False(t, result.IsAllowed)
	assert.Zero(t, history.createCalls, "no history without a stored sign")
	require.Equal(t, 1, notifier.calls)
	assert.Zero(t, notifier.last.SignID)
}

func TestGetHistoryEnrichesWithSigns(t *testing.T) {
	storedSign := &domain.ParkingSign{ID: 42, ImageText: "NO PARKING"}
	history := &historyRepoMock{
		records: []domain.ParkingHistory{
			{ID: 1, UserID: 1, SignID: 42, IsAllowed: false},
		},
	}
	s := newTestSignService(&recognizerMock{}, &signRepoMock{findSign: storedSign}, history, nil)

	entries, err := s.GetHistory(context.Background(), 1)

	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.NotNil(t, entries[0].Sign)
	assert.Equal(t, "NO PARKING", entries[0].Sign.ImageText)
}

func TestGetHistoryToleratesMissingSign(t *testing.T) {
	history := &historyRepoMock{
		records: []domain.ParkingHistory{
			{ID: 1, UserID: 1, SignID: 99},
		},
	}
	s := newTestSignService(&recognizerMock{}, &signRepoMock{findErr: repository.ErrNotFound}, history, nil)

	entries, err := s.GetHistory(context.Background(), 1)

	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Nil(t, entries[0].Sign)
}

package domain

import "time"

// ParkingSign is a stored scan of a sign: the raw OCR text plus the
// rules extracted from it.
type ParkingSign struct {
	ID        int       `json:"id"`
	UserID    int       `json:"user_id"`
	ImageText string    `json:"image_text"`
	Rules     RuleSet   `json:"rules"`
	Location  string    `json:"location,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// ParkingHistory records one evaluation of a stored sign.
type ParkingHistory struct {
	ID            int        `json:"id"`
	UserID        int        `json:"user_id"`
	SignID        int        `json:"sign_id"`
	IsAllowed     bool       `json:"is_allowed"`
	TimeRemaining string     `json:"time_remaining,omitempty"`
	StartTime     time.Time  `json:"start_time"`
	EndTime       *time.Time `json:"end_time,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}

// HistoryEntry is a history record enriched with its sign, as returned
// by the history listing endpoint.
type HistoryEntry struct {
	ParkingHistory
	Sign *ParkingSign `json:"sign,omitempty"`
}

// AnalyzeSignDTO is the body of POST /api/v1/signs/analyze. ImageData
// is a base64 encoded image, optionally with a data URL prefix.
type AnalyzeSignDTO struct {
	ImageData string `json:"imageData" binding:"required"`
	Location  string `json:"location,omitempty"`
}

// ScanJob is the message body consumed from the scan intake queue.
// Same shape as AnalyzeSignDTO plus the submitting user.
type ScanJob struct {
	UserID    int    `json:"userId"`
	ImageData string `json:"imageData"`
	Location  string `json:"location,omitempty"`
}

// ScanNotification is pushed to WebSocket clients after each analysis.
type ScanNotification struct {
	EventID       string    `json:"event_id"`
	UserID        int       `json:"user_id"`
	SignID        int       `json:"sign_id,omitempty"`
	IsAllowed     bool      `json:"is_allowed"`
	TimeRemaining string    `json:"time_remaining,omitempty"`
	Reason        string    `json:"reason,omitempty"`
	Location      string    `json:"location,omitempty"`
	Timestamp     time.Time `json:"timestamp"`
}

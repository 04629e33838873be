package rules

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"parkingpal/internal/domain"
)

const deniedReason = "Parking not allowed during this time"

// Evaluate checks a rule set against the given instant and produces a
// verdict. Denied rules take priority over Allowed rules; within each
// kind the first rule in sequence order wins. The call is stateless
// and idempotent for identical inputs.
func Evaluate(rs domain.RuleSet, now time.Time) domain.AnalysisResult {
	currentDay := strings.ToLower(now.Weekday().String())
	currentTime := now.Format("15:04")

	isAllowed, rule, endTime := isParkingAllowed(rs.Rules, currentDay, currentTime)

	var timeRemaining string
	if isAllowed && rule != nil && rule.DurationMinutes != nil {
		// A duration-limit sign caps the stay independent of the
		// window's own end; the display is the fixed limit, not the
		// limit clamped to the window.
		timeRemaining = formatDuration(*rule.DurationMinutes)
	} else if isAllowed && endTime != "" {
		timeRemaining = timeDifference(currentTime, endTime)
	}

	result := domain.AnalysisResult{
		IsAllowed:     isAllowed,
		TimeRemaining: timeRemaining,
		CurrentTime:   now.Format("3:04 PM"),
		Date:          now.Format("Monday, January 2"),
		Rules:         rs.Rules,
		SignText:      rs.SignText,
	}

	if rule != nil {
		result.StartTime = rule.StartTime
	}
	if isAllowed {
		result.EndTime = endTime
	} else {
		result.EndTime = nearestAllowedTime(rs.Rules, currentDay, currentTime)
		result.Reason = deniedReason
	}
	return result
}

// isParkingAllowed returns the verdict for the given day and time
// along with the rule that decided it. Explicit denials are checked
// first; with no matching rule of either kind, parking is denied.
func isParkingAllowed(rules []domain.ParkingRule, currentDay, currentTime string) (bool, *domain.ParkingRule, string) {
	for i := range rules {
		r := &rules[i]
		if r.Type == domain.RuleDenied && containsDay(r.Days, currentDay) && timeInRange(currentTime, r.StartTime, r.EndTime) {
			return false, r, r.EndTime
		}
	}
	for i := range rules {
		r := &rules[i]
		if r.Type == domain.RuleAllowed && containsDay(r.Days, currentDay) && timeInRange(currentTime, r.StartTime, r.EndTime) {
			return true, r, r.EndTime
		}
	}
	return false, nil, ""
}

// timeInRange is a direct lexical comparison on "HH:MM" strings. A
// window whose end is lexically smaller than its start (crossing
// midnight) therefore contains no time at all; callers rely on that
// exact behavior, so do not "fix" this to wraparound containment.
func timeInRange(t, startTime, endTime string) bool {
	return t >= startTime && t <= endTime
}

func containsDay(days []string, day string) bool {
	for _, d := range days {
		if d == day {
			return true
		}
	}
	return false
}

// formatDuration renders minutes as "2h 30m", "2h" or "45m".
func formatDuration(minutes int) string {
	h := minutes / 60
	m := minutes % 60
	if h > 0 {
		if m > 0 {
			return fmt.Sprintf("%dh %dm", h, m)
		}
		return fmt.Sprintf("%dh", h)
	}
	return fmt.Sprintf("%dm", m)
}

// timeDifference is end minus start in minutes, formatted. A negative
// difference wraps past midnight (now 23:00, end 08:00 is 9h).
func timeDifference(startTime, endTime string) string {
	startH, startM := parseClock(startTime)
	endH, endM := parseClock(endTime)

	diff := (endH*60 + endM) - (startH*60 + startM)
	if diff < 0 {
		diff += 24 * 60
	}
	return formatDuration(diff)
}

// nearestAllowedTime finds the next Allowed window starting later
// today and renders its start in 12-hour form for display. Empty when
// no such window exists.
func nearestAllowedTime(rules []domain.ParkingRule, currentDay, currentTime string) string {
	var upcoming []domain.ParkingRule
	for _, r := range rules {
		if r.Type == domain.RuleAllowed && containsDay(r.Days, currentDay) && r.StartTime > currentTime {
			upcoming = append(upcoming, r)
		}
	}
	if len(upcoming) == 0 {
		return ""
	}

	sort.SliceStable(upcoming, func(i, j int) bool {
		return upcoming[i].StartTime < upcoming[j].StartTime
	})

	h, m := parseClock(upcoming[0].StartTime)
	return time.Date(2000, time.January, 1, h, m, 0, 0, time.UTC).Format("3:04 PM")
}

func parseClock(t string) (hours, minutes int) {
	hs, ms, ok := strings.Cut(t, ":")
	if !ok {
		return 0, 0
	}
	hours, _ = strconv.Atoi(hs)
	minutes, _ = strconv.Atoi(ms)
	return hours, minutes
}

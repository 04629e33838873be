// Package rules is the core of the sign scanner: a heuristic extractor
// that turns raw OCR text into an ordered rule set, and an evaluator
// that turns a rule set plus an instant into a parking verdict.
//
// Both halves are pure functions over their inputs. They never fail;
// unreadable or ambiguous text degrades to documented defaults instead
// of surfacing an error.
package rules

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"parkingpal/internal/domain"
)

// Vocabulary and patterns are process-wide immutable configuration.
var (
	parkingKeywords = []string{
		"parking", "hour", "minute", "hr", "min", "am", "pm",
		"monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday",
		"mon", "tue", "wed", "thu", "fri", "sat", "sun",
		"no parking", "loading", "permit", "zone", "except", "vehicles",
		"street cleaning", "school days", "holidays",
	}

	timeRegex        = regexp.MustCompile(`(?i)(\d{1,2})[:.]?(\d{2})?\s*(am|pm|a\.m\.|p\.m\.)`)
	hourLimitRegex   = regexp.MustCompile(`(\d+)\s*(hour|hr)`)
	minuteLimitRegex = regexp.MustCompile(`(\d+)\s*(minute|min)`)
	whitespaceRegex  = regexp.MustCompile(`\s+`)

	allDays   = []string{"monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday"}
	shortDays = []string{"mon", "tue", "wed", "thu", "fri", "sat", "sun"}
)

// ExtractRules converts free-text OCR output into an ordered rule set.
// It always returns a well-formed RuleSet: text without any parking
// vocabulary yields a conservative full-week denial, and text that
// matches the vocabulary but produces no concrete rule yields a
// permissive full-week allowance.
func ExtractRules(text string) domain.RuleSet {
	normalized := whitespaceRegex.ReplaceAllString(strings.ToLower(text), " ")
	normalized = strings.TrimSpace(normalized)

	containsParkingInfo := false
	for _, keyword := range parkingKeywords {
		if strings.Contains(normalized, keyword) {
			containsParkingInfo = true
			break
		}
	}

	if !containsParkingInfo {
		return domain.RuleSet{
			Rules: []domain.ParkingRule{
				{
					Type:        domain.RuleDenied,
					Days:        append([]string(nil), allDays...),
					StartTime:   "00:00",
					EndTime:     "23:59",
					Description: "No clear parking rules detected",
				},
			},
			SignText: text,
		}
	}

	var extracted []domain.ParkingRule

	if strings.Contains(normalized, "no parking") {
		if rule := extractTimeBasedRule(normalized, domain.RuleDenied); rule != nil {
			extracted = append(extracted, *rule)
		} else {
			extracted = append(extracted, domain.ParkingRule{
				Type:        domain.RuleDenied,
				Days:        append([]string(nil), allDays...),
				StartTime:   "00:00",
				EndTime:     "23:59",
				Description: "No parking",
			})
		}
	}

	hourMatch := hourLimitRegex.FindStringSubmatch(normalized)
	minuteMatch := minuteLimitRegex.FindStringSubmatch(normalized)

	if hourMatch != nil || minuteMatch != nil {
		durationMinutes := 0
		if hourMatch != nil {
			hours, _ := strconv.Atoi(hourMatch[1])
			durationMinutes += hours * 60
		}
		if minuteMatch != nil {
			minutes, _ := strconv.Atoi(minuteMatch[1])
			durationMinutes += minutes
		}

		if rule := extractTimeBasedRule(normalized, domain.RuleAllowed); rule != nil {
			rule.DurationMinutes = &durationMinutes
			extracted = append(extracted, *rule)
		} else {
			extracted = append(extracted, domain.ParkingRule{
				Type:            domain.RuleAllowed,
				Days:            append([]string(nil), allDays[:5]...),
				StartTime:       "08:00",
				EndTime:         "18:00",
				Description:     fmt.Sprintf("%s hour parking", formatHourCount(durationMinutes)),
				DurationMinutes: &durationMinutes,
			})
		}
	}

	if len(extracted) == 0 {
		extracted = append(extracted, domain.ParkingRule{
			Type:        domain.RuleAllowed,
			Days:        append([]string(nil), allDays...),
			StartTime:   "00:00",
			EndTime:     "23:59",
			Description: "Parking allowed",
		})
	}

	return domain.RuleSet{Rules: extracted, SignText: text}
}

// extractTimeBasedRule builds a rule from the first two clock times
// found in the text. Later time mentions are ignored, even when more
// than one rule is being synthesized from the same sign.
func extractTimeBasedRule(text string, kind domain.RuleKind) *domain.ParkingRule {
	timeMatches := timeRegex.FindAllString(text, -1)
	if len(timeMatches) < 2 {
		return nil
	}

	startStr := timeMatches[0]
	endStr := timeMatches[1]

	description := fmt.Sprintf("No parking from %s to %s", startStr, endStr)
	if kind == domain.RuleAllowed {
		description = fmt.Sprintf("Parking allowed from %s to %s", startStr, endStr)
	}

	return &domain.ParkingRule{
		Type:        kind,
		Days:        extractDays(text),
		StartTime:   convertTo24Hour(startStr),
		EndTime:     convertTo24Hour(endStr),
		Description: description,
	}
}

// extractDays scans for weekday names and the weekday/weekend/all-day
// shorthands. Days are deduplicated preserving first-seen order; text
// with no day information defaults to weekdays.
func extractDays(text string) []string {
	var mentioned []string
	for i, day := range allDays {
		if strings.Contains(text, day) || strings.Contains(text, shortDays[i]) {
			mentioned = append(mentioned, day)
		}
	}

	if strings.Contains(text, "weekday") {
		mentioned = append(mentioned, allDays[:5]...)
	}
	if strings.Contains(text, "weekend") {
		mentioned = append(mentioned, allDays[5:]...)
	}

	if strings.Contains(text, "all day") || strings.Contains(text, "everyday") || strings.Contains(text, "all days") {
		return append([]string(nil), allDays...)
	}

	if strings.Contains(text, "except holiday") {
		return append([]string(nil), allDays[:5]...)
	}

	if len(mentioned) == 0 {
		return append([]string(nil), allDays[:5]...)
	}

	seen := make(map[string]bool, len(mentioned))
	deduped := mentioned[:0]
	for _, day := range mentioned {
		if !seen[day] {
			seen[day] = true
			deduped = append(deduped, day)
		}
	}
	return deduped
}

// convertTo24Hour turns a matched "h[:mm] am/pm" string into "HH:MM".
// "12 am" maps to 00:00 and "12 pm" stays 12:00.
func convertTo24Hour(timeStr string) string {
	match := timeRegex.FindStringSubmatch(timeStr)
	if match == nil {
		return "00:00"
	}

	hours, _ := strconv.Atoi(match[1])
	minutes := 0
	if match[2] != "" {
		minutes, _ = strconv.Atoi(match[2])
	}
	isPM := strings.Contains(strings.ToLower(match[3]), "p")

	if isPM && hours < 12 {
		hours += 12
	}
	if !isPM && hours == 12 {
		hours = 0
	}

	return fmt.Sprintf("%02d:%02d", hours, minutes)
}

// formatHourCount renders a minute count as an hour figure without a
// trailing ".0" ("2", "1.5"), matching the stored descriptions clients
// already display.
func formatHourCount(durationMinutes int) string {
	return strconv.FormatFloat(float64(durationMinutes)/60, 'f', -1, 64)
}

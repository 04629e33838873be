package rules

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"parkingpal/internal/domain"
)

// Jan 5 2026 is a Monday.
func monday(hour, min int) time.Time {
	return time.Date(2026, time.January, 5, hour, min, 0, 0, time.UTC)
}

func tuesday(hour, min int) time.Time {
	return time.Date(2026, time.January, 6, hour, min, 0, 0, time.UTC)
}

func intPtr(v int) *int { return &v }

func TestEvaluateDurationLimitedSign(t *testing.T) {
	rs := ExtractRules("2 HOUR PARKING 8AM - 6PM MON - FRI")
	result := Evaluate(rs, monday(15, 45))

	assert.True(t, result.IsAllowed)
	// The fixed limit wins over the window's remaining span.
	assert.Equal(t, "2h", result.TimeRemaining)
	assert.Equal(t, "08:00", result.StartTime)
	assert.Equal(t, "18:00", result.EndTime)
	assert.Equal(t, "3:45 PM", result.CurrentTime)
	assert.Equal(t, "Monday, January 5", result.Date)
	assert.Empty(t, result.Reason)
	assert.Equal(t, rs.Rules, result.Rules)
	assert.Equal(t, rs.SignText, result.SignText)
}

func TestEvaluateWindowRemainingWithoutDurationLimit(t *testing.T) {
	rs := domain.RuleSet{
		Rules: []domain.ParkingRule{
			{Type: domain.RuleAllowed, Days: weekdays, StartTime: "08:00", EndTime: "18:00"},
		},
	}
	result := Evaluate(rs, monday(15, 45))

	assert.True(t, result.IsAllowed)
	assert.Equal(t, "2h 15m", result.TimeRemaining)
	assert.Equal(t, "18:00", result.EndTime)
}

// The primary regression test for the midnight-wraparound ambiguity:
// containment is a lexical string comparison, so a window stored as
// 18:00-08:00 contains no time at all and the denial falls through to
// the no-matching-rule default.
func TestEvaluateMidnightCrossingDenialNeverMatches(t *testing.T) {
	rs := ExtractRules("NO PARKING 6PM-8AM ALL DAYS")

	for _, now := range []time.Time{tuesday(22, 0), tuesday(19, 0), tuesday(7, 30)} {
		result := Evaluate(rs, now)
		assert.False(t, result.IsAllowed, "at %s", now.Format("15:04"))
		assert.Equal(t, "Parking not allowed during this time", result.Reason)
		assert.Empty(t, result.TimeRemaining)
		assert.Empty(t, result.StartTime, "no rule matched, so no window bounds are reported")
		assert.Empty(t, result.EndTime, "the sign has no allowed windows to hint at")
	}
}

func TestEvaluateDeniedRuleOverridesAllowed(t *testing.T) {
	rs := domain.RuleSet{
		Rules: []domain.ParkingRule{
			{Type: domain.RuleAllowed, Days: fullWeek, StartTime: "00:00", EndTime: "23:59"},
			{Type: domain.RuleDenied, Days: []string{"monday"}, StartTime: "12:00", EndTime: "14:00"},
		},
	}
	result := Evaluate(rs, monday(13, 0))

	assert.False(t, result.IsAllowed)
	assert.Equal(t, "Parking not allowed during this time", result.Reason)
	// The deny rule decided the verdict, so its start is reported.
	assert.Equal(t, "12:00", result.StartTime)
}

func TestEvaluateDefaultDenialReportsNearestAllowedWindow(t *testing.T) {
	rs := domain.RuleSet{
		Rules: []domain.ParkingRule{
			{Type: domain.RuleAllowed, Days: []string{"monday"}, StartTime: "18:00", EndTime: "20:00"},
			{Type: domain.RuleAllowed, Days: []string{"monday"}, StartTime: "16:00", EndTime: "17:00"},
		},
	}
	result := Evaluate(rs, monday(12, 0))

	assert.False(t, result.IsAllowed)
	assert.Equal(t, "4:00 PM", result.EndTime, "earliest upcoming window wins regardless of rule order")
}

func TestEvaluateFirstMatchingRuleWins(t *testing.T) {
	rs := domain.RuleSet{
		Rules: []domain.ParkingRule{
			{Type: domain.RuleAllowed, Days: fullWeek, StartTime: "08:00", EndTime: "12:00", DurationMinutes: intPtr(60)},
			{Type: domain.RuleAllowed, Days: fullWeek, StartTime: "08:00", EndTime: "20:00"},
		},
	}
	result := Evaluate(rs, monday(10, 0))

	require.True(t, result.IsAllowed)
	assert.Equal(t, "1h", result.TimeRemaining)
	assert.Equal(t, "12:00", result.EndTime)
}

func TestEvaluateDayFilter(t *testing.T) {
	rs := domain.RuleSet{
		Rules: []domain.ParkingRule{
			{Type: domain.RuleAllowed, Days: []string{"tuesday"}, StartTime: "08:00", EndTime: "18:00"},
		},
	}

	assert.False(t, Evaluate(rs, monday(10, 0)).IsAllowed)
	assert.True(t, Evaluate(rs, tuesday(10, 0)).IsAllowed)
}

func TestEvaluateIsIdempotent(t *testing.T) {
	rs := ExtractRules("2 hour parking 9:00 am to 6:00 pm weekdays")
	now := monday(11, 30)

	first := Evaluate(rs, now)
	second := Evaluate(rs, now)
	assert.Equal(t, first, second)
}

func TestTimeDifferenceWrapsPastMidnight(t *testing.T) {
	assert.Equal(t, "9h", timeDifference("23:00", "08:00"))
	assert.Equal(t, "2h 15m", timeDifference("15:45", "18:00"))
	assert.Equal(t, "45m", timeDifference("17:15", "18:00"))
	assert.Equal(t, "0m", timeDifference("18:00", "18:00"))
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "2h", formatDuration(120))
	assert.Equal(t, "1h 30m", formatDuration(90))
	assert.Equal(t, "45m", formatDuration(45))
}

func TestTimeInRangeIsLexical(t *testing.T) {
	assert.True(t, timeInRange("15:45", "08:00", "18:00"))
	assert.True(t, timeInRange("08:00", "08:00", "18:00"))
	assert.True(t, timeInRange("18:00", "08:00", "18:00"))
	assert.False(t, timeInRange("19:00", "08:00", "18:00"))
	// Midnight-crossing windows contain nothing under the lexical rule.
	assert.False(t, timeInRange("22:00", "18:00", "08:00"))
	assert.False(t, timeInRange("07:00", "18:00", "08:00"))
}

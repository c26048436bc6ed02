package offset

import (
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/taskmaster/taskgrid/internal/infrastructure/logger"
)

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	return NewEngine(MustChain("a", "b", "c"), time.UTC, LocaleVietnamese, nil)
}

func TestParse_AcceptsGrammar(t *testing.T) {
	tests := []struct {
		token string
		want  Offset
	}{
		{"+3h", Offset{Sign: 1, Amount: 3, Unit: 'h'}},
		{"3h", Offset{Sign: 1, Amount: 3, Unit: 'h'}},
		{"-15m", Offset{Sign: -1, Amount: 15, Unit: 'm'}},
		{"+0s", Offset{Sign: 1, Amount: 0, Unit: 's'}},
		{"+1M", Offset{Sign: 1, Amount: 1, Unit: 'M'}},
		{"-2q", Offset{Sign: -1, Amount: 2, Unit: 'q'}},
		{"+10y", Offset{Sign: 1, Amount: 10, Unit: 'y'}},
		{"007w", Offset{Sign: 1, Amount: 7, Unit: 'w'}},
		{"+1d", Offset{Sign: 1, Amount: 1, Unit: 'd'}},
	}
	for _, tc := range tests {
		t.Run(tc.token, func(t *testing.T) {
			got, err := Parse(tc.token)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestParse_RejectsEverythingElse(t *testing.T) {
	for _, token := range []string{
		"", "+", "h", "+h", "3", "+3", "+3x", "+3H", "+3D", "++3h", "+-3h",
		" +3h", "+3h ", "+3 h", "+3.5h", "+3hh", "3h3", "+٣h", "+99999999999999999999h",
		"+9223372036854775807y",
	} {
		t.Run(token, func(t *testing.T) {
			_, err := Parse(token)
			require.ErrorIs(t, err, ErrInvalidFormat)
		})
	}
}

func TestOffset_String(t *testing.T) {
	off, err := Parse("5d")
	require.NoError(t, err)
	assert.Equal(t, "+5d", off.String())

	off, err = Parse("-5d")
	require.NoError(t, err)
	assert.Equal(t, "-5d", off.String())
}

func TestApply_Examples(t *testing.T) {
	e := newTestEngine(t)

	assert.Equal(t, "2025-01-01T13:00", e.Apply("2025-01-01T10:00", "+3h"))
	assert.Equal(t, "2025-01-02T01:00", e.Apply("2025-01-01T23:00", "+2h"))
	assert.Equal(t, "2025-01-01T09:30", e.Apply("2025-01-01T10:00", "-30m"))
	assert.Equal(t, "2025-01-08T10:00", e.Apply("2025-01-01T10:00", "+1w"))
	assert.Equal(t, "2025-01-31T10:00", e.Apply("2025-01-01T10:00", "+1M"))
	assert.Equal(t, "2025-04-01T10:00", e.Apply("2025-01-01T10:00", "+1q"))
	assert.Equal(t, "2026-01-01T10:00", e.Apply("2025-01-01T10:00", "+1y"))
	// 2024 is a leap year: 365 days is not a calendar year.
	assert.Equal(t, "2024-12-31T10:00", e.Apply("2024-01-01T10:00", "+1y"))
	// Seconds below a minute vanish at minute precision.
	assert.Equal(t, "2025-01-01T10:00", e.Apply("2025-01-01T10:00", "+30s"))
	assert.Equal(t, "2025-01-01T10:01", e.Apply("2025-01-01T10:00", "+90s"))
}

func TestApply_RoundTripFixedUnits(t *testing.T) {
	e := newTestEngine(t)
	bases := []string{"2025-01-01T10:00", "2024-02-29T23:59", "1999-12-31T00:00"}

	for _, base := range bases {
		for _, unit := range "smhdw" {
			for _, n := range []int{0, 1, 7, 60, 365} {
				plus := "+" + strconv.Itoa(n) + string(unit)
				minus := "-" + strconv.Itoa(n) + string(unit)
				if unit == 's' {
					// whole minutes only, otherwise the forward step truncates
					plus = "+" + strconv.Itoa(n*60) + "s"
					minus = "-" + strconv.Itoa(n*60) + "s"
				}
				assert.Equal(t, base, e.Apply(e.Apply(base, plus), minus), "%s %s", base, plus)
			}
		}
	}
}

func TestApply_RoundTripApproximateUnits(t *testing.T) {
	e := newTestEngine(t)
	for _, token := range []string{"1M", "1q", "1y", "12M"} {
		base := "2025-03-15T08:45"
		assert.Equal(t, base, e.Apply(e.Apply(base, "+"+token), "-"+token))
	}
}

func TestApply_DSTUsesElapsedTime(t *testing.T) {
	loc, err := time.LoadLocation("Europe/Berlin")
	if err != nil {
		t.Skipf("tzdata unavailable: %v", err)
	}
	e := NewEngine(MustChain("a"), loc, LocaleEnglish, nil)

	// 2025-03-30 02:00 local clocks jump to 03:00.
	assert.Equal(t, "2025-03-30T03:30", e.Apply("2025-03-30T01:30", "+1h"))
	assert.Equal(t, "2025-03-31T01:30", e.Apply("2025-03-30T00:30", "+1d"))
}

func TestApply_FailSoftLogsAndReturnsBase(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	e := NewEngine(MustChain("a"), time.UTC, LocaleVietnamese, logger.NewFromZap(zap.New(core)))

	assert.Equal(t, "not-a-date", e.Apply("not-a-date", "+1h"))
	assert.Equal(t, "2025-01-01T10:00", e.Apply("2025-01-01T10:00", "+1x"))
	assert.Equal(t, "", e.Apply("", "+1h"))

	entries := logs.FilterMessage("offset not applied").All()
	require.Len(t, entries, 3)
	assert.Equal(t, "offset", entries[0].ContextMap()["component"])
	assert.Equal(t, "not-a-date", entries[0].ContextMap()["base"])
}

func TestDerive_Errors(t *testing.T) {
	e := newTestEngine(t)

	_, err := e.Derive("2025-13-01T10:00", "+1h")
	require.ErrorIs(t, err, ErrInvalidTimestamp)

	_, err = e.Derive("2025-01-01 10:00", "+1h")
	require.ErrorIs(t, err, ErrInvalidTimestamp)

	_, err = e.Derive("2025-01-01T10:00", "1 hour")
	require.ErrorIs(t, err, ErrInvalidFormat)
}

func TestLabel(t *testing.T) {
	vi := newTestEngine(t)
	en := NewEngine(MustChain("a"), time.UTC, LocaleEnglish, nil)
	other := NewEngine(MustChain("a"), time.UTC, Locale("fr"), nil)

	assert.Equal(t, "+ 3 giờ", vi.Label("+3h"))
	assert.Equal(t, "+ 3 giờ", vi.Label("3h"))
	assert.Equal(t, "- 2 ngày", vi.Label("-2d"))
	assert.Equal(t, "+ 1 tháng", vi.Label("+1M"))
	assert.Equal(t, "+ 1 quý", vi.Label("+1q"))
	assert.Equal(t, "+ 4 week", en.Label("+4w"))
	assert.Equal(t, "+ 4 tuần", other.Label("+4w"))

	assert.Equal(t, "tomorrow", vi.Label("tomorrow"))
	assert.Equal(t, "+3x", vi.Label("+3x"))
}

func TestNow_UsesClockAndLocation(t *testing.T) {
	loc := time.FixedZone("ICT", 7*3600)
	e := NewEngine(MustChain("a"), loc, LocaleVietnamese, nil).
		WithClock(func() time.Time { return time.Date(2025, 6, 1, 20, 15, 42, 0, time.UTC) })

	assert.Equal(t, "2025-06-02T03:15", e.Now())
}

func TestParseLocal_KeepsWallClock(t *testing.T) {
	loc := time.FixedZone("ICT", 7*3600)
	e := NewEngine(MustChain("a"), loc, LocaleVietnamese, nil)

	got, err := e.ParseLocal("2025-01-01T10:00")
	require.NoError(t, err)
	assert.Equal(t, 10, got.Hour())
	assert.Equal(t, "2025-01-01T03:00", got.UTC().Format(LocalLayout))
	assert.Equal(t, "2025-01-01T10:00", e.FormatLocal(got))
}

func TestConsistent(t *testing.T) {
	e := newTestEngine(t)

	assert.True(t, e.Consistent("2025-01-01T10:00", "+3h", "2025-01-01T13:00"))
	assert.False(t, e.Consistent("2025-01-01T10:00", "+3h", "2025-01-01T14:00"))
	assert.False(t, e.Consistent("", "+3h", ""))
	assert.False(t, e.Consistent("2025-01-01T10:00", "+3x", "2025-01-01T10:00"))
}

func TestCustomToken(t *testing.T) {
	token, err := CustomToken(5, "d")
	require.NoError(t, err)
	assert.Equal(t, "+5d", token)

	token, err = CustomToken(999, "y")
	require.NoError(t, err)
	assert.Equal(t, "+999y", token)

	for _, tc := range []struct {
		amount int
		unit   string
	}{{0, "h"}, {-1, "h"}, {1000, "h"}, {1, "x"}, {1, ""}, {1, "hh"}} {
		_, err := CustomToken(tc.amount, tc.unit)
		require.ErrorIs(t, err, ErrInvalidFormat, "%d%s", tc.amount, tc.unit)
	}
}

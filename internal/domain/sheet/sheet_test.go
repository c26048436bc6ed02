package sheet

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskmaster/taskgrid/internal/domain/offset"
)

func newTestSheet(t *testing.T, rows ...*Row) *Sheet {
	t.Helper()
	engine := offset.NewEngine(
		offset.MustChain("start_date", "end_date", "deadline"),
		time.UTC, offset.LocaleEnglish, nil,
	).WithClock(func() time.Time { return time.Date(2025, 5, 4, 9, 41, 13, 0, time.UTC) })
	if len(rows) == 0 {
		rows = []*Row{NewRow()}
	}
	return New(engine, nil, rows...)
}

func rowWith(values map[string]string) *Row {
	r := NewRow()
	for k, v := range values {
		r.Values[k] = v
	}
	return r
}

func TestQuickAction_DerivesFromPredecessor(t *testing.T) {
	s := newTestSheet(t, rowWith(map[string]string{"start_date": "2025-01-01T10:00"}))

	got, err := s.ApplyQuickAction(0, "end_date", "+3h")
	require.NoError(t, err)
	assert.Equal(t, "2025-01-01T13:00", got)

	r := s.Rows()[0]
	assert.Equal(t, "2025-01-01T13:00", r.Values["end_date"])
	assert.Equal(t, "+3h", r.Offsets["end_date"])
	assert.True(t, r.Dirty)

	label, ok := s.Annotation(0, "end_date")
	require.True(t, ok)
	assert.Equal(t, "+ 3 hour", label)
}

func TestQuickAction_PredecessorEmptyLeavesRowUntouched(t *testing.T) {
	s := newTestSheet(t)

	_, err := s.ApplyQuickAction(0, "end_date", "+1d")
	require.ErrorIs(t, err, ErrPredecessorEmpty)

	_, err = s.ApplyQuickAction(0, "start_date", "+1d")
	require.ErrorIs(t, err, ErrPredecessorEmpty, "first field has no predecessor")

	r := s.Rows()[0]
	assert.Empty(t, r.Values)
	assert.Empty(t, r.Offsets)
	assert.False(t, r.Dirty)
}

func TestQuickAction_InvalidTokenLeavesRowUntouched(t *testing.T) {
	s := newTestSheet(t, rowWith(map[string]string{"start_date": "2025-01-01T10:00"}))

	_, err := s.ApplyQuickAction(0, "end_date", "+3x")
	require.ErrorIs(t, err, offset.ErrInvalidFormat)
	assert.False(t, s.Rows()[0].Dirty)
	assert.NotContains(t, s.Rows()[0].Values, "end_date")
}

func TestQuickAction_UnparseablePredecessor(t *testing.T) {
	s := newTestSheet(t, rowWith(map[string]string{"start_date": "soon"}))

	_, err := s.ApplyQuickAction(0, "end_date", "+3h")
	require.ErrorIs(t, err, offset.ErrInvalidTimestamp)
	assert.False(t, s.Rows()[0].Dirty)
}

func TestSetValue_DivergingEditClearsOffset(t *testing.T) {
	s := newTestSheet(t, rowWith(map[string]string{"start_date": "2025-01-01T10:00"}))
	_, err := s.ApplyQuickAction(0, "end_date", "+3h")
	require.NoError(t, err)

	require.NoError(t, s.SetValue(0, "end_date", "2025-01-01T14:00"))

	r := s.Rows()[0]
	assert.NotContains(t, r.Offsets, "end_date")
	_, ok := s.Annotation(0, "end_date")
	assert.False(t, ok)
}

func TestSetValue_MatchingEditKeepsOffset(t *testing.T) {
	s := newTestSheet(t, rowWith(map[string]string{"start_date": "2025-01-01T10:00"}))
	_, err := s.ApplyQuickAction(0, "end_date", "+3h")
	require.NoError(t, err)

	require.NoError(t, s.SetValue(0, "end_date", "2025-01-01T13:00"))
	assert.Equal(t, "+3h", s.Rows()[0].Offsets["end_date"])
}

func TestSetValue_PredecessorEditClearsSuccessorOffset(t *testing.T) {
	s := newTestSheet(t, rowWith(map[string]string{"start_date": "2025-01-01T10:00"}))
	_, err := s.ApplyQuickAction(0, "end_date", "+1d")
	require.NoError(t, err)
	_, err = s.ApplyQuickAction(0, "deadline", "+2h")
	require.NoError(t, err)

	require.NoError(t, s.SetValue(0, "start_date", "2025-01-01T11:00"))

	r := s.Rows()[0]
	assert.NotContains(t, r.Offsets, "end_date")
	assert.Equal(t, "+2h", r.Offsets["deadline"], "deadline still matches end_date+2h")
	assert.Equal(t, "2025-01-02T10:00", r.Values["end_date"], "no cascade recomputation")
}

func TestSetValue_ReapplyingQuickActionOverwritesOffset(t *testing.T) {
	s := newTestSheet(t, rowWith(map[string]string{"start_date": "2025-01-01T10:00"}))
	_, err := s.ApplyQuickAction(0, "end_date", "+1h")
	require.NoError(t, err)
	_, err = s.ApplyCustomOffset(0, "end_date", 2, "d")
	require.NoError(t, err)

	r := s.Rows()[0]
	assert.Equal(t, "+2d", r.Offsets["end_date"])
	assert.Equal(t, "2025-01-03T10:00", r.Values["end_date"])

	_, err = s.ApplyCustomOffset(0, "end_date", 0, "d")
	require.ErrorIs(t, err, offset.ErrInvalidFormat)
}

func TestSetValue_UnchangedValueIsNotAnEdit(t *testing.T) {
	s := newTestSheet(t, rowWith(map[string]string{"start_date": "2025-01-01T10:00"}))

	require.NoError(t, s.SetValue(0, "start_date", "2025-01-01T10:00"))
	assert.False(t, s.Rows()[0].Dirty)
}

func TestSetValue_UnknownFieldAndRow(t *testing.T) {
	s := newTestSheet(t)

	require.ErrorIs(t, s.SetValue(0, "title", "x"), ErrUnknownField)
	require.ErrorIs(t, s.SetValue(3, "start_date", "x"), ErrRowOutOfRange)
	require.ErrorIs(t, s.SetValue(-1, "start_date", "x"), ErrRowOutOfRange)
}

func TestTouch_FillsEmptyCellWithNow(t *testing.T) {
	s := newTestSheet(t, rowWith(map[string]string{"end_date": "2025-01-01T10:00"}))

	got, err := s.Touch(0, "start_date")
	require.NoError(t, err)
	assert.Equal(t, "2025-05-04T09:41", got)
	assert.True(t, s.Rows()[0].Dirty)

	got, err = s.Touch(0, "end_date")
	require.NoError(t, err)
	assert.Equal(t, "2025-01-01T10:00", got)
}

func TestClipboard_SingleCell(t *testing.T) {
	s := newTestSheet(t,
		rowWith(map[string]string{"start_date": "2025-01-01T10:00"}),
		rowWith(map[string]string{"start_date": "2025-02-01T08:00"}),
	)
	_, err := s.ApplyQuickAction(1, "end_date", "+1h")
	require.NoError(t, err)
	var cb Clipboard

	require.ErrorIs(t, s.Paste(&cb, 1, "end_date"), ErrClipboardEmpty)

	require.NoError(t, s.Copy(&cb, 0, "start_date"))
	assert.Equal(t, "2025-01-01T10:00", cb.Single())

	require.NoError(t, s.Paste(&cb, 1, "end_date"))
	r := s.Rows()[1]
	assert.Equal(t, "2025-01-01T10:00", r.Values["end_date"])
	assert.NotContains(t, r.Offsets, "end_date")
	assert.True(t, r.Dirty)
	assert.False(t, s.Rows()[0].Dirty)
}

func TestClipboard_CopyingEmptyCellLeavesNothingToPaste(t *testing.T) {
	s := newTestSheet(t)
	var cb Clipboard

	require.NoError(t, s.Copy(&cb, 0, "deadline"))
	require.ErrorIs(t, s.Paste(&cb, 0, "start_date"), ErrClipboardEmpty)
}

func TestClipboard_Column(t *testing.T) {
	s := newTestSheet(t,
		rowWith(map[string]string{"start_date": "2025-01-01T10:00", "end_date": "2025-01-09T10:00"}),
		rowWith(nil),
		rowWith(map[string]string{"start_date": "2025-03-01T10:00"}),
	)
	var cb Clipboard

	_, err := s.PasteColumn(&cb, "end_date")
	require.ErrorIs(t, err, ErrClipboardEmpty)

	n, err := s.CopyColumn(&cb, "start_date")
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	values, field := cb.Column()
	assert.Equal(t, []string{"2025-01-01T10:00", "", "2025-03-01T10:00"}, values)
	assert.Equal(t, "start_date", field)

	// a fourth row arrives after the copy: it is past the copied length
	s.Append(rowWith(map[string]string{"end_date": "2025-04-04T04:04"}))

	n, err = s.PasteColumn(&cb, "end_date")
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	rows := s.Rows()
	assert.Equal(t, "2025-01-01T10:00", rows[0].Values["end_date"])
	assert.True(t, rows[0].Dirty)
	assert.NotContains(t, rows[1].Values, "end_date")
	assert.False(t, rows[1].Dirty, "empty copied value is skipped")
	assert.Equal(t, "2025-03-01T10:00", rows[2].Values["end_date"])
	assert.Equal(t, "2025-04-04T04:04", rows[3].Values["end_date"])
	assert.False(t, rows[3].Dirty)

	cb.Clear()
	assert.False(t, cb.HasColumn())
}

func TestDuplicateRow(t *testing.T) {
	src := rowWith(map[string]string{"start_date": "2025-01-01T10:00"})
	src.TaskID = "t-1"
	src.Title = "Ship release"
	other := rowWith(nil)
	other.Title = "Other"
	s := newTestSheet(t, src, other)
	_, err := s.ApplyQuickAction(0, "end_date", "+1d")
	require.NoError(t, err)
	src.Dirty = false

	idx, err := s.DuplicateRow(0)
	require.NoError(t, err)
	assert.Equal(t, 1, idx)
	require.Equal(t, 3, s.Len())

	cp := s.Rows()[1]
	assert.Empty(t, cp.TaskID)
	assert.Equal(t, "Ship release - Copy", cp.Title)
	assert.Empty(t, cp.Offsets)
	assert.Equal(t, "2025-01-02T10:00", cp.Values["end_date"])
	assert.True(t, cp.Dirty)
	assert.Equal(t, "Other", s.Rows()[2].Title)

	// the copy must not share maps with the source
	require.NoError(t, s.SetValue(1, "start_date", "2030-01-01T00:00"))
	assert.Equal(t, "2025-01-01T10:00", src.Values["start_date"])
	assert.Equal(t, "+1d", src.Offsets["end_date"])
	assert.False(t, src.Dirty)

	untitled, err := s.DuplicateRow(2)
	require.NoError(t, err)
	assert.Equal(t, 3, untitled)

	blank := newTestSheet(t)
	_, err = blank.DuplicateRow(0)
	require.NoError(t, err)
	assert.Equal(t, "", blank.Rows()[1].Title)

	_, err = s.DuplicateRow(10)
	require.ErrorIs(t, err, ErrRowOutOfRange)
}

func TestRow_RequestCarriesActiveOffsets(t *testing.T) {
	s := newTestSheet(t, rowWith(map[string]string{"start_date": "2025-01-01T10:00"}))
	require.NoError(t, s.SetTitle(0, "Plan"))
	require.NoError(t, s.SetStatus(0, "pending"))
	_, err := s.ApplyQuickAction(0, "end_date", "+3h")
	require.NoError(t, err)
	_, err = s.ApplyQuickAction(0, "deadline", "+1w")
	require.NoError(t, err)
	require.NoError(t, s.SetValue(0, "deadline", "2025-02-01T00:00"))

	req, err := s.Rows()[0].Request()
	require.NoError(t, err)
	assert.Equal(t, "Plan", req.Title)
	assert.Equal(t, "pending", req.Status)
	assert.Equal(t, "2025-01-01T10:00", req.StartDate)
	assert.Equal(t, "2025-01-01T13:00", req.EndDate)
	assert.Equal(t, "2025-02-01T00:00", req.Deadline)
	assert.Equal(t, map[string]string{"end_date": "+3h"}, req.Offsets)
}

func TestFile_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "sheet.json")

	ws, err := ReadFile(path)
	require.NoError(t, err)
	assert.Empty(t, ws.Rows)

	r := rowWith(map[string]string{"start_date": "2025-01-01T10:00"})
	r.Offsets["end_date"] = "+1h"
	r.Dirty = true
	s := newTestSheet(t, r)
	_, err = s.CopyColumn(&ws.Clipboard, "start_date")
	require.NoError(t, err)
	require.NoError(t, s.Copy(&ws.Clipboard, 0, "start_date"))
	ws.Rows = s.Rows()
	require.NoError(t, WriteFile(path, ws))

	loaded, err := ReadFile(path)
	require.NoError(t, err)
	require.Len(t, loaded.Rows, 1)
	assert.Equal(t, r, loaded.Rows[0])
	assert.Equal(t, "2025-01-01T10:00", loaded.Clipboard.Single())
	values, field := loaded.Clipboard.Column()
	assert.Equal(t, []string{"2025-01-01T10:00"}, values)
	assert.Equal(t, "start_date", field)
}

func TestFile_SkipsNullRows(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sheet.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"rows":[null,{"title":"kept"},null]}`), 0o600))

	ws, err := ReadFile(path)
	require.NoError(t, err)
	require.Len(t, ws.Rows, 1)
	assert.Equal(t, "kept", ws.Rows[0].Title)
	assert.NotNil(t, ws.Rows[0].Values)

	s := New(newTestSheet(t).Engine(), nil, nil, ws.Rows[0])
	assert.Equal(t, 1, s.Len())
}

func TestFile_EmptyColumnCopySurvives(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sheet.json")
	empty := New(newTestSheet(t).Engine(), nil)

	ws := &Workspace{}
	n, err := empty.CopyColumn(&ws.Clipboard, "deadline")
	require.NoError(t, err)
	assert.Zero(t, n)
	require.NoError(t, WriteFile(path, ws))

	loaded, err := ReadFile(path)
	require.NoError(t, err)
	assert.True(t, loaded.Clipboard.HasColumn())

	n, err = empty.PasteColumn(&loaded.Clipboard, "deadline")
	require.NoError(t, err)
	assert.Zero(t, n)
}

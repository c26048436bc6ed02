package sheet

import (
	"context"
	"fmt"

	"github.com/taskmaster/taskgrid/internal/domain/offset"
	"github.com/taskmaster/taskgrid/internal/ports"
)

// RowError records why one row failed to save.
type RowError struct {
	Index  int
	TaskID string
	Err    error
}

func (e RowError) Error() string {
	return fmt.Sprintf("row %d: %v", e.Index, e.Err)
}

func (e RowError) Unwrap() error { return e.Err }

// SaveSummary tallies a batch save.
type SaveSummary struct {
	Total     int
	Succeeded int
	Failed    int
	Errors    []RowError
	// Locale is the sheet engine's label locale; Message is rendered in it.
	Locale offset.Locale
}

// Message renders the summary the way it is reported to the user.
func (s SaveSummary) Message() string {
	if s.Locale == offset.LocaleEnglish {
		if s.Failed == 0 {
			return fmt.Sprintf("Saved %d tasks", s.Succeeded)
		}
		return fmt.Sprintf("Saved %d/%d tasks. %d failed.", s.Succeeded, s.Total, s.Failed)
	}
	if s.Failed == 0 {
		return fmt.Sprintf("Đã lưu %d tác vụ thành công!", s.Succeeded)
	}
	return fmt.Sprintf("Đã lưu %d/%d tác vụ. %d tác vụ lỗi.", s.Succeeded, s.Total, s.Failed)
}

// ProgressFunc is told after each row attempt how many of total are done.
type ProgressFunc func(done, total int)

// SaveAll saves every dirty row through saver, one at a time and in order.
// A saved row is marked clean and adopts the returned task id; a failed row
// stays dirty. Failures do not stop the batch and nothing is rolled back.
func (s *Sheet) SaveAll(ctx context.Context, saver ports.TaskSaver, progress ProgressFunc) (SaveSummary, error) {
	dirty := s.DirtyRows()
	if len(dirty) == 0 {
		return SaveSummary{}, ErrNothingToSave
	}

	summary := SaveSummary{Total: len(dirty), Locale: s.engine.Locale()}
	for n, i := range dirty {
		r := s.rows[i]
		req, err := r.Request()
		var id string
		if err == nil {
			id, err = saver.Save(ctx, r.TaskID, req)
		}
		if err != nil {
			summary.Failed++
			summary.Errors = append(summary.Errors, RowError{Index: i, TaskID: r.TaskID, Err: err})
			s.logger.Warnw("row save failed", "row", i, "task_id", r.TaskID, "error", err)
		} else {
			summary.Succeeded++
			if r.TaskID == "" && id != "" {
				r.TaskID = id
			}
			r.Dirty = false
		}
		if progress != nil {
			progress(n+1, summary.Total)
		}
	}

	s.logger.Infow("batch save finished",
		"total", summary.Total,
		"succeeded", summary.Succeeded,
		"failed", summary.Failed,
	)
	return summary, nil
}

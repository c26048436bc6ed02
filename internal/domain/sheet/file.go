package sheet

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Workspace is what the sheet commands keep on disk between runs: the rows
// and whatever was last copied.
type Workspace struct {
	Rows      []*Row    `json:"rows"`
	Clipboard Clipboard `json:"clipboard"`
}

// ReadFile loads a workspace saved by WriteFile. A missing file is an empty workspace.
func ReadFile(path string) (*Workspace, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Workspace{}, nil
		}
		return nil, fmt.Errorf("read sheet: %w", err)
	}
	var ws Workspace
	if err := json.Unmarshal(data, &ws); err != nil {
		return nil, fmt.Errorf("decode sheet %s: %w", path, err)
	}
	rows := ws.Rows[:0]
	for _, r := range ws.Rows {
		if r == nil {
			continue
		}
		r.ensureMaps()
		rows = append(rows, r)
	}
	ws.Rows = rows
	return &ws, nil
}

// WriteFile stores the workspace as indented JSON, replacing path atomically.
func WriteFile(path string, ws *Workspace) error {
	out := *ws
	if out.Rows == nil {
		out.Rows = []*Row{}
	}
	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("encode sheet: %w", err)
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create sheet dir: %w", err)
		}
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write sheet: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("replace sheet: %w", err)
	}
	return nil
}

package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/taskmaster/taskgrid/internal/adapters/client"
	"github.com/taskmaster/taskgrid/internal/domain/sheet"
	"github.com/taskmaster/taskgrid/internal/infrastructure/config"
	"github.com/taskmaster/taskgrid/internal/infrastructure/logger"
)

const defaultSheetFile = "taskgrid-sheet.json"

// sheetSession is one command's view of the workspace file.
type sheetSession struct {
	cfg   *config.Config
	log   *logger.Logger
	path  string
	ws    *sheet.Workspace
	sheet *sheet.Sheet
	out   io.Writer
}

func openSheet(opts *Options, path string, out io.Writer) (*sheetSession, error) {
	cfg, err := opts.loadConfig()
	if err != nil {
		return nil, err
	}
	log, err := opts.cliLogger(cfg)
	if err != nil {
		return nil, err
	}
	engine, err := newEngine(cfg, log)
	if err != nil {
		return nil, err
	}
	ws, err := sheet.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return &sheetSession{
		cfg:   cfg,
		log:   log,
		path:  path,
		ws:    ws,
		sheet: sheet.New(engine, log, ws.Rows...),
		out:   out,
	}, nil
}

func (s *sheetSession) save() error {
	s.ws.Rows = s.sheet.Rows()
	return sheet.WriteFile(s.path, s.ws)
}

// row converts a 1-based row number as printed by `sheet status`.
func (s *sheetSession) row(arg string) (int, error) {
	n, err := strconv.Atoi(arg)
	if err != nil {
		return 0, fmt.Errorf("row must be a number, got %q", arg)
	}
	if n < 1 || n > s.sheet.Len() {
		return 0, fmt.Errorf("%w: %d (sheet has %d rows)", sheet.ErrRowOutOfRange, n, s.sheet.Len())
	}
	return n - 1, nil
}

// NewSheetCommand creates the sheet command: a local grid of task rows
// edited offline and pushed to the API in one batch.
func NewSheetCommand(opts *Options) *cobra.Command {
	var file string

	sheetCmd := &cobra.Command{
		Use:   "sheet",
		Short: "Edit task rows locally and save them in a batch",
	}
	sheetCmd.PersistentFlags().StringVarP(&file, "file", "f", defaultSheetFile, "Sheet workspace file")

	// edit wraps a command body that changes the workspace and saves it afterwards.
	edit := func(fn func(s *sheetSession, args []string) error) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, args []string) error {
			s, err := openSheet(opts, file, cmd.OutOrStdout())
			if err != nil {
				return err
			}
			if err := fn(s, args); err != nil {
				return err
			}
			return s.save()
		}
	}

	var (
		pullStatus string
		pullLimit  int
		pullForce  bool
	)
	pullCmd := &cobra.Command{
		Use:   "pull",
		Short: "Replace the local rows with tasks from the API",
		Args:  cobra.NoArgs,
		RunE: edit(func(s *sheetSession, args []string) error {
			if n := s.sheet.DirtyCount(); n > 0 && !pullForce {
				return fmt.Errorf("%d unsaved row(s); push them first or pass --force", n)
			}
			records, err := client.New(s.cfg.Client).List(context.Background(), pullStatus, pullLimit)
			if err != nil {
				return err
			}
			rows := make([]*sheet.Row, len(records))
			for i, rec := range records {
				rows[i] = sheet.RowFromRecord(rec)
			}
			s.sheet = sheet.New(s.sheet.Engine(), s.log, rows...)
			fmt.Fprintf(s.out, "Pulled %d tasks\n", len(rows))
			return nil
		}),
	}
	pullCmd.Flags().StringVar(&pullStatus, "status", "", "Only tasks with this status")
	pullCmd.Flags().IntVar(&pullLimit, "limit", 0, "Maximum number of tasks")
	pullCmd.Flags().BoolVar(&pullForce, "force", false, "Discard unsaved rows")

	var addTitle string
	addCmd := &cobra.Command{
		Use:   "add",
		Short: "Append an empty, unsaved row",
		Args:  cobra.NoArgs,
		RunE: edit(func(s *sheetSession, args []string) error {
			r := sheet.NewRow()
			r.Title = addTitle
			r.Dirty = true
			i := s.sheet.Append(r)
			fmt.Fprintf(s.out, "Added row %d\n", i+1)
			return nil
		}),
	}
	addCmd.Flags().StringVar(&addTitle, "title", "", "Row title")

	setCmd := &cobra.Command{
		Use:   "set <row> <field> <value>",
		Short: "Type a value into a cell (title, status, description or a date/time field)",
		Long:  "Type a value into a cell. An empty value clears a date/time cell. A derived offset survives only if the new value still matches it.",
		Args:  cobra.ExactArgs(3),
		RunE: edit(func(s *sheetSession, args []string) error {
			i, err := s.row(args[0])
			if err != nil {
				return err
			}
			field, value := args[1], args[2]
			switch field {
			case "title":
				return s.sheet.SetTitle(i, value)
			case "status":
				return s.sheet.SetStatus(i, value)
			case "description":
				r, _ := s.sheet.Row(i)
				if r.Description != value {
					r.Description = value
					r.Dirty = true
				}
				return nil
			}
			return s.sheet.SetValue(i, field, value)
		}),
	}

	quickCmd := &cobra.Command{
		Use:     "quick <row> <field> <token>",
		Short:   "Derive a cell from the previous field by an offset token",
		Example: "  taskgrid sheet quick 1 end_date +3h",
		Args:    cobra.ExactArgs(3),
		RunE: edit(func(s *sheetSession, args []string) error {
			i, err := s.row(args[0])
			if err != nil {
				return err
			}
			value, err := s.sheet.ApplyQuickAction(i, args[1], args[2])
			if err != nil {
				return err
			}
			label, _ := s.sheet.Annotation(i, args[1])
			fmt.Fprintf(s.out, "%s = %s (%s)\n", args[1], value, label)
			return nil
		}),
	}

	customCmd := &cobra.Command{
		Use:     "custom <row> <field> <amount> <unit>",
		Short:   "Derive a cell by a custom amount (1-999) of a unit (s m h d w M q y)",
		Example: "  taskgrid sheet custom 1 deadline 10 d",
		Args:    cobra.ExactArgs(4),
		RunE: edit(func(s *sheetSession, args []string) error {
			i, err := s.row(args[0])
			if err != nil {
				return err
			}
			amount, err := strconv.Atoi(args[2])
			if err != nil {
				return fmt.Errorf("amount must be a number, got %q", args[2])
			}
			value, err := s.sheet.ApplyCustomOffset(i, args[1], amount, args[3])
			if err != nil {
				return err
			}
			label, _ := s.sheet.Annotation(i, args[1])
			fmt.Fprintf(s.out, "%s = %s (%s)\n", args[1], value, label)
			return nil
		}),
	}

	touchCmd := &cobra.Command{
		Use:   "touch <row> <field>",
		Short: "Fill an empty cell with the current time",
		Args:  cobra.ExactArgs(2),
		RunE: edit(func(s *sheetSession, args []string) error {
			i, err := s.row(args[0])
			if err != nil {
				return err
			}
			value, err := s.sheet.Touch(i, args[1])
			if err != nil {
				return err
			}
			fmt.Fprintf(s.out, "%s = %s\n", args[1], value)
			return nil
		}),
	}

	copyCmd := &cobra.Command{
		Use:   "copy <row> <field>",
		Short: "Copy a cell value",
		Args:  cobra.ExactArgs(2),
		RunE: edit(func(s *sheetSession, args []string) error {
			i, err := s.row(args[0])
			if err != nil {
				return err
			}
			if err := s.sheet.Copy(&s.ws.Clipboard, i, args[1]); err != nil {
				return err
			}
			if v := s.ws.Clipboard.Single(); v != "" {
				fmt.Fprintf(s.out, "Copied %s\n", v)
			} else {
				fmt.Fprintln(s.out, "Cell is empty; nothing copied")
			}
			return nil
		}),
	}

	pasteCmd := &cobra.Command{
		Use:   "paste <row> <field>",
		Short: "Paste the copied value into a cell",
		Args:  cobra.ExactArgs(2),
		RunE: edit(func(s *sheetSession, args []string) error {
			i, err := s.row(args[0])
			if err != nil {
				return err
			}
			if err := s.sheet.Paste(&s.ws.Clipboard, i, args[1]); err != nil {
				return err
			}
			fmt.Fprintf(s.out, "Pasted %s\n", s.ws.Clipboard.Single())
			return nil
		}),
	}

	copyColumnCmd := &cobra.Command{
		Use:   "copy-column <field>",
		Short: "Copy a whole date/time column",
		Args:  cobra.ExactArgs(1),
		RunE: edit(func(s *sheetSession, args []string) error {
			n, err := s.sheet.CopyColumn(&s.ws.Clipboard, args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(s.out, "Copied %d values\n", n)
			return nil
		}),
	}

	pasteColumnCmd := &cobra.Command{
		Use:   "paste-column <field>",
		Short: "Paste a copied column top-down",
		Args:  cobra.ExactArgs(1),
		RunE: edit(func(s *sheetSession, args []string) error {
			n, err := s.sheet.PasteColumn(&s.ws.Clipboard, args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(s.out, "Pasted %d values\n", n)
			return nil
		}),
	}

	duplicateCmd := &cobra.Command{
		Use:   "duplicate <row>",
		Short: "Insert an unsaved copy of a row below it",
		Args:  cobra.ExactArgs(1),
		RunE: edit(func(s *sheetSession, args []string) error {
			i, err := s.row(args[0])
			if err != nil {
				return err
			}
			n, err := s.sheet.DuplicateRow(i)
			if err != nil {
				return err
			}
			fmt.Fprintf(s.out, "Duplicated row %d as row %d\n", i+1, n+1)
			return nil
		}),
	}

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show the rows, their derived offsets and unsaved changes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSheet(opts, file, cmd.OutOrStdout())
			if err != nil {
				return err
			}
			return printStatus(s)
		},
	}

	pushCmd := &cobra.Command{
		Use:   "push",
		Short: "Save every unsaved row through the API, one at a time",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSheet(opts, file, cmd.OutOrStdout())
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}

			summary, err := s.sheet.SaveAll(ctx, client.New(s.cfg.Client), func(done, total int) {
				fmt.Fprintf(s.out, "Saving %d/%d\n", done, total)
			})
			if errors.Is(err, sheet.ErrNothingToSave) {
				fmt.Fprintln(s.out, "No changes to save")
				return nil
			}
			if err != nil {
				return err
			}
			// ids adopted by new rows must reach the file even when some rows failed
			if err := s.save(); err != nil {
				return err
			}

			for _, rowErr := range summary.Errors {
				fmt.Fprintf(s.out, "  row %d: %v\n", rowErr.Index+1, rowErr.Err)
			}
			fmt.Fprintln(s.out, summary.Message())
			if summary.Failed > 0 {
				return fmt.Errorf("%d of %d rows failed to save", summary.Failed, summary.Total)
			}
			return nil
		},
	}

	sheetCmd.AddCommand(
		pullCmd, addCmd, setCmd, quickCmd, customCmd, touchCmd,
		copyCmd, pasteCmd, copyColumnCmd, pasteColumnCmd,
		duplicateCmd, statusCmd, pushCmd,
	)
	return sheetCmd
}

func printStatus(s *sheetSession) error {
	fields := s.sheet.Engine().Chain().Fields()
	tw := tabwriter.NewWriter(s.out, 0, 4, 2, ' ', 0)

	for i, r := range s.sheet.Rows() {
		marker := " "
		if r.Dirty {
			marker = "*"
		}
		id := r.TaskID
		if id == "" {
			id = "(new)"
		}
		fmt.Fprintf(tw, "%d%s\t%s\t%s\t%s\n", i+1, marker, id, r.Title, r.Status)
		for _, field := range fields {
			value := r.Values[field]
			if value == "" {
				continue
			}
			if label, ok := s.sheet.Annotation(i, field); ok {
				fmt.Fprintf(tw, "\t%s\t%s\t%s\n", field, value, label)
			} else {
				fmt.Fprintf(tw, "\t%s\t%s\t\n", field, value)
			}
		}
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintf(s.out, "%d rows, %d unsaved\n", s.sheet.Len(), s.sheet.DirtyCount())
	return nil
}

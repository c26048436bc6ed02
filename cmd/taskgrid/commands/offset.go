package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/taskmaster/taskgrid/internal/domain/offset"
)

// NewOffsetCommand exposes the offset engine offline
func NewOffsetCommand(opts *Options) *cobra.Command {
	offsetCmd := &cobra.Command{
		Use:   "offset",
		Short: "Compute and describe date/time offsets",
	}

	offsetCmd.AddCommand(&cobra.Command{
		Use:     "apply <base> <token>",
		Short:   "Shift a YYYY-MM-DDTHH:mm timestamp by an offset token",
		Long:    "Shift a timestamp by an offset token. An unparseable base or token is reported on stderr and the base is printed unchanged.",
		Example: "  taskgrid offset apply 2025-01-01T10:00 +3h\n  taskgrid offset apply -- 2025-01-01T10:00 -2d",
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, err := opts.engine()
			if err != nil {
				return err
			}
			// fail-soft: an invalid base or token is logged and the base printed back
			result := engine.Apply(args[0], args[1])
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t(%s)\n", result, engine.Label(args[1]))
			return nil
		},
	})

	offsetCmd.AddCommand(&cobra.Command{
		Use:   "label <token>",
		Short: "Render an offset token for display",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, err := opts.engine()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), engine.Label(args[0]))
			return nil
		},
	})

	offsetCmd.AddCommand(&cobra.Command{
		Use:   "chain",
		Short: "List the date/time fields in reference order",
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, err := opts.engine()
			if err != nil {
				return err
			}
			fields := engine.Chain().Fields()
			for i, field := range fields {
				prev, ok := engine.Previous(field)
				if !ok {
					prev = "-"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%2d  %-18s derived from %s\n", i+1, field, prev)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "units: %s\n", strings.Join(strings.Split(offset.Units, ""), " "))
			return nil
		},
	})

	return offsetCmd
}

func (o *Options) engine() (*offset.Engine, error) {
	cfg, err := o.loadConfig()
	if err != nil {
		return nil, err
	}
	log, err := o.cliLogger(cfg)
	if err != nil {
		return nil, err
	}
	return newEngine(cfg, log)
}

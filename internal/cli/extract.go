package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/mavenbuild/pkg/pipeline"
)

// ErrFailures is returned by extract --strict when any artifact or manifest
// failed. main maps it to exit code 2.
var ErrFailures = errors.New("extraction finished with failures")

// extractOpts holds the flags of the extract command that are not part of
// the shared configuration.
type extractOpts struct {
	verbose bool // list skipped artifacts in the summary table
}

// extractCommand creates the extract command.
func (c *CLI) extractCommand() *cobra.Command {
	var opts extractOpts

	cmd := &cobra.Command{
		Use:   "extract <root>",
		Short: "Unpack a release drop into Maven modules",
		Long: `Extract walks <root> for jar, war, ear and dar archives and external pom
files, resolves which artifacts belong to the same module and unpacks each
module below --destination, rebuilding its pom.xml.

Failures of single archives or manifests are reported but never stop the
run. Use --strict to exit non-zero when any occurred.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root := c.effective().Root
			if len(args) == 1 {
				root = args[0]
			}
			return c.runExtract(cmd.Context(), root, opts)
		},
	}

	cmd.Flags().StringP("destination", "d", "", "content directory modules are written to (required)")
	cmd.Flags().String("report", "", "write the JSON run report to this file")
	cmd.Flags().Bool("strict", false, "exit non-zero when any artifact failed")
	cmd.Flags().BoolVar(&opts.verbose, "all", false, "list skipped artifacts too")
	addRunFlags(cmd)

	return cmd
}

func (c *CLI) runExtract(ctx context.Context, root string, opts extractOpts) error {
	logger := loggerFromContext(ctx)
	cfg := c.effective()

	runOpts := c.pipelineOptions(logger)
	var err error
	if runOpts.Root, err = absPath(root); err != nil {
		return err
	}
	if runOpts.Destination, err = absPath(cfg.Destination); err != nil {
		return err
	}
	if runOpts.Root == "" {
		return fmt.Errorf("no root given: pass <root> or set root in the config file")
	}

	prog := newProgress(logger)
	spinner := newSpinner(ctx, "Extracting "+runOpts.Root)
	spinner.Start()

	report, err := pipeline.NewRunner(logger).Execute(ctx, runOpts)
	spinner.Stop()
	if err != nil {
		if report != nil {
			printWarning("run interrupted after %d artifacts", len(report.Outcomes))
			if werr := c.writeReport(cfg.Report, report); werr != nil {
				logger.Error("write report", "err", werr)
			}
		}
		return err
	}

	fmt.Println(renderReport(report, opts.verbose))
	prog.done(fmt.Sprintf("Extracted %d modules", report.Summary.Succeeded))
	printFile(runOpts.Destination)

	if err := c.writeReport(cfg.Report, report); err != nil {
		return err
	}

	if runErr := report.Err(); runErr != nil {
		for _, o := range report.Failed() {
			printError("%s: %s", displayKey(o.Key, o.Path), o.Reason)
		}
		logger.Debug("run failures", "err", runErr)
		if cfg.Strict {
			return ErrFailures
		}
	}
	return nil
}

// writeReport writes the JSON report to path. An empty path is a no-op.
func (c *CLI) writeReport(path string, report *pipeline.Report) error {
	if path == "" {
		return nil
	}
	f, err := c.fs().Create(path)
	if err != nil {
		return fmt.Errorf("create report: %w", err)
	}
	if err := report.WriteJSON(f); err != nil {
		f.Close()
		return fmt.Errorf("write report: %w", err)
	}
	if err := f.Close(); err != nil {
		return err
	}
	printDetail("Report: %s", path)
	return nil
}

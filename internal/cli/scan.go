package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/mavenbuild/pkg/pipeline"
)

// scanCommand creates the scan command, which resolves without extracting.
func (c *CLI) scanCommand() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "scan <root>",
		Short: "Print the resolution plan for a release drop",
		Long: `Scan walks <root> and resolves which artifacts would be extracted, which
jars would be merged into a dar, ear or war and which packagings are
shadowed. Nothing is written.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root := c.effective().Root
			if len(args) == 1 {
				root = args[0]
			}
			return c.runScan(cmd.Context(), root, asJSON)
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print the plan as JSON")

	return cmd
}

func (c *CLI) runScan(ctx context.Context, root string, asJSON bool) error {
	logger := loggerFromContext(ctx)

	opts := c.pipelineOptions(logger)
	var err error
	if opts.Root, err = absPath(root); err != nil {
		return err
	}
	if opts.Root == "" {
		return fmt.Errorf("no root given: pass <root> or set root in the config file")
	}

	prog := newProgress(logger)
	plan, err := pipeline.NewRunner(logger).Scan(ctx, opts)
	if err != nil {
		return err
	}

	if asJSON {
		return writeIndentedJSON(os.Stdout, plan)
	}
	if len(plan.Steps) == 0 {
		printInfo("Nothing to extract under %s", opts.Root)
		return nil
	}
	fmt.Println(renderPlan(plan))
	prog.done(fmt.Sprintf("Resolved %d modules", len(plan.Steps)))
	return nil
}

func writeIndentedJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

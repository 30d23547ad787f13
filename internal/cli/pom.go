package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/matzehuels/mavenbuild/pkg/pipeline"
	"github.com/matzehuels/mavenbuild/pkg/pom"
)

// pomOpts holds the command-line flags for the pom command.
type pomOpts struct {
	bundled []string // jar paths relative to src/main/webapp
	stdout  bool     // print instead of rewriting in place
}

// pomCommand creates the pom command, which rebuilds a single manifest.
func (c *CLI) pomCommand() *cobra.Command {
	var opts pomOpts

	cmd := &cobra.Command{
		Use:   "pom <file>",
		Short: "Rebuild a single pom.xml",
		Long: `Pom rebuilds <file> the way extract rebuilds module manifests: identity,
parent and properties are kept, build and dependency sections are replaced
with the standard source layout.

Jars bundled in a war can be declared with --bundled, relative to
src/main/webapp (e.g. WEB-INF/lib/foo-1.2.jar).`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runPOM(cmd.Context(), args[0], opts)
		},
	}

	cmd.Flags().StringSliceVarP(&opts.bundled, "bundled", "b", nil, "bundled jar path (repeatable)")
	cmd.Flags().BoolVar(&opts.stdout, "stdout", false, "print the rebuilt manifest instead of rewriting the file")
	cmd.Flags().String("bundled-group-id", pipeline.DefaultBundledGroupID, "groupId declared for bundled jars")
	cmd.Flags().String("newline", pipeline.DefaultNewline, "line ending: crlf, lf")

	return cmd
}

func (c *CLI) runPOM(ctx context.Context, path string, opts pomOpts) error {
	logger := loggerFromContext(ctx)

	runOpts := c.pipelineOptions(logger)
	runOpts.SetDefaults()
	if err := pipeline.ValidateNewline(runOpts.Newline); err != nil {
		return err
	}
	render := runOpts.RenderOptions()
	if err := render.Validate(); err != nil {
		return err
	}

	if opts.stdout {
		return renderPOM(c.fs(), os.Stdout, path, opts.bundled, render)
	}

	fields, err := pom.Reconstruct(c.fs(), path, opts.bundled, render)
	if err != nil {
		return err
	}
	logger.Debug("rebuilt manifest", "path", path, "war", fields.WarPackaging, "bundled", len(opts.bundled))
	printSuccess("Rebuilt %s", path)
	if len(opts.bundled) > 0 {
		printDetail("%d bundled dependencies", len(opts.bundled))
	}
	return nil
}

// renderPOM writes the rebuilt form of the manifest at path to w without
// touching the file.
func renderPOM(fsys afero.Fs, w io.Writer, path string, bundled []string, opts pom.RenderOptions) error {
	data, err := afero.ReadFile(fsys, path)
	if err != nil {
		return err
	}
	fields, err := pom.Parse(pom.Decode(data))
	if err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	if err := pom.Render(w, fields, bundled, opts); err != nil {
		return err
	}
	_, err = io.WriteString(w, "\n")
	return err
}

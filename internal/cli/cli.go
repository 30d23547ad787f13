package cli

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/matzehuels/mavenbuild/pkg/buildinfo"
	"github.com/matzehuels/mavenbuild/pkg/config"
	"github.com/matzehuels/mavenbuild/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = "mavenbuild"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	// Fs is the filesystem commands read and write. Tests swap in a MemMapFs.
	Fs afero.Fs

	configFile string
	loader     *config.Loader
	cfg        *config.Config
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		Fs:     afero.NewOsFs(),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "mavenbuild turns binary release drops into buildable Maven modules",
		Long: `mavenbuild walks a directory of binary deliverables (jar, war, ear and dar
archives plus external pom files), decides which artifacts belong together,
unpacks them into one source module per artifact and rebuilds each module's
pom.xml so it can be fed to a Maven build.`,
		Version:       buildinfo.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return c.loadConfig(cmd)
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configFile, "config", "", "config file (default $XDG_CONFIG_HOME/mavenbuild/config.toml)")

	root.AddCommand(c.extractCommand())
	root.AddCommand(c.scanCommand())
	root.AddCommand(c.pomCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.configCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Configuration
// =============================================================================

// loadConfig merges the config file, the environment and the flags of the
// command being run into c.cfg.
func (c *CLI) loadConfig(cmd *cobra.Command) error {
	c.loader = config.NewLoader()
	if err := c.loader.BindFlags(cmd.Flags()); err != nil {
		return fmt.Errorf("bind flags: %w", err)
	}
	cfg, err := c.loader.Load(c.configFile)
	if err != nil {
		return err
	}
	c.cfg = cfg
	if used := c.loader.Used(); used != "" {
		c.Logger.Debug("loaded config", "file", used)
	}
	return nil
}

// effective returns the effective configuration, or the defaults when the
// command ran without the root pre-run hook.
func (c *CLI) effective() *config.Config {
	if c.cfg == nil {
		return config.Default()
	}
	return c.cfg
}

// pipelineOptions returns run options from the effective configuration.
func (c *CLI) pipelineOptions(logger *log.Logger) pipeline.Options {
	opts := c.effective().PipelineOptions()
	opts.Fs = c.fs()
	opts.Logger = logger
	return opts
}

func (c *CLI) fs() afero.Fs {
	if c.Fs == nil {
		return afero.NewOsFs()
	}
	return c.Fs
}

// =============================================================================
// Options Helpers
// =============================================================================

// addRunFlags registers the flags shared by extract and serve. Defaults come
// from pipeline so the help text matches the built-in configuration.
func addRunFlags(cmd *cobra.Command) {
	cmd.Flags().IntP("workers", "w", pipeline.DefaultWorkers, "modules extracted concurrently")
	cmd.Flags().Int("buffer-size", pipeline.DefaultBufferSize, "copy buffer size in bytes")
	cmd.Flags().String("bundled-group-id", pipeline.DefaultBundledGroupID, "groupId declared for jars bundled in wars")
	cmd.Flags().String("newline", pipeline.DefaultNewline, "line ending of rebuilt manifests: crlf, lf")
}

// absPath resolves a command-line path argument against the working
// directory. The pipeline requires absolute roots.
func absPath(p string) (string, error) {
	if p == "" || filepath.IsAbs(p) {
		return p, nil
	}
	return filepath.Abs(p)
}

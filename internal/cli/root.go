// Package cli wires configuration, stores, clients and pipeline stages into
// the datascout command tree.
package cli

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/spf13/cobra"

	"datascout/internal/config"
	"datascout/internal/output"
)

// options holds the global flags and what initConfig derives from them.
type options struct {
	cfgFile string
	runID   string
	verbose bool
	fakeLLM bool
	color   string

	cfg     *config.Config
	log     *log.Logger
	printer *output.Printer
	stdout  io.Writer
	stderr  io.Writer
}

// NewRootCmd builds a fresh command tree. stdout/stderr nil means the process streams.
func NewRootCmd(stdout, stderr io.Writer) *cobra.Command {
	if stdout == nil {
		stdout = os.Stdout
	}
	if stderr == nil {
		stderr = os.Stderr
	}
	opts := &options{stdout: stdout, stderr: stderr}

	root := &cobra.Command{
		Use:   "datascout",
		Short: "Find public datasets for AI/ML use cases of a company",
		Long: `datascout scrapes a company web page, asks an LLM for AI/ML use cases and
search keywords, then searches dataset catalogs for every keyword and writes a
de-duplicated resource report per use case.

Example usage:
  datascout run https://acme.example      # all stages for one company
  datascout scrape https://acme.example   # stage 1 only, prints the run ID
  datascout generate --run-id <id>        # stage 2 on an existing run
  datascout collect --run-id <id>         # stage 3 on an existing run`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.setup()
		},
	}
	root.SetOut(stdout)
	root.SetErr(stderr)

	pf := root.PersistentFlags()
	pf.StringVar(&opts.cfgFile, "config", "", "config file (default is ./datascout.yaml)")
	pf.StringVar(&opts.runID, "run-id", "", "run identifier used as the artifact namespace")
	pf.BoolVarP(&opts.verbose, "verbose", "v", false, "log every request to stderr")
	pf.BoolVar(&opts.fakeLLM, "fake-llm", false, "use the deterministic offline LLM")
	pf.StringVar(&opts.color, "color", "auto", "color output: auto, always, never")

	root.AddCommand(
		newScrapeCmd(opts),
		newGenerateCmd(opts),
		newCollectCmd(opts),
		newRunCmd(opts),
	)
	return root
}

// Execute runs the CLI with the process streams.
func Execute(ctx context.Context) error {
	return NewRootCmd(nil, nil).ExecuteContext(ctx)
}

func (o *options) setup() error {
	mode, err := output.ParseColorMode(o.color)
	if err != nil {
		return err
	}
	o.printer = output.NewPrinter(o.stdout, o.stderr, output.ResolveColors(mode))

	logOut := io.Discard
	if o.verbose {
		logOut = o.stderr
	}
	o.log = log.New(logOut, "", log.LstdFlags)

	cfg, err := config.Load(o.cfgFile)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if o.fakeLLM {
		cfg.LLM.Provider = config.ProviderFake
	}
	o.cfg = cfg
	return nil
}

func (o *options) requireRunID() (string, error) {
	if o.runID == "" {
		return "", fmt.Errorf("--run-id is required")
	}
	return o.runID, nil
}

// Command yactfr-dump decodes one or more trace files to stdout, one
// line per element, using the hand-built PktProcs in the proc package
// (there being no metadata-text builder in this module to compile a real
// trace type from). It exists to exercise the vm package end to end over
// real files rather than in-memory fixtures, the way cmd/influx-tools
// exercises influxdb's storage engine from the command line.
package main

import (
	"fmt"
	"os"

	"github.com/hashicorp/go-multierror"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kienanstewart/yactfr/cachepos"
)

var (
	fixtureName string
	cachePath   string
	verbose     bool
)

func main() {
	Execute()
}

var rootCmd = &cobra.Command{
	Use:   "yactfr-dump [files...]",
	Short: "Decode trace files with the yactfr VM and print their elements",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runDump,
}

func init() {
	rootCmd.Flags().StringVar(&fixtureName, "fixture", "minimal",
		"which hand-built PktProc to decode the input with (minimal, clock, dynarray, variant, string, multiert)")
	rootCmd.Flags().StringVar(&cachePath, "checkpoint-cache", "",
		"path to a persisted packet-boundary checkpoint cache (empty disables persistence)")
	rootCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "log decode progress")
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newLogger() *zap.Logger {
	if verbose {
		log, _ := zap.NewDevelopment()
		return log
	}
	return zap.NewNop()
}

func runDump(cmd *cobra.Command, args []string) error {
	log := newLogger()
	defer log.Sync()

	pp, err := fixtureByName(fixtureName)
	if err != nil {
		return err
	}

	posCache := cachepos.New(log, cachePath)
	defer func() {
		if err := posCache.Flush(); err != nil {
			log.Warn("failed to flush checkpoint cache", zap.Error(err))
		}
	}()

	var merr *multierror.Error
	for _, path := range args {
		if err := dumpFile(log, posCache, pp, path); err != nil {
			merr = multierror.Append(merr, fmt.Errorf("%s: %w", path, err))
		}
	}
	return merr.ErrorOrNil()
}

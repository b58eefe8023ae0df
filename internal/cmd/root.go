// Package cmd wires vmscan's CLI surface: four positional arguments
// (pid, type, mode, value), dispatched to the search/filter/write drivers.
package cmd

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/coldforge/vmscan/internal/codec"
	"github.com/coldforge/vmscan/internal/config"
	"github.com/coldforge/vmscan/internal/driver"
	"github.com/coldforge/vmscan/internal/logging"
	"github.com/coldforge/vmscan/internal/scanner"
	"github.com/coldforge/vmscan/internal/trace"
	"github.com/coldforge/vmscan/internal/vmerr"

	"github.com/sirupsen/logrus"
)

var (
	verboseFlag  bool
	pageSizeFlag int
	configFlag   string
)

// NewRootCmd builds the vmscan root command.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "vmscan <pid> <type> <mode> <value>",
		Short: "cheat-engine-style memory search/filter/write for a running process",
		Long: "vmscan attaches to a running process, searches its writable memory\n" +
			"for a value, and can narrow or overwrite candidate addresses across\n" +
			"successive invocations chained via stdin/stdout.",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.ExactArgs(4),
		RunE:          runRoot,
	}

	root.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "extra diagnostics on stderr")
	root.PersistentFlags().IntVar(&pageSizeFlag, "page-size", 0, "override the scanner's page size (default 4096)")
	root.PersistentFlags().StringVar(&configFlag, "config", "", "path to vmscan.toml (default: $VMSCAN_CONFIG or ~/.config/vmscan/config.toml)")

	return root
}

// Run executes vmscan with args (excluding argv[0]) and returns the process
// exit code: 0 on success, 1 on any failure, matching spec.md's contract
// exactly regardless of which component failed.
func Run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	root := NewRootCmd()
	root.SetArgs(args)
	root.SetIn(stdin)
	root.SetOut(stdout)
	root.SetErr(stderr)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(stderr, "vmscan:", err)
		return 1
	}
	return 0
}

func runRoot(cmd *cobra.Command, args []string) error {
	cfgPath := configFlag
	if cfgPath == "" {
		cfgPath = config.DefaultPath()
	}
	fileCfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("%w: %v", vmerr.ErrUsage, err)
	}

	level := fileCfg.LogLevel
	if verboseFlag {
		level = "debug"
	}
	log := logging.New(cmd.ErrOrStderr(), level)

	pageSize := fileCfg.PageSize
	if pageSizeFlag != 0 {
		pageSize = pageSizeFlag
	}
	if pageSize <= 0 {
		pageSize = scanner.DefaultPageSize
	}

	pidStr, typeStr, modeStr, valueStr := args[0], args[1], args[2], args[3]

	pid, err := strconv.Atoi(pidStr)
	if err != nil || pid <= 0 {
		return fmt.Errorf("%w: invalid pid %q", vmerr.ErrUsage, pidStr)
	}

	signed, bits, err := parseType(typeStr)
	if err != nil {
		return err
	}

	switch modeStr {
	case "search", "filter", "write":
	default:
		return fmt.Errorf("%w: invalid mode %q (want search, filter, or write)", vmerr.ErrUsage, modeStr)
	}

	needle, err := codec.Encode(signed, bits, valueStr)
	if err != nil {
		return fmt.Errorf("%w: %v", vmerr.ErrUsage, err)
	}

	log.WithFields(logrus.Fields{"pid": pid, "mode": modeStr, "type": typeStr}).Debug("attaching")

	sess, err := trace.Attach(pid)
	if err != nil {
		return err
	}

	// Register signal handler for cleanup. Session.Close is idempotent, so
	// this races harmlessly against the deferred Close below: whichever
	// runs first wins, the other is a no-op.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		if sig == nil {
			return // channel closed on normal exit
		}
		if err := sess.Close(); err != nil {
			log.WithError(err).Warn("detach on signal failed")
		}
		os.Exit(130)
	}()
	defer func() { signal.Stop(sigCh); close(sigCh) }()

	defer func() {
		if err := sess.Close(); err != nil {
			log.WithError(err).Warn("detach failed")
		}
	}()

	switch modeStr {
	case "search":
		return driver.Search(pid, needle, pageSize, cmd.OutOrStdout())
	case "filter":
		warn := func(format string, a ...any) { log.Warnf(format, a...) }
		return driver.Filter(pid, needle, cmd.InOrStdin(), cmd.OutOrStdout(), warn)
	case "write":
		return driver.Write(pid, needle, cmd.InOrStdin())
	}
	return nil // unreachable: modeStr already validated above
}

// parseType validates and decodes a <type> argument of the form
// {i,u}{8,16,32,64}.
func parseType(typeStr string) (signed bool, bits int, err error) {
	if len(typeStr) < 2 {
		return false, 0, fmt.Errorf("%w: invalid type %q", vmerr.ErrUsage, typeStr)
	}

	switch typeStr[0] {
	case 'i':
		signed = true
	case 'u':
		signed = false
	default:
		return false, 0, fmt.Errorf("%w: invalid type %q", vmerr.ErrUsage, typeStr)
	}

	n, convErr := strconv.Atoi(strings.TrimSpace(typeStr[1:]))
	if convErr != nil {
		return false, 0, fmt.Errorf("%w: invalid type %q", vmerr.ErrUsage, typeStr)
	}
	switch n {
	case 8, 16, 32, 64:
		return signed, n, nil
	default:
		return false, 0, fmt.Errorf("%w: invalid type %q", vmerr.ErrUsage, typeStr)
	}
}

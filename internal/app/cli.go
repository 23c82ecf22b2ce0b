package app

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"pipejob/internal/archive"
	"pipejob/internal/config"
	"pipejob/internal/executor"
	"pipejob/internal/logger"
)

var version = "1.2.0"

var (
	exitFn      = os.Exit
	stdinReader io.Reader = os.Stdin
)

type exitError struct {
	code int
}

func (e exitError) Error() string {
	return fmt.Sprintf("exit %d", e.code)
}

type cliOptions struct {
	Root           string
	Delimiter      string
	KeepGoing      bool
	ArchiveBackend string
	ArchiveRoot    string
	TransferOutput string
	JunkTarball    string

	Cleanup    bool
	Version    bool
	ConfigFile string
}

func Main() {
	Run()
}

// Run is the program entrypoint for cmd/pipejob/main.go.
func Run() {
	exitFn(run())
}

func run() int {
	cmd := newRootCommand()
	cmd.SetArgs(os.Args[1:])
	if err := cmd.Execute(); err != nil {
		var ee exitError
		if errors.As(err, &ee) {
			return ee.code
		}
		return 1
	}
	return 0
}

func newRootCommand() *cobra.Command {
	name := logger.CurrentRunnerName()
	opts := &cliOptions{}

	cmd := &cobra.Command{
		Use:           fmt.Sprintf("%s [flags] <tasklist>", name),
		Short:         "Batch runner for grouped pipeline task lists",
		SilenceErrors: true,
		SilenceUsage:  true,
		Args:          cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.Version {
				fmt.Printf("%s version %s\n", name, version)
				return nil
			}
			if opts.Cleanup {
				code := runCleanupMode()
				if code == 0 {
					return nil
				}
				return exitError{code: code}
			}

			exitCode := runWithLoggerAndCleanup(func() int {
				v, err := config.NewViper(opts.ConfigFile)
				if err != nil {
					logError(err.Error())
					return 1
				}
				job, err := buildJob(cmd, opts, v)
				if err != nil {
					logError(err.Error())
					return 1
				}
				if len(args) != 1 {
					logError("exactly one task list path required (use - for stdin)")
					return 1
				}

				logInfo("Runner started")
				specs, err := loadTaskList(args[0], job.Delimiter)
				if err != nil {
					logError(err.Error())
					return 1
				}
				backend, err := archive.Select(job.ArchiveBackend, job.ArchiveRoot)
				if err != nil {
					logError(err.Error())
					return 1
				}
				logInfo(fmt.Sprintf("Parsed task list: tasks=%d, groups=%d, archive=%s, transfer=%s",
					len(specs), len(job.Groups), backend.Name(), job.TransferOutput))

				sched := executor.NewScheduler(job, backend)
				return sched.Run(specs)
			})

			if exitCode == 0 {
				return nil
			}
			return exitError{code: exitCode}
		},
	}
	cmd.CompletionOptions.DisableDefaultCmd = true

	addRootFlags(cmd.Flags(), opts)
	cmd.AddCommand(newVersionCommand(name), newCleanupCommand())

	return cmd
}

func addRootFlags(fs *pflag.FlagSet, opts *cliOptions) {
	fs.StringVar(&opts.ConfigFile, "config", "", "Config file path (default: $HOME/.pipejob/config.*)")
	fs.BoolVarP(&opts.Version, "version", "v", false, "Print version and exit")
	fs.BoolVar(&opts.Cleanup, "cleanup", false, "Clean up old logs and exit")

	fs.StringVar(&opts.Root, "root", "", "Job scratch directory (default: working directory)")
	fs.StringVar(&opts.Delimiter, "delimiter", "", "Task list field delimiter (default: comma)")
	fs.BoolVar(&opts.KeepGoing, "keep-going", false, "Keep running remaining tasks after a failure")

	fs.StringVar(&opts.ArchiveBackend, "archive", "", "Archive backend (never, local)")
	fs.StringVar(&opts.ArchiveRoot, "archive-root", "", "Archive root directory for the local backend")
	fs.StringVar(&opts.TransferOutput, "transfer-output", "", "When to ship outputs: never, task or job")
	fs.StringVar(&opts.JunkTarball, "junk-tarball", "", "Name of the end-of-job catch-all tarball")
}

// buildJob folds explicit CLI flags over the configuration file.
func buildJob(cmd *cobra.Command, opts *cliOptions, v *viper.Viper) (*config.Job, error) {
	job, err := config.LoadJob(v)
	if err != nil {
		return nil, err
	}

	if cmd.Flags().Changed("root") {
		job.Root = opts.Root
	}
	if cmd.Flags().Changed("delimiter") {
		job.Delimiter = opts.Delimiter
	}
	if cmd.Flags().Changed("keep-going") {
		job.StopOnFailure = !opts.KeepGoing
	}
	if cmd.Flags().Changed("archive") {
		job.ArchiveBackend = opts.ArchiveBackend
	}
	if cmd.Flags().Changed("archive-root") {
		job.ArchiveRoot = opts.ArchiveRoot
	}
	if cmd.Flags().Changed("transfer-output") {
		job.TransferOutput = opts.TransferOutput
	}
	if cmd.Flags().Changed("junk-tarball") {
		job.JunkTarball = opts.JunkTarball
	}

	if job.Root == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("resolve working directory: %w", err)
		}
		job.Root = wd
	}
	return job, nil
}

func loadTaskList(path, delim string) ([]executor.TaskSpec, error) {
	if path == "-" {
		return executor.ParseTaskList(stdinReader, delim)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open task list: %w", err)
	}
	defer f.Close()
	return executor.ParseTaskList(f, delim)
}

func newVersionCommand(name string) *cobra.Command {
	return &cobra.Command{
		Use:           "version",
		Short:         "Print version and exit",
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Printf("%s version %s\n", name, version)
			return nil
		},
	}
}

func newCleanupCommand() *cobra.Command {
	return &cobra.Command{
		Use:           "cleanup",
		Short:         "Clean up old logs and exit",
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			code := runCleanupMode()
			if code == 0 {
				return nil
			}
			return exitError{code: code}
		},
	}
}

func runCleanupMode() int {
	stats, err := cleanupOldLogs()
	fmt.Printf("Scanned %d log files: deleted %d, kept %d\n", stats.Scanned, stats.Deleted, stats.Kept)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: cleanup: %v\n", err)
		return 1
	}
	return 0
}

func runWithLoggerAndCleanup(fn func() int) (exitCode int) {
	log, err := NewLogger()
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: failed to initialize logger: %v\n", err)
		return 1
	}
	setLogger(log)
	executor.SetLogFuncs(logInfo, logWarn, logError)
	archive.SetLogFuncs(logWarn, logError)

	defer func() {
		log := activeLogger()
		if log != nil {
			log.Flush()
		}
		if err := closeLogger(); err != nil {
			fmt.Fprintf(os.Stderr, "ERROR: failed to close logger: %v\n", err)
		}
		if log == nil {
			return
		}

		if exitCode != 0 {
			if entries := log.ExtractRecentErrors(10); len(entries) > 0 {
				fmt.Fprintln(os.Stderr, "\n=== Recent Errors ===")
				for _, entry := range entries {
					fmt.Fprintln(os.Stderr, entry)
				}
				fmt.Fprintf(os.Stderr, "Log file: %s (deleted)\n", log.Path())
			}
		}
		_ = log.RemoveLogFile()
	}()

	// Clean up stale logs from previous runs.
	scheduleStartupCleanup()

	return fn()
}

func scheduleStartupCleanup() {
	go func() {
		if _, err := cleanupOldLogs(); err != nil {
			logWarn(fmt.Sprintf("startup log cleanup: %v", err))
		}
	}()
}

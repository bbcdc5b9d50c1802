package main

import (
	"fmt"
	"os"
	"strconv"
	"time"

	json "github.com/goccy/go-json"
	"github.com/spf13/cast"
	"github.com/spf13/cobra"

	"ytmeta/internal"
	"ytmeta/internal/di"
	"ytmeta/internal/report"
	"ytmeta/internal/structures"
)

var flags structures.CliFlags

var rootCmd = &cobra.Command{
	Use:           "ytmeta",
	Short:         "YouTube playlist metadata archiver",
	Long:          "Keeps a history of playlist video metadata and renders point-in-time reports from it.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func main() {
	addPersistentFlags()
	registerCommands()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func addPersistentFlags() {
	rootCmd.PersistentFlags().StringVarP(&flags.ConfigPath, "config", "c", "", "path to YAML config")
	rootCmd.PersistentFlags().StringVar(&flags.Root, "root", "", "root data directory (overrides config)")
	rootCmd.PersistentFlags().BoolVarP(&flags.DebugMode, "debug", "d", false, "debug mode, mirrors logs to the console")
}

func registerCommands() {
	rootCmd.AddCommand(ingestCmd())
	rootCmd.AddCommand(reportCmd())
	rootCmd.AddCommand(showCmd())
	rootCmd.AddCommand(serveCmd())
}

// parseTime accepts epoch seconds or any date format cast understands, in local time.
func parseTime(s string) (int64, error) {
	if s == "" {
		return 0, nil
	}
	if ts, err := strconv.ParseInt(s, 10, 64); err == nil {
		return ts, nil
	}
	t, err := cast.ToTimeInDefaultLocationE(s, time.Local)
	if err != nil {
		return 0, fmt.Errorf("invalid time %q: %w", s, err)
	}
	return t.Unix(), nil
}

func withToolkit(fn func(tk *internal.Toolkit) error) error {
	tk, err := di.InitToolkit(&flags)
	if err != nil {
		return err
	}
	defer tk.Close()
	return fn(tk)
}

func ingestCmd() *cobra.Command {
	var at, label string
	var noBackup bool
	cmd := &cobra.Command{
		Use:   "ingest <full-dump.json>",
		Short: "Merge a full dump into the local database",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ts, err := parseTime(at)
			if err != nil {
				return err
			}
			return withToolkit(func(tk *internal.Toolkit) error {
				if noBackup {
					tk.Config.Persistence.Backup = false
				}
				summary, err := tk.Ingest(args[0], ts, label)
				if err != nil {
					return err
				}
				r := summary.Result
				fmt.Fprintf(cmd.OutOrStdout(), "Merged at %d: %d created, %d bumped, %d appended, %d skipped, %d dropped\nRefs dump: %s\n",
					summary.Timestamp, r.Created, r.Bumped, r.Appended, r.Skipped, r.Dropped, summary.RefsDump)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&at, "time", "", "batch time (epoch seconds or date), defaults to the dump time")
	cmd.Flags().StringVar(&label, "label", "account", "label of the refs dump file")
	cmd.Flags().BoolVar(&noBackup, "nobackup", false, "don't back up the database before modifying it")
	return cmd
}

func reportCmd() *cobra.Command {
	var format, out string
	cmd := &cobra.Command{
		Use:   "report <refs-dump.json>",
		Short: "Render playlists of a dump as they were at dump time",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := report.ParseFormat(format)
			if err != nil {
				return err
			}
			return withToolkit(func(tk *internal.Toolkit) error {
				return tk.Report(args[0], f, out, cmd.OutOrStdout())
			})
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", string(report.FormatText), "output format: text, html or json")
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file; html without it writes one file per playlist")
	return cmd
}

func showCmd() *cobra.Command {
	var at string
	cmd := &cobra.Command{
		Use:   "show <video-id>",
		Short: "Print the snapshot of a video at a point in time",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ts, err := parseTime(at)
			if err != nil {
				return err
			}
			if at == "" {
				ts = time.Now().Unix()
			}
			return withToolkit(func(tk *internal.Toolkit) error {
				snap, err := tk.Show(args[0], ts)
				if err != nil {
					return err
				}
				data, err := json.MarshalIndent(snap, "", "\t")
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), string(data))
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&at, "at", "", "point in time (epoch seconds or date), defaults to now")
	return cmd
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the snapshot and ingest HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := di.InitApp(&flags)
			if err != nil {
				return err
			}
			return app.Run()
		},
	}
}

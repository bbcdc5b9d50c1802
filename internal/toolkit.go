package internal

import (
	"fmt"
	"io"
	"os"

	"ytmeta/internal/archive"
	"ytmeta/internal/archive/interfaces"
	"ytmeta/internal/models"
	"ytmeta/internal/providers"
	"ytmeta/internal/report"
	"ytmeta/internal/services"
	"ytmeta/internal/structures"
)

// Toolkit backs the one-shot CLI commands. Unlike App it never serves HTTP.
type Toolkit struct {
	Config     *structures.Config
	Logger     providers.Logger
	Service    services.HistoryServiceInterface
	Scheduler  interfaces.SchedulerInterface
	DumpWriter *archive.DumpWriter
	Reporter   *report.Reporter
	Metrics    providers.MetricsProviderInterface
}

func NewToolkit(conf *structures.Config, logger providers.Logger, service services.HistoryServiceInterface, scheduler interfaces.SchedulerInterface, dumpWriter *archive.DumpWriter, reporter *report.Reporter, metrics providers.MetricsProviderInterface) *Toolkit {
	return &Toolkit{
		Config:     conf,
		Logger:     logger,
		Service:    service,
		Scheduler:  scheduler,
		DumpWriter: dumpWriter,
		Reporter:   reporter,
		Metrics:    metrics,
	}
}

type IngestSummary struct {
	Timestamp int64
	Result    models.MergeResult
	RefsDump  string
}

// Ingest merges a full dump file into the database and saves it. timestamp
// overrides the dump time when positive. The refs part of the dump is kept
// in the dumps dir under label.
func (tk *Toolkit) Ingest(path string, timestamp int64, label string) (*IngestSummary, error) {
	dump, err := archive.ReadDump(path)
	if err != nil {
		return nil, err
	}
	if timestamp > 0 {
		dump.DumpTime = timestamp
	}
	if dump.DumpTime <= 0 {
		return nil, fmt.Errorf("%s: %q missing, pass --time", path, models.KeyDumpTime)
	}

	if err = tk.Scheduler.Restore(); err != nil {
		return nil, err
	}

	summary := &IngestSummary{Timestamp: dump.DumpTime}
	if summary.RefsDump, err = tk.DumpWriter.Write(dump, label); err != nil {
		return nil, err
	}

	summary.Result = tk.Service.Ingest(dump, dump.DumpTime)
	tk.Metrics.ObserveMerge(summary.Result)

	if err = tk.Scheduler.Persist(); err != nil {
		return nil, err
	}
	return summary, nil
}

// Report renders a refs dump against the database. With FormatHTML and an
// empty out, one file per playlist goes to the html dir; otherwise output
// goes to out or, when empty, to w.
func (tk *Toolkit) Report(dumpPath string, format report.Format, out string, w io.Writer) error {
	dump, err := archive.ReadDump(dumpPath)
	if err != nil {
		return err
	}
	if dump.DumpTime <= 0 {
		return fmt.Errorf("%s: %q missing", dumpPath, models.KeyDumpTime)
	}
	if dump.Playlists == nil {
		return fmt.Errorf("%s: %q missing", dumpPath, models.KeyPlaylists)
	}
	if err = tk.Scheduler.Restore(); err != nil {
		return err
	}

	reports := tk.Reporter.Build(tk.Service.GetStore(), dump)

	if format == report.FormatHTML && out == "" {
		_, err = tk.Reporter.WriteHTMLFiles(tk.Config.Archive.HtmlDir, reports)
		return err
	}

	if out != "" {
		f, err := os.Create(out)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}
	return report.Render(w, format, reports)
}

// Show resolves one video at the given time.
func (tk *Toolkit) Show(id string, at int64) (*models.Snapshot, error) {
	if err := tk.Scheduler.Restore(); err != nil {
		return nil, err
	}
	snap, ok := tk.Service.Snapshot(id, at)
	if !ok {
		return nil, fmt.Errorf("cannot find in database: %s", id)
	}
	tk.Metrics.IncResolve(snap.Found())
	return snap, nil
}

func (tk *Toolkit) Close() {
	tk.Scheduler.Close()
	tk.Logger.Close()
}

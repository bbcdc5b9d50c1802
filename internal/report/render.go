package report

import (
	"fmt"
	"html"
	"io"
	"os"
	"path/filepath"
	"strings"

	json "github.com/goccy/go-json"
	"github.com/jedib0t/go-pretty/v6/table"

	"ytmeta/internal/providers"
)

type Format string

const (
	FormatText Format = "text"
	FormatHTML Format = "html"
	FormatJSON Format = "json"
)

func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case FormatText, FormatHTML, FormatJSON:
		return f, nil
	}
	return "", fmt.Errorf("unknown report format %q, expected text, html or json", s)
}

// Render writes all reports to w. HTML output holds one page per playlist, concatenated.
func Render(w io.Writer, format Format, reports []*PlaylistReport) error {
	switch format {
	case FormatJSON:
		return RenderJSON(w, reports)
	case FormatHTML:
		for _, pr := range reports {
			if err := RenderHTML(w, pr); err != nil {
				return err
			}
		}
		return nil
	default:
		RenderText(w, reports)
		return nil
	}
}

func RenderJSON(w io.Writer, reports []*PlaylistReport) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "\t")
	return enc.Encode(reports)
}

// RenderText prints one terminal table per playlist with colored statuses.
func RenderText(w io.Writer, reports []*PlaylistReport) {
	for _, pr := range reports {
		tw := table.NewWriter()
		tw.SetOutputMirror(w)
		tw.SetStyle(table.StyleLight)
		tw.SetTitle("%s  (dump time %s)", pr.Title, FormatTimestamp(pr.DumpTime))
		tw.AppendHeader(table.Row{"#", "ID", "Title", "Channel", "Duration", "Status", "Published", "Added", "Snapshot"})
		tw.SetColumnConfigs([]table.ColumnConfig{
			{Number: 3, WidthMax: 48},
			{Number: 4, WidthMax: 24},
		})

		for i, row := range pr.Videos {
			duration := ""
			if row.Duration != nil {
				duration = FormatDuration(*row.Duration)
			}
			status := row.Status
			if status != "" {
				status = colorOf(status).term.Sprint(status)
			}
			tw.AppendRow(table.Row{
				i + 1, row.ID, row.Title, row.ChannelName, duration, status,
				optTimestamp(row.Published), optTimestamp(row.AddedToPlaylist), snapshotLabel(row),
			})
		}
		tw.Render()
		fmt.Fprintf(w, "Contents status: %s\n\n", countsLine(pr.StatusCounts))
	}
}

// RenderHTML writes a standalone page for one playlist.
func RenderHTML(w io.Writer, pr *PlaylistReport) error {
	title := html.EscapeString(pr.Title)

	var b strings.Builder
	fmt.Fprintf(&b, "<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n<title>%s</title>\n</head>\n<body>\n", title)
	fmt.Fprintf(&b, "<b>Dump time</b>: %s", FormatTimestamp(pr.DumpTime))
	b.WriteString("<br />\n<b>Title</b>: " + link(pr.URL, title))
	if pr.ChannelName != "" {
		b.WriteString("<br />\n<b>Channel</b>: " + link(pr.ChannelURL, html.EscapeString(pr.ChannelName)))
	}
	if pr.Status != "" {
		b.WriteString("<br />\n<b>Status</b>: " + coloredStatus(pr.Status))
	}
	if pr.Description != "" {
		b.WriteString("<br />\n<b>Description</b>: " + multiline(pr.Description))
	}
	b.WriteString("<br />\n<b>Contents status</b>:")
	for _, c := range pr.StatusCounts {
		fmt.Fprintf(&b, "<br />\n%s: %d", c.Status, c.Count)
	}
	b.WriteString("\n")

	tw := table.NewWriter()
	tw.Style().HTML = table.HTMLOptions{
		CSSClass:    "videos",
		EmptyColumn: "&nbsp;",
		EscapeText:  false,
		Newline:     "<br />",
	}
	tw.AppendHeader(table.Row{"Metadata", "Description"})
	for _, row := range pr.Videos {
		tw.AppendRow(table.Row{videoMetadataHTML(row), multiline(row.Description)})
	}
	b.WriteString(tw.RenderHTML())
	b.WriteString("\n</body>\n</html>\n")

	_, err := io.WriteString(w, b.String())
	return err
}

func videoMetadataHTML(row *VideoRow) string {
	lines := []string{"<b>Title</b>: " + link(row.URL, html.EscapeString(row.Title))}
	if row.ChannelName != "" {
		lines = append(lines, "<b>Channel</b>: "+link(row.ChannelURL, html.EscapeString(row.ChannelName)))
	}
	if row.Duration != nil {
		lines = append(lines, "<b>Duration</b>: "+FormatDuration(*row.Duration))
	}
	if row.Status != "" {
		lines = append(lines, "<b>Status</b>: "+coloredStatus(row.Status))
	}
	lines = append(lines, "<b>Thumbs</b>: "+thumbLinks(row.ID))
	if row.Published != nil {
		lines = append(lines, "<b>Published</b>: "+FormatTimestamp(*row.Published))
	}
	if row.AddedToPlaylist != nil {
		lines = append(lines, "<b>Added to playlist</b>: "+FormatTimestamp(*row.AddedToPlaylist))
	}
	if label := snapshotLabel(row); label != "" {
		lines = append(lines, "<b>Snapshot taken</b>: "+label)
	}
	return strings.Join(lines, "<br />")
}

func thumbLinks(id string) string {
	urls := ThumbnailURLs(id)
	links := make([]string, len(urls))
	for i, u := range urls {
		links[i] = link(u, fmt.Sprintf("[%d]", i+1))
	}
	return strings.Join(links, " ")
}

func link(url, label string) string {
	if url == "" {
		return label
	}
	return fmt.Sprintf("<a href=\"%s\">%s</a>", html.EscapeString(url), label)
}

func coloredStatus(status string) string {
	return fmt.Sprintf("<span style=\"color: %s;\">%s</span>", colorOf(status).hex, html.EscapeString(status))
}

func multiline(s string) string {
	return strings.ReplaceAll(html.EscapeString(squashNewlines(s)), "\n", "<br />")
}

// WriteHTMLFiles writes <dir>/<sanitized title>.html for every playlist and
// returns the written paths.
func (r *Reporter) WriteHTMLFiles(dir string, reports []*PlaylistReport) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create html dir: %w", err)
	}
	r.logger.Infof(providers.TypeReport, "Writing to %s", dir)

	paths := make([]string, 0, len(reports))
	for _, pr := range reports {
		path := filepath.Join(dir, SanitizeFilename(pr.Title)+".html")
		r.logger.Infof(providers.TypeReport, "Processing %s", pr.Title)

		f, err := os.Create(path)
		if err != nil {
			return paths, err
		}
		err = RenderHTML(f, pr)
		if cerr := f.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			return paths, fmt.Errorf("write %s: %w", path, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}

package report

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/text"

	"ytmeta/internal/models"
)

const DateLayout = "2006-01-02 15:04:05"

var (
	reSanitize       = regexp.MustCompile(`[^A-Za-z0-9_\-[\]()\.!&+]`)
	reMultiNewline   = regexp.MustCompile(`\n+`)
	defaultStatusHex = "#D0D"
)

type statusColor struct {
	hex  string
	term text.Colors
}

var statusColors = map[models.StatusKind]statusColor{
	models.StatusUnspecified:      {hex: defaultStatusHex, term: text.Colors{text.FgHiMagenta}},
	models.StatusPrivate:          {hex: "#C00", term: text.Colors{text.FgRed}},
	models.StatusUnlisted:         {hex: "#D70", term: text.Colors{text.FgYellow}},
	models.StatusPublic:           {hex: "#0C0", term: text.Colors{text.FgGreen}},
	models.StatusPublicOrUnlisted: {hex: "#6B6", term: text.Colors{text.FgHiGreen}},
}

func colorOf(status string) statusColor {
	if c, ok := statusColors[models.StatusKind(status)]; ok {
		return c
	}
	return statusColors[models.StatusUnspecified]
}

// SanitizeFilename replaces everything outside a conservative charset with '_'.
func SanitizeFilename(title string) string {
	return reSanitize.ReplaceAllString(title, "_")
}

func FormatTimestamp(ts int64) string {
	return time.Unix(ts, 0).Format(DateLayout)
}

// FormatDuration renders seconds as m:ss, or h:mm:ss from one hour up.
func FormatDuration(seconds int64) string {
	minutes, seconds := seconds/60, seconds%60
	hours, minutes := minutes/60, minutes%60
	if hours > 0 {
		return fmt.Sprintf("%d:%02d:%02d", hours, minutes, seconds)
	}
	return fmt.Sprintf("%d:%02d", minutes, seconds)
}

func squashNewlines(s string) string {
	return reMultiNewline.ReplaceAllString(s, "\n")
}

func optTimestamp(ts *int64) string {
	if ts == nil {
		return ""
	}
	return FormatTimestamp(*ts)
}

func snapshotLabel(row *VideoRow) string {
	if row.SnapshotTime == nil {
		return ""
	}
	label := FormatTimestamp(*row.SnapshotTime)
	if row.AtDumpTime {
		label += " (dump time)"
	}
	return label
}

func countsLine(counts []StatusCount) string {
	parts := make([]string, 0, len(counts))
	for _, c := range counts {
		parts = append(parts, fmt.Sprintf("%s: %d", c.Status, c.Count))
	}
	return strings.Join(parts, ", ")
}

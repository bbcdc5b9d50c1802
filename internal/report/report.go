package report

import (
	"ytmeta/internal/models"
	"ytmeta/internal/providers"
)

const (
	UnknownName = "???"

	videoURL    = "https://www.youtube.com/watch?v="
	playlistURL = "https://www.youtube.com/playlist?list="
	channelURL  = "https://www.youtube.com/channel/"
	thumbURL    = "https://i.ytimg.com/vi/"
)

// thumbVariants are the thumbnail sizes served for every video, smallest first.
var thumbVariants = []string{"default", "mqdefault", "hqdefault", "sddefault", "maxresdefault"}

// ThumbnailURLs lists the hosted thumbnails of a video, smallest first.
func ThumbnailURLs(id string) []string {
	urls := make([]string, len(thumbVariants))
	for i, v := range thumbVariants {
		urls[i] = thumbURL + id + "/" + v + ".jpg"
	}
	return urls
}

// VideoRow is one video of a playlist as it looked at dump time.
type VideoRow struct {
	ID              string `json:"id"`
	URL             string `json:"url"`
	Title           string `json:"title"`
	ChannelName     string `json:"channelName,omitempty"`
	ChannelURL      string `json:"channelUrl,omitempty"`
	Duration        *int64 `json:"duration,omitempty"`
	Status          string `json:"status,omitempty"`
	Published       *int64 `json:"published,omitempty"`
	AddedToPlaylist *int64 `json:"addedToPlaylist,omitempty"`
	SnapshotTime    *int64 `json:"snapshotTime,omitempty"`
	AtDumpTime      bool   `json:"atDumpTime,omitempty"`
	Description     string `json:"description,omitempty"`
	InStore         bool   `json:"inStore"`
}

type StatusCount struct {
	Status models.StatusKind `json:"status"`
	Count  int               `json:"count"`
}

type PlaylistReport struct {
	DumpTime     int64         `json:"dumpTime"`
	ID           string        `json:"id,omitempty"`
	URL          string        `json:"url,omitempty"`
	Title        string        `json:"title"`
	ChannelName  string        `json:"channelName,omitempty"`
	ChannelURL   string        `json:"channelUrl,omitempty"`
	Status       string        `json:"status,omitempty"`
	Description  string        `json:"description,omitempty"`
	Videos       []*VideoRow   `json:"videos"`
	StatusCounts []StatusCount `json:"statusCounts"`
}

type Reporter struct {
	logger providers.Logger
}

func NewReporter(logger providers.Logger) *Reporter {
	return &Reporter{logger: logger}
}

// Build resolves every video of a refs dump at the dump time.
func (r *Reporter) Build(store *models.Store, dump *models.Dump) []*PlaylistReport {
	reports := make([]*PlaylistReport, 0, len(dump.Playlists))
	for _, p := range dump.Playlists {
		if p == nil {
			continue
		}
		if !p.HasVideos() {
			r.logger.Warnf(providers.TypeReport, "%q missing from playlist %q, skipping", models.KeyVideos, p.Title)
			continue
		}
		reports = append(reports, r.buildPlaylist(store, dump.DumpTime, p))
	}
	return reports
}

func (r *Reporter) buildPlaylist(store *models.Store, dumpTime int64, p *models.Playlist) *PlaylistReport {
	pr := &PlaylistReport{
		DumpTime:    dumpTime,
		ID:          p.ID,
		Title:       p.Title,
		ChannelName: p.ChannelName,
		Status:      string(p.Status),
		Description: p.Description,
		Videos:      make([]*VideoRow, 0, len(p.Videos)),
	}
	if pr.Title == "" {
		pr.Title = UnknownName
	}
	if p.ID != "" {
		pr.URL = playlistURL + p.ID
	}
	if p.ChannelID != "" {
		pr.ChannelURL = channelURL + p.ChannelID
	}

	counts := make(map[models.StatusKind]int, len(models.KnownStatuses))
	for i, video := range p.Videos {
		id, ok := video.String(models.KeyID)
		if !ok {
			r.logger.Warnf(providers.TypeReport, "Video #%d of %q missing id, skipping", i, pr.Title)
			continue
		}

		row := &VideoRow{ID: id, URL: videoURL + id, Title: UnknownName}
		if added, ok := video.Int(models.KeyAddedTime); ok {
			row.AddedToPlaylist = &added
		}

		snap, ok := store.Resolve(id, dumpTime)
		if !ok {
			r.logger.Warnf(providers.TypeReport, "Cannot find in database: %s", id)
		} else {
			row.InStore = true
			fillRow(row, snap, dumpTime)
		}

		status := models.StatusKind(row.Status)
		if status.IsKnown() {
			counts[status]++
		} else {
			counts[models.StatusUnspecified]++
		}
		pr.Videos = append(pr.Videos, row)
	}

	for _, status := range models.KnownStatuses {
		if counts[status] > 0 {
			pr.StatusCounts = append(pr.StatusCounts, StatusCount{Status: status, Count: counts[status]})
		}
	}
	return pr
}

func fillRow(row *VideoRow, snap *models.Snapshot, dumpTime int64) {
	meta := snap.Record
	if title, ok := meta.String(models.KeyTitle); ok {
		row.Title = title
	}
	row.ChannelName, _ = meta.String(models.KeyChannelName)
	if channelID, ok := meta.String(models.KeyChannelID); ok {
		row.ChannelURL = channelURL + channelID
		if row.ChannelName == "" {
			row.ChannelName = UnknownName
		}
	}
	if d, ok := meta.Int(models.KeyDuration); ok {
		row.Duration = &d
	}
	if status, ok := meta.Status(); ok {
		row.Status = string(status)
	}
	if published, ok := meta.Int(models.KeyPublished); ok {
		row.Published = &published
	}
	row.Description, _ = meta.String(models.KeyDescription)
	if snap.Found() {
		ts := *snap.Timestamp
		row.SnapshotTime = &ts
		row.AtDumpTime = ts == dumpTime
	}
}

package models

// Playlist is one playlist of a dump. In a full dump Videos hold complete
// metadata; in a refs dump only the id and the time the video was added.
type Playlist struct {
	ID          string        `json:"id,omitempty"`
	Title       string        `json:"title,omitempty"`
	ChannelName string        `json:"channelName,omitempty"`
	ChannelID   string        `json:"channelId,omitempty"`
	Status      StatusKind    `json:"status,omitempty"`
	Description string        `json:"description,omitempty"`
	Videos      []StateRecord `json:"videos"`
}

// HasVideos is false when the playlist came without a videos list at all.
func (p *Playlist) HasVideos() bool {
	return p.Videos != nil
}

// Dump is the result of one fetch run. DumpTime is the batch timestamp.
type Dump struct {
	DumpTime  int64       `json:"dumpTime"`
	Playlists []*Playlist `json:"playlists"`
}

// Batch turns a full dump into merge observations. The id becomes the entity key
// and addedToPlaylist is dropped since it belongs to the playlist, not the video.
// Videos without a string id yield an observation with an empty entity id.
func (d *Dump) Batch() []Observation {
	var batch []Observation
	for _, p := range d.Playlists {
		if p == nil {
			continue
		}
		for _, video := range p.Videos {
			id, _ := video.String(KeyID)
			rec := video.Clone()
			delete(rec, KeyID)
			delete(rec, KeyAddedTime)
			batch = append(batch, Observation{EntityID: id, Record: rec})
		}
	}
	return batch
}

// Refs returns a copy of the dump whose videos only keep id and addedToPlaylist.
func (d *Dump) Refs() *Dump {
	out := &Dump{DumpTime: d.DumpTime, Playlists: make([]*Playlist, 0, len(d.Playlists))}
	for _, p := range d.Playlists {
		if p == nil {
			continue
		}
		ref := *p
		ref.Videos = nil
		if p.HasVideos() {
			ref.Videos = make([]StateRecord, 0, len(p.Videos))
		}
		for _, video := range p.Videos {
			minimal := StateRecord{}
			if id, ok := video[KeyID]; ok {
				minimal[KeyID] = id
			}
			if added, ok := video[KeyAddedTime]; ok {
				minimal[KeyAddedTime] = added
			}
			ref.Videos = append(ref.Videos, minimal)
		}
		out.Playlists = append(out.Playlists, &ref)
	}
	return out
}

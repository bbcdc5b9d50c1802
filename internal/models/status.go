package models

// StatusKind is the privacy status reported for a video or playlist.
type StatusKind string

const (
	StatusUnspecified      StatusKind = "privacyStatusUnspecified"
	StatusPrivate          StatusKind = "private"
	StatusUnlisted         StatusKind = "unlisted"
	StatusPublic           StatusKind = "public"
	StatusPublicOrUnlisted StatusKind = "publicOrUnlisted"
)

// KnownStatuses is the fixed order used when counting statuses in reports.
var KnownStatuses = []StatusKind{
	StatusUnspecified,
	StatusPrivate,
	StatusUnlisted,
	StatusPublic,
	StatusPublicOrUnlisted,
}

// IsUseful reports whether a record with this status carries trustworthy metadata.
// Private, unspecified and unknown statuses mean the other fields are unreliable or absent.
func (s StatusKind) IsUseful() bool {
	switch s {
	case StatusUnlisted, StatusPublic, StatusPublicOrUnlisted:
		return true
	}
	return false
}

func (s StatusKind) IsKnown() bool {
	for _, k := range KnownStatuses {
		if s == k {
			return true
		}
	}
	return false
}

package model

// Link statuses. Transitions are admin-driven only; expiration is a
// read-time check, never a stored transition.
const (
	StatusActive   = "active"
	StatusPaused   = "paused"
	StatusDisabled = "disabled"
)

// ValidStatus reports whether s is one of the recognised link statuses.
func ValidStatus(s string) bool {
	return s == StatusActive || s == StatusPaused || s == StatusDisabled
}

// Link describes the core short-link entity stored in Postgres.
// Timestamps are Unix milliseconds to match the wire format of the admin API.
type Link struct {
	Slug         string `db:"slug" gorm:"primaryKey;size:64" json:"slug"`
	URL          string `db:"url" gorm:"type:text;not null" json:"url"`
	CreatedAt    int64  `db:"created_at" gorm:"not null" json:"created_at"`
	ExpiresAt    *int64 `db:"expires_at" gorm:"index" json:"expires_at"`
	Status       string `db:"status" gorm:"size:16;not null;default:active" json:"status"`
	Interstitial bool   `db:"interstitial" gorm:"not null;default:false" json:"interstitial"`
	VisitCount   int64  `db:"visit_count" gorm:"not null;default:0" json:"visit_count"`
	CreatorIP    string `db:"creator_ip" gorm:"size:64" json:"creator_ip"`
}

// Expired reports whether the link's expiry has passed at the given
// Unix-millisecond instant. Links without an expiry never expire.
func (l *Link) Expired(nowMillis int64) bool {
	return l.ExpiresAt != nil && *l.ExpiresAt <= nowMillis
}

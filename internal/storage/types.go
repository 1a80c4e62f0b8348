package storage

// Credentials holds the OAuth token pair and its expiry as returned by the
// provider. Either both tokens are set (logged in) or the record is absent
// (logged out); a record with one token and not the other is invalid.
type Credentials struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresAt    int64  `json:"expires_at"` // epoch seconds, provider clock
}

// Valid reports whether the record satisfies the both-or-neither invariant.
func (c Credentials) Valid() bool {
	return c.AccessToken != "" && c.RefreshToken != ""
}

// SyncSnapshot is the durable artifact of a successful sync: the per-day
// intensity levels and the time they were computed. It is fully replaced on
// every sync, never merged.
type SyncSnapshot struct {
	// Levels maps a calendar day key ("YYYY-MM-DD") to an intensity level
	// in 0..4.
	Levels map[string]int `json:"levels"`
	// LastSync is the completion time of the sync, epoch seconds.
	LastSync int64 `json:"last_sync"`
}

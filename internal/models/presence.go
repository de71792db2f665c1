package models

// Presence tracks one anonymous browser session. Rows are upserted by
// session id on every heartbeat and never deleted, so the table doubles as
// an all-time visitor log.
type Presence struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	SessionID string `gorm:"uniqueIndex;not null" json:"sessionId"`
	LastSeen  int64  `gorm:"not null;index" json:"lastSeen"`
}

// PresenceStats is the aggregate returned by the stats query.
type PresenceStats struct {
	TotalSessions int64 `json:"totalSessions"`
	ActiveUsers   int64 `json:"activeUsers"`
}

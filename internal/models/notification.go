package models

import "time"

// Notification informs a user about a finished download.
type Notification struct {
	ID          string    `db:"id" json:"id"`
	UserID      string    `db:"user_id" json:"user_id"`
	TorrentID   string    `db:"torrent_id" json:"torrent_id"`
	TorrentName string    `db:"torrent_name" json:"torrent_name"`
	Message     string    `db:"message" json:"message"`
	Read        bool      `db:"read" json:"read"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

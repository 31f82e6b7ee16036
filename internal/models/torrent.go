package models

import "time"

// Torrent represents a torrent tracked on behalf of a user. Live transfer
// state lives in qBittorrent; only ownership and identity are persisted.
type Torrent struct {
	ID        string    `db:"id" json:"id"`
	UserID    string    `db:"user_id" json:"user_id"`
	Username  string    `db:"username" json:"username"`
	Name      string    `db:"name" json:"name"`
	Magnet    string    `db:"magnet" json:"magnet"`
	Hash      string    `db:"hash" json:"hash"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// TorrentStats aggregates counts and transfer speeds for the dashboard.
type TorrentStats struct {
	TotalTorrents      int     `json:"total_torrents"`
	ActiveTorrents     int     `json:"active_torrents"`
	CompletedTorrents  int     `json:"completed_torrents"`
	TotalDownloadSpeed float64 `json:"total_download_speed"`
	TotalUploadSpeed   float64 `json:"total_upload_speed"`
}

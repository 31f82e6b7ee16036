package dto

import "time"

// AddMagnetRequest adds a torrent from a magnet URI.
type AddMagnetRequest struct {
	Name   string `json:"name" validate:"required"`
	Magnet string `json:"magnet" validate:"required"`
}

// TorrentItem merges the persisted ownership record with live transfer
// state fetched from qBittorrent. Live fields are zero when the client is
// unreachable.
type TorrentItem struct {
	ID            string    `json:"id"`
	UserID        string    `json:"user_id"`
	Username      string    `json:"username"`
	Name          string    `json:"name"`
	Magnet        string    `json:"magnet"`
	Hash          string    `json:"hash"`
	Status        string    `json:"status"`
	Progress      float64   `json:"progress"`
	DownloadSpeed float64   `json:"download_speed"`
	UploadSpeed   float64   `json:"upload_speed"`
	Size          int64     `json:"size"`
	Downloaded    int64     `json:"downloaded"`
	ETA           int64     `json:"eta"`
	CreatedAt     time.Time `json:"created_at"`
}

// TorrentFileItem describes one file inside a torrent.
type TorrentFileItem struct {
	Path     string  `json:"path"`
	Size     int64   `json:"size"`
	Progress float64 `json:"progress"`
}

// DownloadLinkRequest asks for a signed link to one file of a torrent.
type DownloadLinkRequest struct {
	FilePath string `json:"file_path" validate:"required"`
}

// Package qbit wraps the qBittorrent Web API client used by the torrent
// services. Session cookies and re-authentication are handled by the
// underlying library.
package qbit

import (
	"context"
	"fmt"

	"github.com/autobrr/go-qbittorrent"
	"go.uber.org/zap"

	"github.com/qbitmaster/qbitmaster-api/pkg/config"
)

// TorrentSnapshot is the live transfer state of one torrent.
type TorrentSnapshot struct {
	Hash          string
	Name          string
	State         string
	Progress      float64
	DownloadSpeed int64
	UploadSpeed   int64
	Size          int64
	Downloaded    int64
	ETA           int64
	SavePath      string
	ContentPath   string
}

// TransferSnapshot aggregates global transfer speeds.
type TransferSnapshot struct {
	DownloadSpeed int64
	UploadSpeed   int64
}

// FileInfo describes one file inside a torrent.
type FileInfo struct {
	Name     string
	Size     int64
	Progress float64
}

// Client wraps the qBittorrent API client.
type Client struct {
	client *qbittorrent.Client
	logger *zap.Logger
}

// NewClient builds a client from configuration. No connection is attempted
// here; call Login to verify credentials.
func NewClient(cfg config.QBittorrentConfig, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	client := qbittorrent.NewClient(qbittorrent.Config{
		Host:     cfg.Host,
		Username: cfg.Username,
		Password: cfg.Password,
	})
	return &Client{client: client, logger: logger}
}

// Login authenticates against the qBittorrent instance.
func (c *Client) Login(ctx context.Context) error {
	if err := c.client.LoginCtx(ctx); err != nil {
		return fmt.Errorf("qbittorrent login: %w", err)
	}
	return nil
}

// Torrents returns live state for all torrents known to qBittorrent.
func (c *Client) Torrents(ctx context.Context) ([]TorrentSnapshot, error) {
	torrents, err := c.client.GetTorrentsCtx(ctx, qbittorrent.TorrentFilterOptions{})
	if err != nil {
		return nil, fmt.Errorf("get torrents: %w", err)
	}

	c.logger.Debug("fetched torrents from qbittorrent", zap.Int("count", len(torrents)))

	snapshots := make([]TorrentSnapshot, 0, len(torrents))
	for _, t := range torrents {
		snapshots = append(snapshots, TorrentSnapshot{
			Hash:          t.Hash,
			Name:          t.Name,
			State:         string(t.State),
			Progress:      t.Progress,
			DownloadSpeed: t.DlSpeed,
			UploadSpeed:   t.UpSpeed,
			Size:          t.Size,
			Downloaded:    t.Downloaded,
			ETA:           t.ETA,
			SavePath:      t.SavePath,
			ContentPath:   t.ContentPath,
		})
	}
	return snapshots, nil
}

// AddMagnet submits a magnet URI for download.
func (c *Client) AddMagnet(ctx context.Context, magnet string) error {
	if err := c.client.AddTorrentFromUrlCtx(ctx, magnet, nil); err != nil {
		return fmt.Errorf("add magnet: %w", err)
	}
	return nil
}

// AddFile submits raw .torrent file content for download.
func (c *Client) AddFile(ctx context.Context, content []byte) error {
	if err := c.client.AddTorrentFromMemoryCtx(ctx, content, nil); err != nil {
		return fmt.Errorf("add torrent file: %w", err)
	}
	return nil
}

// Delete removes a torrent, optionally deleting downloaded files.
func (c *Client) Delete(ctx context.Context, hash string, deleteFiles bool) error {
	if err := c.client.DeleteTorrentsCtx(ctx, []string{hash}, deleteFiles); err != nil {
		return fmt.Errorf("delete torrent %s: %w", hash, err)
	}
	return nil
}

// Pause stops transfers for a torrent.
func (c *Client) Pause(ctx context.Context, hash string) error {
	if err := c.client.PauseCtx(ctx, []string{hash}); err != nil {
		return fmt.Errorf("pause torrent %s: %w", hash, err)
	}
	return nil
}

// Resume restarts transfers for a torrent.
func (c *Client) Resume(ctx context.Context, hash string) error {
	if err := c.client.ResumeCtx(ctx, []string{hash}); err != nil {
		return fmt.Errorf("resume torrent %s: %w", hash, err)
	}
	return nil
}

// TransferInfo returns the instance-wide transfer speeds.
func (c *Client) TransferInfo(ctx context.Context) (TransferSnapshot, error) {
	info, err := c.client.GetTransferInfoCtx(ctx)
	if err != nil {
		return TransferSnapshot{}, fmt.Errorf("get transfer info: %w", err)
	}
	return TransferSnapshot{
		DownloadSpeed: info.DlInfoSpeed,
		UploadSpeed:   info.UpInfoSpeed,
	}, nil
}

// Files lists the files inside a torrent.
func (c *Client) Files(ctx context.Context, hash string) ([]FileInfo, error) {
	files, err := c.client.GetFilesInformationCtx(ctx, hash)
	if err != nil {
		return nil, fmt.Errorf("get torrent files: %w", err)
	}

	var out []FileInfo
	if files != nil {
		for _, f := range *files {
			out = append(out, FileInfo{Name: f.Name, Size: f.Size, Progress: float64(f.Progress)})
		}
	}
	return out, nil
}

// Version returns the qBittorrent application version, doubling as a
// health probe.
func (c *Client) Version(ctx context.Context) (string, error) {
	version, err := c.client.GetAppVersionCtx(ctx)
	if err != nil {
		return "", fmt.Errorf("get app version: %w", err)
	}
	return version, nil
}

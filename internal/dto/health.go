package dto

// Health status strings for one dependency.
const (
	HealthOK            = "ok"
	HealthError         = "error"
	HealthNotConfigured = "not_configured"
)

// HealthStatus reports the state of the API and its collaborators.
type HealthStatus struct {
	API         string `json:"api"`
	Database    string `json:"database"`
	Redis       string `json:"redis"`
	QBittorrent string `json:"qbittorrent"`
	Jackett     string `json:"jackett"`
}

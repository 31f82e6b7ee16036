package dto

import "time"

// UpdateDownloadSettingsRequest carries the admin-submitted signing config.
type UpdateDownloadSettingsRequest struct {
	BaseURL         string `json:"base_url" validate:"required,url"`
	SecretKey       string `json:"secret_key" validate:"required,min=16"`
	DownloadPath    string `json:"download_path" validate:"required"`
	LinkExpiryHours int    `json:"link_expiry_hours" validate:"required,gte=1,lte=24"`
}

// DownloadSettings is the read view of the signing configuration. The
// secret itself is write-only; reads expose presence and a short hint.
type DownloadSettings struct {
	BaseURL         string    `json:"base_url"`
	SecretKeySet    bool      `json:"secret_key_set"`
	SecretKeyHint   string    `json:"secret_key_hint,omitempty"`
	DownloadPath    string    `json:"download_path"`
	LinkExpiryHours int       `json:"link_expiry_hours"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// ProxyConfigResponse returns the rendered reverse-proxy snippet.
type ProxyConfigResponse struct {
	Config string `json:"config"`
}

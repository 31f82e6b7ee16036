// Package signedurl issues and verifies time-limited download links for
// files below the configured download root. The verification formula is a
// contract shared with the reverse proxy that ultimately serves the files:
//
//	signature = base64url_nopad(HMAC-SHA256(secretKey, filePath + "\n" + expiresAtEpoch))
//
// filePath is the slash-separated path relative to the download root and
// expiresAtEpoch is the expiry unix timestamp in decimal. Nothing else
// participates in the digest, so any party holding the secret can reproduce
// a signature independently.
package signedurl

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	appErrors "github.com/qbitmaster/qbitmaster-api/pkg/errors"
)

// Config describes how download links are issued. At most one record is
// persisted at a time; the settings service owns its lifecycle.
type Config struct {
	BaseURL         string `json:"base_url" db:"base_url" validate:"required,url"`
	SecretKey       string `json:"secret_key" db:"secret_key" validate:"required,min=16"`
	DownloadPath    string `json:"download_path" db:"download_path" validate:"required"`
	LinkExpiryHours int    `json:"link_expiry_hours" db:"link_expiry_hours" validate:"required,gte=1,lte=24"`
}

// SignedLink is a derived value, recomputable from Config and the file path.
// It is never persisted.
type SignedLink struct {
	URL            string `json:"url"`
	ExpiresAtEpoch int64  `json:"expires_at_epoch"`
	Signature      string `json:"signature"`
}

// Signer produces signed links. The zero clock defaults to time.Now so
// tests can pin the issue time.
type Signer struct {
	now func() time.Time
}

// NewSigner constructs a Signer using the wall clock.
func NewSigner() *Signer {
	return &Signer{now: time.Now}
}

// NewSignerWithClock constructs a Signer with an injected clock.
func NewSignerWithClock(now func() time.Time) *Signer {
	if now == nil {
		now = time.Now
	}
	return &Signer{now: now}
}

// SignPath issues a signed link for filePath, which must be relative to
// cfg.DownloadPath. Paths that are empty, absolute, or contain a
// parent-directory segment are rejected with ErrInvalidPath.
func (s *Signer) SignPath(filePath string, cfg Config) (SignedLink, error) {
	if err := ValidateRelPath(filePath); err != nil {
		return SignedLink{}, err
	}
	if len(cfg.SecretKey) == 0 {
		return SignedLink{}, appErrors.Clone(appErrors.ErrNotConfigured, "signing secret missing")
	}

	expiresAt := s.now().Add(time.Duration(cfg.LinkExpiryHours) * time.Hour).Unix()
	signature := Signature(cfg.SecretKey, filePath, expiresAt)

	base := strings.TrimRight(cfg.BaseURL, "/")
	escaped := (&url.URL{Path: "/" + filePath}).EscapedPath()
	link := fmt.Sprintf("%s%s?expires=%d&signature=%s", base, escaped, expiresAt, signature)

	return SignedLink{URL: link, ExpiresAtEpoch: expiresAt, Signature: signature}, nil
}

// Verify reports whether the request parameters authorize access to
// filePath. It fails closed: a malformed or past expiry denies regardless
// of the signature, and the signature comparison is constant time.
func (s *Signer) Verify(filePath, expiresParam, signatureParam string, cfg Config) bool {
	expiresAt, err := strconv.ParseInt(expiresParam, 10, 64)
	if err != nil {
		return false
	}
	if !s.now().Before(time.Unix(expiresAt, 0)) {
		return false
	}
	expected := Signature(cfg.SecretKey, filePath, expiresAt)
	return hmac.Equal([]byte(expected), []byte(signatureParam))
}

// Signature computes the contract digest for the given inputs.
func Signature(secretKey, filePath string, expiresAt int64) string {
	mac := hmac.New(sha256.New, []byte(secretKey))
	fmt.Fprintf(mac, "%s\n%d", filePath, expiresAt)
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}

// ValidateRelPath rejects paths that could escape the download root.
func ValidateRelPath(filePath string) error {
	if filePath == "" {
		return appErrors.Clone(appErrors.ErrInvalidPath, "file path is empty")
	}
	if strings.HasPrefix(filePath, "/") || strings.Contains(filePath, "\\") {
		return appErrors.Clone(appErrors.ErrInvalidPath, "file path must be relative")
	}
	for _, segment := range strings.Split(filePath, "/") {
		if segment == ".." {
			return appErrors.Clone(appErrors.ErrInvalidPath, "file path must not contain parent directory segments")
		}
	}
	return nil
}

package models

import (
	"time"

	"github.com/qbitmaster/qbitmaster-api/pkg/signedurl"
)

// SigningConfigID is the fixed primary key of the single signing_configs
// row: overwrites only, no delete path.
const SigningConfigID = "default"

// SigningConfigRecord is the persisted form of the download signing settings.
type SigningConfigRecord struct {
	ID string `db:"id" json:"id"`
	signedurl.Config
	UpdatedBy *string   `db:"updated_by" json:"updated_by,omitempty"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

package filetrail

import (
	"fmt"
	"time"
)

// SignedURLExpiry is how long a presigned upload or download URL stays valid.
const SignedURLExpiry = time.Hour

// UserFile is a stored file record with its optional GPX track summary.
type UserFile struct {
	ID          int64     `json:"id"`
	OIDCSubject string    `json:"oidc_subject"`
	Filename    string    `json:"filename"`
	S3Key       string    `json:"s3_key"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	GpxInfo     *GpxInfo  `json:"gpx_info,omitempty"`
}

// GpxInfo is the optional track summary attached to a UserFile.
// Fields are pointers so that a missing child row serializes as nulls.
type GpxInfo struct {
	UserFileID        int64    `json:"user_file_id,omitempty" mapstructure:"-"`
	DurationSecs      *float64 `json:"duration_secs" mapstructure:"duration_secs" validate:"omitempty,gte=0"`
	DistanceFt        *float64 `json:"distance_ft" mapstructure:"distance_ft" validate:"omitempty,gte=0"`
	GainedElevationFt *float64 `json:"gained_elevation_ft" mapstructure:"gained_elevation_ft" validate:"omitempty,gte=0"`
	LostElevationFt   *float64 `json:"lost_elevation_ft" mapstructure:"lost_elevation_ft" validate:"omitempty,gte=0"`
}

// NewUserFile holds the client supplied fields of a create request after
// strong-parameter filtering.
type NewUserFile struct {
	Filename string   `mapstructure:"filename" validate:"required,max=1024"`
	GpxInfo  *GpxInfo `mapstructure:"-" validate:"omitempty"`
}

// UserFileEntry is what the service hands to the repository on create.
type UserFileEntry struct {
	OIDCSubject string
	Filename    string
	S3Key       string
	GpxInfo     *GpxInfo
}

// CreatedUserFile is returned on create; it carries the presigned upload URL.
type CreatedUserFile struct {
	ID          int64     `json:"id"`
	OIDCSubject string    `json:"oidc_subject"`
	Filename    string    `json:"filename"`
	CreatedAt   time.Time `json:"created_at"`
	UploadURL   string    `json:"upload_url"`
	GpxInfo     *GpxInfo  `json:"gpx_info,omitempty"`
}

// Intent is the storage operation a signed URL delegates.
type Intent string

const (
	IntentRead  Intent = "read"
	IntentWrite Intent = "write"
)

func (i Intent) IsValid() bool {
	switch i {
	case IntentRead, IntentWrite:
		return true
	default:
		return false
	}
}

func ParseIntent(s string) (Intent, error) {
	intent := Intent(s)
	if !intent.IsValid() {
		return "", fmt.Errorf("invalid intent: %s (valid intents: read, write)", s)
	}
	return intent, nil
}

// OIDCConfig holds the expected claims of tokens issued by the identity provider.
type OIDCConfig struct {
	Issuer   string `mapstructure:"issuer" yaml:"issuer" validate:"required"`
	Audience string `mapstructure:"audience" yaml:"audience" validate:"required"`
}

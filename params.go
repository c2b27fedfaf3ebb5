package filetrail

import (
	"fmt"

	"github.com/go-viper/mapstructure/v2"
)

// UserFileParams lists the user_files fields a client may set on create.
var UserFileParams = []string{"filename"}

// GpxInfoParams lists the gpx_info fields a client may set on create.
var GpxInfoParams = []string{"duration_secs", "distance_ft", "gained_elevation_ft", "lost_elevation_ft"}

// Permit returns a new map holding only the allowed keys whose values are
// non-nil in input. It never modifies input.
func Permit(input map[string]any, allowed []string) map[string]any {
	out := make(map[string]any, len(allowed))
	for _, key := range allowed {
		if v, ok := input[key]; ok && v != nil {
			out[key] = v
		}
	}
	return out
}

// DecodeNewUserFile filters a decoded JSON request body through the allow-lists
// and decodes the surviving fields into a NewUserFile.
//
// Server-owned columns such as s3_key, oidc_subject or gpx_info.user_file_id are
// dropped silently. A permitted field with the wrong type is ErrInvalidInput.
func DecodeNewUserFile(body map[string]any) (NewUserFile, error) {
	var nf NewUserFile
	if err := mapstructure.Decode(Permit(body, UserFileParams), &nf); err != nil {
		return NewUserFile{}, fmt.Errorf("decode user file: %w: %w", ErrInvalidInput, err)
	}

	raw, ok := body["gpx_info"]
	if !ok || raw == nil {
		return nf, nil
	}

	gpxBody, ok := raw.(map[string]any)
	if !ok {
		return NewUserFile{}, fmt.Errorf("decode user file: %w: gpx_info must be an object", ErrInvalidInput)
	}

	var gpx GpxInfo
	if err := mapstructure.Decode(Permit(gpxBody, GpxInfoParams), &gpx); err != nil {
		return NewUserFile{}, fmt.Errorf("decode gpx info: %w: %w", ErrInvalidInput, err)
	}
	nf.GpxInfo = &gpx

	return nf, nil
}

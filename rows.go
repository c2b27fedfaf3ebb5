package filetrail

import "time"

// UserFileRow is one row of the user_files LEFT JOIN gpx_info query.
// The gpx columns are nil when the file has no track summary.
type UserFileRow struct {
	ID          int64
	OIDCSubject string
	Filename    string
	S3Key       string
	CreatedAt   time.Time
	UpdatedAt   time.Time

	GpxDurationSecs      *float64
	GpxDistanceFt        *float64
	GpxGainedElevationFt *float64
	GpxLostElevationFt   *float64
}

// UserFile maps the flat join row to the nested representation.
//
// The gpx group is always populated because the join always selects its
// columns; a file without a track summary gets a group of nulls rather than
// no group at all.
func (r UserFileRow) UserFile() UserFile {
	return UserFile{
		ID:          r.ID,
		OIDCSubject: r.OIDCSubject,
		Filename:    r.Filename,
		S3Key:       r.S3Key,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
		GpxInfo: &GpxInfo{
			DurationSecs:      r.GpxDurationSecs,
			DistanceFt:        r.GpxDistanceFt,
			GainedElevationFt: r.GpxGainedElevationFt,
			LostElevationFt:   r.GpxLostElevationFt,
		},
	}
}

// UserFiles maps a whole result set, returning an empty slice for no rows.
func UserFiles(rows []UserFileRow) []UserFile {
	files := make([]UserFile, 0, len(rows))
	for _, r := range rows {
		files = append(files, r.UserFile())
	}
	return files
}

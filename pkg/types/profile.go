package types

import "time"

// Profile is a local credentials profile whose access key is known to IAM
type Profile struct {
	Name        string
	AccessKeyID string
	CreateDate  *time.Time // from IAM, nil if IAM did not report one
}

// Age returns how long ago the profile's access key was created
func (p Profile) Age(now time.Time) time.Duration {
	if p.CreateDate == nil {
		return 0
	}
	return now.Sub(*p.CreateDate)
}

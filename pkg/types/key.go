package types

import "time"

// AccessKey is IAM metadata for one access key of the calling user
type AccessKey struct {
	AccessKeyID string
	CreateDate  *time.Time
	Status      string // Active or Inactive
}

// RotationResult holds the key pair that replaced a profile's old key
type RotationResult struct {
	Name               string
	OldAccessKeyID     string
	NewAccessKeyID     string
	NewSecretAccessKey string `json:"-"`
	InstallErr         error  `json:"-"` // set when the credentials file was not updated
}

// Installed reports whether the new key reached the credentials file
func (r RotationResult) Installed() bool {
	return r.InstallErr == nil
}

// DeleteOutcome records whether an old access key was deleted
type DeleteOutcome struct {
	Name        string
	AccessKeyID string
	Err         error
}

// OK reports whether the delete succeeded
func (o DeleteOutcome) OK() bool {
	return o.Err == nil
}

package domain

import "time"

// DriveFile is the metadata of one candidate PDF in the drive folder.
// Content is fetched on demand and never cached.
type DriveFile struct {
	ID           string
	Name         string
	Size         int64
	ModifiedTime time.Time
}

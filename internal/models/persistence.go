package models

// StorageVersion is the current snapshot format version.
const StorageVersion = 2

// Storage is the versioned on-disk snapshot envelope. Version 1 files were a
// bare userId→record map (the shape of the original single-table upsert);
// loading migrates them into this envelope.
type Storage struct {
	Version int                          `json:"version"`
	Users   map[string]*UserAvailability `json:"users"`
}

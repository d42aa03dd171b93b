package storage

import (
	"io"
	"path/filepath"
	"strconv"
)

type UsageStats struct {
	TotalBytes uint64
	FreeBytes  uint64
}

// Storage is an opaque file store for user uploads such as profile pictures.
type Storage interface {
	Read(path string) (io.ReadCloser, error)

	Write(path string, data io.Reader) error

	Delete(path string) error

	Exists(path string) (bool, error)

	Usage() (UsageStats, error)

	Location() string
}

func PhotoPath(companyId uint, filename string) string {
	return filepath.Join("photos", strconv.FormatUint(uint64(companyId), 10), filename)
}

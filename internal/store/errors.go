package store

import "errors"

var (
	// ErrScanNotFound is returned by Reader.Load when no scan row has the
	// requested identifier. It is distinct from a scan with zero findings.
	ErrScanNotFound = errors.New("scan not found")

	// ErrUnsupportedDriver is returned for a driver name other than
	// sqlite, mysql or postgres.
	ErrUnsupportedDriver = errors.New("unsupported database driver")
)

// Package vmerr defines the sentinel error kinds shared across vmscan.
package vmerr

import "errors"

// Sentinel errors, one per failure mode. Call sites wrap these with
// fmt.Errorf("%w: %s", sentinel, detail) rather than inventing new error
// types, so callers can still classify failures with errors.Is.
var (
	ErrUsage  = errors.New("usage error")
	ErrAttach = errors.New("attach failed")
	ErrDetach = errors.New("detach failed")
	ErrEnum   = errors.New("region enumeration failed")
	ErrIO     = errors.New("memory i/o failed")
	ErrScan   = errors.New("scan failed")
)

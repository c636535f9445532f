package service

import "errors"

var (
	// ErrAuthFailure is returned when a peer is not allowed to sync.
	ErrAuthFailure = errors.New("peer authentication failed")

	// ErrApplyFailure wraps storage rejections and structurally invalid
	// records. It aborts the dataset transaction.
	ErrApplyFailure = errors.New("applying change failed")

	ErrTransactionOpen  = errors.New("dataset transaction already open")
	ErrNoTransaction    = errors.New("no open dataset transaction")
	ErrUnknownDataset   = errors.New("dataset not served")
	ErrUnexpectedMsg    = errors.New("message not valid in current state")
	ErrVersionMismatch  = errors.New("incompatible protocol major version")
	ErrCategoriesFailed = errors.New("materializing categories failed")
)

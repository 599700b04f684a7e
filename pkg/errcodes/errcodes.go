package errcodes

import "git.appkode.ru/pub/go/failure"

const (
	InternalServerError failure.ErrorCode = "InternalServerError"
	TimeoutExceeded     failure.ErrorCode = "TimeoutExceeded"
	Forbidden           failure.ErrorCode = "Forbidden"
	ValidationError     failure.ErrorCode = "ValidationError"
	NotFound            failure.ErrorCode = "NotFound"

	// Sell engine outcomes. They never leave the engine as errors, they label
	// log lines, metrics and history rows.
	SurfaceNotReady  failure.ErrorCode = "SurfaceNotReady"
	LocationLost     failure.ErrorCode = "LocationLost"
	CapacityExceeded failure.ErrorCode = "CapacityExceeded"
	Cancelled        failure.ErrorCode = "Cancelled"
	UnexpectedFault  failure.ErrorCode = "UnexpectedFault"
	InvalidBatch     failure.ErrorCode = "InvalidBatch"
	NoPrice          failure.ErrorCode = "NoPrice"

	RunInProgress  failure.ErrorCode = "RunInProgress"
	RunNotFound    failure.ErrorCode = "RunNotFound"
	NoRunActive    failure.ErrorCode = "NoRunActive"
	CatalogInvalid failure.ErrorCode = "CatalogInvalid"
	ConfigInvalid  failure.ErrorCode = "ConfigInvalid"
	InvalidRunID   failure.ErrorCode = "InvalidRunID"
)

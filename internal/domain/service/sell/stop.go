package sell

import (
	"git.appkode.ru/pub/go/failure"

	"automarket/pkg/errcodes"
)

// StopReason tells why a listing loop ended. StopNone means the item was
// fully listed.
type StopReason uint8

const (
	StopNone StopReason = iota
	StopCapacity
	StopLocationLost
	StopInvalidBatch
	StopSurfaceNotReady
	StopNoPrice
	StopCancelled
	StopFault
)

func (r StopReason) String() string {
	switch r {
	case StopNone:
		return "none"
	case StopCapacity:
		return "capacity"
	case StopLocationLost:
		return "location-lost"
	case StopInvalidBatch:
		return "invalid-batch"
	case StopSurfaceNotReady:
		return "surface-not-ready"
	case StopNoPrice:
		return "no-price"
	case StopCancelled:
		return "cancelled"
	case StopFault:
		return "fault"
	default:
		return "unknown"
	}
}

func (r StopReason) Code() failure.ErrorCode {
	switch r {
	case StopCapacity:
		return errcodes.CapacityExceeded
	case StopLocationLost:
		return errcodes.LocationLost
	case StopInvalidBatch:
		return errcodes.InvalidBatch
	case StopSurfaceNotReady:
		return errcodes.SurfaceNotReady
	case StopNoPrice:
		return errcodes.NoPrice
	case StopCancelled:
		return errcodes.Cancelled
	case StopFault:
		return errcodes.UnexpectedFault
	default:
		return ""
	}
}

// Terminal reports whether the item can never be listed from its current
// state, as opposed to a stop another agent might get past.
func (r StopReason) Terminal() bool {
	return r == StopLocationLost || r == StopInvalidBatch
}

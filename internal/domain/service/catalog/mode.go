package catalog

import (
	"automarket/internal/domain"
	"automarket/pkg/errcodes"
)

// Mode selects how the catalog is split between listing and vendoring.
type Mode uint8

const (
	ModeNormal Mode = iota
	ModeListOnly
	ModeVendorOnly
)

func (m Mode) String() string {
	switch m {
	case ModeListOnly:
		return "list-only"
	case ModeVendorOnly:
		return "vendor-only"
	default:
		return "normal"
	}
}

func ModeFromFlags(listOnly, vendorOnly bool) (Mode, error) {
	switch {
	case listOnly && vendorOnly:
		return ModeNormal, domain.NewError(errcodes.ConfigInvalid, "list-only and vendor-only modes are mutually exclusive")
	case listOnly:
		return ModeListOnly, nil
	case vendorOnly:
		return ModeVendorOnly, nil
	default:
		return ModeNormal, nil
	}
}

// ParseMode accepts the String form of a mode. An empty string is ModeNormal.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "", "normal":
		return ModeNormal, nil
	case "list-only":
		return ModeListOnly, nil
	case "vendor-only":
		return ModeVendorOnly, nil
	default:
		return ModeNormal, domain.NewError(errcodes.ValidationError, "unknown mode "+s)
	}
}

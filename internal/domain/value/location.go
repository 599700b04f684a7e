package value

import (
	"fmt"
	"strings"
)

// Container is one of the ordered stock containers an item stack can sit in.
type Container uint8

const (
	ContainerUnknown Container = iota
	Inventory1
	Inventory2
	Inventory3
	Inventory4
)

// Containers is the search order used when relocating a stack.
var Containers = []Container{Inventory1, Inventory2, Inventory3, Inventory4} //nolint:gochecknoglobals

func (c Container) String() string {
	switch c {
	case Inventory1:
		return "inventory1"
	case Inventory2:
		return "inventory2"
	case Inventory3:
		return "inventory3"
	case Inventory4:
		return "inventory4"
	default:
		return "unknown"
	}
}

func ParseContainer(s string) (Container, error) {
	for _, c := range Containers {
		if strings.EqualFold(c.String(), s) {
			return c, nil
		}
	}

	return ContainerUnknown, fmt.Errorf("unknown container %q", s)
}

func (c Container) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

func (c *Container) UnmarshalText(text []byte) error {
	parsed, err := ParseContainer(string(text))
	if err != nil {
		return err
	}

	*c = parsed

	return nil
}

// Location identifies where a stack currently sits. It is only a key: the
// stack may have moved or been depleted since the location was read.
type Location struct {
	Container Container `json:"container"`
	Slot      int       `json:"slot"`
}

func (l Location) IsZero() bool {
	return l.Container == ContainerUnknown
}

// Before reports whether l comes strictly before other in search order.
func (l Location) Before(other Location) bool {
	if l.Container != other.Container {
		return l.Container < other.Container
	}
	return l.Slot < other.Slot
}

func (l Location) String() string {
	return fmt.Sprintf("%s:%d", l.Container, l.Slot)
}

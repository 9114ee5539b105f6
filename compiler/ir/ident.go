package ir

import (
	"strconv"

	"tlog.app/go/tlog/tlwire"
)

type (
	// Ident is how a tier identifies functions.
	// HasConstParams reports whether the tier supports compile-time constant parameters.
	Ident interface {
		comparable

		String() string
		HasConstParams() bool
	}

	// Name identifies a function in the symbolic tier.
	Name string

	// DefID is a compiler assigned function identity of the resolved tier.
	DefID struct {
		Krate uint32
		Index uint32

		Path string `msgpack:",omitempty"`
	}
)

const (
	TierSymbolic = "symbolic"
	TierResolved = "resolved"
)

// TierOf names the tier of the identity type.
func TierOf[ID Ident]() string {
	var zero ID

	if zero.HasConstParams() {
		return TierResolved
	}

	return TierSymbolic
}

func (n Name) String() string { return string(n) }

func (Name) HasConstParams() bool { return false }

func (id DefID) String() string {
	b := make([]byte, 0, 16+len(id.Path))

	b = append(b, "DefId("...)
	b = strconv.AppendUint(b, uint64(id.Krate), 10)
	b = append(b, ':')
	b = strconv.AppendUint(b, uint64(id.Index), 10)

	if id.Path != "" {
		b = append(b, " ~ "...)
		b = append(b, id.Path...)
	}

	b = append(b, ')')

	return string(b)
}

func (DefID) HasConstParams() bool { return true }

func (id DefID) TlogAppend(b []byte) []byte {
	var e tlwire.LowEncoder

	return e.AppendString(b, id.String())
}

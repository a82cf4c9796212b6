package schema

import "fmt"

// CollectionKind classifies how an attribute aggregates its values, as
// declared by the EXPRESS schema the collection map was extracted from.
type CollectionKind int

const (
	// KindNone means the attribute has no declared collection semantics
	// and is treated as a scalar.
	KindNone CollectionKind = iota
	// KindList is an ordered aggregate.
	KindList
	// KindSet is an unordered aggregate with unique members.
	KindSet
	// KindArray is a fixed-bound ordered aggregate. It serializes the
	// same way as a list.
	KindArray
	// KindUnknown marks a value that arrived as an aggregate without a
	// declared kind (nested collections, unlisted attributes). The
	// encoder picks list or set handling by inspecting the members.
	KindUnknown
)

func (k CollectionKind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindList:
		return "list"
	case KindSet:
		return "set"
	case KindArray:
		return "array"
	case KindUnknown:
		return "unknown"
	default:
		return fmt.Sprintf("CollectionKind(%d)", int(k))
	}
}

// ParseKind maps a collection-map entry to its kind. Matching is
// case-insensitive because older extractions emitted EXPRESS keywords
// in upper case.
func ParseKind(s string) (CollectionKind, error) {
	switch s {
	case "list", "LIST":
		return KindList, nil
	case "set", "SET":
		return KindSet, nil
	case "array", "ARRAY":
		return KindArray, nil
	default:
		return KindNone, fmt.Errorf("unknown collection kind %q", s)
	}
}

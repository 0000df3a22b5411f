package store

// Option modifies a lookup. Possible options are Required and NoClone.
type Option interface {
	apply(o *options)
}

type options struct {
	required bool
	noClone  bool
}

func makeOptions(opts []Option) options {
	var o options
	for _, opt := range opts {
		opt.apply(&o)
	}
	return o
}

// Required is an option to lookups that turns a missing record into an
// ErrNotFound error
var Required required

type required struct{}

func (required) apply(o *options) {
	o.required = true
}

// NoClone is an option to lookups that returns records sharing storage with
// the store.
//
// Unsafe. The records must not be mutated through Unwrap, nor held across
// changes to the store.
var NoClone noClone

type noClone struct{}

func (noClone) apply(o *options) {
	o.noClone = true
}

// ListOptions control List
type ListOptions struct {
	// SortField is the field to order records by. Defaults to the key field.
	SortField string

	// NoSort returns records in insertion order
	NoSort bool

	// NoClone returns records sharing storage with the store. See NoClone.
	NoClone bool
}

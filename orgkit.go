package orgkit

import (
	"github.com/ridge/orgkit/indices"
	"github.com/ridge/orgkit/record"
	"github.com/ridge/orgkit/store"
)

// Record is a keyed set of attributes
type Record = record.Record

// Store is an indexed resource store.
// Do not use concurrently.
type Store = store.Store

// Config describes a resource store
type Config = store.Config

// IndexSpec specifies a secondary index
type IndexSpec = indices.Spec

// ListOptions control Store.List
type ListOptions = store.ListOptions

// Convenience reexports from the record, indices and store packages
var (
	NewRecord = record.New
	NewStore  = store.New

	Identity  = record.Identity
	LowerCase = record.LowerCase

	Required = store.Required
	NoClone  = store.NoClone
)

// Index relationships
const (
	OneToOne  = indices.OneToOne
	OneToMany = indices.OneToMany
)

// Error kinds, see package store
var (
	ErrDuplicateKey       = store.ErrDuplicateKey
	ErrNotFound           = store.ErrNotFound
	ErrUnknownIndex       = store.ErrUnknownIndex
	ErrMalformedIndexSpec = store.ErrMalformedIndexSpec
	ErrMissingKeyField    = store.ErrMissingKeyField
)

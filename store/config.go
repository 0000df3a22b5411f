package store

import (
	"errors"

	"github.com/ridge/orgkit/indices"
	"github.com/ridge/orgkit/record"
	"go.uber.org/zap"
	"golang.org/x/text/language"
)

const (
	// DefaultIDField is the attribute holding the derived id unless configured otherwise
	DefaultIDField = "id"

	// PrimaryIndexName is the name of the implicit ONE_TO_ONE index over ids
	PrimaryIndexName = "byId"

	defaultResource = "item"
)

// ItemFactory checks and completes a record before it is stored. It receives a
// private copy it may derive a new record from.
type ItemFactory func(r record.Record) (record.Record, error)

// Config describes a resource store
type Config struct {
	// Resource names a single record in messages, e.g. "staff member".
	// Defaults to "item".
	Resource string

	// KeyField is the attribute a record id is derived from. Required.
	KeyField string

	// IDField is the attribute holding the derived id. Defaults to "id".
	IDField string

	// IDNormalizer derives the id from the key field value. Defaults to
	// record.Identity. It is also applied to ids passed to lookups.
	IDNormalizer record.Normalizer

	// Indexes are the secondary indexes created with the store
	Indexes []indices.Spec

	// ItemFactory, if set, is applied to every record on Add, Update and New
	ItemFactory ItemFactory

	// Locale selects the collation of the default List order. Defaults to
	// language.Und
	Locale language.Tag

	// Logger receives debug entries for mutations. Defaults to zap.NewNop().
	Logger *zap.Logger
}

func (c Config) withDefaults() (Config, error) {
	if c.KeyField == "" {
		return c, errors.New("store configuration lacks a key field")
	}
	if c.Resource == "" {
		c.Resource = defaultResource
	}
	if c.IDField == "" {
		c.IDField = DefaultIDField
	}
	if c.IDNormalizer == nil {
		c.IDNormalizer = record.Identity
	}
	if c.Logger == nil {
		c.Logger = zap.NewNop()
	}
	return c, nil
}

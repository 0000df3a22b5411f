// Package store implements a resource store: a collection of uniquely keyed
// records with a primary index over record ids and any number of secondary
// indexes, kept consistent across Add, Update and Delete.
//
// Records cross the store boundary by copy. Whatever is passed to Add or
// Update is copied before it is stored, and whatever is returned is a copy of
// what is stored, unless the caller asks for NoClone.
//
// Every fallible check of a mutation (key field, id uniqueness, existence) runs
// before the store is changed, and index maintenance itself cannot fail, so a
// failed mutation leaves the store as it was.
//
// Update and Delete resolve the prior state of the record through the primary
// index, apply the change to the secondary indexes in reverse registration
// order, and update the primary index last.
//
// A Store is not safe for concurrent use.
package store

import (
	"fmt"

	"github.com/ridge/must/v2"
	"github.com/ridge/orgkit/indices"
	"github.com/ridge/orgkit/record"
	"go.uber.org/zap"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
	"golang.org/x/text/collate"
)

// Store is an indexed resource store
type Store struct {
	config   Config
	log      *zap.Logger
	collator *collate.Collator

	records []record.Record
	primary *indices.Index
	indexes []*indices.Index // secondary, in registration order
	names   map[string]Handle
}

// Handle refers to an index of a particular store. The zero Handle refers to
// no index.
type Handle struct {
	store *Store
	n     int // 1 is the primary index, n > 1 is indexes[n-2]
}

// IsZero reports whether the handle refers to no index
func (h Handle) IsZero() bool {
	return h.store == nil
}

// New creates a store holding copies of the records, and builds its indexes
func New(config Config, records []record.Record) (*Store, error) {
	config, err := config.withDefaults()
	if err != nil {
		return nil, err
	}

	s := &Store{
		config:   config,
		log:      config.Logger.With(zap.String("resource", config.Resource)),
		collator: collate.New(config.Locale),
		names:    map[string]Handle{},
	}
	s.primary = must.OK1(indices.New(indices.Spec{
		Name:         PrimaryIndexName,
		KeyField:     config.IDField,
		Relationship: indices.OneToOne,
	}, config.IDField))
	s.names[PrimaryIndexName] = Handle{store: s, n: 1}

	prepared := make([]record.Record, 0, len(records))
	seen := make(map[record.Key]bool, len(records))
	for _, r := range records {
		r, id, err := s.prepare(r)
		if err != nil {
			return nil, err
		}
		if seen[id] {
			return nil, s.duplicate(id)
		}
		seen[id] = true
		prepared = append(prepared, r)
	}
	s.records = prepared
	s.primary.Rebuild(s.records)

	for _, spec := range config.Indexes {
		if _, err := s.AddIndex(spec); err != nil {
			return nil, err
		}
	}
	s.log.Debug("Store created", zap.Int("records", len(s.records)), zap.Int("indexes", s.TotalIndexCount()))
	return s, nil
}

// Resource returns the configured name of a record
func (s *Store) Resource() string {
	return s.config.Resource
}

// KeyField returns the configured key field
func (s *Store) KeyField() string {
	return s.config.KeyField
}

// IDField returns the configured id field
func (s *Store) IDField() string {
	return s.config.IDField
}

// prepare makes a private copy of r, runs the item factory, checks the key
// field and fills in the id
func (s *Store) prepare(r record.Record) (record.Record, record.Key, error) {
	r = r.Clone()
	if s.config.ItemFactory != nil {
		next, err := s.config.ItemFactory(r)
		if err != nil {
			return record.Record{}, record.Absent, fmt.Errorf("invalid %s '%v': %w", s.config.Resource, r.Value(s.config.KeyField), err)
		}
		r = next.Clone()
	}
	if !r.Truthy(s.config.KeyField) {
		return record.Record{}, record.Absent, &Error{
			Kind:     ErrMissingKeyField,
			Resource: s.config.Resource,
			Field:    s.config.KeyField,
			Value:    r.Value(s.config.KeyField),
		}
	}
	if s.config.KeyField == s.config.IDField || r.Key(s.config.IDField).IsAbsent() {
		r = r.With(s.config.IDField, s.config.IDNormalizer(r.Value(s.config.KeyField)))
	}
	return r, r.Key(s.config.IDField), nil
}

func (s *Store) idKey(id any) record.Key {
	if k, ok := id.(record.Key); ok {
		return k
	}
	return record.KeyOf(s.config.IDNormalizer(id))
}

func (s *Store) duplicate(id record.Key) error {
	return &Error{Kind: ErrDuplicateKey, Resource: s.config.Resource, Field: s.config.IDField, Value: id, Advice: "try update"}
}

func (s *Store) notFound(id record.Key, advice string) error {
	return &Error{Kind: ErrNotFound, Resource: s.config.Resource, Field: s.config.IDField, Value: id, Advice: advice}
}

func (s *Store) out(r record.Record, o options) record.Record {
	if o.noClone {
		return r
	}
	return r.Clone()
}

// Add stores a copy of the record and returns the stored state, id included.
//
// Fails with ErrMissingKeyField if the key field is not truthy, and with
// ErrDuplicateKey if the id is already present.
func (s *Store) Add(r record.Record) (record.Record, error) {
	r, id, err := s.prepare(r)
	if err != nil {
		return record.Record{}, err
	}
	if s.primary.Has(id) {
		return record.Record{}, s.duplicate(id)
	}

	s.records = append(s.records, r)
	s.primary.Add(r)
	for _, idx := range s.indexes {
		idx.Add(r)
	}
	s.log.Debug("Record added", zap.Stringer("id", id))
	return r.Clone(), nil
}

// Get returns a copy of the record with the id, or the zero Record if there is
// none. The id goes through the id normalizer first.
//
// With the Required option, a missing record is an ErrNotFound error.
func (s *Store) Get(id any, opts ...Option) (record.Record, error) {
	o := makeOptions(opts)
	key := s.idKey(id)
	r, ok := s.primary.One(key)
	if !ok {
		if o.required {
			return record.Record{}, s.notFound(key, "")
		}
		return record.Record{}, nil
	}
	return s.out(r, o), nil
}

// Has reports whether a record with the id exists
func (s *Store) Has(id any) bool {
	return s.primary.Has(s.idKey(id))
}

// Len returns the number of records
func (s *Store) Len() int {
	return len(s.records)
}

// Update replaces the stored record having the same id with a copy of r, and
// returns the new stored state.
//
// Fails with ErrNotFound if there is no such record, and with
// ErrMissingKeyField if the key field is not truthy.
func (s *Store) Update(r record.Record) (record.Record, error) {
	r, id, err := s.prepare(r)
	if err != nil {
		return record.Record{}, err
	}
	prior, ok := s.primary.One(id)
	if !ok {
		return record.Record{}, s.notFound(id, "try add")
	}

	s.records[s.position(id)] = r
	for i := len(s.indexes) - 1; i >= 0; i-- {
		s.indexes[i].Update(r, prior)
	}
	s.primary.Update(r, prior)
	s.log.Debug("Record updated", zap.Stringer("id", id))
	return r.Clone(), nil
}

// Delete removes the record with the id and returns its last state
func (s *Store) Delete(id any) (record.Record, error) {
	key := s.idKey(id)
	prior, ok := s.primary.One(key)
	if !ok {
		return record.Record{}, s.notFound(key, "")
	}

	i := s.position(key)
	s.records = slices.Delete(s.records, i, i+1)
	for i := len(s.indexes) - 1; i >= 0; i-- {
		s.indexes[i].Delete(prior)
	}
	s.primary.Delete(prior)
	s.log.Debug("Record deleted", zap.Stringer("id", key))
	return prior.Clone(), nil
}

func (s *Store) position(id record.Key) int {
	i := slices.IndexFunc(s.records, func(r record.Record) bool {
		return r.Key(s.config.IDField) == id
	})
	if i < 0 {
		panic(fmt.Errorf("%s %s is indexed but not stored", s.config.Resource, id))
	}
	return i
}

// List returns copies of all records, ordered by the key field unless options
// say otherwise
func (s *Store) List(opts ListOptions) []record.Record {
	res := make([]record.Record, 0, len(s.records))
	for _, r := range s.records {
		if opts.NoClone {
			res = append(res, r)
		} else {
			res = append(res, r.Clone())
		}
	}
	if opts.NoSort {
		return res
	}
	field := opts.SortField
	if field == "" {
		field = s.config.KeyField
	}
	sortRecords(res, field, s.config.IDField, s.collator)
	return res
}

// Export returns the records as plain maps in insertion order, fit for
// writing back to a data file. The derived id is left out where it is the key
// field value itself.
func (s *Store) Export() []map[string]any {
	res := make([]map[string]any, 0, len(s.records))
	for _, r := range s.records {
		data := r.Data()
		if s.config.KeyField != s.config.IDField && r.Key(s.config.IDField) == r.Key(s.config.KeyField) {
			delete(data, s.config.IDField)
		}
		res = append(res, data)
	}
	return res
}

// AddIndex registers a secondary index and builds it from the current records.
//
// Fails with ErrMalformedIndexSpec if the specification is invalid or its name
// is taken.
func (s *Store) AddIndex(spec indices.Spec) (Handle, error) {
	malformed := func(err error) error {
		return &Error{Kind: ErrMalformedIndexSpec, Resource: s.config.Resource, Index: spec.Name, Field: spec.KeyField, Err: err}
	}
	if spec.Name != "" {
		if _, ok := s.names[spec.Name]; ok {
			return Handle{}, malformed(fmt.Errorf("index %s already exists", spec.Name))
		}
	}
	idx, err := indices.New(spec, s.config.IDField)
	if err != nil {
		return Handle{}, malformed(err)
	}
	idx.Rebuild(s.records)

	s.indexes = append(s.indexes, idx)
	h := Handle{store: s, n: len(s.indexes) + 1}
	if spec.Name != "" {
		s.names[spec.Name] = h
	}
	s.log.Debug("Index added", zap.Stringer("index", spec))
	return h, nil
}

// Index returns the handle of a named index
func (s *Store) Index(name string) (Handle, error) {
	h, ok := s.names[name]
	if !ok {
		return Handle{}, &Error{Kind: ErrUnknownIndex, Resource: s.config.Resource, Index: name}
	}
	return h, nil
}

// PrimaryIndex returns the handle of the implicit index over ids
func (s *Store) PrimaryIndex() Handle {
	return Handle{store: s, n: 1}
}

func (s *Store) index(h Handle) (*indices.Index, error) {
	switch {
	case h.store != s || h.n < 1 || h.n > len(s.indexes)+1:
		return nil, &Error{Kind: ErrUnknownIndex, Resource: s.config.Resource}
	case h.n == 1:
		return s.primary, nil
	}
	return s.indexes[h.n-2], nil
}

// Spec returns the specification of an index
func (s *Store) Spec(h Handle) (indices.Spec, error) {
	idx, err := s.index(h)
	if err != nil {
		return indices.Spec{}, err
	}
	return idx.Spec(), nil
}

// Match is the result of an index lookup
type Match struct {
	Relationship indices.Relationship
	Record       record.Record   // ONE_TO_ONE result, zero if not found
	Records      []record.Record // ONE_TO_MANY result, empty if not found
}

// Found reports whether any record matched
func (m Match) Found() bool {
	if m.Relationship == indices.OneToOne {
		return !m.Record.IsZero()
	}
	return len(m.Records) > 0
}

// All returns the matching records regardless of the relationship
func (m Match) All() []record.Record {
	if m.Relationship == indices.OneToOne {
		if m.Record.IsZero() {
			return nil
		}
		return []record.Record{m.Record}
	}
	return m.Records
}

// GetByIndex looks up the key in the index. The returned records are copies.
//
// An unknown handle is always an ErrUnknownIndex error. With the Required
// option, an empty result is an ErrNotFound error.
func (s *Store) GetByIndex(h Handle, key any, opts ...Option) (Match, error) {
	idx, err := s.index(h)
	if err != nil {
		return Match{}, err
	}
	o := makeOptions(opts)

	var k record.Key
	if idx == s.primary {
		k = s.idKey(key)
	} else {
		k = record.KeyOf(key)
	}
	spec := idx.Spec()
	m := Match{Relationship: spec.Relationship}
	if spec.Relationship == indices.OneToOne {
		if r, ok := idx.One(k); ok {
			m.Record = s.out(r, o)
		}
	} else {
		m.Records = idx.Many(k)
		for i, r := range m.Records {
			m.Records[i] = s.out(r, o)
		}
	}
	if o.required && !m.Found() {
		return Match{}, &Error{Kind: ErrNotFound, Resource: s.config.Resource, Index: spec.Name, Field: spec.KeyField, Value: k}
	}
	return m, nil
}

// GetByIndexName looks up the key in the named index
func (s *Store) GetByIndexName(name string, key any, opts ...Option) (Match, error) {
	h, err := s.Index(name)
	if err != nil {
		return Match{}, err
	}
	return s.GetByIndex(h, key, opts...)
}

// Rebuild rebuilds one index from the current records
func (s *Store) Rebuild(h Handle) error {
	idx, err := s.index(h)
	if err != nil {
		return err
	}
	idx.Rebuild(s.records)
	s.log.Debug("Index rebuilt", zap.Stringer("index", idx.Spec()))
	return nil
}

// RebuildNamed rebuilds the named index from the current records
func (s *Store) RebuildNamed(name string) error {
	h, err := s.Index(name)
	if err != nil {
		return err
	}
	return s.Rebuild(h)
}

// RebuildAll rebuilds every index from the current records
func (s *Store) RebuildAll() {
	s.primary.Rebuild(s.records)
	for _, idx := range s.indexes {
		idx.Rebuild(s.records)
	}
	s.log.Debug("All indexes rebuilt", zap.Int("indexes", s.TotalIndexCount()))
}

// IndexIDs returns the contents of an index as key to the ids of the indexed
// records, in group order
func (s *Store) IndexIDs(h Handle) (map[record.Key][]record.Key, error) {
	idx, err := s.index(h)
	if err != nil {
		return nil, err
	}
	return idx.IDs(), nil
}

// IndexKeys returns the keys of an index in ascending order
func (s *Store) IndexKeys(h Handle) ([]record.Key, error) {
	idx, err := s.index(h)
	if err != nil {
		return nil, err
	}
	return idx.Keys(), nil
}

// NamedIndexCount returns the number of named indexes, the primary one included
func (s *Store) NamedIndexCount() int {
	return len(s.names)
}

// TotalIndexCount returns the number of indexes, the primary one included
func (s *Store) TotalIndexCount() int {
	return len(s.indexes) + 1
}

// IndexNames returns the names of the named indexes in ascending order
func (s *Store) IndexNames() []string {
	names := maps.Keys(s.names)
	slices.Sort(names)
	return names
}

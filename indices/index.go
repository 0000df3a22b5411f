package indices

import (
	"fmt"

	"github.com/ridge/orgkit/record"
	"golang.org/x/exp/slices"
)

// Index maps values of a record field to the records holding them.
//
// A ONE_TO_ONE index holds a single record per key, the last one written.
// Records sharing a key in a ONE_TO_ONE index are a caller error: deleting the
// record holding the slot leaves it empty, while Rebuild would fill it with
// another record sharing the key. A ONE_TO_MANY index holds the records sharing a key in the order they were
// added. Records missing the key field are indexed under record.Absent.
//
// Update and Delete are driven by the prior state of the record, which must be
// the one the index currently holds. Records within a key group are matched by
// their id field, never by the other attributes.
//
// Index does not copy records: it stores and returns the values it is given.
type Index struct {
	spec    Spec
	idField string
	one     map[record.Key]record.Record
	many    map[record.Key][]record.Record
}

// New creates an empty index. idField names the attribute that identifies
// records.
func New(spec Spec, idField string) (*Index, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	idx := &Index{spec: spec, idField: idField}
	idx.clear()
	return idx, nil
}

// Spec returns the index specification
func (idx *Index) Spec() Spec {
	return idx.spec
}

func (idx *Index) clear() {
	if idx.spec.Relationship == OneToOne {
		idx.one = map[record.Key]record.Record{}
	} else {
		idx.many = map[record.Key][]record.Record{}
	}
}

// Rebuild discards the contents of the index and repopulates it from records
// in one pass
func (idx *Index) Rebuild(records []record.Record) {
	idx.clear()
	for _, r := range records {
		idx.Add(r)
	}
}

// Add indexes a single record
func (idx *Index) Add(r record.Record) {
	key := r.Key(idx.spec.KeyField)
	if idx.one != nil {
		idx.one[key] = r
		return
	}
	idx.many[key] = append(idx.many[key], r)
}

// Update replaces prior, the indexed state of a record, with next.
//
// If the key is unchanged, a ONE_TO_MANY index keeps the record at its position
// within the group. Otherwise the record moves to the end of its new group.
func (idx *Index) Update(next, prior record.Record) {
	nextKey := next.Key(idx.spec.KeyField)
	priorKey := prior.Key(idx.spec.KeyField)

	if idx.one != nil {
		if nextKey != priorKey {
			idx.deleteOne(priorKey, prior)
		}
		idx.one[nextKey] = next
		return
	}

	group := idx.many[priorKey]
	i := idx.position(group, prior)
	if nextKey == priorKey {
		group[i] = next
		return
	}
	idx.removeAt(priorKey, group, i)
	idx.many[nextKey] = append(idx.many[nextKey], next)
}

// Delete removes prior, the indexed state of a record
func (idx *Index) Delete(prior record.Record) {
	key := prior.Key(idx.spec.KeyField)
	if idx.one != nil {
		idx.deleteOne(key, prior)
		return
	}
	group := idx.many[key]
	idx.removeAt(key, group, idx.position(group, prior))
}

// deleteOne clears the slot unless another record has since taken it over
func (idx *Index) deleteOne(key record.Key, prior record.Record) {
	if cur, ok := idx.one[key]; ok && idx.id(cur) == idx.id(prior) {
		delete(idx.one, key)
	}
}

func (idx *Index) removeAt(key record.Key, group []record.Record, i int) {
	if len(group) == 1 {
		delete(idx.many, key)
		return
	}
	idx.many[key] = slices.Delete(group, i, i+1)
}

func (idx *Index) position(group []record.Record, r record.Record) int {
	id := idx.id(r)
	i := slices.IndexFunc(group, func(r record.Record) bool {
		return idx.id(r) == id
	})
	if i < 0 {
		panic(fmt.Errorf("index %s: record %s is not in group %s", idx.spec, id, r.Key(idx.spec.KeyField)))
	}
	return i
}

func (idx *Index) id(r record.Record) record.Key {
	return r.Key(idx.idField)
}

// One returns the record for the key in a ONE_TO_ONE index
func (idx *Index) One(key record.Key) (record.Record, bool) {
	if idx.one == nil {
		panic(fmt.Errorf("index %s is not ONE_TO_ONE", idx.spec))
	}
	r, ok := idx.one[key]
	return r, ok
}

// Many returns the records for the key in a ONE_TO_MANY index. The slice is a
// fresh copy; the records are not.
func (idx *Index) Many(key record.Key) []record.Record {
	if idx.many == nil {
		panic(fmt.Errorf("index %s is not ONE_TO_MANY", idx.spec))
	}
	return slices.Clone(idx.many[key])
}

// Lookup returns the records for the key regardless of the relationship
func (idx *Index) Lookup(key record.Key) []record.Record {
	if idx.one != nil {
		if r, ok := idx.one[key]; ok {
			return []record.Record{r}
		}
		return nil
	}
	return slices.Clone(idx.many[key])
}

// Has reports whether any record is indexed under the key
func (idx *Index) Has(key record.Key) bool {
	if idx.one != nil {
		_, ok := idx.one[key]
		return ok
	}
	return len(idx.many[key]) > 0
}

// Len returns the number of distinct keys in the index
func (idx *Index) Len() int {
	if idx.one != nil {
		return len(idx.one)
	}
	return len(idx.many)
}

// Keys returns the keys of the index in ascending order
func (idx *Index) Keys() []record.Key {
	keys := make([]record.Key, 0, idx.Len())
	if idx.one != nil {
		for k := range idx.one {
			keys = append(keys, k)
		}
	} else {
		for k := range idx.many {
			keys = append(keys, k)
		}
	}
	slices.SortFunc(keys, func(a, b record.Key) bool {
		return a.Compare(b) < 0
	})
	return keys
}

// IDs returns the contents of the index as key to ordered record ids
func (idx *Index) IDs() map[record.Key][]record.Key {
	res := make(map[record.Key][]record.Key, idx.Len())
	if idx.one != nil {
		for k, r := range idx.one {
			res[k] = []record.Key{idx.id(r)}
		}
		return res
	}
	for k, group := range idx.many {
		ids := make([]record.Key, 0, len(group))
		for _, r := range group {
			ids = append(ids, idx.id(r))
		}
		res[k] = ids
	}
	return res
}

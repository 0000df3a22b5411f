package store

import "github.com/ridge/orgkit/record"

// GetText is Get for an id typed by a human: the text is tried as a string
// first, then as a number or a boolean
func (s *Store) GetText(id string, opts ...Option) (record.Record, error) {
	o := makeOptions(opts)
	for _, k := range record.Candidates(id) {
		if r, ok := s.primary.One(s.idKey(k.Value())); ok {
			return s.out(r, o), nil
		}
	}
	if o.required {
		return record.Record{}, s.notFound(s.idKey(id), "")
	}
	return record.Record{}, nil
}

// GetByIndexText is GetByIndexName for a key typed by a human, see GetText
func (s *Store) GetByIndexText(name, key string, opts ...Option) (Match, error) {
	for _, k := range record.Candidates(key) {
		m, err := s.GetByIndexName(name, k.Value(), NoClone)
		if err != nil {
			return Match{}, err
		}
		if m.Found() {
			return s.GetByIndexName(name, k.Value(), opts...)
		}
	}
	return s.GetByIndexName(name, key, opts...)
}

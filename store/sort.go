package store

import (
	"strings"

	"github.com/ridge/orgkit/record"
	"golang.org/x/exp/slices"
	"golang.org/x/text/collate"
)

// sortRecords orders records by field. Strings collate by locale, values of
// different kinds follow record.Key ordering, and ties are broken by id, so
// the order is total.
func sortRecords(records []record.Record, field, idField string, collator *collate.Collator) {
	slices.SortStableFunc(records, func(a, b record.Record) bool {
		if c := compareKeys(a.Key(field), b.Key(field), collator); c != 0 {
			return c < 0
		}
		return a.Key(idField).Compare(b.Key(idField)) < 0
	})
}

func compareKeys(a, b record.Key, collator *collate.Collator) int {
	as, aok := a.Text()
	bs, bok := b.Text()
	if aok && bok {
		if c := collator.CompareString(as, bs); c != 0 {
			return c
		}
		return strings.Compare(as, bs)
	}
	return a.Compare(b)
}

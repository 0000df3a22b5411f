package store

import (
	"testing"

	"github.com/ridge/orgkit/indices"
	"github.com/ridge/orgkit/record"
	"github.com/ridge/tj"
	"github.com/stretchr/testify/require"
)

func TestGetText(t *testing.T) {
	s, err := New(Config{Resource: "role", KeyField: "id", Indexes: []indices.Spec{
		{Name: "byLevel", KeyField: "level", Relationship: indices.OneToMany},
		{Name: "byName", KeyField: "name", Relationship: indices.OneToOne},
	}}, []record.Record{
		record.New(tj.O{"id": 7, "name": "CTO", "level": 1}),
		record.New(tj.O{"id": "8", "name": "CFO", "level": 1}),
		record.New(tj.O{"id": "true", "name": "true", "level": "1"}),
	})
	require.NoError(t, err)

	r, err := s.GetText("7")
	require.NoError(t, err)
	require.Equal(t, "CTO", r.String("name"))
	r, err = s.GetText("8")
	require.NoError(t, err)
	require.Equal(t, "CFO", r.String("name"))
	r, err = s.GetText("true")
	require.NoError(t, err)
	require.Equal(t, "true", r.String("name"))

	r, err = s.GetText("9")
	require.NoError(t, err)
	require.True(t, r.IsZero())
	_, err = s.GetText("9", Required)
	require.ErrorIs(t, err, ErrNotFound)

	// the string reading wins
	m, err := s.GetByIndexText("byLevel", "1")
	require.NoError(t, err)
	require.Equal(t, keys("true"), ids(m.Records))

	m, err = s.GetByIndexText("byName", "CFO")
	require.NoError(t, err)
	require.Equal(t, k("8"), m.Record.Key("id"))

	m, err = s.GetByIndexText("byName", "CEO")
	require.NoError(t, err)
	require.False(t, m.Found())
	_, err = s.GetByIndexText("byName", "CEO", Required)
	require.EqualError(t, err, "did not find role for key 'CEO' in index 'byName'")
	_, err = s.GetByIndexText("byShoeSize", "42")
	require.ErrorIs(t, err, ErrUnknownIndex)
}

func TestGetByIndexTextNumber(t *testing.T) {
	s := testStore(t)
	m, err := s.GetByIndexText("byId", "3")
	require.NoError(t, err)
	require.Equal(t, "foo", m.Record.String("type"))

	// returned records are copies
	m.Record.Unwrap()["type"] = "baz"
	m, err = s.GetByIndexText("byId", "3")
	require.NoError(t, err)
	require.Equal(t, "foo", m.Record.String("type"))
}

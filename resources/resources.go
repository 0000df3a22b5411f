// Package resources declares the stores of the organizational resources:
// their key fields, id normalizers, secondary indexes and record checks.
package resources

import (
	"fmt"
	"strings"

	"github.com/ridge/orgkit/indices"
	"github.com/ridge/orgkit/record"
	"github.com/ridge/orgkit/store"
	"go.uber.org/zap"
)

// Kind describes one resource
type Kind struct {
	Name         string // plural, as on the command line: "staff", "vendors"
	Resource     string // singular, as in messages: "staff member", "vendor"
	KeyField     string
	IDNormalizer record.Normalizer
	Indexes      []indices.Spec
	ItemFactory  store.ItemFactory
}

// Config returns the store configuration of the resource
func (k Kind) Config(logger *zap.Logger) store.Config {
	return store.Config{
		Resource:     k.Resource,
		KeyField:     k.KeyField,
		IDNormalizer: k.IDNormalizer,
		Indexes:      append([]indices.Spec(nil), k.Indexes...),
		ItemFactory:  k.ItemFactory,
		Logger:       logger,
	}
}

// New creates a store of the resource holding the records
func (k Kind) New(records []record.Record, logger *zap.Logger) (*store.Store, error) {
	return store.New(k.Config(logger), records)
}

func (k Kind) String() string {
	return k.Name
}

func many(name, field string) indices.Spec {
	return indices.Spec{Name: name, KeyField: field, Relationship: indices.OneToMany}
}

// Known resources
var (
	Staff = Kind{
		Name:         "staff",
		Resource:     "staff member",
		KeyField:     "email",
		IDNormalizer: record.LowerCase,
		Indexes:      []indices.Spec{many("byEmploymentStatus", "employmentStatus")},
	}

	Roles = Kind{
		Name:     "roles",
		Resource: "role",
		KeyField: "name",
	}

	Vendors = Kind{
		Name:     "vendors",
		Resource: "vendor",
		KeyField: "legalName",
		Indexes:  []indices.Spec{many("byCommonName", "commonName")},
	}

	Technologies = Kind{
		Name:     "technologies",
		Resource: "technology",
		KeyField: "name",
	}

	Audits = Kind{
		Name:     "audits",
		Resource: "audit",
		KeyField: "name",
		Indexes:  []indices.Spec{many("byTarget", "target")},
	}

	AuditRecords = Kind{
		Name:        "audit-records",
		Resource:    "audit record",
		KeyField:    "id",
		Indexes:     []indices.Spec{many("byAudit", "auditName")},
		ItemFactory: auditRecord,
	}

	Accounts = Kind{
		Name:         "accounts",
		Resource:     "account",
		KeyField:     "directEmail",
		IDNormalizer: record.LowerCase,
		Indexes:      []indices.Spec{many("byDepartment", "department")},
	}
)

// Kinds lists the known resources
var Kinds = []Kind{Staff, Roles, Vendors, Technologies, Audits, AuditRecords, Accounts}

// Find returns the resource with the name
func Find(name string) (Kind, error) {
	for _, k := range Kinds {
		if k.Name == name {
			return k, nil
		}
	}
	names := make([]string, 0, len(Kinds))
	for _, k := range Kinds {
		names = append(names, k.Name)
	}
	return Kind{}, fmt.Errorf("unknown resource %q, expected one of %s", name, strings.Join(names, ", "))
}

// SplitAuditRecordID splits an audit record id "<audit name>/<target id>".
// The target id may contain further slashes.
func SplitAuditRecordID(id string) (auditName, targetID string, err error) {
	auditName, targetID, ok := strings.Cut(id, "/")
	if !ok || auditName == "" || targetID == "" {
		return "", "", fmt.Errorf("malformed audit record id '%s', should have form '<audit name>/<target id>'", id)
	}
	return auditName, targetID, nil
}

func auditRecord(r record.Record) (record.Record, error) {
	if !r.Truthy("id") {
		return r, nil // missing key field, reported by the store
	}
	id, ok := r.Value("id").(string)
	if !ok {
		return record.Record{}, fmt.Errorf("audit record id must be a string, not %T", r.Value("id"))
	}
	auditName, targetID, err := SplitAuditRecordID(id)
	if err != nil {
		return record.Record{}, err
	}
	return r.With("auditName", auditName).With("targetId", targetID), nil
}

// FullName combines the given and family names of a staff member. The
// official form is "<family>, <given>", the common one "<given> <family>".
func FullName(staffMember record.Record, official bool) string {
	given := staffMember.String("givenName")
	family := staffMember.String("familyName")
	switch {
	case given != "" && family != "":
		if official {
			return family + ", " + given
		}
		return given + " " + family
	case family != "":
		return family
	}
	return given
}

// Package orgkit is a toolkit for organizational data: staff, roles, vendors,
// technologies, audits and accounts, kept as records in indexed in-memory
// stores.
//
// # Records
//
// A record is an open set of attributes (record.Record). One attribute is the
// key field of its resource, e.g. "email" for staff. The record id is derived
// from the key field value through an id normalizer, e.g. lower-casing email
// addresses, and stored in the "id" attribute. Ids are unique within a store
// and do not change once set.
//
// # Stores
//
// A store (store.Store) holds the records of one resource, an implicit
// ONE_TO_ONE index over ids named "byId", and any number of secondary
// indexes. A secondary index maps the value of one field to a single record
// (ONE_TO_ONE) or to the records sharing the value in insertion order
// (ONE_TO_MANY):
//
//	staff, err := orgkit.NewStore(orgkit.Config{
//	    Resource:     "staff member",
//	    KeyField:     "email",
//	    IDNormalizer: orgkit.LowerCase,
//	    Indexes: []orgkit.IndexSpec{
//	        {Name: "byDepartment", KeyField: "department", Relationship: orgkit.OneToMany},
//	    },
//	}, records)
//
//	engineers, err := staff.GetByIndexName("byDepartment", "engineering")
//
// The resources package declares the stores of the known resources.
//
// Records are copied on the way in and on the way out. Mutating a record
// obtained from a store never affects the store, and mutating a record after
// passing it to a store does not either. The NoClone option trades that
// guarantee for speed.
//
// A store is not safe for concurrent use. The server package shows one way of
// sharing stores between goroutines: a single lock around every access.
//
// # Files
//
// The orgfile package loads records from JSON and YAML data files, writes
// them back, and watches files for changes.
//
// # Tool
//
// cmd/orgkit queries a data file from the command line and serves it over
// HTTP:
//
//	orgkit --kind staff --file staff.yaml lookup byEmploymentStatus employee
//	orgkit --kind staff --file staff.yaml serve --listen localhost:8080
package orgkit

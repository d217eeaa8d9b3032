package resource

import "time"

// Document is a schemaless field map persisted in a named collection.
// The store assigns the "_id" field; callers never choose identifiers.
type Document map[string]interface{}

// Token is the verified caller identity extracted from bearer-token
// claims by the auth middleware. The core never parses credentials.
type Token struct {
	UserID string
	Roles  []string
}

// HasRole reports whether the token carries the given role.
func (t Token) HasRole(role string) bool {
	for _, r := range t.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// Breadcrumb is the per-request audit record. It is built once by the
// auth middleware and stamped verbatim into the "created" field of
// every document at creation time.
type Breadcrumb struct {
	AtTime        time.Time `json:"at_time"`
	ByUser        string    `json:"by_user"`
	FromIP        string    `json:"from_ip"`
	CorrelationID string    `json:"correlation_id"`
}

// Record returns the breadcrumb as a document fragment suitable for
// embedding under "created".
func (b Breadcrumb) Record() Document {
	return Document{
		"at_time":        b.AtTime,
		"by_user":        b.ByUser,
		"from_ip":        b.FromIP,
		"correlation_id": b.CorrelationID,
	}
}

// Config describes one resource instantiation of the generic engine:
// the collection it lives in, which sort fields list queries may use,
// and which operations the HTTP boundary exposes.
type Config struct {
	Name              string
	Collection        string
	AllowedSortFields []string
	SupportsCreate    bool
	SupportsUpdate    bool
}

// DefaultDefinitions enumerates the resource collections served by
// this API. Reads are always exposed; create/update only where the
// domain allows it.
func DefaultDefinitions() []Config {
	return []Config{
		{
			Name:              "grade",
			Collection:        "grades",
			AllowedSortFields: []string{"name", "description", "created.at_time"},
			SupportsCreate:    true,
		},
		{
			Name:              "profile",
			Collection:        "profiles",
			AllowedSortFields: []string{"name", "status", "created.at_time"},
		},
		{
			Name:              "testdata",
			Collection:        "testdata",
			AllowedSortFields: []string{"name", "description", "status", "created.at_time"},
			SupportsCreate:    true,
			SupportsUpdate:    true,
		},
		{
			Name:              "testrun",
			Collection:        "testruns",
			AllowedSortFields: []string{"name", "description", "status", "created.at_time"},
			SupportsCreate:    true,
			SupportsUpdate:    true,
		},
		{
			Name:              "topic",
			Collection:        "topics",
			AllowedSortFields: []string{"name", "description", "created.at_time"},
			SupportsCreate:    true,
			SupportsUpdate:    true,
		},
	}
}

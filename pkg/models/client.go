// Package models defines the core domain records for planning datasets.
package models

// Attributes is the free-form key/value metadata attached to a client.
//
// When the source cell could not be parsed as JSON, ingestion stores a
// sentinel pair instead of real attributes so the original text survives
// round-trips and the failure is visible to validation.
type Attributes map[string]any

const (
	attrInvalidKey = "__invalid"
	attrRawKey     = "raw"
)

// InvalidAttributes builds the parse-failure sentinel carrying the original
// unparseable text.
func InvalidAttributes(raw string) Attributes {
	return Attributes{
		attrInvalidKey: true,
		attrRawKey:     raw,
	}
}

// Invalid reports whether the map is the parse-failure sentinel.
func (a Attributes) Invalid() bool {
	invalid, ok := a[attrInvalidKey].(bool)

	return ok && invalid
}

// Raw returns the original unparseable text carried by the sentinel.
func (a Attributes) Raw() string {
	raw, _ := a[attrRawKey].(string)

	return raw
}

// Client is a row of the Clients table.
type Client struct {
	ClientID         string     `json:"ClientID"                 validate:"required"`
	ClientName       string     `json:"ClientName"`
	PriorityLevel    int        `json:"PriorityLevel"`
	RequestedTaskIDs []string   `json:"RequestedTaskIDs"`
	GroupTag         string     `json:"GroupTag"`
	AttributesJSON   Attributes `json:"AttributesJSON,omitempty"`
}

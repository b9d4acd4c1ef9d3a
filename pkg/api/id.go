package api

import (
	"regexp"
	"strings"

	"github.com/google/uuid"
)

type (
	// FlowID is a unique identifier for a flow instance
	FlowID string

	// StepID identifies a step within a flow
	StepID string

	// Domain identifies an integration or protocol type (e.g. "zigbee")
	Domain string

	// EntryID is a unique identifier for a config entry
	EntryID string

	// Name is a string identifier for schema fields and data keys
	Name string
)

// InvalidDomainChars matches characters not permitted in integration domains.
// Valid characters are: lowercase letters, digits, and underscore
var InvalidDomainChars = regexp.MustCompile(`[^a-z0-9_]`)

// NewFlowID generates a unique flow identifier
func NewFlowID() FlowID {
	return FlowID(uuid.NewString())
}

// NewEntryID generates a unique config entry identifier
func NewEntryID() EntryID {
	return EntryID(uuid.NewString())
}

// SanitizeDomain lowercases a domain and strips invalid characters
func SanitizeDomain(domain string) Domain {
	lower := strings.ToLower(strings.TrimSpace(domain))
	return Domain(InvalidDomainChars.ReplaceAllString(lower, ""))
}

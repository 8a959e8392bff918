// Package aint provides handling for .aint domain names.
//
// Domain format: [label].aint
//
// Examples:
//
//	gemini.aint    (canonical form)
//	Gemini         (normalizes to "gemini.aint")
//	root_ai.aint   (labels may contain underscores)
//
// The .aint TLD is the top-level domain of the AInternet. Every registered
// agent owns exactly one label under it. Names are case-insensitive; the
// canonical form is lower-cased, trimmed, and always carries the suffix.
// The bare label (the "agent id") is what the hub's API paths use.
package aint

import "strings"

// Suffix is the fixed top-level domain appended to every canonical name.
const Suffix = ".aint"

// Normalize returns the canonical form of a domain name: lower-cased,
// trimmed, with the .aint suffix appended when absent.
//
// Normalize is idempotent: Normalize(Normalize(x)) == Normalize(x).
func Normalize(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	if !strings.HasSuffix(name, Suffix) {
		name += Suffix
	}
	return name
}

// AgentID derives the bare agent identifier from a name in any form:
// the canonical domain with the suffix stripped.
//
//	AgentID("Gemini.aint") == "gemini"
//	AgentID("gemini")      == "gemini"
func AgentID(name string) string {
	return strings.TrimSuffix(Normalize(name), Suffix)
}

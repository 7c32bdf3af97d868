// Package scrape provides a backend-agnostic toolkit for fetching, parsing,
// and querying HTML documents. Two retrieval strategies share one interface:
// a static parser that never executes scripts (http/ + goquery/) and a full
// scripting browser engine whose DOM mutates live (rod/).
//
// This package contains domain types and interfaces following Ben Johnson's
// Standard Package Layout. Implementations live in subdirectories named
// after their primary dependency (e.g., goquery/, rod/, sqlite/).
package scrape

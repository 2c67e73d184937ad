// Package praxis turns noisy community discussion about AI/ML services into
// a curated, deduplicated, quality-scored set of practice records. It
// collects raw posts from configured sources, batches them to fit an LLM
// context window, runs a three-stage classify/extract/score chain against a
// configurable LLM provider, merges near-duplicate results, and persists one
// atomically-replaced document set per service.
//
// This package contains domain types, interfaces, and pure domain logic
// following Ben Johnson's Standard Package Layout. Implementations live in
// subdirectories named after their primary dependency (e.g., sqlite/,
// gemini/, goquery/) or their concern (collect/, extract/, pipeline/).
package praxis

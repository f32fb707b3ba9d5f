// Package sitecounts renders the "site counts" block: a summary of how many
// published items exist per public content type, a short list of posts that
// match a fixed set of filters, and the id of the item currently being viewed.
//
// The package exposes a single Block interface. Data comes from a pluggable
// Repository (memory, Postgres and SQLite implementations live under repo/),
// text comes from an injected Translator and markup classes come from an
// injected PresentationBuilder, so nothing is read from process-wide state.
//
// # Hooks
//
// Two hook chains let callers change the output without touching this
// package. Template hooks receive the wrapper template together with the four
// rendered fragments and may return a different template. Output hooks receive
// the final markup and may rewrite it. Hooks run in registration order and
// each one sees the previous hook's result.
package sitecounts

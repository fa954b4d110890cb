// Package resourceboard provides a reusable library for submitting and
// moderating curated learning resources.
//
// It exposes a single Service interface covering submission, listing, and
// publication. Every submission enters as a draft visible only to
// superusers; a superuser publishes it by flipping the draft flag exactly
// once, which stamps the publication time. Repository implementations
// (memory, Postgres) live under subpackages, as does the HTTP surface and
// the access-tier classification middleware.
//
// # Access tiers
//
// Callers are classified into a closed set of tiers (anonymous,
// authenticated, superuser) before any operation runs. Classification never
// fails a request on its own; operations reject principals whose tier does
// not permit them.
package resourceboard

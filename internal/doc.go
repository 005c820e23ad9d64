// Package internal documents the Cosplay Angola server internals.
//
// The internal tree is organized by responsibility:
// - api: HTTP handlers, middleware, pagination, and routing
// - domain: business logic and domain models
// - storage: database access and repositories (pgx + Postgres)
// - images: Cloudinary client and adapters
// - auth, config, metrics: shared infrastructure
//
// Code in internal/ is not meant for external import.
package internal

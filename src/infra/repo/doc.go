// Package repo contains PostgreSQL implementations of the repository ports
// for data this service owns.
//
// Naming convention:
//   - Files: postgres_<entity>_repository.go
//   - Types: Postgres<Entity>Repository
//
// All repositories receive the database pool via constructor injection
// and implement the corresponding interface from src/core/ports.
package repo

// Package store provides persistent storage for the promptmesh gateway.
//
// # Architecture
//
// The gateway reads through narrow interfaces:
//
//   - APIKeyStore: credential lookup by hash, last-used touch, issue, revoke
//   - PromptStore: organization-scoped prompt reads joined to the default variant
//   - DirectoryStore: organization, member, and prompt writes used for seeding
//
// Store bundles all three. SQLiteStore implements it here; the postgres
// subpackage implements it on pgx.
//
// # Data Models
//
//   - Organization: tenant boundary for prompts and keys
//   - Member: one role (owner, admin, viewer) per user per organization
//   - APIKey: SHA-256 hash of a bearer token, never the token itself
//   - Prompt, PromptVariant, PromptArgument: a prompt has many variants, at
//     most one of them default, and a set of named arguments
//
// A prompt without a default variant is invisible to every PromptStore read.
//
// # SQLite Configuration
//
// Pragmas are passed in the DSN so every pooled connection gets them:
//
//	journal_mode(WAL)
//	foreign_keys(1)
//	busy_timeout(5000)
//
// # Migrations
//
// Migrations are embedded and applied by goose on store initialization.
// SQLite migration files live in internal/store/migrations/sqlite/.
//
// # Testing
//
// Use NewMockStore() for unit tests. SetError injects failures per method:
//
//	s := store.NewMockStore()
//	s.SetError("GetActiveAPIKeyByHash", errors.New("db down"))
package store

// Package models contains GORM-specific persistence models that map to database tables.
// These models are separate from domain entities to keep the domain layer free
// from ORM concerns.
//
// Structure:
//   - base.go: BaseModel shared by mutable rows
//   - ledger.go: orders, salary payments, expenses, bank savings entries and
//     distribution records
//
// The SQL schema itself lives in migrations/; the gorm tags mirror it so that
// tests can AutoMigrate an equivalent schema on SQLite.
package models

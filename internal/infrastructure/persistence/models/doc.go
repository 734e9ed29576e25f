// Package models contains GORM-specific persistence models that map to
// database tables. The order aggregate carries buffered domain events and a
// state machine, so it stays free of ORM concerns and is mapped through the
// model here. Plain row-shaped entities (products, agents, customers, stock
// movements) are persisted directly by their repositories and do not appear
// in this package.
package models

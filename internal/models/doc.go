// Package models defines the core domain models for mealsplit.
//
// # Models
//
//   - Bill: the snapshot of one splitting session (roster + items)
//   - LineItem: one unit of a purchased item and the people sharing it
//
// Participants are identified by their display name. Names are compared by
// exact string equality, so renaming a participant is the same as removing
// one and adding another.
//
// # Design Principles
//
// 1. **Snapshots are values**: a Bill handed out by the session package is
// never modified afterwards; every mutation produces a new Bill.
// 2. **One record per unit**: an item bought three times is three LineItems
// with the same name and price, so the allocation never needs a quantity.
// 3. **No pointers between records**: items reference participants by name.
package models

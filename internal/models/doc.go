// Package models defines the core domain models for splitledger.
//
// # Records
//
// Everything that moves money between people is a Record. A Record is one of
// two concrete types:
//   - Expense: a cost paid by one person and split among participants.
//   - Payment: a direct settlement from a payer to a receiver.
//
// The two are kept as separate structs so that shares only exist on
// expenses and a receiver only exists on payments. Code that needs to tell
// them apart uses a type switch.
//
// # People
//
// Participants are identified by opaque string IDs. A participant is either a
// registered User or a Friend, which is a contact owned by one user and not
// itself able to log in.
//
// # Design Principles
//
// 1. **Exact money**: amounts are decimal.Decimal, never float64
// 2. **Avoid circular references**: Use ID strings instead of pointers for relationships
// 3. **Immutable snapshots**: calculations read records and never modify them
package models

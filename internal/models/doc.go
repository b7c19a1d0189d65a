// Package models defines the core domain models for Splitweek.
//
// # Models
//
//   - SettlementPeriod: one Monday–Sunday accounting window per space
//   - Receipt / ReceiptItem: an itemized expense submission attached to a period
//   - ParticipantBalance: one member's derived position within a period
//   - Member: roster entry used for display enrichment only
//   - ScheduleConfig: per-space auto-close settings (stored, not interpreted here)
//
// # Design Principles
//
//  1. **Receipts are the source of truth**: the participant map on a period is
//     a derived cache, fully recomputed from the receipt set on every write.
//  2. **Integer currency**: all amounts are whole currency units (int64);
//     there is no floating point anywhere in the settlement math.
//  3. **Closed shapes**: drafts are validated at the boundary, so a persisted
//     receipt never carries an empty item name, a non-positive amount, or an
//     empty split set.
//  4. **Avoid circular references**: relationships use ID strings, never
//     pointers between models.
package models

// Package domain contains the core entities and value objects for canship.
//
// This package is the innermost layer of the application. It has no
// dependencies on infrastructure concerns (dfx, HTTP, file system, logging)
// and contains only the data model of a chunked transfer.
//
// # Entities
//
//   - [Chunk]: a read-only view into the payload at a given offset
//   - [ChunkIndex]: the ordinal the remote side uses to place a chunk
//   - [Progress]: persisted record of how much of a payload the remote holds
//   - [DeliveryError]: the failure of a single chunk write, with the amount
//     of the payload already written remotely
//
// # Design Principles
//
// Domain entities are:
//   - Immutable after construction (where practical)
//   - Free of infrastructure dependencies
//   - Testable without mocks or external systems
package domain

// Package ports defines the interfaces (ports) that connect the application
// layer to infrastructure adapters.
//
// # Port Interfaces
//
//   - [ChunkWriter]: writes one chunk to the remote target
//   - [PayloadSource]: supplies the bytes to upload
//   - [ProgressRepository]: persists and loads transfer progress
//   - [Logger]: structured logging abstraction
//   - [HTTPClient]: HTTP request abstraction for dependency injection
//
// # Usage
//
// The application layer (internal/app) depends only on these interfaces.
// Infrastructure adapters (internal/adapters) implement them with concrete
// implementations (dfx, HTTP, file system, zerolog).
package ports

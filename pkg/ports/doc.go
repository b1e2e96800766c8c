/*
Package ports defines the driven ports (interfaces) for lattice.

These interfaces decouple the validation core from where content lives.

# Key Interfaces

  - DocumentSource: enumerates collections and yields their raw documents
    (e.g., from the filesystem, Loam or memory).
  - Watchable: signals source changes so watch mode can rebuild.
*/
package ports

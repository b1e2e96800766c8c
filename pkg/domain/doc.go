/*
Package domain contains the core models shared by the lattice packages.

It is kept pure and free of I/O, following Hexagonal Architecture principles.

# Key Entities

  - RawDocument: a parsed but unvalidated content document.
  - Error kinds: registry-time (UnknownCollectionError, DuplicateCollectionError,
    SchemaCycleError, SchemaError), load-time (DocumentParseError,
    DuplicateDocumentError) and access-time (NotFoundError,
    CollectionValidationError, BuildError). Each matches a sentinel via errors.Is.
  - LifecycleHooks: callbacks fired while a build validates documents.
*/
package domain

// Package genie is a client for the Databricks Genie Spaces REST API and the
// two workspace APIs the examples lean on: Permissions (object type "genie")
// and SQL Statement Execution.
//
// # Endpoints
//
//   - POST   /api/2.0/genie/spaces
//   - GET    /api/2.0/genie/spaces
//   - GET    /api/2.0/genie/spaces/:id?include_serialized_space=true
//   - PATCH  /api/2.0/genie/spaces/:id
//   - DELETE /api/2.0/genie/spaces/:id
//   - GET    /api/2.0/permissions/genie/:id
//   - GET    /api/2.0/permissions/genie/:id/permissionLevels
//   - PATCH  /api/2.0/permissions/genie/:id
//   - PUT    /api/2.0/permissions/genie/:id
//   - POST   /api/2.0/sql/statements/
//
// # Error Handling
//
// Every non-2xx response is a *RemoteError. Errors match the kinds ErrAuth,
// ErrNotFound, ErrConstraint and ErrConflict through errors.Is. Only GETs
// are retried, with exponential backoff, on network errors and 5xx
// responses.
//
// # Authentication
//
// Requests are decorated by an Authenticator: a static token (TokenAuth),
// OAuth machine-to-machine credentials (NewOAuthM2MAuth) or a Databricks CLI
// profile (NewProfileAuth). Tokens are never logged.
package genie

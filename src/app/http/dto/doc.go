// Package dto contains Data Transfer Objects for HTTP requests and responses.
//
// Backend entities (events, media, tenant organizations and settings) are
// exchanged in the backend's own camelCase shape and bound straight into
// domain types. The types here cover query strings, forms and the request
// bodies that belong to this service.
//
// Naming convention:
//   - Query types: <Resource>ListQuery
//   - Request types: <Action><Resource>Request
package dto

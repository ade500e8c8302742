// Package http provides HTTP handlers and middleware for the water supply API.
//
// The router exposes the following endpoints:
//   - POST /statuses[?at=YYYY-MM-DD]: evaluates the profile document in the
//     request body. Response: {"status":{...},"report":{...}}.
//   - PUT /houses/{id}/profile: stores the profile document for a house. The
//     document's houseID must equal {id}. Response: {"profile":{...},"report":{...}}.
//   - GET /houses: lists stored profiles ordered by house id.
//     Response: {"profiles":[...]}.
//   - GET /houses/{id}/profile: returns the stored document verbatim with its
//     digest in the ETag header.
//   - DELETE /houses/{id}/profile: removes the stored document. 204 No Content.
//   - GET /houses/{id}/status[?at=YYYY-MM-DD]: resolves the stored profile.
//     Response: {"status":{...}}.
//   - GET /houses/{id}/supplies[?from=YYYY-MM-DD&to=YYYY-MM-DD]: lists supply
//     slots and the pairs that overlap. Response: {"supplies":[...],"overlaps":[...]}.
//     A range covering more than a year of dates answers 400 RANGE_TOO_LARGE.
//   - GET /healthz: reports storage reachability.
//   - GET /metrics: Prometheus exposition when configured.
//
// Malformed documents and unusable validity windows answer 422, unknown
// houses 404 and malformed query parameters 400.
package http

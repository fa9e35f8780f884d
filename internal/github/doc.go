// Package github is the transport layer for the GitHub REST API.
//
// It is built from three cooperating pieces:
//
//   - Pool: a set of bearer credentials, each with its own quota state
//     tracked from the rate-limit response headers. Acquisition always
//     hands out the credential with the most remaining requests.
//
//   - Executor: issues every outbound request. It classifies each
//     response, retries transient failures with exponential backoff,
//     rotates to another credential on rate-limit responses, and
//     surfaces everything else as typed errors.
//
//   - Collect / CollectSearch: lazy page-by-page iteration over list
//     endpoints, following the Link header and stopping at the first
//     short page.
//
// Callers above this package never see tokens, retries, or pagination;
// they see decoded payloads and typed errors.
package github

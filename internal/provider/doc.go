// Package provider resolves a provider name and credentials into a
// job.Backend.
//
// Two providers exist: Local runs circuits in-process and needs no account;
// Remote talks to a qsearch job service and needs a token. The token is
// resolved once, before any backend is created: an explicit token wins,
// then the stored credentials file, otherwise MissingTokenError.
package provider

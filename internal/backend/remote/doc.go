// Package remote is a job.Backend that talks to a qsearch job service over
// HTTP (see internal/server).
//
// # Protocol
//
//	POST   /v1/jobs              submit {backend, shots, circuit}
//	GET    /v1/jobs/{id}         status and error message
//	GET    /v1/jobs/{id}/result  counts of a DONE job
//	DELETE /v1/jobs/{id}         cancel a QUEUED or RUNNING job
//	GET    /v1/backends          backend names the service executes
//
// Every request carries "Authorization: Bearer <token>". Error responses
// are JSON {"code", "error"} with a non-2xx status.
package remote

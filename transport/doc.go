// Package transport performs the single request/response exchange with the identity
// endpoint.
//
// [Exchanger] is the capability the submitter depends on: send a body, get back a status
// and the complete body, or an error when no response could be obtained. [HTTPExchanger]
// is the production implementation over net/http; tests substitute [ExchangerFunc].
//
// Exchangers never interpret the body. Turning (status, body) into an outcome is the
// codec package's job.
package transport

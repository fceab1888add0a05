// Package tokenstore holds durable single-slot stores for the bearer token.
//
// Every store keeps exactly one token. Get reports absence with ok == false
// rather than an empty string.
package tokenstore

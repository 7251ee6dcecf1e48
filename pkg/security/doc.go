// Package security holds the relay's credential handling. See the secrets
// subpackage.
package security

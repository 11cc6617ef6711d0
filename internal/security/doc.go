// Package security implements the bridge's single shared-secret gate.
//
// Every websocket session and every diagnostics request presents a token
// that Gate.Validate compares with the configured secret. The secret may be
// stored in plaintext (auth.token, usually from POSBRIDGE_AUTH_TOKEN) or as
// an Argon2id PHC hash (auth.token_hash) generated with
// `posbridge hash-token <secret>`.
package security

// Package secrets defines the secret-provider boundary used to obtain API
// credentials at startup. Tokens are fetched once and treated as immutable
// configuration for the duration of a run.
package secrets

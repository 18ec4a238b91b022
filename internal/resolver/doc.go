// Package resolver maps raw status-check context strings onto concrete build
// pipeline identities held in the reference data store.
//
// Resolution walks an ordered list of lookup strategies: the
// strategic-initiative project override first, then the environment preferred
// by the audited branch, then the remaining environment. Contexts following
// the standalone webhook naming convention never reach this package.
package resolver

// Package githubapi implements the REST client used to read repository,
// branch-protection, ruleset, webhook, and file-content data from GitHub.
//
// The client is read-only and reports the "branch not protected" response as
// an absent record rather than an error.
package githubapi

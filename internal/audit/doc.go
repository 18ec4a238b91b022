// Package audit orchestrates the release-gate compliance audit: it walks
// organizations, repositories, and target branches, combines the protection
// extractor, context resolver, gate inspector, and classifier, and emits
// report rows.
//
// Organizations are processed sequentially so the per-organization owner
// reload never races inspection; repositories within an organization run on a
// bounded worker pool. A failing repository degrades to error-detail rows and
// never aborts the run.
package audit

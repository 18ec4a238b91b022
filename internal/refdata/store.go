package refdata

import (
	"strings"
	"sync"
)

const defaultOwnerEmailConstant = "no-owner@unknown.com"

// DefaultOwnerEmail is recorded for repositories without an owner mapping.
const DefaultOwnerEmail = defaultOwnerEmailConstant

type ignoreKey struct {
	organization string
	repository   string
}

// Store aggregates the reference data consulted during an audit run.
//
// Pipeline tables and the ignore set are immutable after construction. The
// owner table is swapped wholesale via ReplaceOwners before an organization's
// repositories are processed; concurrent readers are safe.
type Store struct {
	primaryPipelines   *PipelineTable
	secondaryPipelines *PipelineTable
	ignoredPairs       map[ignoreKey]struct{}

	ownerMutex sync.RWMutex
	owners     map[string]string
}

// NewStore constructs a Store over the provided pipeline tables and ignore pairs.
func NewStore(primaryPipelines *PipelineTable, secondaryPipelines *PipelineTable, ignoredPairs []IgnoredRepository) *Store {
	if primaryPipelines == nil {
		primaryPipelines = NewPipelineTable()
	}
	if secondaryPipelines == nil {
		secondaryPipelines = NewPipelineTable()
	}

	ignoreSet := make(map[ignoreKey]struct{}, len(ignoredPairs))
	for _, ignoredPair := range ignoredPairs {
		ignoreSet[newIgnoreKey(ignoredPair.Organization, ignoredPair.Repository)] = struct{}{}
	}

	return &Store{
		primaryPipelines:   primaryPipelines,
		secondaryPipelines: secondaryPipelines,
		ignoredPairs:       ignoreSet,
		owners:             make(map[string]string),
	}
}

// IgnoredRepository names one organization/repository pair excluded from remediation reporting.
type IgnoredRepository struct {
	Organization string
	Repository   string
}

func newIgnoreKey(organization string, repository string) ignoreKey {
	return ignoreKey{
		organization: strings.ToLower(strings.TrimSpace(organization)),
		repository:   strings.ToLower(strings.TrimSpace(repository)),
	}
}

// PipelineTableFor returns the pipeline table backing the requested environment.
func (store *Store) PipelineTableFor(environment Environment) *PipelineTable {
	if environment == EnvironmentSecondary {
		return store.secondaryPipelines
	}
	return store.primaryPipelines
}

// IsIgnored reports whether the organization/repository pair is excluded from
// remediation reporting. Ignored repositories still appear in the full audit.
func (store *Store) IsIgnored(organization string, repository string) bool {
	_, ignored := store.ignoredPairs[newIgnoreKey(organization, repository)]
	return ignored
}

// ReplaceOwners swaps the owner table. Entries belonging to the previous
// organization are discarded entirely.
func (store *Store) ReplaceOwners(owners map[string]string) {
	replacement := make(map[string]string, len(owners))
	for repository, ownerEmail := range owners {
		normalizedRepository := strings.ToLower(strings.TrimSpace(repository))
		trimmedEmail := strings.TrimSpace(ownerEmail)
		if len(normalizedRepository) == 0 || len(trimmedEmail) == 0 {
			continue
		}
		replacement[normalizedRepository] = trimmedEmail
	}

	store.ownerMutex.Lock()
	store.owners = replacement
	store.ownerMutex.Unlock()
}

// OwnerEmail resolves the owner mailbox for a repository, falling back to
// DefaultOwnerEmail when the repository has no mapping.
func (store *Store) OwnerEmail(repository string) string {
	store.ownerMutex.RLock()
	defer store.ownerMutex.RUnlock()

	ownerEmail, found := store.owners[strings.ToLower(strings.TrimSpace(repository))]
	if !found || len(ownerEmail) == 0 {
		return DefaultOwnerEmail
	}
	return ownerEmail
}

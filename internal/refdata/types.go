package refdata

import "strings"

// Environment identifies which pipeline reference table satisfied a lookup.
// The primary environment backs main-branch release tracks, the secondary
// environment backs every other release track.
type Environment string

// Supported pipeline reference environments.
const (
	EnvironmentPrimary   Environment = "primary"
	EnvironmentSecondary Environment = "secondary"
)

// PipelineIdentity locates one build pipeline inside the CI system.
type PipelineIdentity struct {
	Organization string
	Project      string
	ID           int
}

type projectScopedKey struct {
	project     string
	displayName string
}

// PipelineTable indexes pipeline identities by display name and by the
// (project, display name) pair used for project-scoped overrides.
type PipelineTable struct {
	byDisplayName   map[string]PipelineIdentity
	byProjectScoped map[projectScopedKey]PipelineIdentity
}

// NewPipelineTable constructs an empty pipeline table.
func NewPipelineTable() *PipelineTable {
	return &PipelineTable{
		byDisplayName:   make(map[string]PipelineIdentity),
		byProjectScoped: make(map[projectScopedKey]PipelineIdentity),
	}
}

// Add registers the identity under both the flat display-name key and the
// project-scoped key. The first registration for a key wins so that
// duplicated reference rows do not silently reshuffle lookups.
func (table *PipelineTable) Add(identity PipelineIdentity, displayName string) {
	normalizedName := strings.TrimSpace(displayName)
	if len(normalizedName) == 0 {
		return
	}

	if _, exists := table.byDisplayName[normalizedName]; !exists {
		table.byDisplayName[normalizedName] = identity
	}

	scopedKey := projectScopedKey{project: strings.TrimSpace(identity.Project), displayName: normalizedName}
	if _, exists := table.byProjectScoped[scopedKey]; !exists {
		table.byProjectScoped[scopedKey] = identity
	}
}

// LookupByDisplayName resolves a pipeline identity by its display name alone.
func (table *PipelineTable) LookupByDisplayName(displayName string) (PipelineIdentity, bool) {
	identity, found := table.byDisplayName[strings.TrimSpace(displayName)]
	return identity, found
}

// LookupByProjectAndName resolves a pipeline identity scoped to a project.
func (table *PipelineTable) LookupByProjectAndName(project string, displayName string) (PipelineIdentity, bool) {
	scopedKey := projectScopedKey{project: strings.TrimSpace(project), displayName: strings.TrimSpace(displayName)}
	identity, found := table.byProjectScoped[scopedKey]
	return identity, found
}

// Size reports how many display names the table indexes.
func (table *PipelineTable) Size() int {
	return len(table.byDisplayName)
}

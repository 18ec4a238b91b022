package azdo

// Build definition process types as reported by the API.
const (
	ProcessTypeClassic = 1
	ProcessTypeYAML    = 2
)

// PullRequestTriggerType marks a trigger that fires on pull requests.
const PullRequestTriggerType = "pullRequest"

// Trigger is one trigger entry of a build definition.
type Trigger struct {
	TriggerType string `json:"triggerType"`
}

// TaskReference identifies the task a classic build step executes.
type TaskReference struct {
	ID             string `json:"id"`
	DefinitionType string `json:"definitionType"`
}

// Step is one build step inside a classic phase.
type Step struct {
	Enabled     bool           `json:"enabled"`
	DisplayName string         `json:"displayName"`
	Task        *TaskReference `json:"task"`
}

// Phase groups the steps of a classic build definition.
type Phase struct {
	Name  string `json:"name"`
	Steps []Step `json:"steps"`
}

// Process describes how a build definition is authored. Classic definitions
// carry a phase tree; YAML definitions name their definition file instead.
type Process struct {
	Type         int     `json:"type"`
	Phases       []Phase `json:"phases"`
	YAMLFilename string  `json:"yamlFilename"`
}

// RepositoryReference names the source repository of a build definition.
type RepositoryReference struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Type          string `json:"type"`
	DefaultBranch string `json:"defaultBranch"`
}

// BuildDefinition is the subset of the definition record the audit consumes.
type BuildDefinition struct {
	ID         int                  `json:"id"`
	Name       string               `json:"name"`
	Process    *Process             `json:"process"`
	Repository *RepositoryReference `json:"repository"`
	Triggers   []Trigger            `json:"triggers"`
}

// HasPullRequestTrigger reports whether any trigger fires on pull requests.
func (definition *BuildDefinition) HasPullRequestTrigger() bool {
	if definition == nil {
		return false
	}
	for _, trigger := range definition.Triggers {
		if trigger.TriggerType == PullRequestTriggerType {
			return true
		}
	}
	return false
}

package gates

import (
	"strings"

	"github.com/infoseceng/releasegate/internal/azdo"
)

const (
	metaTaskDefinitionTypeConstant = "metaTask"
	disabledNameSeparatorConstant  = ", "
)

type classicScanTally struct {
	enabledMatches    int
	disabledStepNames []string
}

// scanClassicDefinition walks every step of every phase and tallies
// static-analysis matches. A step matches when its task carries the well-known
// tool GUID or when it is a task group named after the tool. One disabled
// match fails the whole pipeline regardless of other enabled occurrences.
func scanClassicDefinition(definition *azdo.BuildDefinition, toolTaskID string, toolName string) (StaticAnalysisState, string) {
	tally := classicScanTally{}
	if definition.Process != nil {
		for _, phase := range definition.Process.Phases {
			for _, step := range phase.Steps {
				if !stepMatchesTool(step, toolTaskID, toolName) {
					continue
				}
				if step.Enabled {
					tally.enabledMatches++
					continue
				}
				tally.disabledStepNames = append(tally.disabledStepNames, step.DisplayName)
			}
		}
	}

	switch {
	case tally.enabledMatches == 0 && len(tally.disabledStepNames) == 0:
		return StaticAnalysisNotApplicable, DetailNoCheckmarx
	case len(tally.disabledStepNames) > 0:
		return StaticAnalysisDisabled, strings.Join(tally.disabledStepNames, disabledNameSeparatorConstant)
	default:
		return StaticAnalysisEnabled, ""
	}
}

func stepMatchesTool(step azdo.Step, toolTaskID string, toolName string) bool {
	if step.Task == nil {
		return false
	}
	if strings.EqualFold(step.Task.ID, toolTaskID) {
		return true
	}
	if strings.EqualFold(step.Task.DefinitionType, metaTaskDefinitionTypeConstant) {
		return strings.Contains(strings.ToLower(step.DisplayName), strings.ToLower(toolName))
	}
	return false
}

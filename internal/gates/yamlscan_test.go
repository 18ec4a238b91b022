package gates_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/infoseceng/releasegate/internal/gates"
)

const yamlScanSubtestNameTemplateConstant = "%d_%s"

func TestLineWindowScannerScan(testInstance *testing.T) {
	testCases := []struct {
		name                  string
		content               string
		expectedToolMentioned bool
		expectedDisableFound  bool
	}{
		{
			name:                  "tool_absent",
			content:               "steps:\n  - script: make build\n",
			expectedToolMentioned: false,
			expectedDisableFound:  false,
		},
		{
			name:                  "tool_present_and_enabled",
			content:               "steps:\n  - task: CheckmarxScan@1\n    inputs:\n      project: payments\n",
			expectedToolMentioned: true,
			expectedDisableFound:  false,
		},
		{
			name:                  "tool_disabled_via_enabled_flag",
			content:               "steps:\n  - task: CheckmarxScan@1\n    enabled: false\n",
			expectedToolMentioned: true,
			expectedDisableFound:  true,
		},
		{
			name:                  "tool_disabled_via_condition",
			content:               "steps:\n  - task: checkmarx-sast\n    condition: false\n",
			expectedToolMentioned: true,
			expectedDisableFound:  true,
		},
		{
			name:                  "disable_marker_outside_window_is_ignored",
			content:               "steps:\n  - task: CheckmarxScan@1\n\n\n\n\n\n\n  - script: echo done\n    enabled: false\n",
			expectedToolMentioned: true,
			expectedDisableFound:  false,
		},
		{
			name:                  "mention_is_case_insensitive",
			content:               "steps:\n  - template: templates/CHECKMARX.yml\n",
			expectedToolMentioned: true,
			expectedDisableFound:  false,
		},
	}

	scanner := gates.NewLineWindowScanner("checkmarx")
	for testCaseIndex, testCase := range testCases {
		testInstance.Run(fmt.Sprintf(yamlScanSubtestNameTemplateConstant, testCaseIndex, testCase.name), func(subtestInstance *testing.T) {
			scanResult, scanError := scanner.Scan([]byte(testCase.content))
			require.NoError(subtestInstance, scanError)
			require.Equal(subtestInstance, testCase.expectedToolMentioned, scanResult.ToolMentioned)
			require.Equal(subtestInstance, testCase.expectedDisableFound, scanResult.DisableFound)
		})
	}
}

func TestLineWindowScannerScanRejectsUndecodableContent(testInstance *testing.T) {
	scanner := gates.NewLineWindowScanner("checkmarx")
	_, scanError := scanner.Scan([]byte("steps:\n\t- broken: [unclosed\n"))
	require.Error(testInstance, scanError)
}

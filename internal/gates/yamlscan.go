package gates

import (
	"fmt"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	defaultScanWindowLinesConstant = 5
	yamlDecodeErrorTemplate        = "unable to decode pipeline definition: %w"
	disableMarkerDetailTemplate    = "disable marker near line %d"
)

// Pattern for an explicit disable marker: an enabled flag or condition pinned to false.
var disableMarkerPattern = regexp.MustCompile(`(?i)\b(enabled|condition)\s*:\s*['"]?\s*false\b`)

// LineWindowScanner is the best-effort YAML gate scanner: it looks for the
// tool name anywhere in the decoded definition, then greps a window of lines
// around each mention for an explicit disable marker. Known to be fragile;
// kept behind YAMLGateScanner so a structured parse can replace it.
type LineWindowScanner struct {
	toolName    string
	windowLines int
}

// NewLineWindowScanner constructs a scanner for the provided tool name.
func NewLineWindowScanner(toolName string) *LineWindowScanner {
	return &LineWindowScanner{
		toolName:    strings.ToLower(strings.TrimSpace(toolName)),
		windowLines: defaultScanWindowLinesConstant,
	}
}

// Scan decodes the definition and searches for disabled tool occurrences.
func (scanner *LineWindowScanner) Scan(content []byte) (YAMLScanResult, error) {
	var decodedDocument any
	if decodeError := yaml.Unmarshal(content, &decodedDocument); decodeError != nil {
		return YAMLScanResult{}, fmt.Errorf(yamlDecodeErrorTemplate, decodeError)
	}

	definitionLines := strings.Split(string(content), "\n")
	result := YAMLScanResult{}
	for lineIndex, definitionLine := range definitionLines {
		if !strings.Contains(strings.ToLower(definitionLine), scanner.toolName) {
			continue
		}
		result.ToolMentioned = true

		windowStart := lineIndex - scanner.windowLines
		if windowStart < 0 {
			windowStart = 0
		}
		windowEnd := lineIndex + scanner.windowLines
		if windowEnd >= len(definitionLines) {
			windowEnd = len(definitionLines) - 1
		}

		for windowIndex := windowStart; windowIndex <= windowEnd; windowIndex++ {
			if disableMarkerPattern.MatchString(definitionLines[windowIndex]) {
				result.DisableFound = true
				result.Detail = fmt.Sprintf(disableMarkerDetailTemplate, windowIndex+1)
				return result, nil
			}
		}
	}

	return result, nil
}

package tutor

import (
	"regexp"
	"strings"
)

var jsonFence = regexp.MustCompile("(?s)```json\\s*(.*?)\\s*```")

// ExtractJSONBlock pulls the payload of a ```json fenced block out of a model
// answer. Models routinely wrap structured output in markdown fences; callers
// that asked for JSON use this before parsing. Returns false when no fenced
// block is present.
func ExtractJSONBlock(answer string) (string, bool) {
	match := jsonFence.FindStringSubmatch(answer)
	if match == nil {
		return "", false
	}
	return strings.TrimSpace(match[1]), true
}

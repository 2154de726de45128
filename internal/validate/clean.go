package validate

import "strings"

// CleanCode strips markdown code-fence lines from generated output.
// Only fence lines are removed: every other line, blank lines included,
// passes through unchanged, so line numbers in later compiler errors
// stay meaningful relative to the model's output.
func CleanCode(text string) string {
	lines := strings.Split(text, "\n")
	cleaned := make([]string, 0, len(lines))
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "```") {
			continue
		}
		cleaned = append(cleaned, line)
	}
	return strings.Join(cleaned, "\n")
}

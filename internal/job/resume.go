package job

import (
	"fmt"
	"os"
	"strings"
)

// Resume is the candidate profile matched against postings. It is owned by
// the caller and read-only to the pipeline.
type Resume struct {
	// Text is the full plain-text resume content.
	Text string
	// Skills is an optional structured skill list supplied alongside the text.
	Skills []string
}

// LoadResume reads a plain-text resume from disk.
func LoadResume(path string, skills []string) (*Resume, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading resume file %q: %w", path, err)
	}

	text := strings.TrimSpace(string(data))
	if text == "" {
		return nil, fmt.Errorf("resume file %q is empty", path)
	}

	return &Resume{Text: text, Skills: skills}, nil
}

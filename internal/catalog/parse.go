package catalog

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/hugo-lorenzo-mato/panel-ai/internal/core"
)

// frontmatter mirrors the EXPERT.md metadata header.
type frontmatter struct {
	Name        string   `yaml:"name"`
	Description string   `yaml:"description"`
	Metadata    metadata `yaml:"metadata"`
}

type metadata struct {
	Emoji    string   `yaml:"emoji"`
	Priority int      `yaml:"priority"`
	Domains  []string `yaml:"domains"`
}

const frontmatterDelim = "---"

// ParseExpertFile parses a single EXPERT.md document: a YAML frontmatter
// block between "---" delimiters followed by the persona's system prompt.
// A document missing the required name field is an error; the catalog skips
// such documents without aborting the whole load.
func ParseExpertFile(path string) (*core.Expert, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading expert file: %w", err)
	}

	header, body, err := splitFrontmatter(string(raw))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	var fm frontmatter
	fm.Metadata.Priority = 1
	fm.Metadata.Emoji = "🤖"
	if err := yaml.Unmarshal([]byte(header), &fm); err != nil {
		return nil, fmt.Errorf("%s: parsing frontmatter: %w", path, err)
	}
	if fm.Name == "" {
		return nil, fmt.Errorf("%s: frontmatter missing required field %q", path, "name")
	}

	return &core.Expert{
		Name:         fm.Name,
		Description:  fm.Description,
		Emoji:        fm.Metadata.Emoji,
		Priority:     fm.Metadata.Priority,
		Domains:      fm.Metadata.Domains,
		SystemPrompt: strings.TrimSpace(body),
		SourcePath:   path,
	}, nil
}

func splitFrontmatter(content string) (header, body string, err error) {
	trimmed := strings.TrimLeft(content, "\ufeff\n\r ")
	if !strings.HasPrefix(trimmed, frontmatterDelim) {
		return "", "", fmt.Errorf("missing frontmatter")
	}
	rest := trimmed[len(frontmatterDelim):]
	idx := strings.Index(rest, "\n"+frontmatterDelim)
	if idx < 0 {
		return "", "", fmt.Errorf("unterminated frontmatter")
	}
	header = rest[:idx]
	body = rest[idx+len("\n"+frontmatterDelim):]
	// Drop the remainder of the closing delimiter line.
	if nl := strings.IndexByte(body, '\n'); nl >= 0 {
		body = body[nl+1:]
	} else {
		body = ""
	}
	if strings.TrimSpace(header) == "" {
		return "", "", fmt.Errorf("empty frontmatter")
	}
	return header, body, nil
}

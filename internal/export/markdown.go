package export

// MarkdownExporter is the identity format: the canonical report already is
// markdown.
type MarkdownExporter struct{}

// Name implements core.Exporter.
func (e *MarkdownExporter) Name() string { return "markdown" }

// Export implements core.Exporter.
func (e *MarkdownExporter) Export(content string, _ map[string]string) (string, error) {
	return content, nil
}

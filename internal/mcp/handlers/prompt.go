package handlers

import (
	"fmt"
	"strings"

	"github.com/kolapsis/vizdocs/internal/config"
	"github.com/kolapsis/vizdocs/internal/library"
)

// promptInput carries everything the extraction prompt depends on. Prompt
// assembly is pure templating: the classification itself is performed by
// the LLM that reads the result, never locally.
type promptInput struct {
	Query     string
	Library   library.ID   // empty means "detect"
	Installed []library.ID // sniffer result, used as a detection hint
	MaxTopics int
	Policy    config.ExtractionConfig
}

// buildExtractionPrompt assembles the full instruction prompt for the
// calling LLM: a library-context or detection phase, followed by uniform
// extraction rules and the required output shape.
func buildExtractionPrompt(in promptInput) string {
	var b strings.Builder

	b.WriteString("You are analyzing a visualization documentation query.\n\n")
	fmt.Fprintf(&b, "User query: %q\n\n", in.Query)

	if in.Library != "" {
		writeLibraryContext(&b, in.Library)
	} else {
		writeDetectionPhase(&b, in.Installed)
	}

	writeExtractionRules(&b, in)
	writeOutputShape(&b, in)

	return b.String()
}

// writeLibraryContext emits the section used when the caller already knows
// the target library.
func writeLibraryContext(b *strings.Builder, lib library.ID) {
	desc, err := library.Get(lib)
	if err != nil {
		// Callers validate before building; keep the prompt usable anyway.
		fmt.Fprintf(b, "## Library Context\n\nTarget library: %s\n\n", lib)
		return
	}

	b.WriteString("## Library Context\n\n")
	fmt.Fprintf(b, "Target library: %s (%s)\n", desc.Name, desc.ID)
	fmt.Fprintf(b, "Description: %s\n", desc.Description)
	if desc.Keywords != "" {
		fmt.Fprintf(b, "Keyword glossary: %s\n", desc.Keywords)
	}
	if desc.CodeStyle != "" {
		fmt.Fprintf(b, "Code style notes: %s\n", desc.CodeStyle)
	}
	b.WriteString("\n")
}

// writeDetectionPhase emits the section used when no library was supplied.
func writeDetectionPhase(b *strings.Builder, installed []library.ID) {
	b.WriteString("## Phase 1: Library Detection\n\n")
	b.WriteString("No target library was specified. Determine the most relevant one:\n")
	b.WriteString("1. Inspect the current project's dependencies (package manifest and installed modules) for any of the libraries below.\n")
	b.WriteString("2. Match the query's intent against each library description.\n")
	b.WriteString("3. A library found in the project dependencies takes priority over a pure intent match.\n\n")

	if len(installed) > 0 {
		names := make([]string, 0, len(installed))
		for _, lib := range installed {
			names = append(names, string(lib))
		}
		fmt.Fprintf(b, "Detected in this project already: %s\n\n", strings.Join(names, ", "))
	}

	b.WriteString("Candidate libraries:\n")
	for _, desc := range library.All() {
		fmt.Fprintf(b, "- %s (%s): %s\n", desc.Name, desc.ID, desc.Description)
	}
	fmt.Fprintf(b, "\nIf nothing matches, default to %s.\n\n", library.Default)
}

// writeExtractionRules emits the uniform rules section shared by both
// prompt variants.
func writeExtractionRules(b *strings.Builder, in promptInput) {
	b.WriteString("## Extraction Rules\n\n")
	fmt.Fprintf(b, "1. Extract up to %d meaningful topic phrases from the query, using only vocabulary from the library's keyword glossary.\n", in.MaxTopics)
	b.WriteString("2. Classify the user's intent as exactly one of: learn, implement, solve.\n")
	b.WriteString("   - \"learn\": cue phrases like \"what is\", \"how does\", \"explain\", \"difference between\".\n")
	b.WriteString("   - \"implement\": cue phrases like \"how to\", \"create\", \"build\", \"add\", \"render\".\n")
	b.WriteString("   - \"solve\": cue phrases like \"error\", \"not working\", \"fix\", \"debug\", \"unexpected\".\n")

	p := in.Policy
	fmt.Fprintf(b, "3. Decide whether the task is complex. Treat it as complex when it spans multiple technical concepts (more than %d distinct topics), uses multi-step phrasing or is longer than %d characters, or contains more than %d action verbs.\n",
		p.ComplexTopicCount, p.ComplexQueryLength, p.ComplexActionVerbs)
	fmt.Fprintf(b, "4. If complex, decompose the query into %d-%d ordered sub-tasks, each independently answerable with its own query and topic, ordered basic to advanced.\n\n",
		p.MinSubTasks, p.MaxSubTasks)
}

// writeOutputShape emits the JSON shape the LLM must produce.
func writeOutputShape(b *strings.Builder, in promptInput) {
	b.WriteString("## Required Output\n\n")
	b.WriteString("Respond with JSON of this exact shape:\n")
	b.WriteString("```json\n")
	b.WriteString("{\n")
	b.WriteString("  \"library\": \"<one of: " + strings.Join(library.Slugs(), ", ") + ">\",\n")
	fmt.Fprintf(b, "  \"topics\": [\"<up to %d phrases>\"],\n", in.MaxTopics)
	b.WriteString("  \"intent\": \"<learn|implement|solve>\",\n")
	b.WriteString("  \"isComplexTask\": <true|false>,\n")
	b.WriteString("  \"subTasks\": [{\"query\": \"...\", \"topic\": \"...\", \"intent\": \"...\"}]\n")
	b.WriteString("}\n")
	b.WriteString("```\n\n")
	fmt.Fprintf(b, "Then call the %q tool with the library, a comma-joined topic string, and the intent (plus subTasks when the task is complex).\n", QueryToolName)
}

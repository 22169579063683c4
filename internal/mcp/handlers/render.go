package handlers

import (
	"fmt"
	"strings"
	"time"

	"github.com/kolapsis/vizdocs/internal/docs"
	"github.com/kolapsis/vizdocs/internal/library"
)

// renderSimple assembles the answer document for a single-fetch query.
func renderSimple(desc library.Descriptor, query, topic, intent string, outcome docs.Outcome) string {
	var b strings.Builder

	writeHeader(&b, desc, query, topic)

	switch {
	case outcome.Found():
		b.WriteString("## Related Documentation\n\n")
		b.WriteString(strings.TrimSpace(outcome.Text))
		b.WriteString("\n\n")
	case outcome.Status == docs.StatusFailed:
		writeFetchFailure(&b, desc, outcome.Reason)
	default:
		writeNoContent(&b, desc, topic)
	}

	writeGuidance(&b, intent)
	writeNextSteps(&b)

	return b.String()
}

// renderSubTasks assembles the answer document for a decomposed query:
// one labeled sub-section per sub-task in caller order, then an aggregate
// summary tiered by fetch-success ratio.
func renderSubTasks(desc library.Descriptor, query, intent string, tasks []subTask, outcomes []docs.Outcome) string {
	var b strings.Builder

	writeHeader(&b, desc, query, "")

	succeeded := 0
	for i, task := range tasks {
		fmt.Fprintf(&b, "## Sub-task %d: %s\n\n", i+1, task.Query)
		fmt.Fprintf(&b, "**Topic:** %s\n\n", task.Topic)

		outcome := outcomes[i]
		switch {
		case outcome.Found():
			succeeded++
			b.WriteString(strings.TrimSpace(outcome.Text))
			b.WriteString("\n\n")
		case outcome.Status == docs.StatusFailed:
			fmt.Fprintf(&b, "⚠️ This sub-task could not be answered: %s\n\n", outcome.Reason)
		default:
			fmt.Fprintf(&b, "No documentation found for %q. Consider rephrasing this sub-task with terms from the %s glossary.\n\n", task.Topic, desc.Name)
		}
	}

	writeSummary(&b, desc, succeeded, len(tasks))
	writeGuidance(&b, intent)
	writeNextSteps(&b)

	return b.String()
}

func writeHeader(b *strings.Builder, desc library.Descriptor, query, topic string) {
	fmt.Fprintf(b, "# %s Documentation Lookup\n\n", desc.Name)
	fmt.Fprintf(b, "**Question:** %s\n", query)
	if topic != "" {
		fmt.Fprintf(b, "**Search topic:** %s\n", topic)
	}
	b.WriteString("\n")
}

func writeFetchFailure(b *strings.Builder, desc library.Descriptor, reason string) {
	fmt.Fprintf(b, "⚠️ Documentation lookup failed: %s\n\n", reason)
	b.WriteString("Suggestions:\n")
	b.WriteString("- Retry with refined search terms from the keyword glossary\n")
	fmt.Fprintf(b, "- Consult the official %s documentation directly\n\n", desc.Name)
}

func writeNoContent(b *strings.Builder, desc library.Descriptor, topic string) {
	fmt.Fprintf(b, "No documentation found for %q.\n\n", topic)
	b.WriteString("Suggestions:\n")
	fmt.Fprintf(b, "- Rephrase the topic using terms from the %s keyword glossary\n", desc.Name)
	b.WriteString("- Broaden the topic to a more general concept\n\n")
}

// writeSummary classifies the aggregate result into three tiers by
// fetch-success ratio.
func writeSummary(b *strings.Builder, desc library.Descriptor, succeeded, total int) {
	b.WriteString("## Summary\n\n")

	switch {
	case succeeded == total:
		fmt.Fprintf(b, "✅ Complete answer: documentation was retrieved for all %d sub-tasks.\n\n", total)
	case succeeded*2 > total:
		fmt.Fprintf(b, "⚠️ Partial answer: %d of %d sub-tasks returned documentation.\n\n", succeeded, total)
		b.WriteString("To fill the gaps:\n")
		b.WriteString("- Retry the failed sub-tasks with refined topics\n")
		fmt.Fprintf(b, "- Consult the official %s documentation for the missing pieces\n\n", desc.Name)
	default:
		fmt.Fprintf(b, "❌ Insufficient documentation: only %d of %d sub-tasks returned documentation.\n\n", succeeded, total)
		b.WriteString("To make progress:\n")
		b.WriteString("- Rework the sub-task topics using glossary vocabulary and retry\n")
		fmt.Fprintf(b, "- Fall back to the official %s documentation and examples\n\n", desc.Name)
	}
}

// writeGuidance appends intent-specific advice via a fixed four-way
// switch; unknown intents get generic tips.
func writeGuidance(b *strings.Builder, intent string) {
	switch intent {
	case "learn":
		b.WriteString("## Learning Guidance\n\n")
		b.WriteString("- Study the retrieved documentation before writing any code\n")
		b.WriteString("- Start from the core concepts and work toward the specific API\n")
		b.WriteString("- Reproduce the smallest documented example to confirm understanding\n\n")
	case "implement":
		b.WriteString("## Implementation Guidance\n\n")
		b.WriteString("- Follow the documented examples closely; merge multiple retrieved examples into one minimal solution\n")
		b.WriteString("- Avoid over-engineering: implement only what the question asks for\n")
		b.WriteString("- Keep configuration declarative where the library supports it\n\n")
	case "solve":
		b.WriteString("## Troubleshooting Guidance\n\n")
		b.WriteString("- Compare your code against the retrieved documentation line by line\n")
		b.WriteString("- Check that your installed library version matches the documented API\n")
		b.WriteString("- Reduce to a minimal reproduction before changing anything else\n\n")
	default:
		b.WriteString("## Guidance\n\n")
		b.WriteString("- Review the retrieved documentation for the closest matching example\n")
		b.WriteString("- Narrow the question if the results are too broad\n\n")
	}
}

func writeNextSteps(b *strings.Builder) {
	b.WriteString("## Next Steps\n\n")
	fmt.Fprintf(b, "For follow-up questions, call %q first to extract fresh topics and intent, then %q with its output.\n", ExtractToolName, QueryToolName)
}

// renderFreshness appends a note about when the provider last refreshed
// the library's documentation index.
func renderFreshness(desc library.Descriptor, ts time.Time) string {
	return fmt.Sprintf("\n---\n%s documentation index last refreshed: %s\n", desc.Name, ts.Format(time.RFC3339))
}

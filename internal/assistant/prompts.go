package assistant

import (
	"strconv"
	"strings"

	"github.com/helixir/paper-library-service/internal/domain"
)

const summarySystemPrompt = `You summarize research papers for a researcher's personal library.
Respond with a single JSON object of the form {"summary": "...", "keyFindings": ["...", "..."]}.
The summary is one or two paragraphs. keyFindings lists at most seven short findings.
Do not add any text outside the JSON object.`

const chatSystemPrompt = `You are a research assistant helping a user understand the papers in their library.
Answer precisely and say so when the available information is not enough.`

func summaryPrompt(p *domain.Paper, notes []*domain.Note) string {
	var b strings.Builder
	writePaper(&b, p)
	if len(notes) > 0 {
		b.WriteString("\nReader notes:\n")
		for _, n := range notes {
			b.WriteString("- ")
			b.WriteString(n.Title)
			if n.Content != "" {
				b.WriteString(": ")
				b.WriteString(n.Content)
			}
			if n.HighlightedText != nil && *n.HighlightedText != "" {
				b.WriteString(" (highlight: \"")
				b.WriteString(*n.HighlightedText)
				b.WriteString("\")")
			}
			b.WriteByte('\n')
		}
	}
	return b.String()
}

func paperContext(p *domain.Paper, summary *domain.AiSummary) string {
	var b strings.Builder
	b.WriteString("The conversation is about this paper:\n")
	writePaper(&b, p)
	if summary != nil {
		b.WriteString("Summary: ")
		b.WriteString(summary.Summary)
		b.WriteByte('\n')
		for _, f := range summary.KeyFindings {
			b.WriteString("- ")
			b.WriteString(f)
			b.WriteByte('\n')
		}
	}
	return b.String()
}

func writePaper(b *strings.Builder, p *domain.Paper) {
	b.WriteString("Title: ")
	b.WriteString(p.Title)
	b.WriteByte('\n')
	if p.Authors != "" {
		b.WriteString("Authors: ")
		b.WriteString(p.Authors)
		b.WriteByte('\n')
	}
	if p.Year != nil {
		b.WriteString("Year: ")
		b.WriteString(strconv.Itoa(*p.Year))
		b.WriteByte('\n')
	}
	if p.Journal != "" {
		b.WriteString("Venue: ")
		b.WriteString(p.Journal)
		b.WriteByte('\n')
	}
	if p.Abstract != "" {
		b.WriteString("Abstract: ")
		b.WriteString(p.Abstract)
		b.WriteByte('\n')
	}
}

package query

import (
	"fmt"
	"strings"

	"github.com/kailas-cloud/pdfagent/internal/domain"
	"github.com/kailas-cloud/pdfagent/internal/repository/vector"
)

const answerSystem = `You are an assistant analyzing a PDF document. Answer the question using only the context below.
If the context does not contain the answer, say so plainly. Be detailed and accurate, and cite page numbers when useful.`

const synthesisSystem = `You are analyzing several documents. Combine the per-document findings into one answer, covering:
1. Common themes and findings
2. Differences or contradictions
3. Overall insights
4. Information unique to a single document`

func answerPrompt(question string, hits []vector.Hit) domain.Prompt {
	var b strings.Builder
	b.WriteString("Context:\n")
	for i := range hits {
		fmt.Fprintf(&b, "\n[Page %d]\n%s\n", hits[i].Chunk.PageNumber, hits[i].Chunk.Text)
	}
	if len(hits) == 0 {
		b.WriteString("\n(no matching passages)\n")
	}
	fmt.Fprintf(&b, "\nQuestion: %s", question)
	return domain.Prompt{System: answerSystem, User: b.String()}
}

func synthesisPrompt(question string, results []DocumentAnswer) domain.Prompt {
	var b strings.Builder
	b.WriteString("Findings per document:\n")
	for i := range results {
		r := &results[i]
		fmt.Fprintf(&b, "\n=== %s ===\n", r.DocumentID)
		if r.Error != "" {
			fmt.Fprintf(&b, "(unavailable: %s)\n", r.Error)
			continue
		}
		b.WriteString(r.Answer.Answer)
		b.WriteString("\n")
	}
	fmt.Fprintf(&b, "\nQuestion: %s", question)
	return domain.Prompt{System: synthesisSystem, User: b.String()}
}

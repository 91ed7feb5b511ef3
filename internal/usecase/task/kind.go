package task

import (
	"fmt"
	"slices"
	"strings"

	"github.com/kailas-cloud/pdfagent/internal/domain"
)

// Op is the family of a request.
type Op string

// Request families.
const (
	OpSummarize Op = "summarize"
	OpExtract   Op = "extract"
)

// Kind identifies one request variant, e.g. summarize/brief or extract/statistics.
type Kind struct {
	Op      Op
	Variant string
}

func (k Kind) String() string { return string(k.Op) + "/" + k.Variant }

// selection decides which text a variant sees when the document is too long
// to send whole.
type selection int

const (
	// spread takes evenly spaced chunks across the whole document.
	spread selection = iota
	// tail prefers the end of the document, where reference lists live.
	tail
)

type variant struct {
	system      string
	instruction string
	selection   selection
}

const summarySystem = "You summarize PDF documents accurately. Use only the provided document content."

const extractSystem = "You extract information from PDF documents. Use only the provided document content. " +
	"Present the result in a clear, organized format with bullet points or numbered lists."

var variants = map[Kind]variant{
	{OpSummarize, "brief"}: {
		system:      summarySystem,
		instruction: "Provide a brief 2-3 paragraph summary of this document. Focus on the main points and key takeaways.",
	},
	{OpSummarize, "detailed"}: {
		system: summarySystem,
		instruction: "Provide a comprehensive, detailed summary of this document including:\n" +
			"1. Main topics and themes\n2. Key arguments and supporting evidence\n3. Important data and statistics\n" +
			"4. Conclusions and implications\n5. Notable sections and highlights",
	},
	{OpSummarize, "executive"}: {
		system: summarySystem,
		instruction: "Provide an executive summary of this document with:\n" +
			"1. Purpose and scope\n2. Key findings\n3. Main recommendations\n4. Critical insights",
	},
	{OpExtract, "key_points"}: {
		system:      extractSystem,
		instruction: "Extract all key points, main arguments, and important takeaways.",
	},
	{OpExtract, "statistics"}: {
		system:      extractSystem,
		instruction: "Extract all numerical data, statistics, percentages, and figures.",
	},
	{OpExtract, "references"}: {
		system:      extractSystem,
		instruction: "Extract all references, citations, and sources mentioned.",
		selection:   tail,
	},
	{OpExtract, "definitions"}: {
		system:      extractSystem,
		instruction: "Extract all important terms, definitions, and concepts.",
	},
	{OpExtract, "action_items"}: {
		system:      extractSystem,
		instruction: "Extract all action items, recommendations, and next steps.",
	},
}

// Default variants when the caller names none.
const (
	DefaultSummaryType    = "detailed"
	DefaultExtractionType = "key_points"
)

// ParseKind resolves a request kind. An empty variant selects the family default.
func ParseKind(op Op, name string) (Kind, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		switch op {
		case OpSummarize:
			name = DefaultSummaryType
		case OpExtract:
			name = DefaultExtractionType
		}
	}
	k := Kind{Op: op, Variant: name}
	if _, ok := variants[k]; !ok {
		return Kind{}, fmt.Errorf("%w: %s %q (supported: %s)",
			domain.ErrUnknownRequestKind, op, name, strings.Join(Variants(op), ", "))
	}
	return k, nil
}

// Variants lists the supported variant names of op, sorted.
func Variants(op Op) []string {
	var out []string
	for k := range variants {
		if k.Op == op {
			out = append(out, k.Variant)
		}
	}
	slices.Sort(out)
	return out
}

package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/jung-kurt/gofpdf"

	"github.com/finikeen/recipes-app/internal/extract"
)

type blockKind int

const (
	blockTitle blockKind = iota
	blockHeading
	blockParagraph
	blockBullet
	blockStep
	blockLink
)

// block is one laid-out element of the recipe card. Text is taken verbatim
// from the recipe, so markup-looking text such as "#1 favourite" stays text.
type block struct {
	kind blockKind
	text string
	link string
}

// WritePDF renders the recipe card to path.
func WritePDF(r extract.Recipe, sourceURL string, path string) error {
	return newPDF(cardBlocks(r, sourceURL)).OutputFileAndClose(path)
}

// PDF renders the recipe card to w.
func PDF(w io.Writer, r extract.Recipe, sourceURL string) error {
	return newPDF(cardBlocks(r, sourceURL)).Output(w)
}

// cardBlocks lays out the same sections as Markdown.
func cardBlocks(r extract.Recipe, sourceURL string) []block {
	name := strings.TrimSpace(r.Name)
	if name == "" {
		name = "Untitled recipe"
	}
	blocks := []block{{kind: blockTitle, text: name}}
	if d := strings.TrimSpace(r.Description); d != "" {
		blocks = append(blocks, block{kind: blockParagraph, text: d})
	}
	if len(r.Ingredients) > 0 {
		blocks = append(blocks, block{kind: blockHeading, text: "Ingredients"})
		for _, line := range r.Ingredients {
			if line = strings.TrimSpace(line); line != "" {
				blocks = append(blocks, block{kind: blockBullet, text: line})
			}
		}
	}
	if len(r.Directions) > 0 {
		blocks = append(blocks, block{kind: blockHeading, text: "Directions"})
		for i, step := range r.Directions {
			blocks = append(blocks, block{kind: blockStep, text: fmt.Sprintf("%d. %s", i+1, step)})
		}
	}
	if u := strings.TrimSpace(sourceURL); u != "" {
		blocks = append(blocks, block{kind: blockLink, text: u, link: u})
	}
	return blocks
}

// newPDF draws the blocks on one A4 page flow. Core fonts are Latin-1, so text
// goes through the UTF-8 translator first.
func newPDF(blocks []block) *gofpdf.Fpdf {
	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetFont("Helvetica", "", 11)
	pdf.AddPage()

	for _, b := range blocks {
		switch b.kind {
		case blockTitle:
			pdf.SetFont("Helvetica", "B", 18)
			pdf.MultiCell(0, 9, tr(b.text), "", "L", false)
			pdf.SetFont("Helvetica", "", 11)
			pdf.Ln(4)
		case blockHeading:
			pdf.Ln(4)
			pdf.SetFont("Helvetica", "B", 13)
			pdf.MultiCell(0, 6.5, tr(b.text), "", "L", false)
			pdf.SetFont("Helvetica", "", 11)
			pdf.Ln(2)
		case blockBullet:
			pdf.MultiCell(0, 5, "\x95 "+tr(b.text), "", "L", false)
		case blockLink:
			pdf.Ln(4)
			pdf.Write(5, "Source: ")
			pdf.WriteLinkString(5, tr(b.text), b.link)
			pdf.Ln(6)
		default:
			pdf.MultiCell(0, 5, tr(b.text), "", "L", false)
		}
	}
	return pdf
}

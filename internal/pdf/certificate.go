// Package pdf renders certification reports as downloadable PDF documents.
package pdf

import (
	"fmt"
	"strings"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/page"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"

	"github.com/certilux/cert-app/internal/models"
	"github.com/certilux/cert-app/internal/report"
	"github.com/certilux/cert-app/internal/score"
)

const commentsBlockHeight = 70

// Certificate holds everything the exporter needs to lay out one document.
type Certificate struct {
	Mission *models.Mission
	Client  *models.Client
	Fields  report.FieldMap
}

// Filename derives the download name from the client's full name.
func Filename(clientName string) string {
	name := strings.TrimSpace(clientName)
	if name == "" {
		name = "certificat"
	}
	return "certificat_" + strings.ReplaceAll(name, " ", "_") + ".pdf"
}

// Render produces the PDF bytes for a certificate.
func Render(c Certificate) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageNumber(props.PageNumber{
			Pattern: "Page {current} / {total}",
			Place:   props.RightBottom,
			Size:    8,
		}).
		WithLeftMargin(15).
		WithRightMargin(15).
		WithTopMargin(15).
		Build()

	m := maroto.New(cfg)

	addHeader(m, c.Mission)
	addClientBlock(m, c.Client)

	if len(c.Fields) == 0 {
		m.AddRow(20, text.NewCol(12, "Aucun rapport de certification disponible.", props.Text{
			Style: fontstyle.Italic,
			Align: align.Center,
			Size:  11,
		}))
	} else {
		display := c.Fields.Display()
		addIdentification(m, display)
		addScores(m, c.Fields, display)
		addMarket(m, display)
		addComments(m, display)
	}

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("generate certificate: %w", err)
	}
	return doc.GetBytes(), nil
}

func addHeader(m core.Maroto, mission *models.Mission) {
	m.AddRow(14, text.NewCol(12, "Certificat d'authenticité", props.Text{
		Style: fontstyle.Bold,
		Align: align.Center,
		Size:  18,
	}))
	subtitle := ""
	if mission != nil {
		subtitle = fmt.Sprintf("Dossier %s", mission.Reference)
	}
	m.AddRow(8, text.NewCol(12, subtitle, props.Text{
		Align: align.Center,
		Size:  10,
	}))
	m.AddRow(4, line.NewCol(12))
}

func addClientBlock(m core.Maroto, client *models.Client) {
	if client == nil {
		return
	}
	m.AddRow(9, text.NewCol(12, "Client", props.Text{Style: fontstyle.Bold, Size: 12}))
	m.AddRow(6, text.NewCol(12, client.FullName(), props.Text{Size: 10}))
	for _, ln := range strings.Split(client.FullAddress(), "\n") {
		if ln == "" {
			continue
		}
		m.AddRow(5, text.NewCol(12, ln, props.Text{Size: 9}))
	}
	if client.Email != "" {
		m.AddRow(5, text.NewCol(12, client.Email, props.Text{Size: 9}))
	}
	m.AddRow(4, col.New(12))
}

func addIdentification(m core.Maroto, display map[string]string) {
	brand := display[report.FieldBrand]
	model := display[report.FieldModel]
	if brand == "" && model == "" {
		return
	}
	m.AddRow(9, text.NewCol(12, "Identification", props.Text{Style: fontstyle.Bold, Size: 12}))
	if brand != "" {
		m.AddRow(6, labeledRow("Marque", brand)...)
	}
	if model != "" {
		m.AddRow(6, labeledRow("Modèle", model)...)
	}
	m.AddRow(4, col.New(12))
}

func addScores(m core.Maroto, fields report.FieldMap, display map[string]string) {
	rows := make([]core.Row, 0, len(report.ScoreFields)+2)
	var subScores []string
	for _, sf := range report.ScoreFields {
		v := display[sf.Name]
		subScores = append(subScores, v)
		if v == "" {
			continue
		}
		rows = append(rows, row.New(6).Add(labeledRow(sf.Label, fmt.Sprintf("%s / 10", v))...))
	}
	final := display[report.FieldScoreFinal]
	if final == "" && len(rows) == 0 {
		return
	}

	m.AddRow(9, text.NewCol(12, "Notation", props.Text{Style: fontstyle.Bold, Size: 12}))
	m.AddRows(rows...)

	// The expert's recorded final score wins. A printed certificate
	// with sub-scores but no recorded final falls back to the computed
	// average rather than shipping without a note.
	if final == "" {
		if rollup := score.Rollup(subScores...); rollup > 0 {
			final = fmt.Sprintf("%.1f", rollup)
		}
	}
	if final != "" {
		m.AddRow(10, text.NewCol(12, fmt.Sprintf("Note finale : %s / 10", final), props.Text{
			Style: fontstyle.Bold,
			Align: align.Center,
			Size:  13,
			Top:   2,
		}))
	}
	m.AddRow(4, col.New(12))
}

func addMarket(m core.Maroto, display map[string]string) {
	market := display[report.FieldMarketValue]
	estimate := display[report.FieldMarketEstimate]
	if market == "" && estimate == "" {
		return
	}
	m.AddRow(9, text.NewCol(12, "Valeur", props.Text{Style: fontstyle.Bold, Size: 12}))
	if market != "" {
		m.AddRow(6, labeledRow("Valeur de marché", market+" EUR")...)
	}
	if estimate != "" {
		m.AddRow(6, labeledRow("Valeur estimée", estimate+" EUR")...)
	}
	m.AddRow(4, col.New(12))
}

func addComments(m core.Maroto, display map[string]string) {
	blocks := []struct {
		label string
		field string
	}{
		{"Commentaire sur l'état", report.FieldCommentCond},
		{"Commentaire général", report.FieldCommentGeneral},
		{"Conclusion", report.FieldCommentFinal},
	}
	any := false
	for _, b := range blocks {
		if display[b.field] != "" {
			any = true
			break
		}
	}
	if !any {
		return
	}
	// The comments block is kept together on one page.
	if !m.FitlnCurrentPage(commentsBlockHeight) {
		m.AddPages(page.New())
	}
	m.AddRow(9, text.NewCol(12, "Commentaires", props.Text{Style: fontstyle.Bold, Size: 12}))
	for _, b := range blocks {
		v := display[b.field]
		if v == "" {
			continue
		}
		m.AddRow(6, text.NewCol(12, b.label, props.Text{Style: fontstyle.Bold, Size: 10}))
		m.AddRow(12, text.NewCol(12, v, props.Text{Size: 9}))
	}
}

func labeledRow(label, value string) []core.Col {
	return []core.Col{
		text.NewCol(5, label, props.Text{Size: 10}),
		text.NewCol(7, value, props.Text{Size: 10, Align: align.Right}),
	}
}

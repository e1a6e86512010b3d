package pdf

import (
	"fmt"
	"io"
	"os"

	"github.com/jung-kurt/gofpdf"

	"bloghive/internal/models"
)

// Renderer рисует пост в PDF.
type Renderer interface {
	RenderPost(w io.Writer, post *models.BlogPost, comments []*models.Comment) error
}

// PostRenderer рисует пост со статистикой и комментариями на страницах A4.
type PostRenderer struct {
	FontPath string // путь до TTF, например "assets/fonts/DejaVuSans.ttf"
	fontName string
	utf8     bool
}

// NewPostRenderer: если TTF нет, используется встроенный Helvetica.
func NewPostRenderer(fontPath string) *PostRenderer {
	r := &PostRenderer{FontPath: fontPath, fontName: "Helvetica"}
	if fontPath != "" {
		if _, err := os.Stat(fontPath); err == nil {
			r.fontName = "DejaVu"
			r.utf8 = true
		}
	}
	return r
}

func (g *PostRenderer) RenderPost(w io.Writer, post *models.BlogPost, comments []*models.Comment) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(post.Title, g.utf8)
	pdf.SetAuthor(post.AuthorName, g.utf8)
	pdf.SetMargins(20, 20, 20)
	pdf.SetAutoPageBreak(true, 20)

	g.addFont(pdf)
	tr := g.translator(pdf)

	// ===== Нумерация страниц
	pdf.AliasNbPages("")
	pdf.SetFooterFunc(func() {
		pdf.SetY(-15)
		pdf.SetFont(g.fontName, "", 9)
		pdf.CellFormat(0, 10, fmt.Sprintf("BlogHive  -  %d/{nb}", pdf.PageNo()), "", 0, "C", false, 0, "")
	})

	pdf.AddPage()

	// ===== Заголовок
	pdf.SetFont(g.fontName, "B", 18)
	pdf.MultiCell(0, 9, tr(post.Title), "", "L", false)
	pdf.SetFont(g.fontName, "", 11)
	sub := fmt.Sprintf("%s  |  %s  |  %s", post.AuthorName, post.Category, post.CreatedAt.Format("02 Jan 2006"))
	pdf.CellFormat(0, 7, tr(sub), "", 1, "L", false, 0, "")
	g.hr(pdf)

	// ===== Текст
	pdf.SetFont(g.fontName, "", 12)
	pdf.MultiCell(0, 6, tr(post.Description), "", "L", false)
	pdf.Ln(2)
	g.hr(pdf)

	if post.Stats != nil {
		g.sectionTitle(pdf, "Stats")
		g.kvLine(pdf, "Likes", fmt.Sprintf("%d", post.Stats.Likes))
		g.kvLine(pdf, "Comments", fmt.Sprintf("%d", post.Stats.Comments))
		g.kvLine(pdf, "Views", fmt.Sprintf("%d", post.Stats.Views))
		g.hr(pdf)
	}

	if len(comments) > 0 {
		g.sectionTitle(pdf, "Comments")
		for _, c := range comments {
			pdf.SetFont(g.fontName, "B", 11)
			head := fmt.Sprintf("%s, %s", c.AuthorName, c.CreatedAt.Format("02 Jan 2006 15:04"))
			pdf.CellFormat(0, 6, tr(head), "", 1, "L", false, 0, "")
			pdf.SetFont(g.fontName, "", 11)
			pdf.MultiCell(0, 6, tr(c.CommentText), "", "L", false)
			pdf.Ln(1)
		}
	}

	return pdf.Output(w)
}

// ===== helpers =====

func (g *PostRenderer) addFont(pdf *gofpdf.Fpdf) {
	if !g.utf8 {
		return
	}
	pdf.AddUTF8Font(g.fontName, "", g.FontPath)
	pdf.AddUTF8Font(g.fontName, "B", g.FontPath)
}

// для core-шрифтов нужен перевод в cp1252, UTF-8 шрифт принимает строку как есть
func (g *PostRenderer) translator(pdf *gofpdf.Fpdf) func(string) string {
	if g.utf8 {
		return func(s string) string { return s }
	}
	return pdf.UnicodeTranslatorFromDescriptor("")
}

func (g *PostRenderer) sectionTitle(pdf *gofpdf.Fpdf, s string) {
	pdf.SetFont(g.fontName, "B", 12)
	pdf.CellFormat(0, 7, s, "", 1, "L", false, 0, "")
	pdf.SetFont(g.fontName, "", 11)
}

func (g *PostRenderer) kvLine(pdf *gofpdf.Fpdf, key, val string) {
	pdf.SetFont(g.fontName, "B", 11)
	pdf.CellFormat(45, 6, key+":", "", 0, "L", false, 0, "")
	pdf.SetFont(g.fontName, "", 11)
	pdf.CellFormat(0, 6, val, "", 1, "L", false, 0, "")
}

func (g *PostRenderer) hr(pdf *gofpdf.Fpdf) {
	y := pdf.GetY() + 1.5
	pdf.SetLineWidth(0.2)
	pdf.Line(20, y, 190, y)
	pdf.SetY(y + 2)
}

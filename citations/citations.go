package citations

// Formateo de citas y respuestas en Markdown. Todas las funciones son puras:
// dado el mismo Article producen siempre el mismo texto, sin llamadas de red.
// La síntesis de contenido real (resúmenes, análisis) la hace el modelo en
// otra capa; aquí solo se arma la plantilla.

import (
	"fmt"
	"strings"

	"papuy-backend/articles"
)

// Key construye la cita en texto: (ApellidoPrimerAutor et al., Año).
func Key(a articles.Article) string {
	year := a.Year
	if year == "" {
		year = "n.d."
	}
	return fmt.Sprintf("(%s et al., %s)", a.FirstAuthorLastName(), year)
}

// Reference arma la línea de referencia estilo APA. Los campos finales
// (revista, volumen, número, páginas, DOI) solo aparecen cuando existen;
// sin DOI se enlaza la URL.
func Reference(a articles.Article) string {
	var b strings.Builder
	b.WriteString("- ")
	b.WriteString(joinAuthors(a.Authors))
	year := a.Year
	if year == "" {
		year = "n.d."
	}
	fmt.Fprintf(&b, " (%s). **%s**.", year, a.Title)
	if a.Journal != "" {
		fmt.Fprintf(&b, " _%s_", a.Journal)
		if a.Volume != "" {
			fmt.Fprintf(&b, ", *%s*", a.Volume)
			if a.Issue != "" {
				fmt.Fprintf(&b, "(%s)", a.Issue)
			}
		}
		if a.Pages != "" {
			fmt.Fprintf(&b, ", %s", a.Pages)
		}
		b.WriteString(".")
	}
	if a.DOI != "" {
		fmt.Fprintf(&b, " [https://doi.org/%s](https://doi.org/%s)", a.DOI, a.DOI)
	} else if a.URL != "" && a.URL != articles.URLNoDisponible {
		fmt.Fprintf(&b, " [Ver artículo](%s)", a.URL)
	}
	return b.String()
}

func joinAuthors(authors []string) string {
	switch len(authors) {
	case 0:
		return articles.SinAutor
	case 1:
		return authors[0]
	default:
		return strings.Join(authors[:len(authors)-1], ", ") + ", & " + authors[len(authors)-1]
	}
}

// Relevance asigna el nivel de relevancia de la tabla resumen según las
// citaciones: >50 alta, >10 media, resto por evaluar. Umbrales fijos.
func Relevance(citedBy int) string {
	switch {
	case citedBy > 50:
		return "⭐⭐⭐ Alta"
	case citedBy > 10:
		return "⭐⭐ Media"
	default:
		return "⭐ Por evaluar"
	}
}

// QualityBullets deriva la evaluación de calidad solo de los campos del
// registro. Año no numérico ("Sin año") nunca cuenta como reciente.
func QualityBullets(a articles.Article) []string {
	var out []string
	if a.CitedBy > 50 {
		out = append(out, "✅ **Alto impacto académico** - Citado frecuentemente en la literatura")
	}
	if a.Source == articles.FuentePubMed {
		out = append(out, "✅ **Indexado en PubMed** - Revisado por pares")
	}
	if articles.YearNumber(a.Year) > 2020 {
		out = append(out, "✅ **Investigación reciente** - Datos actualizados")
	}
	if len(out) == 0 {
		out = append(out, "⚠️ **Requiere evaluación adicional** - Revisar metodología")
	}
	return out
}

// SearchDocument renderiza el documento completo de resultados de búsqueda:
// tabla resumen, ficha por artículo y sección de referencias.
func SearchDocument(arts []articles.Article) string {
	var b strings.Builder
	b.WriteString("# 📚 Resultados de la Búsqueda\n\n")

	b.WriteString("## 📊 Resumen de Resultados\n\n")
	b.WriteString("| Título | Año | Citaciones | Relevancia |\n")
	b.WriteString("|--------|-----|------------|------------|\n")
	for _, a := range arts {
		fmt.Fprintf(&b, "| [%s](%s) | %s | %d | %s |\n", a.Title, a.URL, a.Year, a.CitedBy, Relevance(a.CitedBy))
	}

	b.WriteString("\n## 📖 Artículos Encontrados\n\n")
	for i, a := range arts {
		fmt.Fprintf(&b, "### %d. %s\n\n", i+1, a.Title)
		if a.TitleES != "" && a.TitleES != a.Title {
			fmt.Fprintf(&b, "**Traducción:** %s\n\n", a.TitleES)
		}
		fmt.Fprintf(&b, "> 🔍 **Fuente:** _%s_\n\n", a.Source)
		fmt.Fprintf(&b, "> 📎 **[Ver artículo completo](%s)**\n\n", a.URL)

		b.WriteString("#### ℹ️ Información del Artículo\n\n")
		fmt.Fprintf(&b, "- **Autores:** %s\n", strings.Join(authorsOrSentinel(a.Authors), ", "))
		fmt.Fprintf(&b, "- **Año:** %s\n", a.Year)
		fmt.Fprintf(&b, "- **Citado por:** %d veces\n", a.CitedBy)
		if a.PDFLink != "" {
			fmt.Fprintf(&b, "- **PDF:** [Descargar documento](%s)\n", a.PDFLink)
		}
		b.WriteString("\n")

		b.WriteString("#### 📝 Resumen\n\n")
		fmt.Fprintf(&b, "%s\n\n", a.Abstract)
		if a.AbstractES != "" && a.AbstractES != a.Abstract {
			b.WriteString("#### 🌎 Resumen en Español\n\n")
			fmt.Fprintf(&b, "%s\n\n", a.AbstractES)
		}

		b.WriteString("#### ⚖️ Evaluación de Calidad\n\n")
		b.WriteString(strings.Join(QualityBullets(a), "\n"))
		b.WriteString("\n\n---\n\n")
	}

	b.WriteString("## 📚 Referencias\n\n")
	for _, a := range arts {
		fmt.Fprintf(&b, "%s\n\n", Reference(a))
	}
	return b.String()
}

func authorsOrSentinel(authors []string) []string {
	if len(authors) == 0 {
		return []string{articles.SinAutor}
	}
	return authors
}

// summarySections son los cinco encabezados fijos del modo resumen, cada uno
// con su descripción orientativa. La plantilla no resume nada por sí misma.
var summarySections = []struct {
	Title       string
	Description string
}{
	{"🎯 Objetivo del Estudio", "Describe el propósito principal y los objetivos específicos de la investigación."},
	{"🔬 Metodología", "Detalla el diseño del estudio, población, intervenciones y métodos de análisis."},
	{"📈 Resultados Principales", "Presenta los hallazgos más importantes y su significancia estadística."},
	{"💡 Conclusiones", "Resume las interpretaciones principales y las implicaciones para la práctica."},
	{"⚠️ Limitaciones", "Discute las restricciones y posibles sesgos del estudio."},
}

// SummaryDocument renderiza la plantilla de resumen de un artículo con sus
// cinco secciones fijas más metadatos y referencia. meta puede ser el
// Article vacío cuando el usuario pegó texto libre sin metadatos.
func SummaryDocument(meta articles.Article) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# 📑 Resumen del Artículo %s\n\n", Key(withDefaults(meta)))

	b.WriteString("## ℹ️ Información del Artículo\n\n")
	fmt.Fprintf(&b, "- **Título:** %s\n", orNoDisponible(meta.Title))
	fmt.Fprintf(&b, "- **Autores:** %s\n", strings.Join(authorsOrNoDisponible(meta.Authors), ", "))
	fmt.Fprintf(&b, "- **Año:** %s\n", orNoDisponible(meta.Year))
	fmt.Fprintf(&b, "- **Revista:** %s\n\n", orNoDisponible(meta.Journal))

	b.WriteString("## 📊 Análisis Detallado\n\n")
	for _, sec := range summarySections {
		fmt.Fprintf(&b, "### %s\n\n_%s_\n\n", sec.Title, sec.Description)
	}

	b.WriteString("## 📚 Referencias\n\n")
	fmt.Fprintf(&b, "%s\n", Reference(withDefaults(meta)))
	return b.String()
}

func withDefaults(a articles.Article) articles.Article {
	if a.Year == "" {
		a.Year = "n.d."
	}
	if a.Title == "" {
		a.Title = articles.SinTitulo
	}
	return a
}

func orNoDisponible(s string) string {
	if s == "" {
		return "No disponible"
	}
	return s
}

func authorsOrNoDisponible(authors []string) []string {
	if len(authors) == 0 {
		return []string{"No disponible"}
	}
	return authors
}

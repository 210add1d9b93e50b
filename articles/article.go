package articles

import (
	"strconv"
	"strings"
)

// Valores centinela en español que usan los proveedores cuando falta un campo.
// El resto del pipeline (formateo, traducción) cuenta con que nunca hay
// campos vacíos, solo centinelas.
const (
	SinTitulo           = "Sin título"
	SinAnio             = "Sin año"
	SinAutor            = "Sin autor"
	ResumenNoDisponible = "Resumen no disponible"
	URLNoDisponible     = "URL no disponible"
)

// Nombres de fuente tal como se muestran al usuario.
const (
	FuenteScholar = "Google Scholar"
	FuentePubMed  = "PubMed"
)

// Article es la representación uniforme de un resultado de búsqueda,
// independiente del proveedor que lo produjo. Los registros de distintos
// proveedores nunca se fusionan: viajan como lista plana concatenada.
type Article struct {
	Title      string
	TitleES    string // igual a Title cuando no hizo falta traducir
	Authors    []string
	Year       string // puede ser el centinela "Sin año"; nunca asumir numérico
	URL        string
	Abstract   string
	AbstractES string
	Source     string
	CitedBy    int    // solo Google Scholar; 0 por defecto
	PDFLink    string // opcional, solo si el proveedor expone un recurso directo

	// Metadatos bibliográficos opcionales para la referencia APA.
	Journal string
	Volume  string
	Issue   string
	Pages   string
	DOI     string
}

// YearNumber interpreta Year de forma tolerante. Centinelas y años no
// numéricos ("Sin año", "2020a", vacío) devuelven 0, que queda fuera de
// cualquier umbral de "investigación reciente".
func YearNumber(year string) int {
	n, err := strconv.Atoi(strings.TrimSpace(year))
	if err != nil {
		return 0
	}
	return n
}

// FirstAuthorLastName devuelve el apellido del primer autor: la parte antes
// de la primera coma, o el nombre completo si no hay coma. Sin autores
// devuelve el centinela.
func (a Article) FirstAuthorLastName() string {
	if len(a.Authors) == 0 {
		return SinAutor
	}
	name := a.Authors[0]
	if i := strings.Index(name, ","); i >= 0 {
		return strings.TrimSpace(name[:i])
	}
	return strings.TrimSpace(name)
}

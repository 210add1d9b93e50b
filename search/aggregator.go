package search

// Agregador de los dos proveedores de literatura. Cada llamada está aislada:
// si un proveedor falla, aporta cero resultados y la búsqueda sigue con el
// otro. Sin deduplicación ni re-ranking: Scholar primero, PubMed después.

import (
	"context"
	"log"

	"papuy-backend/articles"
)

// Provider es cualquier fuente de artículos normalizados.
type Provider interface {
	Search(ctx context.Context, query, lang string) ([]articles.Article, error)
}

// Translator produce la versión en español de un fragmento.
type Translator interface {
	Translate(ctx context.Context, text string) string
}

type Aggregator struct {
	Scholar    Provider
	PubMed     Provider
	Translator Translator
}

// Search consulta ambos proveedores y concatena. Con lang "en" cada registro
// recibe además título y resumen traducidos; con "es" las copias traducidas
// quedan idénticas a los originales, sin viaje extra al modelo.
func (a *Aggregator) Search(ctx context.Context, query, lang string) []articles.Article {
	var out []articles.Article

	if a.Scholar != nil {
		arts, err := a.Scholar.Search(ctx, query, lang)
		if err != nil {
			log.Printf("[search][scholar] query=%q err=%v", query, err)
		} else {
			out = append(out, arts...)
		}
	}

	if a.PubMed != nil {
		arts, err := a.PubMed.Search(ctx, query, lang)
		if err != nil {
			log.Printf("[search][pubmed] query=%q err=%v", query, err)
		} else {
			out = append(out, arts...)
		}
	}

	if lang == "en" && a.Translator != nil {
		for i := range out {
			out[i].TitleES = a.Translator.Translate(ctx, out[i].Title)
			out[i].AbstractES = a.Translator.Translate(ctx, out[i].Abstract)
		}
	}
	return out
}

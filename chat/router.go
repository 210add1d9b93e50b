package chat

// Router de intenciones sobre el texto libre del usuario. La detección es
// por subcadena, insensible a mayúsculas, en orden fijo de reglas: gana la
// primera que aparezca en el texto, sin importar posición ni especificidad.
// Las frases gatillo son la superficie de comandos de facto y se preservan
// tal cual.

import "strings"

type Intent int

const (
	IntentSearch Intent = iota
	IntentDownloadLink
	IntentSummarize
	IntentGeneralChat
)

func (i Intent) String() string {
	switch i {
	case IntentSearch:
		return "search"
	case IntentDownloadLink:
		return "download_link"
	case IntentSummarize:
		return "summarize"
	default:
		return "general_chat"
	}
}

// Frases gatillo reconocidas. No tokenizamos: una consulta que contenga la
// frase dentro de una oración más larga igual se enruta.
const (
	phraseSearch       = "buscar artículos sobre"
	phraseEnglish      = "en inglés"
	phraseDownloadLink = "obtener enlace de descarga para"
	phraseSummarize    = "resumir este artículo"
)

// rules es la lista ordenada (frase, intención). Añadir o reordenar
// intenciones es un cambio de datos, no de control de flujo.
var rules = []struct {
	phrase string
	intent Intent
}{
	{phraseSearch, IntentSearch},
	{phraseDownloadLink, IntentDownloadLink},
	{phraseSummarize, IntentSummarize},
}

// Route es el resultado del enrutado: la intención elegida y su argumento
// ya extraído. Language solo aplica a IntentSearch.
type Route struct {
	Intent   Intent
	Argument string
	Language string // "en" o "es"
}

// Detect clasifica el texto del usuario. Nunca falla: un argumento vacío
// tras recortar se entrega igual al handler, que debe tolerarlo.
func Detect(input string) Route {
	lower := strings.ToLower(input)
	for _, r := range rules {
		if !strings.Contains(lower, r.phrase) {
			continue
		}
		arg := strings.TrimSpace(stripPhrase(input, r.phrase))
		route := Route{Intent: r.intent, Argument: arg, Language: "es"}
		if r.intent == IntentSearch && strings.Contains(lower, phraseEnglish) {
			route.Language = "en"
			route.Argument = strings.TrimSpace(stripPhrase(route.Argument, phraseEnglish))
		}
		return route
	}
	return Route{Intent: IntentGeneralChat, Argument: input, Language: "es"}
}

// stripPhrase elimina la primera aparición de phrase sin importar
// mayúsculas, preservando el resto del texto original.
func stripPhrase(input, phrase string) string {
	idx := strings.Index(strings.ToLower(input), phrase)
	if idx < 0 {
		return input
	}
	return input[:idx] + input[idx+len(phrase):]
}

package chat

import "testing"

func TestDetectSearch(t *testing.T) {
	r := Detect("buscar artículos sobre diabetes tipo 2")
	if r.Intent != IntentSearch {
		t.Fatalf("se esperaba IntentSearch, se obtuvo %s", r.Intent)
	}
	if r.Argument != "diabetes tipo 2" {
		t.Errorf("argumento incorrecto: %q", r.Argument)
	}
	if r.Language != "es" {
		t.Errorf("se esperaba idioma es, se obtuvo %s", r.Language)
	}
}

func TestDetectSearchEnglish(t *testing.T) {
	r := Detect("buscar artículos sobre diabetes en inglés")
	if r.Intent != IntentSearch {
		t.Fatalf("se esperaba IntentSearch, se obtuvo %s", r.Intent)
	}
	if r.Language != "en" {
		t.Errorf("se esperaba idioma en, se obtuvo %s", r.Language)
	}
	if r.Argument != "diabetes" {
		t.Errorf("el marcador 'en inglés' debe quitarse de la consulta, got %q", r.Argument)
	}
}

func TestDetectSearchCaseInsensitive(t *testing.T) {
	r := Detect("Buscar Artículos Sobre hipertensión")
	if r.Intent != IntentSearch {
		t.Fatalf("la detección debe ignorar mayúsculas, se obtuvo %s", r.Intent)
	}
	if r.Argument != "hipertensión" {
		t.Errorf("la frase debe quitarse sin importar mayúsculas, got %q", r.Argument)
	}
}

func TestDetectDownloadLink(t *testing.T) {
	r := Detect("obtener enlace de descarga para https://example.com/articulo")
	if r.Intent != IntentDownloadLink {
		t.Fatalf("se esperaba IntentDownloadLink, se obtuvo %s", r.Intent)
	}
	if r.Argument != "https://example.com/articulo" {
		t.Errorf("argumento incorrecto: %q", r.Argument)
	}
}

func TestDetectSummarize(t *testing.T) {
	r := Detect("resumir este artículo El estudio analiza...")
	if r.Intent != IntentSummarize {
		t.Fatalf("se esperaba IntentSummarize, se obtuvo %s", r.Intent)
	}
	if r.Argument != "El estudio analiza..." {
		t.Errorf("argumento incorrecto: %q", r.Argument)
	}
}

func TestDetectGeneralChat(t *testing.T) {
	r := Detect("¿qué es la hipertensión?")
	if r.Intent != IntentGeneralChat {
		t.Fatalf("se esperaba IntentGeneralChat, se obtuvo %s", r.Intent)
	}
	if r.Argument != "¿qué es la hipertensión?" {
		t.Errorf("el chat general conserva el texto original, got %q", r.Argument)
	}
}

// La prioridad es por orden de reglas, no por posición en el texto: si el
// mensaje contiene la frase de búsqueda y la de resumen, gana la búsqueda
// aunque aparezca después.
func TestDetectFirstMatchWins(t *testing.T) {
	r := Detect("resumir este artículo y luego buscar artículos sobre cáncer")
	if r.Intent != IntentSearch {
		t.Fatalf("la regla de búsqueda se evalúa primero, se obtuvo %s", r.Intent)
	}
}

func TestDetectEmptyArgument(t *testing.T) {
	// Un argumento vacío tras recortar no es error del router: se entrega
	// al handler tal cual.
	r := Detect("buscar artículos sobre   ")
	if r.Intent != IntentSearch {
		t.Fatalf("se esperaba IntentSearch, se obtuvo %s", r.Intent)
	}
	if r.Argument != "" {
		t.Errorf("se esperaba argumento vacío, got %q", r.Argument)
	}
}

func TestDetectPhraseInsideLongerSentence(t *testing.T) {
	// El matching es por subcadena, no tokenizado: la frase dentro de una
	// oración más larga también enruta.
	r := Detect("hola, me gustaría buscar artículos sobre covid por favor")
	if r.Intent != IntentSearch {
		t.Fatalf("se esperaba IntentSearch, se obtuvo %s", r.Intent)
	}
	if r.Argument != "hola, me gustaría  covid por favor" {
		t.Errorf("el resto del texto se conserva con la frase eliminada, got %q", r.Argument)
	}
}

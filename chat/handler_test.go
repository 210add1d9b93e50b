package chat

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"papuy-backend/articles"
	"papuy-backend/openai"
)

// MockAIClient implementa AIClient para tests
type MockAIClient struct {
	CompleteResponse string
	ShouldFail       bool
	LastPrompt       string
}

func (m *MockAIClient) Complete(ctx context.Context, history []openai.Message, prompt string) (string, error) {
	m.LastPrompt = prompt
	if m.ShouldFail {
		return "", errors.New("api caída")
	}
	if m.CompleteResponse != "" {
		return m.CompleteResponse, nil
	}
	return "respuesta del modelo", nil
}

func (m *MockAIClient) StreamComplete(ctx context.Context, history []openai.Message, prompt string) (<-chan string, error) {
	if m.ShouldFail {
		return nil, errors.New("api caída")
	}
	ch := make(chan string, 2)
	ch <- "respuesta "
	ch <- "en partes"
	close(ch)
	return ch, nil
}

func (m *MockAIClient) Translate(ctx context.Context, text string) string {
	return "[ES] " + text
}

// MockSearcher devuelve artículos fijos sin tocar la red.
type MockSearcher struct {
	Articles  []articles.Article
	LastQuery string
	LastLang  string
}

func (m *MockSearcher) Search(ctx context.Context, query, lang string) []articles.Article {
	m.LastQuery = query
	m.LastLang = lang
	return m.Articles
}

func sampleArticles() []articles.Article {
	return []articles.Article{
		{
			Title:      "Diabetes management in 2023",
			TitleES:    "Manejo de la diabetes en 2023",
			Authors:    []string{"Smith, J", "Doe, A"},
			Year:       "2023",
			URL:        "https://scholar.example.com/a1",
			Abstract:   "A review of diabetes management.",
			AbstractES: "Una revisión del manejo de la diabetes.",
			Source:     articles.FuenteScholar,
			CitedBy:    75,
			PDFLink:    "https://scholar.example.com/a1.pdf",
		},
		{
			Title:      "Tratamiento de diabetes tipo 2",
			TitleES:    "Tratamiento de diabetes tipo 2",
			Authors:    []string{"García, M"},
			Year:       "2021",
			URL:        "https://pubmed.ncbi.nlm.nih.gov/12345/",
			Abstract:   "Estudio clínico.",
			AbstractES: "Estudio clínico.",
			Source:     articles.FuentePubMed,
		},
	}
}

func TestHandleSearchPipeline(t *testing.T) {
	ai := &MockAIClient{CompleteResponse: "Recomiendo el primer artículo."}
	buscador := &MockSearcher{Articles: sampleArticles()}
	h := NewHandler(ai, buscador)
	s := h.Sessions.Create()

	route := Detect("buscar artículos sobre diabetes en inglés")
	resp := h.respond(context.Background(), s, "buscar artículos sobre diabetes en inglés", route)

	if buscador.LastQuery != "diabetes" {
		t.Errorf("consulta extraída incorrecta: %q", buscador.LastQuery)
	}
	if buscador.LastLang != "en" {
		t.Errorf("idioma incorrecto: %q", buscador.LastLang)
	}
	if !strings.Contains(resp, "# 📚 Resultados de la Búsqueda") {
		t.Error("la respuesta debe incluir el documento de resultados")
	}
	if !strings.Contains(resp, "Recomiendo el primer artículo.") {
		t.Error("la respuesta debe incluir el análisis del modelo")
	}
	if !strings.Contains(ai.LastPrompt, "Diabetes management in 2023") {
		t.Error("el prompt de análisis debe listar los artículos")
	}

	// La búsqueda deja los pdf_link disponibles para el comando de descarga.
	link, ok := s.PDFLink("https://scholar.example.com/a1")
	if !ok || link != "https://scholar.example.com/a1.pdf" {
		t.Errorf("el pdf_link debe quedar registrado en la sesión, got %q", link)
	}
}

func TestHandleSearchNoResults(t *testing.T) {
	h := NewHandler(&MockAIClient{}, &MockSearcher{})
	s := h.Sessions.Create()

	route := Detect("buscar artículos sobre xyzinexistente")
	resp := h.respond(context.Background(), s, "buscar artículos sobre xyzinexistente", route)
	if !strings.Contains(resp, "No encontré artículos") {
		t.Errorf("sin resultados se responde con mensaje amable, got %q", resp)
	}
}

func TestHandleSearchAnalysisFailureDegrades(t *testing.T) {
	// Si el modelo falla, el documento de resultados igual se entrega con
	// el error embebido, nunca un crash.
	ai := &MockAIClient{ShouldFail: true}
	h := NewHandler(ai, &MockSearcher{Articles: sampleArticles()})
	s := h.Sessions.Create()

	route := Detect("buscar artículos sobre diabetes")
	resp := h.respond(context.Background(), s, "buscar artículos sobre diabetes", route)
	if !strings.Contains(resp, "# 📚 Resultados de la Búsqueda") {
		t.Error("el documento de resultados se entrega aunque falle el análisis")
	}
	if !strings.Contains(resp, "Error al analizar los artículos") {
		t.Error("el error del modelo se degrada a texto en español")
	}
}

func TestHandleDownloadLinkPubMed(t *testing.T) {
	h := NewHandler(&MockAIClient{}, &MockSearcher{})
	s := h.Sessions.Create()

	prompt := "obtener enlace de descarga para https://pubmed.ncbi.nlm.nih.gov/12345/"
	resp := h.respond(context.Background(), s, prompt, Detect(prompt))
	if resp != pubmedGuidance {
		t.Errorf("los enlaces de PubMed reciben la guía fija, got %q", resp)
	}
}

func TestHandleDownloadLinkFromSession(t *testing.T) {
	h := NewHandler(&MockAIClient{}, &MockSearcher{})
	s := h.Sessions.Create()
	s.RememberPDFLinks(sampleArticles())

	prompt := "obtener enlace de descarga para https://scholar.example.com/a1"
	resp := h.respond(context.Background(), s, prompt, Detect(prompt))
	if resp != "https://scholar.example.com/a1.pdf" {
		t.Errorf("el enlace recordado de la búsqueda previa tiene prioridad, got %q", resp)
	}
}

func TestHandleDownloadLinkEmptyArgument(t *testing.T) {
	h := NewHandler(&MockAIClient{}, &MockSearcher{})
	s := h.Sessions.Create()

	prompt := "obtener enlace de descarga para"
	resp := h.respond(context.Background(), s, prompt, Detect(prompt))
	if !strings.Contains(resp, "Indica la URL") {
		t.Errorf("sin URL se pide una, got %q", resp)
	}
}

func TestHandleSummarizeTemplate(t *testing.T) {
	ai := &MockAIClient{CompleteResponse: "El artículo concluye que..."}
	h := NewHandler(ai, &MockSearcher{})
	s := h.Sessions.Create()

	prompt := "resumir este artículo Este estudio evaluó la eficacia de..."
	resp := h.respond(context.Background(), s, prompt, Detect(prompt))

	for _, section := range []string{"🎯 Objetivo del Estudio", "🔬 Metodología", "📈 Resultados Principales", "💡 Conclusiones", "⚠️ Limitaciones"} {
		if !strings.Contains(resp, section) {
			t.Errorf("falta la sección fija %q", section)
		}
	}
	if !strings.Contains(resp, "El artículo concluye que...") {
		t.Error("la síntesis del modelo acompaña a la plantilla")
	}
	if !strings.Contains(ai.LastPrompt, "Este estudio evaluó la eficacia de...") {
		t.Error("el texto del usuario viaja en el prompt de resumen")
	}
}

func TestHandleGeneralChat(t *testing.T) {
	ai := &MockAIClient{CompleteResponse: "La hipertensión es..."}
	h := NewHandler(ai, &MockSearcher{})
	s := h.Sessions.Create()

	prompt := "¿qué es la hipertensión?"
	resp := h.respond(context.Background(), s, prompt, Detect(prompt))
	if resp != "La hipertensión es..." {
		t.Errorf("respuesta inesperada: %q", resp)
	}
	if !strings.Contains(ai.LastPrompt, "fuentes académicas") {
		t.Error("el chat general añade el sufijo que exige citas")
	}
}

func TestHandleGeneralChatError(t *testing.T) {
	h := NewHandler(&MockAIClient{ShouldFail: true}, &MockSearcher{})
	s := h.Sessions.Create()

	prompt := "hola papuy"
	resp := h.respond(context.Background(), s, prompt, Detect(prompt))
	if !strings.Contains(resp, "Lo siento, pero encontré un error") {
		t.Errorf("los errores del modelo se degradan a disculpa en español, got %q", resp)
	}
}

// Tests de los endpoints HTTP con gin en modo test.

func setupRouter(h *Handler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/chat/start", h.Start)
	r.POST("/chat/message", h.Message)
	r.POST("/chat/reset", h.Reset)
	return r
}

func TestMessageEndpoint(t *testing.T) {
	ai := &MockAIClient{CompleteResponse: "hola Emily"}
	h := NewHandler(ai, &MockSearcher{})
	r := setupRouter(h)

	s := h.Sessions.Create()
	body, _ := json.Marshal(map[string]string{"session_id": s.ID, "prompt": "hola"})
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/chat/message", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status inesperado: %d body=%s", w.Code, w.Body.String())
	}
	var resp struct {
		Response string `json:"response"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("respuesta no es JSON: %v", err)
	}
	if resp.Response != "hola Emily" {
		t.Errorf("respuesta inesperada: %q", resp.Response)
	}

	// El turno queda registrado en el historial de la sesión.
	if !s.Active() {
		t.Error("la sesión debe quedar activa tras el primer mensaje")
	}
}

func TestMessageEndpointUnknownSession(t *testing.T) {
	h := NewHandler(&MockAIClient{}, &MockSearcher{})
	r := setupRouter(h)

	body, _ := json.Marshal(map[string]string{"session_id": "no-existe", "prompt": "hola"})
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/chat/message", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("se esperaba 404, got %d", w.Code)
	}
}

func TestMessageEndpointEmptyPrompt(t *testing.T) {
	h := NewHandler(&MockAIClient{}, &MockSearcher{})
	r := setupRouter(h)

	body, _ := json.Marshal(map[string]string{"session_id": "x", "prompt": "  "})
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/chat/message", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("se esperaba 400, got %d", w.Code)
	}
}

func TestMessageEndpointSSEGeneralChat(t *testing.T) {
	h := NewHandler(&MockAIClient{}, &MockSearcher{})
	r := setupRouter(h)

	s := h.Sessions.Create()
	body, _ := json.Marshal(map[string]string{"session_id": s.ID, "prompt": "hola"})
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/chat/message", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "text/event-stream")
	r.ServeHTTP(w, req)

	if ct := w.Header().Get("Content-Type"); ct != "text/event-stream" {
		t.Fatalf("se esperaba SSE, got Content-Type=%q", ct)
	}
	out := w.Body.String()
	if !strings.Contains(out, "data: ") || !strings.Contains(out, "data: [DONE]") {
		t.Errorf("salida SSE malformada: %q", out)
	}
	// El turno completo queda en el historial aunque haya viajado en partes.
	hist := s.History()
	if len(hist) != 3 || hist[2].Content != "respuesta en partes" {
		t.Errorf("el historial debe acumular el stream completo, got %+v", hist)
	}
}

func TestResetEndpoint(t *testing.T) {
	h := NewHandler(&MockAIClient{}, &MockSearcher{})
	r := setupRouter(h)

	s := h.Sessions.Create()
	s.RecordTurn("hola", "hola Emily")

	body, _ := json.Marshal(map[string]string{"session_id": s.ID})
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/chat/reset", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status inesperado: %d", w.Code)
	}
	if s.Active() {
		t.Error("tras reset la conversación vuelve al mensaje de sistema")
	}
}

func TestStartEndpoint(t *testing.T) {
	h := NewHandler(&MockAIClient{}, &MockSearcher{})
	r := setupRouter(h)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/chat/start", bytes.NewReader([]byte("{}")))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status inesperado: %d", w.Code)
	}
	var resp struct {
		SessionID string `json:"session_id"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("respuesta no es JSON: %v", err)
	}
	if _, ok := h.Sessions.Get(resp.SessionID); !ok {
		t.Errorf("la sesión devuelta debe existir en el manager: %s", resp.SessionID)
	}
}

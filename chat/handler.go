package chat

// Handlers HTTP del chatbot. Cada mensaje se procesa completo (búsquedas,
// traducción, resumen y análisis incluidos) antes de responder: una sola
// petición lógica en vuelo por sesión, sin trabajo en segundo plano.

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"strings"

	"github.com/gin-gonic/gin"

	"papuy-backend/articles"
	"papuy-backend/citations"
	"papuy-backend/fetcher"
	"papuy-backend/files"
	"papuy-backend/openai"
	"papuy-backend/sse"
)

// AIClient es el subconjunto del cliente de OpenAI que necesita el chat.
type AIClient interface {
	Complete(ctx context.Context, history []openai.Message, prompt string) (string, error)
	StreamComplete(ctx context.Context, history []openai.Message, prompt string) (<-chan string, error)
	Translate(ctx context.Context, text string) string
}

// Searcher agrega resultados de los proveedores de literatura. Nunca falla:
// los proveedores caídos aportan cero resultados.
type Searcher interface {
	Search(ctx context.Context, query, lang string) []articles.Article
}

type Handler struct {
	AI       AIClient
	Buscador Searcher
	Sessions *Manager
}

func NewHandler(ai AIClient, buscador Searcher) *Handler {
	return &Handler{AI: ai, Buscador: buscador, Sessions: NewManager()}
}

// Start crea una sesión nueva y devuelve su ID.
func (h *Handler) Start(c *gin.Context) {
	s := h.Sessions.Create()
	c.JSON(http.StatusOK, gin.H{"session_id": s.ID})
}

// Reset limpia la conversación dejando solo el mensaje de sistema.
func (h *Handler) Reset(c *gin.Context) {
	var req struct {
		SessionID string `json:"session_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.SessionID) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "session_id requerido"})
		return
	}
	s, ok := h.Sessions.Get(req.SessionID)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Sesión no encontrada"})
		return
	}
	s.Reset()
	c.JSON(http.StatusOK, gin.H{"message": "Conversación reiniciada"})
}

// Message procesa un mensaje del usuario y devuelve la respuesta completa.
// Con Accept: text/event-stream la respuesta viaja como SSE; el chat
// general se transmite token a token, el resto se emite ya renderizado.
func (h *Handler) Message(c *gin.Context) {
	var req struct {
		SessionID string `json:"session_id"`
		Prompt    string `json:"prompt"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Prompt) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "parámetros inválidos"})
		return
	}
	s, ok := h.Sessions.Get(req.SessionID)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Sesión no encontrada"})
		return
	}

	route := Detect(req.Prompt)
	log.Printf("[chat][route] session=%s intent=%s lang=%s", s.ID, route.Intent, route.Language)

	wantsSSE := strings.Contains(c.GetHeader("Accept"), "text/event-stream")
	if wantsSSE && route.Intent == IntentGeneralChat {
		h.streamGeneralChat(c, s, req.Prompt)
		return
	}

	response := h.respond(c.Request.Context(), s, req.Prompt, route)
	s.RecordTurn(req.Prompt, response)

	if wantsSSE {
		ch := make(chan string, 1)
		ch <- response
		close(ch)
		sse.Stream(c, ch)
		return
	}
	c.JSON(http.StatusOK, gin.H{"response": response})
}

// respond despacha al handler de la intención detectada. Toda falla se
// degrada a un texto en español; el peor caso visible es un mensaje de
// disculpa, nunca un crash.
func (h *Handler) respond(ctx context.Context, s *Session, prompt string, route Route) string {
	switch route.Intent {
	case IntentSearch:
		return h.handleSearch(ctx, s, route.Argument, route.Language)
	case IntentDownloadLink:
		return h.handleDownloadLink(ctx, s, route.Argument)
	case IntentSummarize:
		return h.handleSummarize(ctx, s, route.Argument)
	default:
		return h.handleGeneralChat(ctx, s, prompt)
	}
}

func (h *Handler) handleSearch(ctx context.Context, s *Session, query, lang string) string {
	if strings.TrimSpace(query) == "" {
		return "Indica el tema después de \"buscar artículos sobre\" para poder buscar."
	}
	arts := h.Buscador.Search(ctx, query, lang)
	if len(arts) == 0 {
		return "No encontré artículos para esa búsqueda. Intenta con otros términos."
	}
	s.RememberPDFLinks(arts)

	doc := citations.SearchDocument(arts)

	analysis, err := h.AI.Complete(ctx, s.History(), analysisPrompt(arts))
	if err != nil {
		analysis = fmt.Sprintf("Error al analizar los artículos: %v", err)
	}
	return doc + "## 🧠 Recomendaciones Finales\n\n" + analysis + "\n"
}

// analysisPrompt lista los artículos encontrados y pide al modelo la
// recomendación final, con el mismo desglose campo a campo del flujo
// original de búsqueda.
func analysisPrompt(arts []articles.Article) string {
	var b strings.Builder
	b.WriteString("Analiza los siguientes artículos y recomienda el mejor basado en su contenido y relevancia:\n\n")
	for i, a := range arts {
		fmt.Fprintf(&b, "Artículo %d:\n", i+1)
		fmt.Fprintf(&b, "Título (Original): %s\n", a.Title)
		fmt.Fprintf(&b, "Título (Español): %s\n", a.TitleES)
		fmt.Fprintf(&b, "Autores: %s\n", strings.Join(a.Authors, ", "))
		fmt.Fprintf(&b, "Año: %s\n", a.Year)
		fmt.Fprintf(&b, "Fuente: %s\n", a.Source)
		if a.CitedBy > 0 {
			fmt.Fprintf(&b, "Citado por: %d veces\n", a.CitedBy)
		}
		fmt.Fprintf(&b, "Resumen (Original): %s\n", a.Abstract)
		fmt.Fprintf(&b, "Resumen (Español): %s\n\n", a.AbstractES)
	}
	b.WriteString("\nPor favor, proporciona un análisis detallado y recomienda el mejor artículo, explicando por qué es el más relevante.")
	return b.String()
}

// pubmedGuidance es la respuesta fija para enlaces de PubMed: no hay PDF
// directo, el usuario debe usar los Full Text Links de la página.
const pubmedGuidance = "Para descargar el artículo completo de PubMed, por favor visita el enlace y busca el botón 'Full Text Links' o 'PDF' en la página del artículo."

func (h *Handler) handleDownloadLink(ctx context.Context, s *Session, paperURL string) string {
	if strings.TrimSpace(paperURL) == "" {
		return "Indica la URL del artículo después de \"obtener enlace de descarga para\"."
	}
	if strings.Contains(paperURL, "pubmed.ncbi.nlm.nih.gov") {
		return pubmedGuidance
	}
	// Primero el enlace PDF recordado de la última búsqueda, si lo hay.
	if link, ok := s.PDFLink(paperURL); ok {
		return link
	}
	link, err := fetcher.FindPDFLink(ctx, paperURL)
	if err != nil {
		return fmt.Sprintf("Error al obtener el enlace de descarga: %v", err)
	}
	if link == "" {
		return "No se encontró un enlace de descarga directo. Por favor, visita el sitio web del artículo."
	}
	return link
}

// maxSummaryChars acota el texto que mandamos al modelo al resumir.
const maxSummaryChars = 12000

func (h *Handler) handleSummarize(ctx context.Context, s *Session, paperText string) string {
	if strings.TrimSpace(paperText) == "" {
		return "Pega el texto del artículo (o su URL) después de \"resumir este artículo\"."
	}

	text := paperText
	if isURL(paperText) {
		fetched, err := h.fetchPaperText(ctx, paperText)
		if err != nil {
			log.Printf("[chat][summarize] url=%s err=%v", paperText, err)
		} else if fetched != "" {
			text = fetched
		}
	}
	if len(text) > maxSummaryChars {
		text = text[:maxSummaryChars]
	}

	doc := citations.SummaryDocument(articles.Article{})

	prompt := "Por favor, proporciona un resumen detallado de este artículo médico:\n\n" + text +
		"\n\nPor favor, proporciona:\n" +
		"1. Un resumen general del artículo\n" +
		"2. Los puntos clave de cada sección\n" +
		"3. Las conclusiones principales\n" +
		"4. La relevancia clínica del estudio"
	synthesis, err := h.AI.Complete(ctx, s.History(), prompt)
	if err != nil {
		synthesis = fmt.Sprintf("Error al resumir el artículo: %v", err)
	}
	return doc + "\n## 🧠 Síntesis del Modelo\n\n" + synthesis + "\n"
}

// fetchPaperText recupera el texto completo de una URL: PDFs pasan por el
// extractor local, el resto por el fetch de página.
func (h *Handler) fetchPaperText(ctx context.Context, paperURL string) (string, error) {
	if strings.HasSuffix(strings.ToLower(paperURL), ".pdf") {
		path, err := fetcher.DownloadFile(ctx, paperURL)
		if err != nil {
			return "", err
		}
		defer os.Remove(path)
		return files.ExtractPDFText(path, maxSummaryChars)
	}
	return fetcher.FetchText(ctx, paperURL)
}

// citationSuffix fuerza al modelo a respaldar las respuestas generales con
// fuentes académicas, como exige el prompt de sistema.
const citationSuffix = "\n\nPor favor, respalda tu respuesta con fuentes académicas relevantes y proporciona enlaces a los artículos citados."

func (h *Handler) handleGeneralChat(ctx context.Context, s *Session, prompt string) string {
	response, err := h.AI.Complete(ctx, s.History(), prompt+citationSuffix)
	if err != nil {
		return fmt.Sprintf("Lo siento, pero encontré un error: %v", err)
	}
	return response
}

// streamGeneralChat transmite el chat general token a token y registra el
// turno completo al terminar. Si el stream no arranca, cae al flujo
// síncrono normal.
func (h *Handler) streamGeneralChat(c *gin.Context, s *Session, prompt string) {
	ctx := c.Request.Context()
	stream, err := h.AI.StreamComplete(ctx, s.History(), prompt+citationSuffix)
	if err != nil {
		log.Printf("[chat][stream] session=%s fallback err=%v", s.ID, err)
		response := h.handleGeneralChat(ctx, s, prompt)
		s.RecordTurn(prompt, response)
		ch := make(chan string, 1)
		ch <- response
		close(ch)
		sse.Stream(c, ch)
		return
	}

	var full strings.Builder
	out := make(chan string)
	go func() {
		defer close(out)
		for tok := range stream {
			full.WriteString(tok)
			out <- tok
		}
	}()
	sse.Stream(c, out)
	s.RecordTurn(prompt, full.String())
}

func isURL(s string) bool {
	if strings.ContainsAny(s, " \n\t") {
		return false
	}
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

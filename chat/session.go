package chat

import (
	"sync"

	"github.com/google/uuid"

	"papuy-backend/articles"
	"papuy-backend/openai"
)

// systemPrompt es el mensaje de sistema fijo de Papuy. Se crea una vez por
// sesión y nunca se muta.
const systemPrompt = `Eres Papuy, un asistente de investigación médica muy útil. Ayudas a estudiantes de medicina a encontrar y entender artículos médicos.

Reglas importantes:
1. Responde siempre en español.
2. Al citar artículos, usa SIEMPRE el formato APA 7ma edición.
3. Cuando menciones información de un artículo, incluye una cita en el texto (Autor et al., Año).
4. Al final de cada respuesta que incluya referencias, agrega una sección "Referencias" con el listado completo en formato APA.
5. Para artículos en inglés, mantén el título original en inglés en la referencia.
6. Estructura las referencias así:
   - Artículos: Apellido, N., & Apellido, N. (Año). Título del artículo. Nombre de la revista, Volumen(Número), páginas. DOI
   - Si no hay DOI, usa el URL cuando esté disponible
7. Ordena las referencias alfabéticamente.
8. Cuando resumas artículos, incluye:
   - Objetivo del estudio
   - Metodología
   - Resultados principales
   - Conclusiones
   - Limitaciones (si las hay)`

// Session es el historial rodante de una conversación: mensaje de sistema
// más turnos usuario/asistente en orden estricto de petición/respuesta.
// Además recuerda los pdf_link de la última búsqueda, indexados por URL del
// artículo, para el comando de enlace de descarga.
type Session struct {
	ID string

	mu       sync.Mutex
	messages []openai.Message
	pdfLinks map[string]string
}

func newSession() *Session {
	return &Session{
		ID:       uuid.NewString(),
		messages: []openai.Message{{Role: openai.RoleSystem, Content: systemPrompt}},
		pdfLinks: map[string]string{},
	}
}

// History devuelve una copia del historial para pasarla al modelo.
func (s *Session) History() []openai.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]openai.Message, len(s.messages))
	copy(out, s.messages)
	return out
}

// RecordTurn añade el par usuario/asistente al final del historial.
func (s *Session) RecordTurn(userText, assistantText string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = append(s.messages,
		openai.Message{Role: openai.RoleUser, Content: userText},
		openai.Message{Role: openai.RoleAssistant, Content: assistantText},
	)
}

// Reset vuelve al estado inicial: solo el mensaje de sistema.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = s.messages[:1]
	s.pdfLinks = map[string]string{}
}

// Active indica si ya hay turnos registrados.
func (s *Session) Active() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.messages) > 1
}

// RememberPDFLinks guarda los enlaces PDF de una tanda de resultados,
// indexados por la URL del artículo. Sustituye al viejo truco de rebuscar
// en el penúltimo mensaje del historial.
func (s *Session) RememberPDFLinks(arts []articles.Article) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range arts {
		if a.PDFLink != "" && a.URL != "" {
			s.pdfLinks[a.URL] = a.PDFLink
		}
	}
}

// PDFLink devuelve el enlace PDF recordado para la URL de un artículo.
func (s *Session) PDFLink(url string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	link, ok := s.pdfLinks[url]
	return link, ok
}

// Manager guarda las sesiones activas por ID. Cada clave es independiente:
// no hay estado mutable compartido entre sesiones.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

func NewManager() *Manager {
	return &Manager{sessions: map[string]*Session{}}
}

// Create registra una sesión nueva y la devuelve.
func (m *Manager) Create() *Session {
	s := newSession()
	m.mu.Lock()
	m.sessions[s.ID] = s
	m.mu.Unlock()
	return s
}

// Get busca una sesión por ID.
func (m *Manager) Get(id string) (*Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	return s, ok
}

// Delete elimina la sesión; no falla si no existe.
func (m *Manager) Delete(id string) {
	m.mu.Lock()
	delete(m.sessions, id)
	m.mu.Unlock()
}

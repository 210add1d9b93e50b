package sse

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// doneMarker cierra el stream; el cliente deja de leer al verlo.
const doneMarker = "data: [DONE]\n\n"

// Stream escribe eventos SSE crudos con la forma:
//
//	data: <token>\n\n
//
// y termina con data: [DONE]. Las respuestas del chat son Markdown
// multilínea: cada línea del token va precedida por 'data: ' para que el
// cliente no pierda contenido entre saltos de línea.
func Stream(c *gin.Context, ch <-chan string) {
	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Status(http.StatusOK)

	flusher, ok := c.Writer.(http.Flusher)
	if !ok {
		c.AbortWithStatus(http.StatusInternalServerError)
		return
	}

	for msg := range ch {
		lines := strings.Split(msg, "\n")
		for i, line := range lines {
			token := line
			if i < len(lines)-1 { // reinyectar el salto perdido por Split
				token += "\n"
			}
			_, _ = c.Writer.Write([]byte("data: " + token + "\n"))
		}
		_, _ = c.Writer.Write([]byte("\n"))
		flusher.Flush()
	}
	_, _ = c.Writer.Write([]byte(doneMarker))
	flusher.Flush()
}

package fetcher

// Descarga de páginas de artículos con user-agent de navegador y timeout
// fijo, más extracción de texto del HTML. Devuelve siempre texto plano,
// nunca datos estructurados.

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/net/html"
)

const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"

const fetchTimeout = 10 * time.Second

func newRequest(ctx context.Context, url string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)
	return req, nil
}

var httpClient = &http.Client{Timeout: fetchTimeout}

// FetchText descarga la URL y devuelve el texto visible. Prioriza el
// contenido de <article> o <main> cuando existe; si no, todo el documento.
func FetchText(ctx context.Context, url string) (string, error) {
	req, err := newRequest(ctx, url)
	if err != nil {
		return "", fmt.Errorf("fetcher: %w", err)
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetcher: %w", err)
	}
	defer resp.Body.Close()

	doc, err := html.Parse(resp.Body)
	if err != nil {
		return "", fmt.Errorf("fetcher: html inválido: %w", err)
	}

	if main := findFirst(doc, "article", "main"); main != nil {
		return collectText(main), nil
	}
	return collectText(doc), nil
}

// FindPDFLink busca en la página un ancla con clase pdf-link y devuelve su
// href, o cadena vacía si no hay enlace directo.
func FindPDFLink(ctx context.Context, url string) (string, error) {
	req, err := newRequest(ctx, url)
	if err != nil {
		return "", fmt.Errorf("fetcher: %w", err)
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetcher: %w", err)
	}
	defer resp.Body.Close()

	doc, err := html.Parse(resp.Body)
	if err != nil {
		return "", fmt.Errorf("fetcher: html inválido: %w", err)
	}
	return findPDFAnchor(doc), nil
}

// DownloadFile guarda la URL en un archivo temporal y devuelve su ruta.
// El que llama es responsable de borrarlo.
func DownloadFile(ctx context.Context, url string) (string, error) {
	req, err := newRequest(ctx, url)
	if err != nil {
		return "", fmt.Errorf("fetcher: %w", err)
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetcher: %w", err)
	}
	defer resp.Body.Close()

	tmpDir := "./tmp"
	_ = os.MkdirAll(tmpDir, 0o755)
	path := filepath.Join(tmpDir, uuid.NewString()+filepath.Ext(url))
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("fetcher: %w", err)
	}
	defer f.Close()
	if _, err := io.Copy(f, resp.Body); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("fetcher: %w", err)
	}
	return path, nil
}

func findFirst(n *html.Node, tags ...string) *html.Node {
	if n.Type == html.ElementNode {
		for _, t := range tags {
			if n.Data == t {
				return n
			}
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findFirst(c, tags...); found != nil {
			return found
		}
	}
	return nil
}

func findPDFAnchor(n *html.Node) string {
	if n.Type == html.ElementNode && n.Data == "a" {
		var href, class string
		for _, attr := range n.Attr {
			switch attr.Key {
			case "href":
				href = attr.Val
			case "class":
				class = attr.Val
			}
		}
		if strings.Contains(class, "pdf-link") && href != "" {
			return href
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if link := findPDFAnchor(c); link != "" {
			return link
		}
	}
	return ""
}

// collectText recorre el árbol juntando nodos de texto, saltando script y
// style, y colapsando espacios.
func collectText(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && (n.Data == "script" || n.Data == "style") {
			return
		}
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
			b.WriteString(" ")
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.Join(strings.Fields(b.String()), " ")
}

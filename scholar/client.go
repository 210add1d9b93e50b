package scholar

// Cliente para el motor google_scholar de SerpAPI. Devuelve los resultados
// ya normalizados al registro uniforme de artículos.

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"

	"papuy-backend/articles"
)

const defaultBaseURL = "https://serpapi.com/search.json"

// maxResults limita cuántos resultados pedimos por búsqueda.
const maxResults = 3

type Client struct {
	APIKey  string
	BaseURL string
	HTTP    *http.Client
}

// NewClient crea el cliente leyendo SERP_API_KEY del entorno.
func NewClient() *Client {
	return &Client{
		APIKey:  os.Getenv("SERP_API_KEY"),
		BaseURL: defaultBaseURL,
		HTTP:    http.DefaultClient,
	}
}

// Formas del JSON de SerpAPI; solo los campos que usamos.
type searchResponse struct {
	Error          string          `json:"error"`
	OrganicResults []organicResult `json:"organic_results"`
}

type organicResult struct {
	Title           string `json:"title"`
	Link            string `json:"link"`
	Snippet         string `json:"snippet"`
	PublicationInfo struct {
		Summary string `json:"summary"`
		Authors []struct {
			Name string `json:"name"`
		} `json:"authors"`
	} `json:"publication_info"`
	InlineLinks struct {
		CitedBy struct {
			Total int `json:"total"`
		} `json:"cited_by"`
	} `json:"inline_links"`
	Resources []struct {
		FileFormat string `json:"file_format"`
		Link       string `json:"link"`
	} `json:"resources"`
}

// Search consulta Google Scholar vía SerpAPI. lang viaja en el parámetro hl.
// Un payload con campo "error" o una respuesta no decodificable abortan solo
// la contribución de este proveedor (el agregador la trata como vacía).
func (c *Client) Search(ctx context.Context, query, lang string) ([]articles.Article, error) {
	params := url.Values{}
	params.Set("engine", "google_scholar")
	params.Set("q", query)
	params.Set("api_key", c.APIKey)
	params.Set("num", strconv.Itoa(maxResults))
	params.Set("hl", lang)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("scholar: %w", err)
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("scholar: %w", err)
	}
	defer resp.Body.Close()

	var data searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, fmt.Errorf("scholar: respuesta inválida: %w", err)
	}
	if data.Error != "" {
		return nil, fmt.Errorf("scholar: %s", data.Error)
	}

	out := make([]articles.Article, 0, len(data.OrganicResults))
	for _, r := range data.OrganicResults {
		out = append(out, normalize(r))
	}
	return out, nil
}

// normalize mapea un organic_result al registro uniforme. Cualquier campo
// ausente degrada a su centinela, nunca falla.
func normalize(r organicResult) articles.Article {
	a := articles.Article{
		Title:    orSentinel(r.Title, articles.SinTitulo),
		URL:      orSentinel(r.Link, articles.URLNoDisponible),
		Abstract: orSentinel(r.Snippet, articles.ResumenNoDisponible),
		Source:   articles.FuenteScholar,
		CitedBy:  r.InlineLinks.CitedBy.Total,
		Year:     yearFromSummary(r.PublicationInfo.Summary),
	}
	// Hasta que el agregador traduzca, la copia en español es el original.
	a.TitleES = a.Title
	a.AbstractES = a.Abstract
	for _, au := range r.PublicationInfo.Authors {
		if au.Name != "" {
			a.Authors = append(a.Authors, au.Name)
		}
	}
	for _, res := range r.Resources {
		if res.FileFormat == "PDF" {
			a.PDFLink = res.Link
			break
		}
	}
	return a
}

// yearFromSummary toma el texto después del último "-" del campo summary
// (formato típico: "J Smith - Nature, 2021 - nature.com" no garantizado).
func yearFromSummary(summary string) string {
	if strings.TrimSpace(summary) == "" {
		return articles.SinAnio
	}
	parts := strings.Split(summary, "-")
	year := strings.TrimSpace(parts[len(parts)-1])
	if year == "" {
		return articles.SinAnio
	}
	return year
}

func orSentinel(v, sentinel string) string {
	if strings.TrimSpace(v) == "" {
		return sentinel
	}
	return v
}

package pubmed

// Cliente de NCBI E-utilities en dos pasos: esearch (JSON, ids) y efetch
// (XML, registros completos). La normalización degrada campos ausentes a
// centinelas; solo un payload completamente malformado aborta al proveedor.

import (
	"context"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"

	"papuy-backend/articles"
)

const (
	defaultBaseURL = "https://eutils.ncbi.nlm.nih.gov/entrez/eutils"
	articleBaseURL = "https://pubmed.ncbi.nlm.nih.gov/"
)

const maxResults = 3

type Client struct {
	APIKey  string
	BaseURL string
	HTTP    *http.Client
}

// NewClient crea el cliente leyendo PUBMED_API_KEY del entorno (opcional;
// sin clave NCBI aplica límites de tasa más estrictos).
func NewClient() *Client {
	return &Client{
		APIKey:  os.Getenv("PUBMED_API_KEY"),
		BaseURL: defaultBaseURL,
		HTTP:    http.DefaultClient,
	}
}

type esearchResponse struct {
	ESearchResult struct {
		IDList []string `json:"idlist"`
	} `json:"esearchresult"`
}

// Search ejecuta esearch+efetch y devuelve los artículos normalizados.
// lang no afecta a la consulta (PubMed indexa en inglés); la traducción la
// resuelve el agregador.
func (c *Client) Search(ctx context.Context, query, lang string) ([]articles.Article, error) {
	ids, err := c.searchIDs(ctx, query)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, nil
	}
	return c.fetchByIDs(ctx, ids)
}

func (c *Client) searchIDs(ctx context.Context, query string) ([]string, error) {
	params := url.Values{}
	params.Set("db", "pubmed")
	params.Set("term", query)
	params.Set("retmode", "json")
	params.Set("retmax", fmt.Sprint(maxResults))
	if c.APIKey != "" {
		params.Set("api_key", c.APIKey)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/esearch.fcgi?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("pubmed: %w", err)
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("pubmed: %w", err)
	}
	defer resp.Body.Close()

	var data esearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, fmt.Errorf("pubmed: esearch inválido: %w", err)
	}
	return data.ESearchResult.IDList, nil
}

func (c *Client) fetchByIDs(ctx context.Context, ids []string) ([]articles.Article, error) {
	params := url.Values{}
	params.Set("db", "pubmed")
	params.Set("id", strings.Join(ids, ","))
	params.Set("retmode", "xml")
	if c.APIKey != "" {
		params.Set("api_key", c.APIKey)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/efetch.fcgi?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("pubmed: %w", err)
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("pubmed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("pubmed: %w", err)
	}
	return parseArticleSet(body)
}

// Estructuras XML del PubmedArticleSet; solo los elementos que usamos.
type articleSet struct {
	Articles []pubmedArticle `xml:"PubmedArticle"`
}

type pubmedArticle struct {
	PMID     string        `xml:"MedlineCitation>PMID"`
	Title    string        `xml:"MedlineCitation>Article>ArticleTitle"`
	Abstract string        `xml:"MedlineCitation>Article>Abstract>AbstractText"`
	Authors  []xmlAuthor   `xml:"MedlineCitation>Article>AuthorList>Author"`
	Journal  string        `xml:"MedlineCitation>Article>Journal>Title"`
	Year     string        `xml:"MedlineCitation>Article>Journal>JournalIssue>PubDate>Year"`
	IDs      []xmlArticleID `xml:"PubmedData>ArticleIdList>ArticleId"`
}

type xmlAuthor struct {
	LastName string `xml:"LastName"`
	ForeName string `xml:"ForeName"`
}

type xmlArticleID struct {
	IDType string `xml:"IdType,attr"`
	Value  string `xml:",chardata"`
}

// parseArticleSet decodifica el XML de efetch y normaliza cada registro.
func parseArticleSet(data []byte) ([]articles.Article, error) {
	var set articleSet
	if err := xml.Unmarshal(data, &set); err != nil {
		return nil, fmt.Errorf("pubmed: efetch inválido: %w", err)
	}
	out := make([]articles.Article, 0, len(set.Articles))
	for _, pa := range set.Articles {
		out = append(out, normalize(pa))
	}
	return out, nil
}

func normalize(pa pubmedArticle) articles.Article {
	a := articles.Article{
		Title:    orSentinel(pa.Title, articles.SinTitulo),
		Abstract: orSentinel(pa.Abstract, articles.ResumenNoDisponible),
		Year:     orSentinel(pa.Year, articles.SinAnio),
		URL:      articleBaseURL + pa.PMID + "/",
		Source:   articles.FuentePubMed,
		Journal:  pa.Journal,
	}
	a.TitleES = a.Title
	a.AbstractES = a.Abstract
	for _, au := range pa.Authors {
		// Autores sin apellido o sin nombre se omiten, como hace el formato
		// "Apellido, Nombre" que exige la referencia.
		if au.LastName == "" || au.ForeName == "" {
			continue
		}
		a.Authors = append(a.Authors, au.LastName+", "+au.ForeName)
	}
	for _, id := range pa.IDs {
		if id.IDType == "doi" {
			a.DOI = strings.TrimSpace(id.Value)
			break
		}
	}
	return a
}

func orSentinel(v, sentinel string) string {
	if strings.TrimSpace(v) == "" {
		return sentinel
	}
	return v
}

package files

import (
	"bytes"
	"errors"
	"os"

	pdf "rsc.io/pdf"
)

// ExtractPDFText abre el PDF en filePath y devuelve su texto hasta
// maxChars. Con maxChars <= 0 se usa un tope razonable para no desbordar
// el contexto del modelo al resumir.
func ExtractPDFText(filePath string, maxChars int) (string, error) {
	if maxChars <= 0 {
		maxChars = 12000
	}

	r, err := pdf.Open(filePath)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	for pageIndex := 1; pageIndex <= r.NumPage(); pageIndex++ {
		p := r.Page(pageIndex)
		if p.V.IsNull() {
			continue
		}
		for _, t := range p.Content().Text {
			buf.WriteString(t.S)
		}
		buf.WriteString("\n\n")
		if buf.Len() >= maxChars {
			return buf.String()[:maxChars], nil
		}
	}

	// Algunos PDF no tienen capa de texto; intentamos con el contenido
	// crudo antes de rendirnos.
	if buf.Len() == 0 {
		data, err := os.ReadFile(filePath)
		if err != nil {
			return "", err
		}
		if len(data) == 0 {
			return "", errors.New("pdf vacío")
		}
		if len(data) > maxChars {
			data = data[:maxChars]
		}
		return string(bytes.ReplaceAll(data, []byte{'\x00'}, []byte{' '})), nil
	}
	return buf.String(), nil
}

package openai

import (
	"context"
	"fmt"
	"os"

	openai "github.com/sashabaranov/go-openai"
)

// Message es un turno de conversación tal como viaja al modelo.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

type Client struct {
	api   *openai.Client
	Model string
}

// NewClient lee OPENAI_API_KEY y OPENAI_MODEL del entorno.
func NewClient() *Client {
	key := os.Getenv("OPENAI_API_KEY")
	model := os.Getenv("OPENAI_MODEL")
	if model == "" {
		model = openai.GPT4
	}
	return &Client{api: openai.NewClient(key), Model: model}
}

// Complete envía el historial completo más el texto del usuario y devuelve
// la respuesta del modelo. El error se propaga; quien llama decide cómo
// degradarlo a texto para el usuario.
func (c *Client) Complete(ctx context.Context, history []Message, prompt string) (string, error) {
	msgs := make([]openai.ChatCompletionMessage, 0, len(history)+1)
	for _, m := range history {
		msgs = append(msgs, openai.ChatCompletionMessage{Role: m.Role, Content: m.Content})
	}
	msgs = append(msgs, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: prompt})

	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.Model,
		Messages:    msgs,
		Temperature: 0.7,
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("respuesta vacía del modelo")
	}
	return resp.Choices[0].Message.Content, nil
}

// Translate traduce un fragmento al español manteniendo formato y
// estructura. En caso de fallo devuelve un texto con el error embebido en
// lugar de propagarlo: el formateo siempre necesita una cadena que colocar.
func (c *Client) Translate(ctx context.Context, text string) string {
	prompt := fmt.Sprintf("Traduce el siguiente texto al español, manteniendo el formato y la estructura:\n\n%s", text)
	out, err := c.Complete(ctx, nil, prompt)
	if err != nil {
		return fmt.Sprintf("Error en la traducción: %v", err)
	}
	return out
}

// StreamComplete es la variante en streaming de Complete para respuestas
// SSE. El canal se cierra al terminar el stream o al primer error de
// recepción.
func (c *Client) StreamComplete(ctx context.Context, history []Message, prompt string) (<-chan string, error) {
	msgs := make([]openai.ChatCompletionMessage, 0, len(history)+1)
	for _, m := range history {
		msgs = append(msgs, openai.ChatCompletionMessage{Role: m.Role, Content: m.Content})
	}
	msgs = append(msgs, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: prompt})

	stream, err := c.api.CreateChatCompletionStream(ctx, openai.ChatCompletionRequest{
		Model:       c.Model,
		Messages:    msgs,
		Temperature: 0.7,
	})
	if err != nil {
		return nil, err
	}

	ch := make(chan string)
	go func() {
		defer stream.Close()
		defer close(ch)
		for {
			resp, err := stream.Recv()
			if err != nil {
				break
			}
			if len(resp.Choices) > 0 {
				ch <- resp.Choices[0].Delta.Content
			}
		}
	}()
	return ch, nil
}

package discord

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const defaultBaseURL = "https://discord.com/api/v10"

// Message — исходящее сообщение Discord: текст плюс не более одного эмбеда.
type Message struct {
	Content string  `json:"content,omitempty"`
	Embeds  []Embed `json:"embeds,omitempty"`
}

type Embed struct {
	Title       string       `json:"title,omitempty"`
	Description string       `json:"description,omitempty"`
	Color       int          `json:"color,omitempty"`
	Fields      []EmbedField `json:"fields,omitempty"`
	Thumbnail   *EmbedImage  `json:"thumbnail,omitempty"`
	Image       *EmbedImage  `json:"image,omitempty"`
	Footer      *EmbedFooter `json:"footer,omitempty"`
}

type EmbedField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline,omitempty"`
}

type EmbedImage struct {
	URL string `json:"url"`
}

type EmbedFooter struct {
	Text string `json:"text"`
}

// Client — минимальный REST-клиент Discord: отправка, правка и удаление
// сообщений. Всего API бот не использует, поэтому и SDK не нужен.
type Client struct {
	token   string
	baseURL string
	http    *http.Client
}

func NewClient(token string) *Client {
	return &Client{
		token:   token,
		baseURL: defaultBaseURL,
		http:    &http.Client{Timeout: 15 * time.Second},
	}
}

// NewClientWithBaseURL используется в тестах для подмены адреса API.
func NewClientWithBaseURL(token, baseURL string) *Client {
	c := NewClient(token)
	c.baseURL = baseURL
	return c
}

// CreateMessage публикует сообщение в канал и возвращает его id.
func (c *Client) CreateMessage(ctx context.Context, channelID string, msg *Message) (string, error) {
	endpoint := fmt.Sprintf("%s/channels/%s/messages", c.baseURL, channelID)

	body, err := c.do(ctx, http.MethodPost, endpoint, msg)
	if err != nil {
		return "", err
	}

	var created struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(body, &created); err != nil {
		return "", fmt.Errorf("discord: decode create response: %w", err)
	}
	return created.ID, nil
}

// EditMessage заменяет содержимое ранее отправленного сообщения.
func (c *Client) EditMessage(ctx context.Context, channelID, messageID string, msg *Message) error {
	endpoint := fmt.Sprintf("%s/channels/%s/messages/%s", c.baseURL, channelID, messageID)
	_, err := c.do(ctx, http.MethodPatch, endpoint, msg)
	return err
}

// DeleteMessage удаляет сообщение. Удаление уже удаленного вручную
// сообщения (404) ошибкой не считается.
func (c *Client) DeleteMessage(ctx context.Context, channelID, messageID string) error {
	endpoint := fmt.Sprintf("%s/channels/%s/messages/%s", c.baseURL, channelID, messageID)

	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, endpoint, nil)
	if err != nil {
		return err
	}
	c.setHeaders(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil
	}
	if resp.StatusCode >= 300 {
		return fmt.Errorf("discord API error: %s", resp.Status)
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, endpoint string, payload any) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("discord: marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	c.setHeaders(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("discord API error: %s: %s", resp.Status, respBody)
	}
	return respBody, nil
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Authorization", "Bot "+c.token)
	req.Header.Set("Content-Type", "application/json")
}

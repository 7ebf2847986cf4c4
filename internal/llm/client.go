// SPDX-License-Identifier: Apache-2.0

// Package llm talks to a local inference server and parses the structured
// fragments its responses may contain. Callers treat every failure here as
// a signal to fall back to rule-based behavior.
package llm

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Message is one turn of a chat conversation.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatClient accepts a conversation and returns the model's reply text.
type ChatClient interface {
	Chat(messages []Message) (string, error)
}

// OllamaClient talks to an Ollama-compatible server over HTTP.
type OllamaClient struct {
	baseURL    string
	model      string
	httpClient *http.Client
}

// NewOllamaClient creates a chat client for the server at host:port.
func NewOllamaClient(host string, port int, model string, timeout time.Duration) *OllamaClient {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &OllamaClient{
		baseURL:    fmt.Sprintf("http://%s:%d", host, port),
		model:      model,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Chat sends the conversation and returns the reply content.
func (c *OllamaClient) Chat(messages []Message) (string, error) {
	body := map[string]interface{}{
		"model":    c.model,
		"messages": messages,
		"stream":   false,
	}

	data, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("error encoding chat request: %w", err)
	}

	resp, err := c.httpClient.Post(c.baseURL+"/api/chat", "application/json", bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("error calling inference server: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("inference server returned status %d", resp.StatusCode)
	}

	var parsed struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("error decoding chat response: %w", err)
	}

	if parsed.Message.Content == "" {
		return "", fmt.Errorf("inference server returned an empty message")
	}

	return parsed.Message.Content, nil
}

package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"google.golang.org/genai"

	"github.com/maartenverheul/Trek/internal/models"
)

// ChatMessage is one turn of an insights conversation.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Insights answers free-form questions about a map's markers with Gemini.
type Insights struct {
	apiKey string
}

func NewInsights(apiKey string) *Insights {
	return &Insights{apiKey: apiKey}
}

// Enabled reports whether an API key was configured.
func (i *Insights) Enabled() bool {
	return i.apiKey != ""
}

// Answer sends the map's markers and a question to Gemini and returns the
// response text.
func (i *Insights) Answer(ctx context.Context, markers []models.Marker, question string, history []ChatMessage) (string, error) {
	if !i.Enabled() {
		return "", fmt.Errorf("GEMINI_API_KEY not configured")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  i.apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return "", fmt.Errorf("failed to create Gemini client: %w", err)
	}

	var sb strings.Builder
	sb.WriteString("You are a helpful assistant answering questions about places a user has bookmarked on a map. ")
	sb.WriteString("Here are the markers on their map:\n\n")
	for _, m := range markers {
		sb.WriteString(fmt.Sprintf("--- %s (%.6f, %.6f) ---\n", m.Title, m.Lat, m.Lng))
		if m.Description != nil {
			sb.WriteString(*m.Description + "\n")
		}
		if m.City != nil {
			sb.WriteString("City: " + *m.City + "\n")
		}
		if m.Country != nil {
			sb.WriteString("Country: " + *m.Country + "\n")
		}
		if m.Rating != nil {
			sb.WriteString(fmt.Sprintf("Rating: %d/10\n", *m.Rating))
		}
		if m.Notes != "" {
			sb.WriteString("Notes: " + m.Notes + "\n")
		}
		for _, v := range m.Visitations {
			sb.WriteString(fmt.Sprintf("Visited %s: %s\n", v.Date, v.Text))
		}
		sb.WriteString("\n")
	}

	var chatHistory []*genai.Content
	for _, msg := range history {
		role := "user"
		if msg.Role == "model" {
			role = "model"
		}
		chatHistory = append(chatHistory, &genai.Content{
			Role:  role,
			Parts: []*genai.Part{{Text: msg.Content}},
		})
	}

	chat, err := client.Chats.Create(ctx, "gemini-2.5-flash", &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{Text: sb.String()}},
		},
	}, chatHistory)
	if err != nil {
		return "", fmt.Errorf("failed to create chat session: %w", err)
	}

	resp, err := chat.SendMessage(ctx, genai.Part{Text: question})
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", err)
	}
	if len(resp.Candidates) == 0 || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("no response from Gemini")
	}
	if text := resp.Candidates[0].Content.Parts[0].Text; text != "" {
		return text, nil
	}
	return "", fmt.Errorf("empty response from Gemini")
}

// InsightsHandler answers a question about the markers of one map.
func (h *Handlers) InsightsHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if !h.insights.Enabled() {
		http.Error(w, "Insights not configured", http.StatusServiceUnavailable)
		return
	}

	var body struct {
		MapID    int           `json:"mapId"`
		Question string        `json:"question"`
		History  []ChatMessage `json:"history"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(body.Question) == "" {
		http.Error(w, "Question is required", http.StatusBadRequest)
		return
	}

	markers, err := h.store.ListMarkers(r.Context(), body.MapID)
	if err != nil {
		h.storeError(w, err, "list markers failed")
		return
	}

	answer, err := h.insights.Answer(r.Context(), markers, body.Question, body.History)
	if err != nil {
		h.log.Error().Err(err).Msg("insights request failed")
		http.Error(w, "Insights request failed", http.StatusBadGateway)
		return
	}
	writeJSON(w, map[string]string{"answer": answer})
}

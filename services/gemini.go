package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

const tutorModel = "gemini-1.5-flash"

// TutorService wraps the Gemini client for language-tutor conversations.
type TutorService struct {
	client *genai.Client
}

func NewTutorService(ctx context.Context, apiKey string) (*TutorService, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini apiKey must be configured")
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	return &TutorService{client: client}, nil
}

func (t *TutorService) Close() error {
	return t.client.Close()
}

// Chat sends one tutor turn. The prompt instructs the model to converse in
// the user's learning language and correct mistakes in their native language.
func (t *TutorService) Chat(ctx context.Context, nativeLanguage, learningLanguage, message string) (string, error) {
	if nativeLanguage == "" {
		nativeLanguage = "English"
	}
	if learningLanguage == "" {
		learningLanguage = "Spanish"
	}

	prompt := fmt.Sprintf(`You are a helpful and friendly language tutor.
The user is a native %[1]s speaker learning %[2]s.

Your goal is to help them practice %[2]s.

Rules:
1. Reply primarily in %[2]s.
2. If the user makes a mistake, politely correct them in %[1]s and then continue the conversation in %[2]s.
3. Keep your responses concise (1-3 sentences) to keep the conversation flowing.
4. If the user asks for a translation, provide it in %[1]s.

User's message: %[3]q`, nativeLanguage, learningLanguage, message)

	model := t.client.GenerativeModel(tutorModel)
	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("gemini generation failed: %w", err)
	}
	return collectText(resp), nil
}

func collectText(resp *genai.GenerateContentResponse) string {
	var sb strings.Builder
	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if text, ok := part.(genai.Text); ok {
				sb.WriteString(string(text))
			}
		}
	}
	return strings.TrimSpace(sb.String())
}

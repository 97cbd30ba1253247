package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

const deepgramListenURL = "https://api.deepgram.com/v1/listen"

// TranscriptionService calls Deepgram's prerecorded transcription API.
type TranscriptionService struct {
	apiKey string
	url    string
	client *http.Client
}

func NewTranscriptionService(apiKey string) *TranscriptionService {
	return &TranscriptionService{
		apiKey: apiKey,
		url:    deepgramListenURL,
		client: &http.Client{Timeout: 60 * time.Second},
	}
}

// Configured reports whether an API key was provided.
func (t *TranscriptionService) Configured() bool {
	return t.apiKey != ""
}

type deepgramResponse struct {
	Results struct {
		Channels []struct {
			Alternatives []struct {
				Transcript string `json:"transcript"`
			} `json:"alternatives"`
		} `json:"channels"`
	} `json:"results"`
}

// Transcribe sends raw audio bytes to Deepgram and returns the transcript of
// the first channel's best alternative.
func (t *TranscriptionService) Transcribe(ctx context.Context, audio []byte, language string) (string, error) {
	if language == "" {
		language = "en"
	}

	params := url.Values{}
	params.Set("model", "nova-2")
	params.Set("language", language)
	params.Set("smart_format", "true")
	params.Set("punctuate", "true")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.url+"?"+params.Encode(), bytes.NewReader(audio))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Token "+t.apiKey)
	req.Header.Set("Content-Type", "application/octet-stream")

	resp, err := t.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("transcription request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("deepgram API error: %s", string(body))
	}

	var parsed deepgramResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("failed to parse deepgram response: %w", err)
	}
	if len(parsed.Results.Channels) == 0 || len(parsed.Results.Channels[0].Alternatives) == 0 {
		return "", nil
	}
	return parsed.Results.Channels[0].Alternatives[0].Transcript, nil
}

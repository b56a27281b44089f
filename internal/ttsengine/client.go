// Package ttsengine реализует HTTP-клиент внешнего движка синтеза речи.
//
// Движок принимает JSON-запрос и возвращает готовый WAV. Управление
// высотой тона и эмоциями движок не поддерживает — эти параметры
// симулируются на уровне сервиса генерации.
package ttsengine

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	apiGenerateSpeech = "/v1/generate/speech"
	apiHealth         = "/health"

	contentTypeJSON = "application/json"
	contentTypeWAV  = "audio/wav"
)

// Статические ошибки клиента.
var (
	ErrTextEmpty      = errors.New("text cannot be empty")
	ErrEmptyAudio     = errors.New("received empty audio data")
	ErrEngineNotReady = errors.New("speech engine is not healthy")
)

// Request описывает JSON-запрос к движку синтеза.
type Request struct {
	// Text — текст для озвучивания, обязательное поле.
	Text string `json:"text"`
	// Voice — идентификатор голоса движка (пресет) либо пустая строка.
	Voice string `json:"voice,omitempty"`
	// SpeakerRefPath — путь к образцу голоса для клонов. Пустая строка
	// означает использование пресета из Voice.
	SpeakerRefPath string `json:"speaker_ref_path,omitempty"`
	// Language — код языка, например "en-US".
	Language string `json:"language"`
	// Speed — множитель скорости речи, 0.5..2.0.
	Speed float64 `json:"speed"`
}

type errorResponse struct {
	Detail string `json:"detail"`
}

// Client — HTTP-клиент движка синтеза речи.
type Client struct {
	httpClient *http.Client
	baseURL    string
}

// New создаёт клиент движка. baseURL включает протокол и порт,
// таймаут применяется ко всем запросам.
func New(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// GenerateSpeech отправляет запрос на синтез и возвращает WAV-байты.
func (c *Client) GenerateSpeech(ctx context.Context, req Request) ([]byte, error) {
	const op = "ttsengine.GenerateSpeech"

	if req.Text == "" {
		return nil, fmt.Errorf("%s: %w", op, ErrTextEmpty)
	}
	if req.Speed == 0 {
		req.Speed = 1.0
	}
	if req.Language == "" {
		req.Language = "en-US"
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+apiGenerateSpeech, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	httpReq.Header.Set("Content-Type", contentTypeJSON)
	httpReq.Header.Set("Accept", contentTypeWAV)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s: %s", op, readEngineError(resp))
	}

	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if len(audio) == 0 {
		return nil, fmt.Errorf("%s: %w", op, ErrEmptyAudio)
	}
	return audio, nil
}

// HealthCheck проверяет доступность движка синтеза.
func (c *Client) HealthCheck(ctx context.Context) error {
	const op = "ttsengine.HealthCheck"

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+apiHealth, nil)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%s: %w: status %s", op, ErrEngineNotReady, resp.Status)
	}
	return nil
}

// readEngineError извлекает текст ошибки из JSON-ответа движка,
// при нечитаемом теле возвращает HTTP-статус.
func readEngineError(resp *http.Response) string {
	raw, err := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if err != nil || len(raw) == 0 {
		return resp.Status
	}
	var engineErr errorResponse
	if err := json.Unmarshal(raw, &engineErr); err != nil || engineErr.Detail == "" {
		return fmt.Sprintf("%s: %s", resp.Status, string(raw))
	}
	return engineErr.Detail
}

package translate

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
)

const DefaultMyMemoryURL = "https://api.mymemory.translated.net"

// MyMemory talks to the free MyMemory translation API.
type MyMemory struct {
	baseURL    string
	httpClient *http.Client
	timeout    time.Duration
	log        *zap.Logger
}

func NewMyMemory(baseURL string, timeout time.Duration, log *zap.Logger) *MyMemory {
	if baseURL == "" {
		baseURL = DefaultMyMemoryURL
	}
	return &MyMemory{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{},
		timeout:    timeout,
		log:        log,
	}
}

type myMemoryResponse struct {
	ResponseData struct {
		TranslatedText string `json:"translatedText"`
	} `json:"responseData"`
	ResponseStatus json.RawMessage `json:"responseStatus"`
}

// status reads responseStatus, which the API sends as either a number or a
// string. Quota and language errors arrive with HTTP 200 and the message in
// translatedText. A missing status counts as 200.
func (r myMemoryResponse) status() int {
	raw := strings.Trim(strings.TrimSpace(string(r.ResponseStatus)), `"`)
	if raw == "" || raw == "null" {
		return http.StatusOK
	}
	code, err := strconv.Atoi(raw)
	if err != nil {
		return 0
	}
	return code
}

func (m *MyMemory) Translate(ctx context.Context, text, lang string) string {
	if skip(text, lang) {
		return text
	}
	out, err := m.fetch(ctx, text, lang)
	if err != nil {
		m.log.Warn("translation failed", zap.String("provider", "mymemory"),
			zap.String("text", text), zap.String("lang", lang), zap.Error(err))
		return text
	}
	return out
}

func (m *MyMemory) fetch(ctx context.Context, text, lang string) (string, error) {
	ctx, cancel := withTimeout(ctx, m.timeout)
	defer cancel()

	q := url.Values{}
	q.Set("q", text)
	q.Set("langpair", SourceLang+"|"+lang)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, m.baseURL+"/get?"+q.Encode(), nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	var r myMemoryResponse
	if err := json.NewDecoder(resp.Body).Decode(&r); err != nil {
		return "", fmt.Errorf("decode: %w", err)
	}
	if code := r.status(); code != http.StatusOK {
		return "", fmt.Errorf("response status %d: %s", code, strings.TrimSpace(r.ResponseData.TranslatedText))
	}
	out := strings.TrimSpace(r.ResponseData.TranslatedText)
	if out == "" {
		return "", fmt.Errorf("empty translation")
	}
	return out, nil
}

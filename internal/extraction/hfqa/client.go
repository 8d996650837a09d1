package hfqa

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Maks-Mroczkowski/LLM-Powered-Document-Processing-Agent/internal/extraction"
)

// Config holds HuggingFace inference API settings.
type Config struct {
	BaseURL  string
	Model    string
	APIToken string
	Timeout  time.Duration
}

// Client implements extraction.AnswerExtractor against the HuggingFace
// hosted question-answering inference API.
type Client struct {
	cfg Config
	hc  *http.Client
	log *slog.Logger
}

func New(cfg Config, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 45 * time.Second
	}
	return &Client{
		cfg: cfg,
		hc:  &http.Client{Timeout: cfg.Timeout},
		log: logger,
	}
}

type qaRequest struct {
	Inputs qaInputs `json:"inputs"`
}

type qaInputs struct {
	Question string `json:"question"`
	Context  string `json:"context"`
}

type qaResponse struct {
	Answer string  `json:"answer"`
	Score  float64 `json:"score"`
	Start  int     `json:"start"`
	End    int     `json:"end"`
}

// Answer asks one question against one document's text.
func (c *Client) Answer(ctx context.Context, question, documentText string) (extraction.Answer, error) {
	endpoint := strings.TrimRight(c.cfg.BaseURL, "/") + "/models/" + c.cfg.Model

	headers := map[string]string{}
	if c.cfg.APIToken != "" {
		headers["Authorization"] = "Bearer " + c.cfg.APIToken
	}

	raw, _, err := c.sendJSON(ctx, endpoint, qaRequest{Inputs: qaInputs{Question: question, Context: documentText}}, headers)
	if err != nil {
		return extraction.Answer{}, fmt.Errorf("qa request: %w", err)
	}

	if err := validateResponse(raw); err != nil {
		return extraction.Answer{}, fmt.Errorf("qa response: %w", err)
	}

	var resp qaResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return extraction.Answer{}, fmt.Errorf("decode qa response: %w", err)
	}
	return extraction.Answer{
		Text:       resp.Answer,
		Confidence: resp.Score,
		Start:      resp.Start,
		End:        resp.End,
	}, nil
}

// sendJSON posts a JSON body and returns the raw response body. It does not
// assume any provider; callers decide the URL and headers.
func (c *Client) sendJSON(ctx context.Context, url string, body any, headers map[string]string) ([]byte, int, error) {
	reqID := uuid.New().String()
	start := time.Now()

	bs, err := json.Marshal(body)
	if err != nil {
		c.log.Error("hfqa.http.encode_error", "req_id", reqID, "error", err)
		return nil, 0, fmt.Errorf("encode json: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(bs))
	if err != nil {
		c.log.Error("hfqa.http.build_request_error", "req_id", reqID, "error", err)
		return nil, 0, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.hc.Do(req)
	if err != nil {
		c.log.Error("hfqa.http.send_error", "req_id", reqID, "error", err, "elapsed_ms", time.Since(start).Milliseconds())
		return nil, 0, err
	}
	defer func(body io.ReadCloser) {
		if err := body.Close(); err != nil {
			c.log.Warn("hfqa.http.response_body_close_error", "req_id", reqID, "error", err)
		}
	}(resp.Body)

	raw, _ := io.ReadAll(resp.Body)

	c.log.Info("hfqa.http.response",
		"req_id", reqID,
		"status", resp.StatusCode,
		"bytes", len(raw),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)

	if resp.StatusCode/100 != 2 {
		return raw, resp.StatusCode, fmt.Errorf("non-2xx status: %d", resp.StatusCode)
	}
	return raw, resp.StatusCode, nil
}

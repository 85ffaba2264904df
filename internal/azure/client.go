package azure

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/PabloTorresOyarzun/sgdparser/internal/config"
	"github.com/PabloTorresOyarzun/sgdparser/internal/metrics"
)

const (
	// Polling cadence for custom-model extraction.
	extractPollInterval = 2 * time.Second
	extractMaxAttempts  = 60

	// Layout polling backs off up to this ceiling between attempts.
	layoutMaxPollWait = 5 * time.Second
)

// Client talks to Azure Document Intelligence: the prebuilt layout model
// for per-page OCR text and custom trained models for field extraction.
type Client struct {
	http       *http.Client
	endpoint   string
	apiKey     string
	apiVersion string
}

func NewClient(cfg config.AzureConfig) *Client {
	return &Client{
		http:       &http.Client{},
		endpoint:   strings.TrimRight(cfg.Endpoint, "/"),
		apiKey:     cfg.APIKey,
		apiVersion: cfg.APIVersion,
	}
}

func (c *Client) baseURL() string {
	return c.endpoint + "/documentintelligence"
}

type analyzeStatus struct {
	Status        string          `json:"status"`
	AnalyzeResult *analyzeResult  `json:"analyzeResult"`
	Error         json.RawMessage `json:"error"`
}

type analyzeResult struct {
	Pages     []layoutPage      `json:"pages"`
	Documents []analyzeDocument `json:"documents"`
}

type layoutPage struct {
	PageNumber int          `json:"pageNumber"`
	Lines      []layoutLine `json:"lines"`
}

type layoutLine struct {
	Content string `json:"content"`
}

type analyzeDocument struct {
	Fields map[string]json.RawMessage `json:"fields"`
}

// ExtractPageText submits the whole PDF to the prebuilt layout model and
// polls until the analysis finishes. The timeout bounds the total polling
// window; attempts poll on an exponential backoff capped at five seconds.
// Returns the extracted text keyed by 1-based page number.
func (c *Client) ExtractPageText(ctx context.Context, pdf []byte, timeout time.Duration) (map[int]string, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	url := fmt.Sprintf("%s/documentModels/prebuilt-layout:analyze?api-version=%s", c.baseURL(), c.apiVersion)
	opLocation, err := c.submit(ctx, url, pdf)
	if err != nil {
		metrics.IncExtraction("error")
		return nil, err
	}

	maxAttempts := int(timeout.Seconds() / 2)
	for attempt := 0; attempt < maxAttempts; attempt++ {
		wait := time.Duration(float64(time.Second) * pow(1.5, attempt))
		if wait > layoutMaxPollWait {
			wait = layoutMaxPollWait
		}
		if err := sleepCtx(ctx, wait); err != nil {
			return nil, err
		}

		status, err := c.poll(ctx, opLocation)
		if err != nil {
			return nil, err
		}
		switch status.Status {
		case "succeeded":
			texts := make(map[int]string)
			if status.AnalyzeResult != nil {
				for _, page := range status.AnalyzeResult.Pages {
					var sb strings.Builder
					for _, line := range page.Lines {
						sb.WriteString(line.Content)
						sb.WriteString(" ")
					}
					texts[page.PageNumber] = strings.TrimSpace(sb.String())
				}
			}
			metrics.IncExtraction("ok")
			return texts, nil
		case "failed", "invalid":
			metrics.IncExtraction("error")
			return nil, fmt.Errorf("layout analysis ended with status %q", status.Status)
		}
	}

	metrics.IncExtraction("timeout")
	return nil, fmt.Errorf("layout analysis did not finish within %s", timeout)
}

// VerifyModel reports whether the custom model exists and is queryable.
func (c *Client) VerifyModel(ctx context.Context, modelID string) bool {
	url := fmt.Sprintf("%s/documentModels/%s?api-version=%s", c.baseURL(), modelID, c.apiVersion)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return false
	}
	req.Header.Set("Ocp-Apim-Subscription-Key", c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		log.Warn().Err(err).Str("model", modelID).Msg("model verification failed")
		return false
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.Warn().Int("status", resp.StatusCode).Str("model", modelID).Msg("model not available")
		return false
	}
	return true
}

// ExtractFields runs a custom trained model over the segment PDF and
// returns its cleaned field map. An analysis that succeeds without
// recognizing a document yields an empty map.
func (c *Client) ExtractFields(ctx context.Context, pdf []byte, modelID string) (map[string]any, error) {
	url := fmt.Sprintf("%s/documentModels/%s:analyze?api-version=%s", c.baseURL(), modelID, c.apiVersion)
	opLocation, err := c.submit(ctx, url, pdf)
	if err != nil {
		metrics.IncExtraction("error")
		return nil, err
	}

	for attempt := 0; attempt < extractMaxAttempts; attempt++ {
		status, err := c.poll(ctx, opLocation)
		if err != nil {
			return nil, err
		}
		switch status.Status {
		case "succeeded":
			metrics.IncExtraction("ok")
			if status.AnalyzeResult == nil || len(status.AnalyzeResult.Documents) == 0 {
				return map[string]any{}, nil
			}
			return cleanFieldSet(status.AnalyzeResult.Documents[0].Fields)
		case "failed":
			metrics.IncExtraction("error")
			return nil, fmt.Errorf("field extraction failed: %s", status.Error)
		}
		if err := sleepCtx(ctx, extractPollInterval); err != nil {
			return nil, err
		}
	}

	metrics.IncExtraction("timeout")
	return nil, fmt.Errorf("field extraction did not finish after %d polls", extractMaxAttempts)
}

// submit posts the PDF and returns the Operation-Location to poll.
func (c *Client) submit(ctx context.Context, url string, pdf []byte) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(pdf))
	if err != nil {
		return "", err
	}
	req.Header.Set("Ocp-Apim-Subscription-Key", c.apiKey)
	req.Header.Set("Content-Type", "application/pdf")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusAccepted {
		return "", fmt.Errorf("analysis submit returned status %d", resp.StatusCode)
	}
	opLocation := resp.Header.Get("Operation-Location")
	if opLocation == "" {
		return "", fmt.Errorf("analysis submit returned no Operation-Location")
	}
	return opLocation, nil
}

func (c *Client) poll(ctx context.Context, opLocation string) (*analyzeStatus, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, opLocation, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Ocp-Apim-Subscription-Key", c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("analysis poll returned status %d", resp.StatusCode)
	}
	var status analyzeStatus
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		return nil, fmt.Errorf("decoding poll response: %w", err)
	}
	return &status, nil
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func pow(base float64, exp int) float64 {
	out := 1.0
	for i := 0; i < exp; i++ {
		out *= base
	}
	return out
}

package sgd

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/PabloTorresOyarzun/sgdparser/internal/config"
)

// ErrNotFound signals a dispatch with no detail and no documents behind it.
var ErrNotFound = errors.New("dispatch not found")

// Client pulls dispatch metadata and base64 documents from the dispatch
// management backend.
type Client struct {
	http         *http.Client
	baseURL      string
	token        string
	maxRetries   int
	retryMinWait time.Duration
	retryMaxWait time.Duration
}

func NewClient(cfg config.DispatchConfig) *Client {
	return &Client{
		http:         &http.Client{Timeout: cfg.ReadTimeout},
		baseURL:      strings.TrimRight(cfg.BaseURL, "/"),
		token:        cfg.Token,
		maxRetries:   cfg.MaxRetries,
		retryMinWait: cfg.RetryMinWait,
		retryMaxWait: cfg.RetryMaxWait,
	}
}

// DispatchDetail is the subset of dispatch metadata the pipeline uses.
type DispatchDetail struct {
	ID        string
	Code      string
	Client    string
	State     string
	Type      string
	Documents []DocumentEntry
	Users     []UserEntry
}

// DocumentEntry describes one registered document without its payload.
type DocumentEntry struct {
	Name       string `json:"nombre"`
	State      string `json:"estado"`
	ReceivedAt string `json:"fecha_recepcion"`
}

// UserEntry is a dispatch-assigned user with their role.
type UserEntry struct {
	Name string `json:"name"`
	Role string `json:"role_name"`
}

// Document is one base64-encoded dispatch document.
type Document struct {
	Name       string `json:"nombre_documento"`
	ExternalID string `json:"documento_id"`
	Data       string `json:"documento"`
}

// Decode returns the raw file bytes, stripping a data-URI prefix when
// the payload carries one.
func (d Document) Decode() ([]byte, error) {
	payload := d.Data
	if idx := strings.IndexByte(payload, ','); idx >= 0 {
		payload = payload[idx+1:]
	}
	return base64.StdEncoding.DecodeString(payload)
}

// flexString decodes a JSON scalar that the backend serves sometimes as
// a number and sometimes as a string.
type flexString string

func (f *flexString) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*f = flexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*f = flexString(n.String())
	return nil
}

type detailResponse struct {
	Data struct {
		ID     flexString `json:"id"`
		Code   flexString `json:"codigo"`
		Client struct {
			Name string `json:"nombre"`
		} `json:"cliente"`
		State     string `json:"estado_despacho"`
		Type      string `json:"tipo_despacho"`
		Documents []struct {
			Type struct {
				Name string `json:"nombre"`
			} `json:"tipo"`
			State      string `json:"estado"`
			ReceivedAt string `json:"fecha_recepcion"`
		} `json:"documentos"`
		Users []UserEntry `json:"usuarios"`
	} `json:"data"`
}

type documentsResponse struct {
	Data []Document `json:"data"`
}

// FetchDetail looks up the dispatch by its internal code. A reachable
// backend that does not know the code yields ErrNotFound.
func (c *Client) FetchDetail(ctx context.Context, code string) (*DispatchDetail, error) {
	if c.token == "" {
		return nil, errors.New("dispatch bearer token not configured")
	}

	url := fmt.Sprintf("%s/api/admin/despachos/%s", c.baseURL, code)
	var resp detailResponse
	if err := c.getJSON(ctx, url, &resp); err != nil {
		return nil, err
	}
	if resp.Data.Code == "" && resp.Data.ID == "" {
		return nil, ErrNotFound
	}

	detail := &DispatchDetail{
		ID:     string(resp.Data.ID),
		Code:   string(resp.Data.Code),
		Client: resp.Data.Client.Name,
		State:  resp.Data.State,
		Type:   resp.Data.Type,
		Users:  resp.Data.Users,
	}
	for _, doc := range resp.Data.Documents {
		detail.Documents = append(detail.Documents, DocumentEntry{
			Name:       doc.Type.Name,
			State:      doc.State,
			ReceivedAt: doc.ReceivedAt,
		})
	}
	return detail, nil
}

// FetchDocuments pulls every base64 document registered under the
// visible dispatch code.
func (c *Client) FetchDocuments(ctx context.Context, code string) ([]Document, error) {
	if c.token == "" {
		return nil, errors.New("dispatch bearer token not configured")
	}

	url := fmt.Sprintf("%s/api/admin/documentos64/despacho/%s", c.baseURL, code)
	var resp documentsResponse
	if err := c.getJSON(ctx, url, &resp); err != nil {
		return nil, err
	}
	if len(resp.Data) == 0 {
		return nil, ErrNotFound
	}
	return resp.Data, nil
}

// getJSON performs an authenticated GET with up to three attempts on
// transport failures, backing off exponentially between 2s and 10s.
func (c *Client) getJSON(ctx context.Context, url string, out any) error {
	var lastErr error
	for attempt := 0; attempt < c.maxRetries; attempt++ {
		if attempt > 0 {
			wait := c.retryMinWait << (attempt - 1)
			if wait > c.retryMaxWait {
				wait = c.retryMaxWait
			}
			log.Debug().Str("url", url).Int("attempt", attempt+1).Dur("wait", wait).Msg("retrying dispatch request")
			timer := time.NewTimer(wait)
			select {
			case <-ctx.Done():
				timer.Stop()
				return ctx.Err()
			case <-timer.C:
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return err
		}
		req.Header.Set("Accept", "application/json")
		req.Header.Set("Authorization", "Bearer "+c.token)

		resp, err := c.http.Do(req)
		if err != nil {
			lastErr = err
			continue
		}

		err = func() error {
			defer resp.Body.Close()
			if resp.StatusCode == http.StatusNotFound {
				return ErrNotFound
			}
			if resp.StatusCode < 200 || resp.StatusCode >= 300 {
				return fmt.Errorf("dispatch backend status %d", resp.StatusCode)
			}
			if !strings.Contains(resp.Header.Get("Content-Type"), "application/json") {
				return fmt.Errorf("dispatch backend returned %q, expected JSON", resp.Header.Get("Content-Type"))
			}
			return json.NewDecoder(resp.Body).Decode(out)
		}()
		if err != nil {
			return err
		}
		return nil
	}
	return fmt.Errorf("dispatch request failed after %d attempts: %w", c.maxRetries, lastErr)
}

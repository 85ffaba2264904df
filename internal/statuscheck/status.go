package statuscheck

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// Pinger models database connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// ModelVerifier checks that the trained extraction model answers.
type ModelVerifier interface {
	VerifyModel(ctx context.Context, modelID string) bool
}

// Installable models a converter backed by an external binary.
type Installable interface {
	CheckInstallation() error
}

// Checker aggregates readiness probes for the status endpoint.
type Checker struct {
	db          Pinger
	azure       ModelVerifier
	modelID     string
	dispatchURL string
	converter   Installable
	httpClient  *http.Client
}

// Options configures the Checker.
type Options struct {
	Database    Pinger
	Azure       ModelVerifier
	ModelID     string
	DispatchURL string
	Converter   Installable
	HTTPClient  *http.Client
}

// Status represents the readiness of a subsystem.
type Status struct {
	OK      bool   `json:"ok"`
	Message string `json:"message"`
}

// Summary bundles all subsystem statuses.
type Summary struct {
	Database    Status `json:"database"`
	Azure       Status `json:"azure"`
	Dispatch    Status `json:"dispatch"`
	LibreOffice Status `json:"libreoffice"`
}

// New creates a new Checker with the provided options.
func New(opts Options) *Checker {
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 5 * time.Second}
	}
	return &Checker{
		db:          opts.Database,
		azure:       opts.Azure,
		modelID:     opts.ModelID,
		dispatchURL: opts.DispatchURL,
		converter:   opts.Converter,
		httpClient:  client,
	}
}

// Summary returns the current status snapshot.
func (c *Checker) Summary(ctx context.Context) Summary {
	return Summary{
		Database:    c.checkDatabase(ctx),
		Azure:       c.checkAzure(ctx),
		Dispatch:    c.checkDispatch(ctx),
		LibreOffice: c.checkLibreOffice(),
	}
}

func (c *Checker) checkDatabase(ctx context.Context) Status {
	if c.db == nil {
		return Status{OK: false, Message: "Not configured"}
	}
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := c.db.Ping(ctx); err != nil {
		return Status{OK: false, Message: trimError(err)}
	}
	return Status{OK: true, Message: "Connected"}
}

func (c *Checker) checkAzure(ctx context.Context) Status {
	if c.azure == nil {
		return Status{OK: false, Message: "Not configured"}
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if !c.azure.VerifyModel(ctx, c.modelID) {
		return Status{OK: false, Message: fmt.Sprintf("Model %s unavailable", c.modelID)}
	}
	return Status{OK: true, Message: "Model available"}
}

// checkDispatch only cares that the backend answers; an auth rejection
// still proves reachability.
func (c *Checker) checkDispatch(ctx context.Context) Status {
	if c.dispatchURL == "" {
		return Status{OK: false, Message: "Not configured"}
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.dispatchURL, nil)
	if err != nil {
		return Status{OK: false, Message: trimError(err)}
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Status{OK: false, Message: trimError(err)}
	}
	resp.Body.Close()
	return Status{OK: true, Message: "Reachable"}
}

func (c *Checker) checkLibreOffice() Status {
	if c.converter == nil {
		return Status{OK: false, Message: "Not configured"}
	}
	if err := c.converter.CheckInstallation(); err != nil {
		return Status{OK: false, Message: trimError(err)}
	}
	return Status{OK: true, Message: "Available"}
}

func trimError(err error) string {
	if err == nil {
		return ""
	}
	var netErr interface{ Timeout() bool }
	if errors.As(err, &netErr) && netErr.Timeout() {
		return "timeout"
	}
	msg := err.Error()
	if len(msg) > 120 {
		return msg[:120]
	}
	return msg
}

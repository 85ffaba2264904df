package converter

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/xuri/excelize/v2"

	"github.com/PabloTorresOyarzun/sgdparser/internal/config"
)

// LibreOffice converts spreadsheet uploads to PDF through a headless
// LibreOffice install. Conversions run fully isolated: each one gets its
// own temp dir and user profile, and a semaphore bounds how many run at
// once.
type LibreOffice struct {
	serverRunning bool
	serverMutex   sync.RWMutex
	port          int
	maxWorkers    int
	semaphore     chan struct{}
}

func NewLibreOffice(cfg config.ConverterConfig) *LibreOffice {
	return &LibreOffice{
		port:       cfg.Port,
		maxWorkers: cfg.MaxWorkers,
		semaphore:  make(chan struct{}, cfg.MaxWorkers),
	}
}

// Initialize verifies the install and starts the headless server.
func (l *LibreOffice) Initialize() error {
	log.Info().Int("port", l.port).Int("max_workers", l.maxWorkers).Msg("initializing LibreOffice converter")

	if err := l.CheckInstallation(); err != nil {
		return fmt.Errorf("LibreOffice not available: %w", err)
	}
	if err := l.startServer(); err != nil {
		return fmt.Errorf("failed to start LibreOffice server: %w", err)
	}

	log.Info().Msg("LibreOffice converter initialized")
	return nil
}

// CheckInstallation verifies LibreOffice is reachable in PATH.
func (l *LibreOffice) CheckInstallation() error {
	cmd := exec.Command("libreoffice", "--version")
	output, err := cmd.Output()
	if err != nil {
		return fmt.Errorf("LibreOffice not found in PATH: %w", err)
	}

	log.Debug().Str("version", strings.TrimSpace(string(output))).Msg("LibreOffice found")
	return nil
}

func (l *LibreOffice) startServer() error {
	l.serverMutex.Lock()
	defer l.serverMutex.Unlock()

	if l.serverRunning {
		return nil
	}

	// Kill any stale LibreOffice processes from a previous run.
	exec.Command("pkill", "-f", "libreoffice").Run()
	time.Sleep(1 * time.Second)

	cmd := exec.Command(
		"libreoffice",
		"--headless",
		fmt.Sprintf("--accept=socket,host=localhost,port=%d;urp;", l.port),
		"--nofirststartwizard",
		"--nologo",
		"--nolockcheck",
	)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start LibreOffice server: %w", err)
	}

	// Wait for the server to come up.
	time.Sleep(3 * time.Second)

	l.serverRunning = true
	log.Info().Int("port", l.port).Msg("LibreOffice server started")
	return nil
}

// SpreadsheetToPDF converts spreadsheet bytes to PDF bytes. OOXML
// workbooks are opened with excelize first so corrupt uploads fail
// before LibreOffice is involved; the legacy binary formats skip that
// check. The context bounds the whole conversion.
func (l *LibreOffice) SpreadsheetToPDF(ctx context.Context, data []byte, filename string) ([]byte, error) {
	if err := ValidateSpreadsheet(data, filename); err != nil {
		return nil, err
	}

	l.semaphore <- struct{}{}
	defer func() { <-l.semaphore }()

	start := time.Now()

	workDir, err := os.MkdirTemp("", "sgdparser_convert_")
	if err != nil {
		return nil, fmt.Errorf("creating work directory: %w", err)
	}
	defer os.RemoveAll(workDir)

	inputPath := filepath.Join(workDir, filepath.Base(filename))
	if err := os.WriteFile(inputPath, data, 0o644); err != nil {
		return nil, fmt.Errorf("writing input file: %w", err)
	}

	// Unique profile so concurrent conversions never share state.
	profileDir := filepath.Join(workDir, "profile_"+uuid.New().String())
	if err := os.MkdirAll(profileDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating profile directory: %w", err)
	}

	cmd := exec.CommandContext(
		ctx,
		"libreoffice",
		fmt.Sprintf("-env:UserInstallation=file://%s", profileDir),
		"--headless",
		"--convert-to", "pdf",
		"--outdir", workDir,
		inputPath,
	)
	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("spreadsheet conversion timed out: %w", ctx.Err())
		}
		return nil, fmt.Errorf("spreadsheet conversion failed: %w", err)
	}

	base := strings.TrimSuffix(filepath.Base(inputPath), filepath.Ext(inputPath))
	outputPath := filepath.Join(workDir, base+".pdf")
	pdf, err := os.ReadFile(outputPath)
	if err != nil {
		return nil, fmt.Errorf("conversion produced no output: %w", err)
	}
	if !bytes.HasPrefix(pdf, []byte("%PDF")) {
		return nil, fmt.Errorf("conversion output is not a PDF")
	}

	log.Info().Str("file", filename).Dur("duration", time.Since(start)).Msg("spreadsheet converted")
	return pdf, nil
}

// Shutdown stops the headless server.
func (l *LibreOffice) Shutdown() error {
	l.serverMutex.Lock()
	defer l.serverMutex.Unlock()

	if !l.serverRunning {
		return nil
	}

	log.Info().Msg("shutting down LibreOffice converter")
	if err := exec.Command("pkill", "-f", "libreoffice").Run(); err != nil {
		log.Warn().Err(err).Msg("failed to kill LibreOffice processes")
	}
	time.Sleep(1 * time.Second)

	l.serverRunning = false
	return nil
}

// ValidateSpreadsheet rejects corrupt or unreadable workbooks. Only the
// zip-based OOXML formats can be opened cheaply; the OLE binary formats
// pass through and fail later in LibreOffice if broken.
func ValidateSpreadsheet(data []byte, filename string) error {
	if len(data) == 0 {
		return fmt.Errorf("spreadsheet %s is empty", filename)
	}

	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".xlsx", ".xlsm", ".xltx", ".xltm":
		f, err := excelize.OpenReader(bytes.NewReader(data))
		if err != nil {
			return fmt.Errorf("spreadsheet %s is not readable: %w", filename, err)
		}
		defer f.Close()
		if len(f.GetSheetList()) == 0 {
			return fmt.Errorf("spreadsheet %s has no sheets", filename)
		}
	}
	return nil
}

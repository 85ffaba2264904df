package config

import (
	"testing"
	"time"
)

func TestTimeoutFormulas(t *testing.T) {
	t.Parallel()

	p := PipelineConfig{
		QualityBaseTimeout: 30 * time.Second,
		QualityPerPage:     5 * time.Second,
		AzureBaseTimeout:   60 * time.Second,
		AzurePerPage:       2 * time.Second,
		AzureMaxTimeout:    600 * time.Second,
		ExcelBaseTimeout:   30 * time.Second,
		ExcelPerMB:         5 * time.Second,
		ExcelMaxTimeout:    300 * time.Second,
	}

	if got := p.QualityTimeout(10); got != 80*time.Second {
		t.Fatalf("quality timeout for 10 pages: got %v, want 80s", got)
	}
	if got := p.AzureTimeout(5); got != 70*time.Second {
		t.Fatalf("azure timeout for 5 pages: got %v, want 70s", got)
	}
	// 500 pages would be 1060s, must clamp to the cap
	if got := p.AzureTimeout(500); got != 600*time.Second {
		t.Fatalf("azure timeout cap: got %v, want 600s", got)
	}
	if got := p.ExcelTimeout(10 << 20); got != 80*time.Second {
		t.Fatalf("excel timeout for 10MB: got %v, want 80s", got)
	}
	if got := p.ExcelTimeout(200 << 20); got != 300*time.Second {
		t.Fatalf("excel timeout cap: got %v, want 300s", got)
	}
}

func TestWorkerPoolSizeBounds(t *testing.T) {
	t.Parallel()

	p := PipelineConfig{WorkerPoolMax: 32, WorkerPoolMin: 4}
	n := p.WorkerPoolSize()
	if n < 4 || n > 32 {
		t.Fatalf("worker pool size %d outside [4,32]", n)
	}

	p = PipelineConfig{WorkerPoolMax: 2, WorkerPoolMin: 1}
	if got := p.WorkerPoolSize(); got != 2 {
		t.Fatalf("worker pool size with low max: got %d, want 2", got)
	}
}

func TestFromEnvDefaults(t *testing.T) {
	cfg := FromEnv()

	if cfg.Pipeline.MaxConcurrentPDFs != 10 {
		t.Fatalf("default max concurrent pdfs: got %d", cfg.Pipeline.MaxConcurrentPDFs)
	}
	if cfg.Pipeline.VerticalTextRotation != 270 {
		t.Fatalf("default vertical text rotation: got %d", cfg.Pipeline.VerticalTextRotation)
	}
	if cfg.Pipeline.HeaderCropFraction != 0.35 {
		t.Fatalf("default header crop fraction: got %v", cfg.Pipeline.HeaderCropFraction)
	}
	if cfg.Azure.CustomModelID != "master-01-alpha" {
		t.Fatalf("default custom model id: got %q", cfg.Azure.CustomModelID)
	}
}

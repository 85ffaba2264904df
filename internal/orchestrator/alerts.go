package orchestrator

import (
	"fmt"

	"github.com/PabloTorresOyarzun/sgdparser/internal/metrics"
	"github.com/PabloTorresOyarzun/sgdparser/internal/quality"
)

// Alert flags a page condition worth human attention. Alerts describe
// the page as it arrived, before rotation normalization.
type Alert struct {
	Page        int    `json:"pagina"`
	Kind        string `json:"tipo"`
	Description string `json:"descripcion"`
}

// PageAlerts derives the alerts for every analyzed page, keyed by page
// number. Scanned skew reports `inclinado`; other scanned anomalies
// report `escaneado`; corrected rotations report `rotado`.
func PageAlerts(records []quality.PageRecord) map[int][]Alert {
	byPage := make(map[int][]Alert)
	for _, rec := range records {
		var alerts []Alert

		if rec.Scanned {
			switch {
			case rec.Orientation.Tilted():
				alerts = append(alerts, Alert{
					Page:        rec.Page,
					Kind:        "inclinado",
					Description: fmt.Sprintf("Página escaneada %s", rec.Orientation),
				})
			case rec.Orientation.Anomalous():
				alerts = append(alerts, Alert{
					Page:        rec.Page,
					Kind:        "escaneado",
					Description: fmt.Sprintf("Página escaneada: %s", rec.Orientation),
				})
			}
		}

		if rec.FormalRotation != 0 {
			alerts = append(alerts, Alert{
				Page:        rec.Page,
				Kind:        "rotado",
				Description: fmt.Sprintf("Rotación de %d° corregida", rec.FormalRotation),
			})
		}

		if !rec.Scanned && rec.Orientation.Kind == quality.OrientRotated {
			alerts = append(alerts, Alert{
				Page:        rec.Page,
				Kind:        "rotado",
				Description: "Texto vertical corregido",
			})
		}

		if len(alerts) > 0 {
			byPage[rec.Page] = alerts
			for _, a := range alerts {
				metrics.IncAlert(a.Kind)
			}
		}
	}
	return byPage
}

// segmentAlerts collects the alerts of every page inside the inclusive
// range, in page order.
func segmentAlerts(byPage map[int][]Alert, firstPage, lastPage int) []Alert {
	var out []Alert
	for page := firstPage; page <= lastPage; page++ {
		out = append(out, byPage[page]...)
	}
	return out
}

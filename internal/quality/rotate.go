package quality

import (
	"github.com/rs/zerolog/log"

	"github.com/PabloTorresOyarzun/sgdparser/internal/pdfdoc"
)

// Normalizer rewrites page rotation flags based on the quality findings.
// Formal rotation flags are reset to zero; digital pages with vertical
// text are forced upright. Scanned-page skew is reported only, never
// corrected.
type Normalizer struct {
	verticalRotation int
}

// NewNormalizer creates a normalizer. verticalRotation is the relative
// rotation applied to digital pages whose text runs vertically.
func NewNormalizer(verticalRotation int) *Normalizer {
	return &Normalizer{verticalRotation: verticalRotation}
}

// Normalize applies the rotation plan and returns the document bytes to
// use downstream plus the number of corrected pages. When nothing needs
// correction the input bytes are returned untouched.
func (n *Normalizer) Normalize(data []byte, records []PageRecord) ([]byte, int, error) {
	plan := RotationPlan(records, n.verticalRotation)
	if len(plan) == 0 {
		return data, 0, nil
	}

	out, err := pdfdoc.RotatePages(data, plan)
	if err != nil {
		return nil, 0, err
	}

	log.Info().Int("corrected_pages", len(plan)).Msg("page rotation normalized")
	return out, len(plan), nil
}

// RotationPlan computes the relative per-page rotations needed to
// normalize the document. Pages with a formal rotation flag are rotated
// back to zero; otherwise digital pages with vertical text receive the
// configured upright rotation.
func RotationPlan(records []PageRecord, verticalRotation int) map[int]int {
	plan := make(map[int]int)
	for _, rec := range records {
		if rec.FormalRotation != 0 {
			plan[rec.Page] = (360 - rec.FormalRotation%360) % 360
			continue
		}
		if !rec.Scanned && rec.Orientation.Kind == OrientRotated {
			plan[rec.Page] = verticalRotation
		}
	}
	return plan
}

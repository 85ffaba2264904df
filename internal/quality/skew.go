package quality

import (
	"image"
	"image/color"
	"math"
)

const (
	// DPI for rendering pages for analysis
	AnalysisDPI = 150.0

	// Binary threshold for separating content from background
	BinaryThreshold = 200 // 0-255, higher = more aggressive (keeps only dark pixels)

	// Minimum component size in pixels to consider (filters noise)
	MinComponentPixels = 100

	// Minimum accumulator votes for a line to count
	houghVoteThreshold = 100

	// Skew buckets in degrees
	angleNormal   = 0.5
	angleSlight   = 2.0
	angleModerate = 10.0
)

// scannedOrientation estimates the skew of a scanned page from its render.
func (a *Analyzer) scannedOrientation(img image.Image, imageCount int) Orientation {
	if imageCount == 0 {
		return Orientation{Kind: OrientNoImage}
	}

	gray := toGrayscale(img)
	binary := applyThreshold(gray, BinaryThreshold)

	angles := detectLineAngles(binary)
	if len(angles) == 0 {
		return Orientation{Kind: OrientNoLines}
	}

	// Average the near-horizontal angles only.
	sum, n := 0.0, 0
	for _, ang := range angles {
		if math.Abs(ang) <= 45 {
			sum += ang
			n++
		}
	}
	if n == 0 {
		return Orientation{Kind: OrientNoLines}
	}
	return bucketAngle(sum / float64(n))
}

// bucketAngle maps a mean skew angle to an orientation verdict.
func bucketAngle(angle float64) Orientation {
	abs := math.Abs(angle)
	switch {
	case abs < angleNormal:
		return Orientation{Kind: OrientNormal}
	case abs < angleSlight:
		return Orientation{Kind: OrientSlightTilt, Angle: abs}
	case abs < angleModerate:
		return Orientation{Kind: OrientModerateTilt, Angle: abs}
	default:
		return Orientation{Kind: OrientSevereTilt, Angle: abs}
	}
}

// contentCoverage renders the fraction of the page area covered by the
// bounding boxes of significant content components.
func contentCoverage(img image.Image) float64 {
	gray := toGrayscale(img)
	binary := applyThreshold(gray, BinaryThreshold)
	components := findConnectedComponents(binary, MinComponentPixels)

	bounds := binary.Bounds()
	pageArea := float64(bounds.Dx() * bounds.Dy())
	if pageArea == 0 {
		return 0
	}

	covered := 0.0
	for _, comp := range components {
		covered += float64(comp.Width * comp.Height)
	}
	if covered > pageArea {
		covered = pageArea
	}
	return covered / pageArea
}

// detectLineAngles finds dominant straight lines via a Hough accumulator
// over edge pixels and returns their angles from horizontal, in degrees.
func detectLineAngles(binary *image.Gray) []float64 {
	bounds := binary.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w == 0 || h == 0 {
		return nil
	}

	edges := edgePoints(binary)
	if len(edges) == 0 {
		return nil
	}

	// Theta sweeps 45°..135° around the horizontal in half-degree steps;
	// rho is quantized to one pixel.
	const thetaStep = 0.5
	numTheta := int(90/thetaStep) + 1
	maxRho := int(math.Hypot(float64(w), float64(h))) + 1
	acc := make([][]int, 2*maxRho+1)
	for i := range acc {
		acc[i] = make([]int, numTheta)
	}

	sins := make([]float64, numTheta)
	coss := make([]float64, numTheta)
	for t := 0; t < numTheta; t++ {
		theta := (45 + float64(t)*thetaStep) * math.Pi / 180
		sins[t] = math.Sin(theta)
		coss[t] = math.Cos(theta)
	}

	for _, p := range edges {
		for t := 0; t < numTheta; t++ {
			rho := int(math.Round(float64(p.X)*coss[t] + float64(p.Y)*sins[t]))
			acc[rho+maxRho][t]++
		}
	}

	var angles []float64
	for _, row := range acc {
		for t, votes := range row {
			if votes >= houghVoteThreshold {
				theta := 45 + float64(t)*thetaStep
				// Angle of the line itself relative to horizontal.
				angles = append(angles, theta-90)
			}
		}
	}
	return angles
}

// edgePoints collects dark pixels bordering the light background.
func edgePoints(binary *image.Gray) []image.Point {
	bounds := binary.Bounds()
	var points []image.Point

	for y := bounds.Min.Y + 1; y < bounds.Max.Y-1; y++ {
		for x := bounds.Min.X + 1; x < bounds.Max.X-1; x++ {
			if binary.GrayAt(x, y).Y != 0 {
				continue
			}
			if binary.GrayAt(x+1, y).Y == 255 || binary.GrayAt(x-1, y).Y == 255 ||
				binary.GrayAt(x, y+1).Y == 255 || binary.GrayAt(x, y-1).Y == 255 {
				points = append(points, image.Point{X: x, Y: y})
			}
		}
	}
	return points
}

// Component represents a connected component
type Component struct {
	MinX       int
	MinY       int
	MaxX       int
	MaxY       int
	Width      int
	Height     int
	PixelCount int
}

// toGrayscale converts an image to grayscale
func toGrayscale(img image.Image) *image.Gray {
	bounds := img.Bounds()
	gray := image.NewGray(bounds)

	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			grayColor := color.GrayModel.Convert(img.At(x, y))
			gray.Set(x, y, grayColor)
		}
	}

	return gray
}

// applyThreshold converts grayscale to binary (0 or 255)
func applyThreshold(img *image.Gray, threshold uint8) *image.Gray {
	bounds := img.Bounds()
	binary := image.NewGray(bounds)

	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			gray := img.GrayAt(x, y).Y
			if gray < threshold {
				// Dark pixel (likely content)
				binary.SetGray(x, y, color.Gray{Y: 0})
			} else {
				// Light pixel (background)
				binary.SetGray(x, y, color.Gray{Y: 255})
			}
		}
	}

	return binary
}

// findConnectedComponents finds connected components using flood-fill
func findConnectedComponents(img *image.Gray, minPixels int) []Component {
	bounds := img.Bounds()
	visited := make([][]bool, bounds.Dy())
	for i := range visited {
		visited[i] = make([]bool, bounds.Dx())
	}

	var components []Component

	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			// Skip if already visited or is background
			if visited[y-bounds.Min.Y][x-bounds.Min.X] || img.GrayAt(x, y).Y == 255 {
				continue
			}

			// Found new component - flood fill to find its extent
			comp := floodFill(img, visited, x, y, bounds)

			// Only keep components larger than minimum size (filters noise)
			if comp.PixelCount >= minPixels {
				components = append(components, comp)
			}
		}
	}

	return components
}

// floodFill performs flood fill and returns component info
func floodFill(img *image.Gray, visited [][]bool, startX, startY int, bounds image.Rectangle) Component {
	comp := Component{
		MinX: startX,
		MinY: startY,
		MaxX: startX,
		MaxY: startY,
	}

	// Use stack-based flood fill (iterative, not recursive to avoid stack overflow)
	stack := []image.Point{{X: startX, Y: startY}}

	for len(stack) > 0 {
		// Pop from stack
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		x, y := p.X, p.Y

		// Skip if out of bounds
		if x < bounds.Min.X || x >= bounds.Max.X || y < bounds.Min.Y || y >= bounds.Max.Y {
			continue
		}

		// Skip if already visited or is background
		if visited[y-bounds.Min.Y][x-bounds.Min.X] || img.GrayAt(x, y).Y == 255 {
			continue
		}

		// Mark as visited
		visited[y-bounds.Min.Y][x-bounds.Min.X] = true
		comp.PixelCount++

		// Update bounding box
		if x < comp.MinX {
			comp.MinX = x
		}
		if x > comp.MaxX {
			comp.MaxX = x
		}
		if y < comp.MinY {
			comp.MinY = y
		}
		if y > comp.MaxY {
			comp.MaxY = y
		}

		// Add 4-connected neighbors to stack
		stack = append(stack,
			image.Point{X: x + 1, Y: y},
			image.Point{X: x - 1, Y: y},
			image.Point{X: x, Y: y + 1},
			image.Point{X: x, Y: y - 1},
		)
	}

	// Calculate dimensions
	comp.Width = comp.MaxX - comp.MinX + 1
	comp.Height = comp.MaxY - comp.MinY + 1

	return comp
}

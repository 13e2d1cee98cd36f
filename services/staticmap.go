package services

import (
	"bytes"
	"fmt"
	"hash/crc32"
	"image/color"
	"image/png"
	"math"
	"strings"

	"github.com/chai2010/webp"
	sm "github.com/flopp/go-staticmaps"
	"github.com/golang/geo/s2"
)

const (
	MinZoom  = 1
	MaxZoom  = 18
	MinDim   = 200
	MaxDim   = 2000
	MinScale = 1
	MaxScale = 3

	// Marker radius grows with the output scale but never shrinks below a
	// visible minimum at scale 1.
	markerBaseRadius = 12
	minMarkerRadius  = 8

	coordPlaces = 5
)

// RenderParams is the canonical (clamped, rounded) form of a map request.
type RenderParams struct {
	Lat    float64
	Lon    float64
	Zoom   int
	Width  int
	Height int
	Scale  int
}

// RenderRequest pairs canonical parameters with one tile template. It is the
// render cache key and the renderer input; it is never persisted.
type RenderRequest struct {
	RenderParams
	Template string
}

// NormalizeRenderParams clamps zoom/width/height/scale into their allowed
// ranges and rounds coordinates to 5 decimal places (~1.1m) so visually
// identical requests share a cache key. It never fails.
func NormalizeRenderParams(p RenderParams) RenderParams {
	return RenderParams{
		Lat:    roundCoord(p.Lat),
		Lon:    roundCoord(p.Lon),
		Zoom:   clampInt(p.Zoom, MinZoom, MaxZoom),
		Width:  clampInt(p.Width, MinDim, MaxDim),
		Height: clampInt(p.Height, MinDim, MaxDim),
		Scale:  clampInt(p.Scale, MinScale, MaxScale),
	}
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func roundCoord(v float64) float64 {
	shift := math.Pow(10, coordPlaces)
	return math.Round(v*shift) / shift
}

// publicTileServers are tried first; a configured template is appended last as
// a final fallback. Public-first keeps a broken operator template from taking
// down rendering, at the cost of masking the misconfiguration.
var publicTileServers = []string{
	"https://tile.openstreetmap.org/{z}/{x}/{y}.png",
	"https://a.tile.openstreetmap.org/{z}/{x}/{y}.png",
	"https://b.tile.openstreetmap.org/{z}/{x}/{y}.png",
	"https://c.tile.openstreetmap.org/{z}/{x}/{y}.png",
}

// TileTemplates returns the ordered, deduplicated list of tile URL templates
// to attempt. No network validation happens here.
func TileTemplates(configured string) []string {
	ordered := make([]string, 0, len(publicTileServers)+1)
	ordered = append(ordered, publicTileServers...)

	cfg := strings.TrimSpace(configured)
	if cfg == "" {
		return ordered
	}
	for _, tpl := range ordered {
		if tpl == cfg {
			return ordered
		}
	}
	return append(ordered, cfg)
}

// TileRenderer produces raster image bytes for one canonical request against
// one tile template.
type TileRenderer interface {
	Render(req RenderRequest) ([]byte, error)
}

// StaticMapRenderer renders OSM-style raster maps with a single circular
// marker at the target coordinate. Tile fetching and compositing are delegated
// to go-staticmaps; output is PNG.
type StaticMapRenderer struct {
	markerColor color.Color
}

func NewStaticMapRenderer() *StaticMapRenderer {
	return &StaticMapRenderer{
		markerColor: color.RGBA{R: 0xDD, A: 0xFF},
	}
}

func (r *StaticMapRenderer) Render(req RenderRequest) ([]byte, error) {
	ctx := sm.NewContext()
	ctx.SetSize(req.Width*req.Scale, req.Height*req.Scale)
	ctx.SetZoom(req.Zoom)

	pos := s2.LatLngFromDegrees(req.Lat, req.Lon)
	ctx.SetCenter(pos)

	radius := float64(markerBaseRadius * req.Scale)
	if radius < minMarkerRadius {
		radius = minMarkerRadius
	}
	ctx.AddObject(sm.NewMarker(pos, r.markerColor, radius))

	ctx.SetTileProvider(tileProviderFor(req.Template))

	img, err := ctx.Render()
	if err != nil {
		return nil, fmt.Errorf("tile template %s: %w", req.Template, err)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("tile template %s: encode png: %w", req.Template, err)
	}
	return buf.Bytes(), nil
}

// tileProviderFor converts a {z}/{x}/{y} template into a go-staticmaps
// provider. The provider name doubles as the tile disk-cache directory, so it
// must be filesystem-safe; a template checksum keeps distinct sources apart.
func tileProviderFor(template string) *sm.TileProvider {
	pattern := strings.NewReplacer(
		"{s}", "%[1]s",
		"{z}", "%[2]d",
		"{x}", "%[3]d",
		"{y}", "%[4]d",
	).Replace(template)

	return &sm.TileProvider{
		Name:       fmt.Sprintf("tiles-%08x", crc32.ChecksumIEEE([]byte(template))),
		TileSize:   256,
		URLPattern: pattern,
	}
}

// TranscodeToWebP re-encodes rendered PNG bytes as WebP. Pure and stateless;
// only invoked for non-default output formats.
func TranscodeToWebP(pngBytes []byte) ([]byte, error) {
	img, err := png.Decode(bytes.NewReader(pngBytes))
	if err != nil {
		return nil, fmt.Errorf("decode png: %w", err)
	}
	var buf bytes.Buffer
	if err := webp.Encode(&buf, img, &webp.Options{Quality: 80}); err != nil {
		return nil, fmt.Errorf("encode webp: %w", err)
	}
	return buf.Bytes(), nil
}

package document

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/draw"
	"image/png"
	"math"

	"github.com/ugc-dashboard/reporting/internal/domain/report/entity"
	"github.com/ugc-dashboard/reporting/internal/metrics"
)

// VisualPDF builds a PDF from a captured bitmap of the rendered dashboard.
// The visual path is best effort: any failure is logged and the plain
// layout from PDF is returned instead.
func (b *Builder) VisualPDF(ctx context.Context, r entity.Report, target string) ([]byte, error) {
	data, err := b.visualPDF(ctx, r, target)
	if err == nil {
		metrics.DocumentsGenerated.WithLabelValues(string(FormatPDF), "visual").Inc()
		return data, nil
	}

	reason := "render_failed"
	if errors.Is(err, ErrCaptureTargetMissing) {
		reason = "capture_target_missing"
	}
	metrics.DocumentFallbacks.WithLabelValues(reason).Inc()
	b.logger.Warn().Err(err).Str("target", target).Str("report_id", r.ID).
		Msg("visual report failed, using plain layout")

	data, err = b.PDF(r)
	if err != nil {
		return nil, err
	}
	metrics.DocumentsGenerated.WithLabelValues(string(FormatPDF), "fallback").Inc()
	return data, nil
}

func (b *Builder) visualPDF(ctx context.Context, r entity.Report, target string) ([]byte, error) {
	if b.capturer == nil {
		return nil, fmt.Errorf("%w: no capture service configured", ErrRenderFallback)
	}
	if target == "" {
		return nil, ErrCaptureTargetMissing
	}

	bitmap, err := b.capturer.Capture(ctx, target)
	if err != nil {
		if errors.Is(err, ErrCaptureTargetMissing) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: capturing %q: %w", ErrRenderFallback, target, err)
	}

	img, err := png.Decode(bytes.NewReader(bitmap))
	if err != nil {
		return nil, fmt.Errorf("%w: decoding capture: %v", ErrRenderFallback, err)
	}

	w := NewWriter(b.pageSize, b.newMeasurer())
	w.WriteWrapped(r.Title, StyleTitle, 0)
	w.Space(4)

	slices, err := slicePages(img, w.ContentWidth(), w.Limit()-w.Cursor().Y, w.Limit()-Margin)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRenderFallback, err)
	}
	for i, s := range slices {
		if i > 0 {
			w.NewPage()
		}
		w.Image(s.png, w.ContentWidth(), s.height)
	}
	w.StampFooters(b.attribution)

	data, err := b.render(w.Document(r.Title))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRenderFallback, err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: %v", ErrRenderFallback, ErrEmptyDocument)
	}
	return data, nil
}

type imageSlice struct {
	png    []byte
	height float64 // mm
}

// slicePages scales img to width mm and cuts it into page sized strips.
// The first strip fits firstHeight (room left under the title), the rest
// fit a full page of pageHeight.
func slicePages(img image.Image, width, firstHeight, pageHeight float64) ([]imageSlice, error) {
	bounds := img.Bounds()
	if bounds.Dx() == 0 || bounds.Dy() == 0 {
		return nil, errors.New("capture is empty")
	}
	mmPerPx := width / float64(bounds.Dx())

	var out []imageSlice
	avail := firstHeight
	for y := bounds.Min.Y; y < bounds.Max.Y; {
		rows := int(math.Floor(avail / mmPerPx))
		if rows < 1 {
			rows = 1
		}
		if y+rows > bounds.Max.Y {
			rows = bounds.Max.Y - y
		}

		strip := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), rows))
		draw.Draw(strip, strip.Bounds(), img, image.Point{X: bounds.Min.X, Y: y}, draw.Src)

		var buf bytes.Buffer
		if err := png.Encode(&buf, strip); err != nil {
			return nil, fmt.Errorf("encoding strip: %w", err)
		}
		out = append(out, imageSlice{png: buf.Bytes(), height: float64(rows) * mmPerPx})

		y += rows
		avail = pageHeight
	}
	return out, nil
}

package render

import (
	"context"
	"fmt"
	"image"
	"image/draw"
	"image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"hh-vacancy-bot/internal/domain/ports/adapter"

	"golang.org/x/image/font"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

var _ adapter.ImageRenderer = (*CardRenderer)(nil)

// textSlot is one line burned into the template; the point is the top-left corner of the text.
type textSlot struct {
	at   image.Point
	face font.Face
}

// CardRenderer draws the title, company and salary of a listing onto a template
// image and keeps the result in outDir until Cleanup.
type CardRenderer struct {
	mu       sync.Mutex
	template image.Image
	title    textSlot
	company  textSlot
	salary   textSlot
	outDir   string
}

// NewCardRenderer loads the template and fonts once. Titles use titleFont at 80px,
// company names bodyFont at 80px and salaries bodyFont at 50px.
func NewCardRenderer(templatePath, titleFontPath, bodyFontPath, outDir string) (*CardRenderer, error) {
	tpl, err := loadImage(templatePath)
	if err != nil {
		return nil, err
	}
	titleFont, err := loadFont(titleFontPath)
	if err != nil {
		return nil, err
	}
	bodyFont, err := loadFont(bodyFontPath)
	if err != nil {
		return nil, err
	}
	titleFace, err := newFace(titleFont, 80)
	if err != nil {
		return nil, err
	}
	companyFace, err := newFace(bodyFont, 80)
	if err != nil {
		return nil, err
	}
	salaryFace, err := newFace(bodyFont, 50)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, fmt.Errorf("create image dir: %w", err)
	}
	return &CardRenderer{
		template: tpl,
		title:    textSlot{at: image.Pt(80, 130), face: titleFace},
		company:  textSlot{at: image.Pt(80, 230), face: companyFace},
		salary:   textSlot{at: image.Pt(80, 850), face: salaryFace},
		outDir:   outDir,
	}, nil
}

// Render composes the card, stores it as <SaveName>.jpg and returns the stored bytes.
func (r *CardRenderer) Render(ctx context.Context, title, company, salary string) (adapter.Photo, error) {
	if err := ctx.Err(); err != nil {
		return adapter.Photo{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	b := r.template.Bounds()
	canvas := image.NewRGBA(b)
	draw.Draw(canvas, b, r.template, b.Min, draw.Src)
	drawText(canvas, r.title, title)
	drawText(canvas, r.company, company)
	drawText(canvas, r.salary, salary)

	name := SaveName(title, company) + ".jpg"
	path := filepath.Join(r.outDir, name)
	f, err := os.Create(path)
	if err != nil {
		return adapter.Photo{}, fmt.Errorf("create card: %w", err)
	}
	if err := jpeg.Encode(f, canvas, &jpeg.Options{Quality: 90}); err != nil {
		f.Close()
		return adapter.Photo{}, fmt.Errorf("encode card: %w", err)
	}
	if err := f.Close(); err != nil {
		return adapter.Photo{}, fmt.Errorf("close card: %w", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return adapter.Photo{}, fmt.Errorf("read card: %w", err)
	}
	return adapter.Photo{Name: name, Bytes: data}, nil
}

// Cleanup removes every file produced by Render.
func (r *CardRenderer) Cleanup(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	entries, err := os.ReadDir(r.outDir)
	if err != nil {
		return fmt.Errorf("list image dir: %w", err)
	}
	var firstErr error
	for _, e := range entries {
		if !e.Type().IsRegular() {
			continue
		}
		if err := os.Remove(filepath.Join(r.outDir, e.Name())); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("remove %s: %w", e.Name(), err)
		}
	}
	return firstErr
}

var unsafeNameChars = strings.NewReplacer("/", "", ",", "")

// SaveName derives the file name of a card: the first two words of the title,
// a dash and the company, without slashes and commas.
func SaveName(title, company string) string {
	words := strings.Split(title, " ")
	if len(words) > 2 {
		words = words[:2]
	}
	return unsafeNameChars.Replace(strings.Join(words, " ") + "-" + company)
}

func drawText(dst draw.Image, slot textSlot, text string) {
	d := &font.Drawer{
		Dst:  dst,
		Src:  image.Black,
		Face: slot.face,
		Dot:  fixed.P(slot.at.X, slot.at.Y+slot.face.Metrics().Ascent.Ceil()),
	}
	d.DrawString(text)
}

func loadImage(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open template: %w", err)
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode template %s: %w", path, err)
	}
	return img, nil
}

func loadFont(path string) (*opentype.Font, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read font: %w", err)
	}
	f, err := opentype.Parse(b)
	if err != nil {
		return nil, fmt.Errorf("parse font %s: %w", path, err)
	}
	return f, nil
}

func newFace(f *opentype.Font, size float64) (font.Face, error) {
	face, err := opentype.NewFace(f, &opentype.FaceOptions{Size: size, DPI: 72, Hinting: font.HintingFull})
	if err != nil {
		return nil, fmt.Errorf("font face %.0fpx: %w", size, err)
	}
	return face, nil
}

package policydesk

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"golang.org/x/image/draw"

	"github.com/eringen/policydesk/content"
)

const (
	maxImageWidth = 1200
	jpegQuality   = 80
	maxUploadSize = 10 << 20 // 10MB
	uploadsSubdir = "uploads"
)

// Image is metadata for an uploaded article cover.
type Image struct {
	Filename     string
	OriginalName string
	Width        int
	Height       int
	Size         int
	UploadedAt   string
}

// URL returns the public path of the image.
func (img Image) URL() string {
	return "/public/" + uploadsSubdir + "/" + PathEscape(img.Filename)
}

// processImage decodes an image from src, shrinks it to maxImageWidth if
// wider, and encodes it as JPEG. Filename is left for the caller to assign.
func processImage(src io.Reader, originalName string) (Image, []byte, error) {
	img, _, err := image.Decode(src)
	if err != nil {
		return Image{}, nil, fmt.Errorf("decode image: %w", err)
	}

	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()

	if w > maxImageWidth {
		newH := h * maxImageWidth / w
		dst := image.NewRGBA(image.Rect(0, 0, maxImageWidth, newH))
		draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
		img = dst
		w = maxImageWidth
		h = newH
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return Image{}, nil, fmt.Errorf("encode jpeg: %w", err)
	}

	return Image{
		OriginalName: originalName,
		Width:        w,
		Height:       h,
		Size:         buf.Len(),
		UploadedAt:   time.Now().UTC().Format(time.RFC3339),
	}, buf.Bytes(), nil
}

// imageFilename names an upload "<base>-<date>-<id>.jpg" using the article
// slug rules, so two uploads of the same file do not clash.
func imageFilename(originalName string, now time.Time, id string) string {
	base := strings.TrimSuffix(filepath.Base(originalName), filepath.Ext(originalName))
	return strings.TrimPrefix(content.MakeSlug(base, now.Format(time.DateOnly), id), "-") + ".jpg"
}

// assignFilename picks a filename not yet used on disk or in the store.
func (a *App) assignFilename(img *Image) error {
	dir := filepath.Join(a.staticDir, uploadsSubdir)
	for range 5 {
		candidate := imageFilename(img.OriginalName, time.Now(), a.ids.Generate())
		if _, err := os.Stat(filepath.Join(dir, candidate)); err == nil {
			continue
		}
		exists, err := a.Store.ImageExists(candidate)
		if err != nil {
			return err
		}
		if exists {
			continue
		}
		img.Filename = candidate
		return nil
	}
	return fmt.Errorf("no free filename for %q", img.OriginalName)
}

func (a *App) handleImageUpload(c echo.Context) error {
	if !IsAdmin(c) {
		return c.Redirect(http.StatusSeeOther, "/admin/")
	}

	file, err := c.FormFile("image")
	if err != nil {
		return c.String(http.StatusBadRequest, "No image file provided")
	}
	if file.Size > maxUploadSize {
		return c.String(http.StatusBadRequest, "File too large (max 10MB)")
	}

	src, err := file.Open()
	if err != nil {
		return err
	}
	defer src.Close()

	img, data, err := processImage(src, file.Filename)
	if err != nil {
		return c.String(http.StatusBadRequest, "Invalid image: "+err.Error())
	}
	if err := a.assignFilename(&img); err != nil {
		return err
	}

	dir := filepath.Join(a.staticDir, uploadsSubdir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create uploads dir: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, img.Filename), data, 0o644); err != nil {
		return fmt.Errorf("write image: %w", err)
	}
	if err := a.Store.SaveImage(img); err != nil {
		return err
	}
	a.Logger.Info("image uploaded", zap.String("filename", img.Filename), zap.Int("bytes", img.Size))

	return a.renderImageList(c)
}

func (a *App) handleImageDelete(c echo.Context) error {
	if !IsAdmin(c) {
		return c.Redirect(http.StatusSeeOther, "/admin/")
	}

	filename := filepath.Base(c.Param("filename"))
	if filename == "" || filename == "." || filename == "/" {
		return c.String(http.StatusBadRequest, "Filename required")
	}

	path := filepath.Join(a.staticDir, uploadsSubdir, filename)
	_ = os.Remove(path) // ignore error if file already gone

	if err := a.Store.DeleteImage(filename); err != nil {
		return err
	}

	return a.renderImageList(c)
}

func (a *App) handleImageList(c echo.Context) error {
	if !IsAdmin(c) {
		return c.Redirect(http.StatusSeeOther, "/admin/")
	}
	return a.renderImageList(c)
}

func (a *App) renderImageList(c echo.Context) error {
	images, err := a.Store.ListImages()
	if err != nil {
		return err
	}
	return Render(c, a.Views.AdminImages(images, CsrfToken(c)))
}

// placeholderJPEG draws a flat card with an inset frame, the shape of the
// image it stands in for.
func placeholderJPEG(w, h int) []byte {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.RGBA{0xe5, 0xe7, 0xeb, 0xff}), image.Point{}, draw.Src)
	inset := image.Rect(w/4, h/4, w-w/4, h-h/4)
	draw.Draw(img, inset, image.NewUniform(color.RGBA{0xd1, 0xd5, 0xdb, 0xff}), image.Point{}, draw.Src)
	var buf bytes.Buffer
	_ = jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality})
	return buf.Bytes()
}

var (
	placeholderCard  = sync.OnceValue(func() []byte { return placeholderJPEG(800, 450) })
	placeholderThumb = sync.OnceValue(func() []byte { return placeholderJPEG(96, 96) })
)

// placeholderHandler serves a user-supplied file from the static dir if one
// exists, otherwise the generated image.
func (a *App) placeholderHandler(name string, gen func() []byte) echo.HandlerFunc {
	return func(c echo.Context) error {
		if path := filepath.Join(a.staticDir, name); fileExists(path) {
			return c.File(path)
		}
		return c.Blob(http.StatusOK, "image/jpeg", gen())
	}
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// Package media handles cover image uploads and derived renditions.
package media

import (
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"
)

// rendition widths for responsive cover images, largest first
var coverWidths = []int{1200, 600, 300}

const webpQuality = 85

// CoverProcessor stores product cover images under basePath and generates
// resized WebP renditions alongside the original.
type CoverProcessor struct {
	basePath string
}

func NewCoverProcessor(basePath string) *CoverProcessor {
	return &CoverProcessor{basePath: basePath}
}

// CoverResult describes the stored original and its renditions as
// URL paths relative to the media mount.
type CoverResult struct {
	OriginalPath   string   `json:"originalPath"`
	RenditionPaths []string `json:"renditionPaths"`
	Version        int64    `json:"version"`
}

// ProcessCoverImage decodes a base64 data URI, stores the original under
// covers/ and writes WebP renditions under covers/thumbs/. Filenames carry
// a timestamp so stale browser caches never serve an old cover.
func (p *CoverProcessor) ProcessCoverImage(data, productID string) (*CoverResult, error) {
	if data == "" {
		return nil, fmt.Errorf("empty base64 data")
	}

	ext := extractExtension(data)
	if ext == "" {
		return nil, fmt.Errorf("unsupported image format")
	}

	version := time.Now().UnixMilli()
	filename := fmt.Sprintf("%s-%d.%s", productID, version, ext)

	coversDir := filepath.Join(p.basePath, "covers")
	thumbsDir := filepath.Join(p.basePath, "covers", "thumbs")
	if err := os.MkdirAll(coversDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create covers directory: %w", err)
	}
	if err := os.MkdirAll(thumbsDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create thumbs directory: %w", err)
	}

	originalPath, err := writeBinaryImage(data, filename, coversDir)
	if err != nil {
		return nil, fmt.Errorf("failed to save original image: %w", err)
	}

	renditions, err := p.generateRenditions(originalPath, productID, version, thumbsDir)
	if err != nil {
		os.Remove(originalPath)
		return nil, fmt.Errorf("failed to generate renditions: %w", err)
	}

	result := &CoverResult{
		OriginalPath: fmt.Sprintf("/media/covers/%s", filename),
		Version:      version,
	}
	for _, r := range renditions {
		result.RenditionPaths = append(result.RenditionPaths, fmt.Sprintf("/media/covers/thumbs/%s", filepath.Base(r)))
	}
	return result, nil
}

// DeleteCoverImage removes a stored cover and every rendition derived
// from it. Missing files are not an error.
func (p *CoverProcessor) DeleteCoverImage(imagePath string) error {
	if imagePath == "" {
		return fmt.Errorf("empty image path")
	}

	filename := filepath.Base(imagePath)
	basename := filename
	if dotIndex := strings.LastIndex(filename, "."); dotIndex != -1 {
		basename = filename[:dotIndex]
	}

	originalPath := filepath.Join(p.basePath, strings.TrimPrefix(imagePath, "/media/"))
	if err := os.Remove(originalPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove original image: %w", err)
	}

	thumbsDir := filepath.Join(p.basePath, "covers", "thumbs")
	for _, width := range coverWidths {
		thumbPath := filepath.Join(thumbsDir, fmt.Sprintf("%s_%dpx.webp", basename, width))
		// best effort, a leftover rendition is harmless
		os.Remove(thumbPath)
	}
	return nil
}

// generateRenditions resizes the original into WebP at each cover width,
// preserving aspect ratio. On any failure, already written renditions are
// removed so covers never end up half-populated.
func (p *CoverProcessor) generateRenditions(originalPath, productID string, version int64, thumbsDir string) ([]string, error) {
	originalFile, err := os.Open(originalPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open original file: %w", err)
	}
	defer originalFile.Close()

	img, err := imaging.Decode(originalFile)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	basename := fmt.Sprintf("%s-%d", productID, version)
	paths := make([]string, len(coverWidths))

	for i, width := range coverWidths {
		resized := imaging.Resize(img, width, 0, imaging.Lanczos)
		thumbPath := filepath.Join(thumbsDir, fmt.Sprintf("%s_%dpx.webp", basename, width))

		if err := webp.Save(thumbPath, resized, &webp.Options{Quality: webpQuality}); err != nil {
			for j := 0; j < i; j++ {
				os.Remove(paths[j])
			}
			return nil, fmt.Errorf("failed to save WebP rendition %dpx: %w", width, err)
		}
		paths[i] = thumbPath
	}
	return paths, nil
}

// extractExtension detects the file extension from the data URI MIME type.
func extractExtension(data string) string {
	switch {
	case strings.Contains(data, "data:image/png"):
		return "png"
	case strings.Contains(data, "data:image/jpeg"), strings.Contains(data, "data:image/jpg"):
		return "jpg"
	case strings.Contains(data, "data:image/webp"):
		return "webp"
	}
	return ""
}

var binaryPattern = regexp.MustCompile(`^data:image/\w+;base64,`)

func writeBinaryImage(data, filename, targetDir string) (string, error) {
	if !binaryPattern.MatchString(data) {
		return "", fmt.Errorf("invalid image base64 format")
	}

	decoded, err := base64.StdEncoding.DecodeString(binaryPattern.ReplaceAllString(data, ""))
	if err != nil {
		return "", fmt.Errorf("failed to decode base64: %w", err)
	}

	fullPath := filepath.Join(targetDir, filename)
	if err := os.WriteFile(fullPath, decoded, 0644); err != nil {
		return "", fmt.Errorf("failed to write image file: %w", err)
	}
	return fullPath, nil
}

package service

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"image"
	"image/draw"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"wayfarer/internal/config"
	"wayfarer/internal/models"

	"github.com/chai2010/webp"
	xdraw "golang.org/x/image/draw"
	_ "golang.org/x/image/webp" // Register WebP decoder
)

const (
	DefaultAvatarUploadDir       = "/tmp/wayfarer/uploads/avatars"
	DefaultAvatarMaxUploadSizeMB = 5
	AvatarSize                   = 256
	AvatarWebPQuality            = 80
)

type UploadAvatarInput struct {
	UserID      uint
	Filename    string
	ContentType string
	Content     []byte
}

// AvatarService processes avatar uploads for users and communities:
// decode, center-crop to square, downscale, re-encode as WebP.
type AvatarService struct {
	uploadDir          string
	maxUploadSizeBytes int64
}

func NewAvatarService(cfg *config.Config) *AvatarService {
	uploadDir := DefaultAvatarUploadDir
	maxUploadSizeMB := DefaultAvatarMaxUploadSizeMB

	if cfg != nil {
		if cfg.AvatarUploadDir != "" {
			uploadDir = cfg.AvatarUploadDir
		}
		if cfg.AvatarMaxUploadSizeMB > 0 {
			maxUploadSizeMB = cfg.AvatarMaxUploadSizeMB
		}
	}

	return &AvatarService{
		uploadDir:          uploadDir,
		maxUploadSizeBytes: int64(maxUploadSizeMB) * 1024 * 1024,
	}
}

// Process validates and converts an uploaded image, writes it to disk and
// returns the serving URL for the new avatar.
func (s *AvatarService) Process(in UploadAvatarInput) (string, error) {
	if in.UserID == 0 {
		return "", models.NewValidationError("Invalid user")
	}
	if len(in.Content) == 0 {
		return "", models.NewValidationError("No file uploaded")
	}
	if int64(len(in.Content)) > s.maxUploadSizeBytes {
		return "", models.NewValidationError(fmt.Sprintf("File too large (max %dMB)", s.maxUploadSizeBytes/(1024*1024)))
	}

	detectedType := http.DetectContentType(in.Content)
	if !isAllowedAvatarMIME(detectedType) {
		return "", models.NewValidationError("Invalid image type")
	}

	decoded, format, err := image.Decode(bytes.NewReader(in.Content))
	if err != nil {
		return "", models.NewValidationError("Invalid image file")
	}
	switch strings.ToLower(format) {
	case "jpeg", "jpg", "png", "gif", "webp":
	default:
		return "", models.NewValidationError("Unsupported image format")
	}

	square := cropCenterSquare(decoded)
	scaled := scaleDown(square, AvatarSize)

	encoded, err := encodeAvatarWebP(scaled)
	if err != nil {
		return "", models.NewInternalError(err)
	}

	hash := avatarHash(in.UserID, encoded)
	rel := hash + ".webp"
	abs := filepath.Join(s.uploadDir, rel)
	if err := writeAvatarFile(abs, encoded); err != nil {
		return "", models.NewInternalError(err)
	}

	return s.BuildAvatarURL(hash), nil
}

// BuildAvatarURL returns the serving path for a stored avatar.
func (s *AvatarService) BuildAvatarURL(hash string) string {
	return fmt.Sprintf("/media/avatars/%s.webp", hash)
}

// ResolveForServing maps an avatar hash to its on-disk path, rejecting
// anything that is not plain lowercase hex to block path traversal.
func (s *AvatarService) ResolveForServing(hash string) (string, error) {
	if !isHexHash(hash) {
		return "", models.NewValidationError("Invalid avatar hash")
	}
	fullPath := filepath.Join(s.uploadDir, hash+".webp")
	if _, err := os.Stat(fullPath); err != nil {
		if os.IsNotExist(err) {
			return "", models.NewNotFoundError("Avatar", hash)
		}
		return "", models.NewInternalError(err)
	}
	return fullPath, nil
}

func cropCenterSquare(src image.Image) image.Image {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	if w == h {
		return src
	}
	side := w
	if h < side {
		side = h
	}
	x := b.Min.X + (w-side)/2
	y := b.Min.Y + (h-side)/2

	dst := image.NewRGBA(image.Rect(0, 0, side, side))
	draw.Draw(dst, dst.Bounds(), src, image.Point{X: x, Y: y}, draw.Src)
	return dst
}

func scaleDown(src image.Image, size int) image.Image {
	b := src.Bounds()
	if b.Dx() <= size {
		return src
	}
	dst := image.NewRGBA(image.Rect(0, 0, size, size))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, b, xdraw.Over, nil)
	return dst
}

func encodeAvatarWebP(img image.Image) ([]byte, error) {
	buf := bytes.NewBuffer(nil)
	if err := webp.Encode(buf, img, &webp.Options{Quality: AvatarWebPQuality}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func isAllowedAvatarMIME(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		mediaType = contentType
	}
	switch strings.ToLower(strings.TrimSpace(mediaType)) {
	case "image/jpeg", "image/jpg", "image/png", "image/gif", "image/webp":
		return true
	default:
		return false
	}
}

func isHexHash(v string) bool {
	if len(v) == 0 || len(v) > 128 {
		return false
	}
	for _, r := range v {
		if (r < '0' || r > '9') && (r < 'a' || r > 'f') {
			return false
		}
	}
	return true
}

func avatarHash(userID uint, content []byte) string {
	h := sha256.New()
	_, _ = fmt.Fprintf(h, "%d:", userID)
	h.Write(content)
	return hex.EncodeToString(h.Sum(nil))
}

func writeAvatarFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

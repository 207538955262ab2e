package render

import (
	"bytes"
	"image"
	"image/png"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/ftrvxmtrx/tga"
	"golang.org/x/image/draw"
)

// thumbnailSize is the longest edge an embed thumbnail is scaled to.
const thumbnailSize = 256

// assetFiles maps asset keys to their expected filenames.
var assetFiles = map[string]string{
	"connection":  "Connections.png",
	"killfeed":    "Killfeed.png",
	"mission":     "Mission.png",
	"airdrop":     "Airdrop.png",
	"helicrash":   "Helicrash.png",
	"trader":      "Trader.png",
	"vehicle":     "Vehicle.png",
	"leaderboard": "Leaderboard.png",
	"weapon":      "WeaponStats.png",
	"suicide":     "Suicide.png",
	"falling":     "Falling.png",
	"main":        "main.png",
}

// attach resolves the thumbnail asset for key, sets it on the embed, and
// returns the file to send alongside. A nil return means no thumbnail could
// be resolved; the embed is still usable.
func (f *Factory) attach(embed *discordgo.MessageEmbed, key string) *discordgo.File {
	if f.assetsDir == "" {
		return nil
	}

	path, ok := f.findAsset(key)
	if !ok {
		return nil
	}

	file, name, err := loadThumbnail(path)
	if err != nil {
		log.Printf("render: loading asset %s: %v", path, err)
		return nil
	}

	embed.Thumbnail = &discordgo.MessageEmbedThumbnail{URL: "attachment://" + name}
	return file
}

// findAsset locates the asset file for key: exact filename, then
// case-insensitive, then partial base-name match, then the main.png
// fallback.
func (f *Factory) findAsset(key string) (string, bool) {
	filename, ok := assetFiles[key]
	if !ok {
		filename = assetFiles["main"]
	}

	exact := filepath.Join(f.assetsDir, filename)
	if fileExists(exact) {
		return exact, true
	}

	entries, err := os.ReadDir(f.assetsDir)
	if err == nil {
		lower := strings.ToLower(filename)
		for _, e := range entries {
			if !e.IsDir() && strings.ToLower(e.Name()) == lower {
				return filepath.Join(f.assetsDir, e.Name()), true
			}
		}

		base := strings.TrimSuffix(lower, filepath.Ext(lower))
		for _, e := range entries {
			if e.IsDir() {
				continue
			}
			name := strings.ToLower(e.Name())
			if strings.Contains(name, base) && isImageFile(name) {
				return filepath.Join(f.assetsDir, e.Name()), true
			}
		}
	}

	fallback := filepath.Join(f.assetsDir, assetFiles["main"])
	if filename != assetFiles["main"] && fileExists(fallback) {
		return fallback, true
	}
	return "", false
}

// loadThumbnail opens an asset for attachment. PNG files are attached
// verbatim; TGA source art is decoded, downscaled, and re-encoded as PNG
// since Discord does not render TGA thumbnails.
func loadThumbnail(path string) (*discordgo.File, string, error) {
	ext := strings.ToLower(filepath.Ext(path))
	name := filepath.Base(path)

	if ext != ".tga" {
		fh, err := os.Open(path)
		if err != nil {
			return nil, "", err
		}
		return &discordgo.File{Name: name, ContentType: "image/png", Reader: fh}, name, nil
	}

	fh, err := os.Open(path)
	if err != nil {
		return nil, "", err
	}
	defer fh.Close()

	img, err := tga.Decode(fh)
	if err != nil {
		return nil, "", err
	}
	img = scaleDown(img)

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, "", err
	}

	name = strings.TrimSuffix(name, filepath.Ext(name)) + ".png"
	return &discordgo.File{Name: name, ContentType: "image/png", Reader: &buf}, name, nil
}

// scaleDown resizes an image so its longest edge is thumbnailSize, using
// Catmull-Rom (bicubic) interpolation. Smaller images pass through.
func scaleDown(img image.Image) image.Image {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w <= thumbnailSize && h <= thumbnailSize {
		return img
	}

	if w >= h {
		h = h * thumbnailSize / w
		w = thumbnailSize
	} else {
		w = w * thumbnailSize / h
		h = thumbnailSize
	}

	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
	return dst
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

func isImageFile(name string) bool {
	switch filepath.Ext(name) {
	case ".png", ".tga", ".jpg", ".jpeg":
		return true
	}
	return false
}

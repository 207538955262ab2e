package render

import (
	"bytes"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/ftrvxmtrx/tga"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emeraldservers/killfeed/internal/domain"
)

func domainKillEvent() domain.KillEvent {
	return domain.KillEvent{Killer: "Shadow", Victim: "Ghost", Weapon: "M4A1"}
}

func writeFile(t *testing.T, dir, name string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("img"), 0644))
}

func TestFindAssetExact(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "Killfeed.png")
	f := testFactory(dir)

	path, ok := f.findAsset("killfeed")
	require.True(t, ok)
	assert.Equal(t, filepath.Join(dir, "Killfeed.png"), path)
}

func TestFindAssetCaseInsensitive(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "killfeed.PNG")
	f := testFactory(dir)

	path, ok := f.findAsset("killfeed")
	require.True(t, ok)
	assert.Equal(t, filepath.Join(dir, "killfeed.PNG"), path)
}

func TestFindAssetPartialMatch(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "emerald_killfeed_v2.png")
	f := testFactory(dir)

	path, ok := f.findAsset("killfeed")
	require.True(t, ok)
	assert.Equal(t, filepath.Join(dir, "emerald_killfeed_v2.png"), path)
}

func TestFindAssetPartialMatchIgnoresNonImages(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "killfeed_notes.txt")
	f := testFactory(dir)

	_, ok := f.findAsset("killfeed")
	assert.False(t, ok)
}

func TestFindAssetMainFallback(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "main.png")
	f := testFactory(dir)

	path, ok := f.findAsset("killfeed")
	require.True(t, ok)
	assert.Equal(t, filepath.Join(dir, "main.png"), path)
}

func TestFindAssetNothing(t *testing.T) {
	f := testFactory(t.TempDir())

	_, ok := f.findAsset("killfeed")
	assert.False(t, ok)
}

func TestFindAssetUnknownKeyUsesMain(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "main.png")
	f := testFactory(dir)

	path, ok := f.findAsset("no-such-key")
	require.True(t, ok)
	assert.Equal(t, filepath.Join(dir, "main.png"), path)
}

func TestAttachSetsThumbnail(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "Killfeed.png")
	f := testFactory(dir)

	embed, file := f.Killfeed(domainKillEvent())
	require.NotNil(t, file)
	assert.Equal(t, "Killfeed.png", file.Name)
	require.NotNil(t, embed.Thumbnail)
	assert.Equal(t, "attachment://Killfeed.png", embed.Thumbnail.URL)
}

func TestAttachMissingAssetDegrades(t *testing.T) {
	f := testFactory(t.TempDir())

	embed, file := f.Killfeed(domainKillEvent())
	assert.Nil(t, file)
	assert.Nil(t, embed.Thumbnail)
	assert.NotEmpty(t, embed.Title, "the embed itself still renders")
}

func TestLoadThumbnailConvertsTGA(t *testing.T) {
	dir := t.TempDir()

	src := image.NewRGBA(image.Rect(0, 0, 512, 256))
	var buf bytes.Buffer
	require.NoError(t, tga.Encode(&buf, src))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "Killfeed.tga"), buf.Bytes(), 0644))

	file, name, err := loadThumbnail(filepath.Join(dir, "Killfeed.tga"))
	require.NoError(t, err)
	assert.Equal(t, "Killfeed.png", name)
	assert.Equal(t, "Killfeed.png", file.Name)

	img, err := png.Decode(file.Reader)
	require.NoError(t, err)
	assert.Equal(t, thumbnailSize, img.Bounds().Dx(), "longest edge scaled to the thumbnail size")
	assert.Equal(t, 128, img.Bounds().Dy())
}

func TestScaleDownPassesSmallImagesThrough(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 100, 50))
	assert.Equal(t, src.Bounds(), scaleDown(src).Bounds())
}

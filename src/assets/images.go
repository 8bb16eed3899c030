package assets

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/jpeg"

	"github.com/cloudnews/cloudnews/src/logging"
	"github.com/cloudnews/cloudnews/src/oops"
	"golang.org/x/image/draw"
)

// Thumbnails are scaled to fit in a 40x40 box, preserving aspect ratio.
const ThumbnailMaxSize = 40

const imageContentType = "image/jpeg"

// Blob naming convention. Every article's image pair derives from its stable
// name stem; these formats must never change or existing records will point
// at nothing.
func FullImageName(stem string) string {
	return fmt.Sprintf("%s.jpg", stem)
}

func ThumbImageName(stem string) string {
	return fmt.Sprintf("%s_thumb.jpg", stem)
}

/*
Uploads the full-size image and its thumbnail as a pair under the given name
stem. The full image goes up first; the thumbnail is only attempted if the
full image succeeded. Returns an error if either upload failed, which means
a thumbnail failure reports the whole pair as failed even though the full
image already landed. Nothing is rolled back or retried here.
*/
func UploadImagePair(ctx context.Context, store BlobStore, img image.Image, stem string) error {
	fullBytes, err := EncodeJPEG(img)
	if err != nil {
		return oops.New(err, "failed to encode image")
	}
	thumbBytes, err := EncodeJPEG(Thumbnail(img))
	if err != nil {
		return oops.New(err, "failed to encode thumbnail")
	}

	fullName := FullImageName(stem)
	err = store.Upload(ctx, fullName, imageContentType, fullBytes)
	if err != nil {
		return oops.New(err, "failed to upload image '%s'", fullName)
	}

	thumbName := ThumbImageName(stem)
	err = store.Upload(ctx, thumbName, imageContentType, thumbBytes)
	if err != nil {
		return oops.New(err, "failed to upload thumbnail '%s'", thumbName)
	}

	return nil
}

/*
Deletes both blobs of an image pair. Both deletes are always attempted, in
order, regardless of whether the first one failed; individual failures are
logged. Returns an error if either delete failed.
*/
func DeleteImagePair(ctx context.Context, store BlobStore, stem string) error {
	log := logging.ExtractLogger(ctx)

	fullName := FullImageName(stem)
	fullErr := store.Delete(ctx, fullName)
	if fullErr != nil {
		log.Error().Err(fullErr).Str("blob", fullName).Msg("failed to delete image blob")
	}

	thumbName := ThumbImageName(stem)
	thumbErr := store.Delete(ctx, thumbName)
	if thumbErr != nil {
		log.Error().Err(thumbErr).Str("blob", thumbName).Msg("failed to delete thumbnail blob")
	}

	if fullErr != nil {
		return oops.New(fullErr, "failed to delete image '%s'", fullName)
	}
	if thumbErr != nil {
		return oops.New(thumbErr, "failed to delete thumbnail '%s'", thumbName)
	}
	return nil
}

func EncodeJPEG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	err := jpeg.Encode(&buf, img, nil)
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Scales an image down to fit in the thumbnail box, preserving its aspect
// ratio. Images already smaller than the box are left alone.
func Thumbnail(img image.Image) image.Image {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w <= ThumbnailMaxSize && h <= ThumbnailMaxSize {
		return img
	}

	newW, newH := w, h
	if w > h {
		newW = ThumbnailMaxSize
		newH = h * ThumbnailMaxSize / w
	} else {
		newH = ThumbnailMaxSize
		newW = w * ThumbnailMaxSize / h
	}
	if newW < 1 {
		newW = 1
	}
	if newH < 1 {
		newH = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, newW, newH))
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
	return dst
}

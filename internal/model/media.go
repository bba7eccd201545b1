package model

import "errors"

const (
	MaxImageSizeBytes = 5 * 1024 * 1024 // 5MB limit per upload

	AvatarWidth  = 200
	AvatarHeight = 200
	AvatarFolder = "avatars"

	// Review images keep their aspect ratio, bounded to this box.
	ReviewImageMaxDim = 1024
	ReviewImageFolder = "reviews"

	ImageExt          = ".jpg"
	ImageCacheControl = "public, max-age=31536000" // 1 year
)

// Supported image content types for upload validation
const (
	ContentTypeJPEG = "image/jpeg"
	ContentTypePNG  = "image/png"
	ContentTypeGIF  = "image/gif"
	ContentTypeWebP = "image/webp"
)

var allowedImageTypes = map[string]struct{}{
	ContentTypeJPEG: {},
	ContentTypePNG:  {},
	ContentTypeGIF:  {},
	ContentTypeWebP: {},
}

// Error codes for HTTP responses
const (
	CodeFileTooLarge     = "FILE_TOO_LARGE"
	CodeInvalidImageType = "INVALID_IMAGE_TYPE"
)

// Domain errors for media operations
var (
	ErrFileTooLarge     = errors.New("file too large")
	ErrInvalidImageType = errors.New("invalid image type")
)

// StoredImage is the result of persisting an upload: the object key in the
// bucket plus a base64 rendering of the normalized JPEG. The base64 copy is a
// derived projection for display and is recomputed on every write.
type StoredImage struct {
	Key string
	B64 string
}

// IsAllowedImageType reports if the provided content type is supported
func IsAllowedImageType(contentType string) bool {
	_, ok := allowedImageTypes[contentType]
	return ok
}

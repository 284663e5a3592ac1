package storage

import (
	"context"
	"encoding/base64"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	appform "github.com/workforce/backend/internal/application/form"
	"github.com/workforce/backend/internal/domain/shared"
	"go.uber.org/zap"
)

var errMalformedSignature = shared.NewDomainError(shared.CodeInvalidInput, "Signature data URL is malformed")

// RefScheme prefixes signature references that point into object storage
const RefScheme = "storage://"

// S3SignatureStore writes approval signatures to object storage and keeps
// only a storage:// reference on the approval row.
type S3SignatureStore struct {
	objects   ObjectStorage
	keyPrefix string
	urlTTL    time.Duration
	logger    *zap.Logger
}

// NewS3SignatureStore creates a signature store over objects
func NewS3SignatureStore(objects ObjectStorage, keyPrefix string, urlTTL time.Duration, logger *zap.Logger) *S3SignatureStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &S3SignatureStore{
		objects:   objects,
		keyPrefix: strings.Trim(keyPrefix, "/"),
		urlTTL:    urlTTL,
		logger:    logger,
	}
}

// Put stores the signature as a new object under tenant/submission/signer.
// Objects are never overwritten, so a committed reference stays valid until
// Delete is called for it.
func (s *S3SignatureStore) Put(ctx context.Context, tenantID, submissionID uuid.UUID, signer, signature string) (string, error) {
	data, contentType, ext, err := decodeSignature(signature)
	if err != nil {
		return "", err
	}

	key := path.Join(s.keyPrefix, tenantID.String(), submissionID.String(), url.PathEscape(signer), uuid.NewString()+ext)
	if err := s.objects.Upload(ctx, key, data, contentType); err != nil {
		return "", err
	}

	s.logger.Debug("signature stored",
		zap.String("key", key),
		zap.String("content_type", contentType),
		zap.Int("bytes", len(data)),
	)
	return RefScheme + key, nil
}

// Resolve turns a storage:// reference into a presigned download URL.
// Anything else is an inline signature and comes back unchanged.
func (s *S3SignatureStore) Resolve(ctx context.Context, ref string) (string, error) {
	key, ok := strings.CutPrefix(ref, RefScheme)
	if !ok {
		return ref, nil
	}
	return s.objects.DownloadURL(ctx, key, s.urlTTL)
}

// Delete removes the object behind a storage:// reference.
// Inline signatures have no object and are ignored.
func (s *S3SignatureStore) Delete(ctx context.Context, ref string) error {
	key, ok := strings.CutPrefix(ref, RefScheme)
	if !ok {
		return nil
	}
	if err := s.objects.Delete(ctx, key); err != nil {
		return err
	}
	s.logger.Debug("signature deleted", zap.String("key", key))
	return nil
}

// decodeSignature accepts a base64 data URL (what signature pads emit) or
// plain text such as a typed name.
func decodeSignature(signature string) ([]byte, string, string, error) {
	rest, ok := strings.CutPrefix(signature, "data:")
	if !ok {
		return []byte(signature), "text/plain; charset=utf-8", ".txt", nil
	}

	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return nil, "", "", errMalformedSignature
	}
	mediaType, isBase64 := strings.CutSuffix(meta, ";base64")
	if mediaType == "" {
		mediaType = "text/plain"
	}

	if !isBase64 {
		text, err := url.PathUnescape(payload)
		if err != nil {
			return nil, "", "", errMalformedSignature
		}
		return []byte(text), mediaType, extensionFor(mediaType), nil
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, "", "", shared.NewDomainError(shared.CodeInvalidInput, "Signature is not valid base64")
	}
	return data, mediaType, extensionFor(mediaType), nil
}

func extensionFor(mediaType string) string {
	switch mediaType {
	case "image/png":
		return ".png"
	case "image/jpeg":
		return ".jpg"
	case "image/svg+xml":
		return ".svg"
	case "image/webp":
		return ".webp"
	default:
		return ".bin"
	}
}

var _ appform.SignatureStore = (*S3SignatureStore)(nil)

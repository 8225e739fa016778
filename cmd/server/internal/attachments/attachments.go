package attachments

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"mime/multipart"
	"path"
	"slices"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/portfoliobuilder/intake/internal/audit"
	"github.com/portfoliobuilder/intake/internal/logger"
	"github.com/portfoliobuilder/intake/internal/upload"
)

var tracer = otel.Tracer("github.com/portfoliobuilder/intake/cmd/server/internal/attachments")

// Stored names carry the upload time so identical client names do not clash.
const timestampPrefix = "20060102_150405_"

// maxSuffix bounds the search for a free name when the prefixed name is taken.
const maxSuffix = 100

var allowedExtensions = []string{"png", "jpg", "jpeg", "gif", "pdf"}

var ErrNoFreeName = errors.New("no free attachment name")

// Allowed reports whether filename carries one of the accepted extensions.
func Allowed(filename string) bool {
	i := strings.LastIndexByte(filename, '.')
	if i < 0 {
		return false
	}
	return slices.Contains(allowedExtensions, strings.ToLower(filename[i+1:]))
}

func safeRune(r rune) bool {
	return (r >= 'a' && r <= 'z') ||
		(r >= 'A' && r <= 'Z') ||
		(r >= '0' && r <= '9') ||
		r == '_' || r == '.' || r == '-'
}

// SecureFilename reduces a client supplied name to a flat ASCII name that is
// safe to use as an object key. It may return "".
func SecureFilename(name string) string {
	name = strings.NewReplacer("/", " ", "\\", " ").Replace(name)
	name = strings.Join(strings.Fields(name), "_")

	var b strings.Builder
	for _, r := range name {
		if safeRune(r) {
			b.WriteRune(r)
		}
	}

	return strings.Trim(b.String(), "._")
}

// Store persists intake attachments through an Uploader.
type Store struct {
	uploader upload.Uploader
	now      func() time.Time
}

func NewStore(uploader upload.Uploader, now func() time.Time) *Store {
	if now == nil {
		now = time.Now
	}
	return &Store{uploader: uploader, now: now}
}

func withSuffix(name string, n int) string {
	ext := path.Ext(name)
	return fmt.Sprintf("%s_%d%s", strings.TrimSuffix(name, ext), n, ext)
}

func (s *Store) freeName(ctx context.Context, name string) (string, error) {
	candidate := name
	for n := 1; n <= maxSuffix; n++ {
		exists, err := s.uploader.Exists(ctx, candidate)
		if err != nil {
			return "", err
		}
		if !exists {
			return candidate, nil
		}
		candidate = withSuffix(name, n)
	}

	return "", fmt.Errorf("%w: %s", ErrNoFreeName, name)
}

// Save stores a single upload and returns the stored name. Files that are not
// allowed or whose name sanitises to nothing are skipped with ok=false.
func (s *Store) Save(
	ctx context.Context,
	auditCtx audit.Context,
	fh *multipart.FileHeader,
) (stored string, ok bool, err error) {
	ctx, span := tracer.Start(ctx, "Store.Save")
	defer span.End()

	span.SetAttributes(
		attribute.String("filename", fh.Filename),
		attribute.Int64("size", fh.Size),
	)

	clean := SecureFilename(fh.Filename)
	if fh.Filename == "" || !Allowed(fh.Filename) || !Allowed(clean) {
		span.SetStatus(codes.Ok, "skipped disallowed file")
		return "", false, nil
	}

	name, err := s.freeName(ctx, s.now().Format(timestampPrefix)+clean)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to pick attachment name")
		return "", false, err
	}

	f, err := fh.Open()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to open upload")
		return "", false, err
	}
	defer f.Close()

	contentType := mime.TypeByExtension(path.Ext(name))
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	err = s.uploader.Upload(ctx, upload.Object{
		Body:        f,
		Key:         name,
		ContentType: contentType,
		Size:        fh.Size,
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to upload attachment")
		return "", false, err
	}

	storeName, err := s.uploader.StoreIdentifier(ctx)
	if err != nil {
		logger.Logger.WarnContext(ctx, "failed to get store identifier", "error", err)
	}
	audit.LogAttachmentStored(auditCtx, storeName, name, fh.Filename, fh.Size)

	span.SetStatus(codes.Ok, "stored attachment")
	return name, true, nil
}

// SaveAll stores every allowed file in form, ordered by field name and then
// by position within the field.
func (s *Store) SaveAll(
	ctx context.Context,
	auditCtx audit.Context,
	form *multipart.Form,
) ([]string, error) {
	stored := []string{}
	if form == nil {
		return stored, nil
	}

	keys := make([]string, 0, len(form.File))
	for k := range form.File {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	for _, k := range keys {
		for _, fh := range form.File[k] {
			name, ok, err := s.Save(ctx, auditCtx, fh)
			if err != nil {
				return stored, err
			}
			if ok {
				stored = append(stored, name)
			}
		}
	}

	return stored, nil
}

package documents

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"maps"
	"slices"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/aussiebroadwan/fastkep/internal/fastkep/domain"
	"github.com/aussiebroadwan/fastkep/pkg/metricsx"
	"github.com/aussiebroadwan/fastkep/pkg/slogx"
	"github.com/skip2/go-qrcode"
)

// Fields computed by the renderer. Caller-supplied values under these keys
// are discarded.
const (
	FieldFullName         = "full_name"
	FieldGeneratedAt      = "generated_at"
	FieldVerificationCode = "verification_code"
	FieldVerificationQR   = "verification_qr"
)

// GeneratedAtLayout is dd/mm/yyyy hh:mm:ss.
const GeneratedAtLayout = "02/01/2006 15:04:05"

const qrSize = 128

// MissingFieldsError lists every required field that was absent.
type MissingFieldsError struct {
	DocType string
	Fields  []string
}

func (e *MissingFieldsError) Error() string {
	return fmt.Sprintf("missing required fields for %s: %s", e.DocType, strings.Join(e.Fields, ", "))
}

func (e *MissingFieldsError) Unwrap() error { return ErrMissingFields }

type Renderer struct {
	Registry  *Registry
	Converter Converter
	Location  *time.Location
	Metrics   *metricsx.Metrics

	Now func() time.Time
}

func NewRenderer(registry *Registry, converter Converter, loc *time.Location) *Renderer {
	if converter == nil {
		converter = HTMLPassthrough{}
	}
	if loc == nil {
		loc = time.UTC
	}
	return &Renderer{
		Registry:  registry,
		Converter: converter,
		Location:  loc,
		Now:       time.Now,
	}
}

// Render validates fields against the template for docType, adds the derived
// fields and produces the artifact. Output depends only on the inputs and the
// clock.
func (r *Renderer) Render(ctx context.Context, docType string, user domain.User, fields map[string]string) (domain.Artifact, error) {
	t, err := r.Registry.Lookup(docType)
	if err != nil {
		r.Metrics.DocumentRendered("unknown", "unknown_doc_type")
		return domain.Artifact{}, err
	}

	art, err := r.render(ctx, t, user, fields)
	switch {
	case err == nil:
		r.Metrics.DocumentRendered(t.DocType, "ok")
	case isMissingFields(err):
		r.Metrics.DocumentRendered(t.DocType, "missing_fields")
	default:
		r.Metrics.DocumentRendered(t.DocType, "error")
	}
	return art, err
}

func (r *Renderer) render(ctx context.Context, t Template, user domain.User, fields map[string]string) (domain.Artifact, error) {
	if missing := MissingFields(t, fields); len(missing) > 0 {
		return domain.Artifact{}, &MissingFieldsError{DocType: t.DocType, Fields: missing}
	}

	now := r.Now()
	data := DeriveFields(t.DocType, user, fields, now.In(r.Location))

	qr, err := qrDataURI(data[FieldVerificationCode])
	if err != nil {
		return domain.Artifact{}, fmt.Errorf("verification qr: %w", err)
	}
	data[FieldVerificationQR] = qr

	var html bytes.Buffer
	if err := t.Render(&html, data); err != nil {
		return domain.Artifact{}, fmt.Errorf("render %s: %w", t.DocType, err)
	}

	body, err := r.Converter.Convert(ctx, html.Bytes())
	if err != nil {
		return domain.Artifact{}, fmt.Errorf("convert %s: %w", t.DocType, err)
	}

	slogx.FromContext(ctx).Debug("document rendered",
		"doc_type", t.DocType,
		"user_id", user.ID,
		"bytes", len(body),
		"verification_code", data[FieldVerificationCode],
	)

	return domain.Artifact{
		Filename:    fmt.Sprintf("%s_%s_%d.%s", t.DocType, user.ID, now.Unix(), r.Converter.Extension()),
		ContentType: r.Converter.ContentType(),
		Body:        body,
	}, nil
}

// MissingFields returns the sorted required fields whose keys are absent.
// An empty value counts as present.
func MissingFields(t Template, fields map[string]string) []string {
	var missing []string
	for _, name := range t.RequiredFields {
		if _, ok := fields[name]; !ok {
			missing = append(missing, name)
		}
	}
	slices.Sort(missing)
	return missing
}

// DeriveFields copies fields and overlays the computed values. The
// verification code is a SHA-256 over the doc type and every field except
// the timestamp, so it is stable for identical submissions.
func DeriveFields(docType string, user domain.User, fields map[string]string, now time.Time) map[string]string {
	data := maps.Clone(fields)
	if data == nil {
		data = make(map[string]string)
	}
	delete(data, FieldGeneratedAt)
	delete(data, FieldVerificationCode)
	delete(data, FieldVerificationQR)

	data[FieldFullName] = user.FullName()
	data[FieldVerificationCode] = verificationCode(docType, data)
	data[FieldGeneratedAt] = now.Format(GeneratedAtLayout)
	return data
}

func verificationCode(docType string, fields map[string]string) string {
	h := sha256.New()
	h.Write([]byte(docType))
	for _, k := range slices.Sorted(maps.Keys(fields)) {
		h.Write([]byte{0})
		h.Write([]byte(k))
		h.Write([]byte{'='})
		h.Write([]byte(fields[k]))
	}
	return hex.EncodeToString(h.Sum(nil))
}

func qrDataURI(content string) (string, error) {
	png, err := qrcode.Encode(content, qrcode.Medium, qrSize)
	if err != nil {
		return "", err
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(png), nil
}

func isMissingFields(err error) bool {
	_, ok := err.(*MissingFieldsError)
	return ok
}

package documents_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/aussiebroadwan/fastkep/internal/fastkep/documents"
	"github.com/aussiebroadwan/fastkep/internal/fastkep/domain"
	"github.com/aussiebroadwan/fastkep/pkg/metricsx"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2025, 3, 14, 10, 30, 45, 0, time.UTC)

func athens(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("Europe/Athens")
	require.NoError(t, err)
	return loc
}

func newRenderer(t *testing.T) *documents.Renderer {
	t.Helper()
	reg, err := documents.Builtin()
	require.NoError(t, err)

	r := documents.NewRenderer(reg, nil, athens(t))
	r.Now = func() time.Time { return fixedNow }
	return r
}

func testUser() domain.User {
	return domain.User{ID: "01HV0000000000000000000000", FirstName: "Γιώργος", LastName: "Παπαδόπουλος"}
}

func validFields() map[string]string {
	return map[string]string{
		"father_name": "Νικόλαος",
		"mother_name": "Μαρία",
		"birth_date":  "01/01/1990",
		"id_number":   "ΑΒ123456",
		"address":     "Πανεπιστημίου 1, Αθήνα",
		"content":     "Δηλώνω ότι τα στοιχεία είναι αληθή.",
	}
}

func TestRender_Success(t *testing.T) {
	r := newRenderer(t)

	art, err := r.Render(context.Background(), "ypefthini-dilosi", testUser(), validFields())
	require.NoError(t, err)

	require.Equal(t, "text/html; charset=utf-8", art.ContentType)
	require.Equal(t, "ypefthini_dilosi_01HV0000000000000000000000_1741948245.html", art.Filename)

	body := string(art.Body)
	require.Contains(t, body, "ΥΠΕΥΘΥΝΗ ΔΗΛΩΣΗ")
	require.Contains(t, body, "Γιώργος Παπαδόπουλος")
	require.Contains(t, body, "Νικόλαος")
	require.Contains(t, body, "ΑΒ123456")
	// 10:30:45 UTC is 12:30:45 in Athens (EET, before DST).
	require.Contains(t, body, "14/03/2025 12:30:45")
	require.Contains(t, body, `src="data:image/png;base64,`)
	require.NotContains(t, body, "ZgotmplZ")
}

func TestRender_Deterministic(t *testing.T) {
	r := newRenderer(t)

	a, err := r.Render(context.Background(), "ypefthini_dilosi", testUser(), validFields())
	require.NoError(t, err)
	b, err := r.Render(context.Background(), "ypefthini_dilosi", testUser(), validFields())
	require.NoError(t, err)

	require.Equal(t, a, b)
}

func TestRender_MissingFields(t *testing.T) {
	r := newRenderer(t)

	fields := validFields()
	delete(fields, "mother_name")
	delete(fields, "address")
	delete(fields, "content")

	_, err := r.Render(context.Background(), "ypefthini_dilosi", testUser(), fields)
	require.ErrorIs(t, err, documents.ErrMissingFields)

	var mf *documents.MissingFieldsError
	require.True(t, errors.As(err, &mf))
	require.Equal(t, []string{"address", "content", "mother_name"}, mf.Fields)
}

func TestRender_EachRequiredFieldAlone(t *testing.T) {
	r := newRenderer(t)
	tmpl, err := documents.YpefthiniDilosi()
	require.NoError(t, err)

	for _, name := range tmpl.RequiredFields {
		t.Run(name, func(t *testing.T) {
			fields := validFields()
			delete(fields, name)

			_, err := r.Render(context.Background(), "ypefthini_dilosi", testUser(), fields)
			var mf *documents.MissingFieldsError
			require.ErrorAs(t, err, &mf)
			require.Equal(t, []string{name}, mf.Fields)
		})
	}
}

func TestRender_PresentButEmptyFieldRenders(t *testing.T) {
	r := newRenderer(t)

	fields := validFields()
	fields["content"] = ""
	fields["address"] = "   "

	art, err := r.Render(context.Background(), "ypefthini_dilosi", testUser(), fields)
	require.NoError(t, err)
	require.NotEmpty(t, art.Body)
}

func TestRender_UnknownDocType(t *testing.T) {
	r := newRenderer(t)

	_, err := r.Render(context.Background(), "nope", testUser(), validFields())
	require.ErrorIs(t, err, documents.ErrUnknownDocType)
}

func TestRender_EscapesInput(t *testing.T) {
	r := newRenderer(t)

	fields := validFields()
	fields["content"] = `<script>alert(1)</script>`

	art, err := r.Render(context.Background(), "ypefthini_dilosi", testUser(), fields)
	require.NoError(t, err)
	require.NotContains(t, string(art.Body), "<script>alert(1)</script>")
	require.Contains(t, string(art.Body), "&lt;script&gt;")
}

func TestDeriveFields_OverrideCallerInput(t *testing.T) {
	fields := validFields()
	fields["full_name"] = "Impostor"
	fields["generated_at"] = "01/01/1970 00:00:00"
	fields["verification_code"] = "forged"
	fields["verification_qr"] = "javascript:alert(1)"

	data := documents.DeriveFields("ypefthini_dilosi", testUser(), fields, fixedNow)

	require.Equal(t, "Γιώργος Παπαδόπουλος", data["full_name"])
	require.Equal(t, "14/03/2025 10:30:45", data["generated_at"])
	require.NotEqual(t, "forged", data["verification_code"])
	require.Len(t, data["verification_code"], 64)
	require.NotContains(t, data, "verification_qr")

	// Caller map is left untouched.
	require.Equal(t, "Impostor", fields["full_name"])
}

func TestDeriveFields_VerificationCode(t *testing.T) {
	user := testUser()
	base := documents.DeriveFields("ypefthini_dilosi", user, validFields(), fixedNow)

	later := documents.DeriveFields("ypefthini_dilosi", user, validFields(), fixedNow.Add(time.Hour))
	require.Equal(t, base["verification_code"], later["verification_code"], "timestamp is excluded")

	changed := validFields()
	changed["content"] = "Κάτι άλλο"
	other := documents.DeriveFields("ypefthini_dilosi", user, changed, fixedNow)
	require.NotEqual(t, base["verification_code"], other["verification_code"])

	otherType := documents.DeriveFields("another", user, validFields(), fixedNow)
	require.NotEqual(t, base["verification_code"], otherType["verification_code"])
}

type failingConverter struct{}

func (failingConverter) Convert(context.Context, []byte) ([]byte, error) {
	return nil, errors.New("boom")
}
func (failingConverter) ContentType() string { return "application/pdf" }
func (failingConverter) Extension() string   { return "pdf" }

type upperConverter struct{}

func (upperConverter) Convert(_ context.Context, html []byte) ([]byte, error) {
	return []byte(strings.ToUpper(string(html))), nil
}
func (upperConverter) ContentType() string { return "application/x-test" }
func (upperConverter) Extension() string   { return "tst" }

func TestRender_Converter(t *testing.T) {
	r := newRenderer(t)
	r.Converter = upperConverter{}

	art, err := r.Render(context.Background(), "ypefthini_dilosi", testUser(), validFields())
	require.NoError(t, err)
	require.Equal(t, "application/x-test", art.ContentType)
	require.True(t, strings.HasSuffix(art.Filename, ".tst"))
	require.Contains(t, string(art.Body), "<!DOCTYPE HTML>")

	r.Converter = failingConverter{}
	_, err = r.Render(context.Background(), "ypefthini_dilosi", testUser(), validFields())
	require.ErrorContains(t, err, "boom")
}

func TestRender_Metrics(t *testing.T) {
	m := metricsx.New()
	r := newRenderer(t)
	r.Metrics = m

	_, err := r.Render(context.Background(), "ypefthini_dilosi", testUser(), validFields())
	require.NoError(t, err)
	_, err = r.Render(context.Background(), "ypefthini_dilosi", testUser(), map[string]string{})
	require.Error(t, err)

	expected := `
# HELP fastkep_documents_rendered_total Document render attempts, by type and result.
# TYPE fastkep_documents_rendered_total counter
fastkep_documents_rendered_total{doc_type="ypefthini_dilosi",result="missing_fields"} 1
fastkep_documents_rendered_total{doc_type="ypefthini_dilosi",result="ok"} 1
`
	require.NoError(t, testutil.GatherAndCompare(m.Registry(), strings.NewReader(expected), "fastkep_documents_rendered_total"))
}

func TestWKHTMLToPDF_MissingBinary(t *testing.T) {
	_, err := documents.NewWKHTMLToPDF("definitely-not-a-real-wkhtmltopdf-binary")
	require.Error(t, err)
}

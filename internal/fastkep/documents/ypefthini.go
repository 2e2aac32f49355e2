package documents

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"strings"
)

//go:embed templates/*.html.tmpl
var templateFS embed.FS

const DocTypeYpefthiniDilosi = "ypefthini_dilosi"

// YpefthiniDilosi is the general-purpose solemn declaration form
// (article 8, law 1599/1986).
func YpefthiniDilosi() (Template, error) {
	render, err := HTMLTemplate("ypefthini_dilosi.html.tmpl")
	if err != nil {
		return Template{}, err
	}
	return Template{
		DocType:     DocTypeYpefthiniDilosi,
		Name:        "Υπεύθυνη Δήλωση",
		Description: "Γενική φόρμα υπεύθυνης δήλωσης",
		RequiredFields: []string{
			"father_name",
			"mother_name",
			"birth_date",
			"id_number",
			"address",
			"content",
		},
		Render: render,
	}, nil
}

// Builtin returns the registry of shipped document types.
func Builtin() (*Registry, error) {
	yd, err := YpefthiniDilosi()
	if err != nil {
		return nil, err
	}
	return NewRegistry(yd)
}

// HTMLTemplate parses an embedded template and returns a RenderFunc for it.
// Templates read values through {{field "name"}}, which yields "" for absent
// keys, and {{qr}}, which yields the verification QR as a trusted data URL.
func HTMLTemplate(name string) (RenderFunc, error) {
	base := template.New(name).Funcs(template.FuncMap{
		"field": func(string) string { return "" },
		"qr":    func() template.URL { return "" },
	})
	tmpl, err := base.ParseFS(templateFS, "templates/"+name)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidTemplate, name, err)
	}

	return func(w io.Writer, fields map[string]string) error {
		t, err := tmpl.Clone()
		if err != nil {
			return err
		}
		t.Funcs(template.FuncMap{
			"field": func(key string) string { return fields[key] },
			"qr":    func() template.URL { return qrURL(fields[FieldVerificationQR]) },
		})
		return t.Execute(w, nil)
	}, nil
}

// qrURL only trusts PNG data URIs; anything else is dropped.
func qrURL(v string) template.URL {
	if !strings.HasPrefix(v, "data:image/png;base64,") {
		return ""
	}
	return template.URL(v)
}

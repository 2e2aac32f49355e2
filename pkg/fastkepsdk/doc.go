/*
Package fastkepsdk is the Go client for the FastKEP service, and the home of
the error and wire types the server itself writes.

# Client vs Session

Client covers the unauthenticated endpoints and opens sessions:

	client := fastkepsdk.NewClient("https://kep.example.com")

	reg, err := client.Register(ctx, fastkepsdk.RegisterRequest{
		Email:    "maria@example.gr",
		Password: "Str0ng!pass",
	})

	templates, err := client.Templates(ctx)

Session carries a token pair and refreshes the access token on demand:

	session, err := client.AuthenticateWithPassword(ctx, email, password)

	me, err := session.Me(ctx)

	doc, err := session.Generate(ctx, "ypefthini_dilosi", fastkepsdk.GenerateRequest{
		"father_name": "Γεώργιος",
		"mother_name": "Ελένη",
		"birth_date":  "01/01/1990",
		"id_number":   "ΑΒ123456",
		"address":     "Αθήνα",
		"content":     "Δηλώνω ότι...",
	})

	err = session.Logout(ctx)

Refresh tokens are not rotated. Logout revokes only the access token in use.

# Errors

Every failure the server reports is an *APIError. Compare with errors.Is
against the predefined values, which match on status and code:

	if errors.Is(err, fastkepsdk.ErrMissingFields) {
		var apiErr *fastkepsdk.APIError
		errors.As(err, &apiErr)
		fmt.Println(apiErr.MissingFields)
	}
*/
package fastkepsdk

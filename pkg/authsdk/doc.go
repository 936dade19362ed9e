/*
Package authsdk provides a client SDK for the clinical records authentication
service.

# Overview

The package is organized around two main types:

  - SDKClient: unauthenticated operations (register, login, refresh, health)
  - Session: authenticated operations with automatic access token refresh

Create an SDKClient to interact with public endpoints and initiate a login:

	client := authsdk.NewSDKClient("https://auth.example.com")

	// Create an account; registration signs the account in straight away
	reg, err := client.Register(ctx, authsdk.RegisterRequest{
		Name:     "Dr. Ana Souza",
		Email:    "ana@clinic.example",
		Password: "S3nha!forte",
		Role:     "clinician",
		CRM:      "CRM/PE 12345",
	})
	regSession := client.NewSessionFromTokens(reg.AccessToken, reg.RefreshToken, reg.ExpiresIn)

	// Or authenticate later to create a session
	session, err := client.Login(ctx, authsdk.LoginRequest{
		Email:    "ana@clinic.example",
		Password: "S3nha!forte",
	})

When the account has two-factor authentication enabled, Login returns
ErrTwoFactorRequired; retry with the TOTP code:

	session, err = client.Login(ctx, authsdk.LoginRequest{
		Email:    "ana@clinic.example",
		Password: "S3nha!forte",
		TOTPCode: "123456",
	})

Use a Session for authenticated operations. Sessions transparently refresh
the access token when it expires:

	me, err := session.Me(ctx)

	enrollment, err := session.TwoFactorEnroll(ctx)
	err = session.TwoFactorVerify(ctx, code)

	err = session.Logout(ctx)

# Error Handling

Server errors are returned as *APIError with the HTTP status code and the
machine-readable error code preserved:

	_, err := client.Login(ctx, req)
	var apiErr *authsdk.APIError
	if errors.As(err, &apiErr) && apiErr.Code == authsdk.ErrorCodeInvalidCredentials {
		// wrong email or password
	}
*/
package authsdk

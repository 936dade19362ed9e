package domain

// TwoFactorEnrollment is returned when a user starts TOTP enrollment.
type TwoFactorEnrollment struct {
	Secret  string // Base32 encoded secret for TOTP
	QRCode  string // otpauth:// URL for QR code generation
	Issuer  string // Issuer name shown in the authenticator app
	Account string // Account name (the user's email)
}

package ports

import "context"

// EmailService defines the mail delivery operations the flows need. A send
// failure is fatal for the request that triggered it.
type EmailService interface {
	SendVerificationEmail(ctx context.Context, email, token string) error
	SendOTPEmail(ctx context.Context, email, otp string) error
}

// Package mail delivers account emails.
package mail

import (
	"context"
	"strings"

	"github.com/rs/zerolog"
)

// LogMailer records that an account email went out without sending one.
// The token itself is never written.
type LogMailer struct {
	log zerolog.Logger
}

func NewLogMailer(log zerolog.Logger) *LogMailer {
	return &LogMailer{log: log}
}

func (m *LogMailer) SendPasswordReset(ctx context.Context, email, token string) error {
	m.dispatch(ctx, "password_reset", email, token)
	return nil
}

func (m *LogMailer) SendVerification(ctx context.Context, email, token string) error {
	m.dispatch(ctx, "email_verification", email, token)
	return nil
}

func (m *LogMailer) dispatch(ctx context.Context, kind, email, token string) {
	m.log.Info().
		Ctx(ctx).
		Str("mail", kind).
		Str("to", maskEmail(email)).
		Int("token_length", len(token)).
		Msg("account mail dispatched")
}

// maskEmail keeps the first character of the local part and the domain.
func maskEmail(email string) string {
	local, domain, ok := strings.Cut(email, "@")
	if !ok || local == "" {
		return "***"
	}
	return local[:1] + "***@" + domain
}

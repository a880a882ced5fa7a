package mail

import (
	"bytes"
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogMailer_NeverLogsToken(t *testing.T) {
	var buf bytes.Buffer
	m := NewLogMailer(zerolog.New(&buf))
	const token = "4f1c0d2e9a8b7c6d5e4f3a2b1c0d9e8f"

	require.NoError(t, m.SendPasswordReset(context.Background(), "alice@example.com", token))
	require.NoError(t, m.SendVerification(context.Background(), "alice@example.com", token))

	out := buf.String()
	assert.NotContains(t, out, token)
	assert.NotContains(t, out, "alice@example.com")
	assert.Contains(t, out, "a***@example.com")
	assert.Contains(t, out, `"mail":"password_reset"`)
	assert.Contains(t, out, `"mail":"email_verification"`)
}

func TestMaskEmail(t *testing.T) {
	assert.Equal(t, "b***@shop.io", maskEmail("bob@shop.io"))
	assert.Equal(t, "***", maskEmail("not-an-email"))
	assert.Equal(t, "***", maskEmail("@nolocal"))
}

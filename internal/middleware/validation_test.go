package middleware

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestValidateEmail(t *testing.T) {
	assert.NoError(t, ValidateEmail("jamie@acme.com"))
	assert.Error(t, ValidateEmail(""))
	assert.Error(t, ValidateEmail("not-an-email"))
	assert.Error(t, ValidateEmail(strings.Repeat("a", 250)+"@x.com"))
}

func TestValidatePassword(t *testing.T) {
	assert.NoError(t, ValidatePassword("longenough"))
	assert.Error(t, ValidatePassword("short"))
	assert.Error(t, ValidatePassword(strings.Repeat("x", 73)))
}

func TestValidateID(t *testing.T) {
	assert.NoError(t, ValidateID(uuid.NewString()))
	assert.Error(t, ValidateID("42"))
	assert.Error(t, ValidateID(""))
}

func TestValidateMessageText(t *testing.T) {
	assert.NoError(t, ValidateMessageText("hello"))
	assert.Error(t, ValidateMessageText(""))
	assert.Error(t, ValidateMessageText(strings.Repeat("x", 10001)))
	assert.Error(t, ValidateMessageText(string([]byte{0xff, 0xfe})))
}

func TestValidateName(t *testing.T) {
	assert.NoError(t, ValidateName("Acme Corp"))
	assert.Error(t, ValidateName(""))
	assert.Error(t, ValidateName(strings.Repeat("n", 257)))
}

package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hzj010427/YACA/pkg/response"
)

func validRequest() *RegisterRequest {
	return &RegisterRequest{
		Credentials: Credentials{Username: "jane@x.com", Password: "Abc1!"},
		Extra:       "Jane",
	}
}

func errName(t *testing.T, err error) string {
	t.Helper()
	var appErr *response.AppError
	require.True(t, errors.As(err, &appErr), "expected an app error, got %v", err)
	return appErr.Name
}

func TestValidateRegistrationAccepts(t *testing.T) {
	assert.NoError(t, ValidateRegistration(validRequest()))
}

func TestValidateRegistrationMissingFields(t *testing.T) {
	req := validRequest()
	req.Credentials.Username = ""
	assert.Equal(t, "MissingUsername", errName(t, ValidateRegistration(req)))

	req = validRequest()
	req.Credentials.Password = ""
	assert.Equal(t, "MissingPassword", errName(t, ValidateRegistration(req)))

	req = validRequest()
	req.Extra = ""
	assert.Equal(t, "MissingDisplayName", errName(t, ValidateRegistration(req)))
}

func TestValidateRegistrationEmailShape(t *testing.T) {
	for _, bad := range []string{"jane", "jane@", "jane@x", "@x.com", "jane x@x.com"} {
		req := validRequest()
		req.Credentials.Username = bad
		assert.Equal(t, "InvalidEmail", errName(t, ValidateRegistration(req)), "username %q", bad)
	}
}

func TestValidateRegistrationPasswordRules(t *testing.T) {
	cases := map[string]string{
		"a1!":      "too short",
		"1234!":    "no letter",
		"abcd!":    "no digit",
		"abcd1":    "no special char",
		"abc1! x":  "space not allowed",
		"abc1!(y)": "parens not allowed",
	}
	for password, why := range cases {
		req := validRequest()
		req.Credentials.Password = password
		assert.Equal(t, "InvalidPassword", errName(t, ValidateRegistration(req)),
			"password %q should fail: %s", password, why)
	}

	// one of each required category, nothing outside the alphabet
	req := validRequest()
	req.Credentials.Password = "Abc1$"
	assert.NoError(t, ValidateRegistration(req))
}

func TestReactionTypeValid(t *testing.T) {
	assert.True(t, ReactionLike.Valid())
	assert.True(t, ReactionOk.Valid())
	assert.False(t, ReactionType("shrug").Valid())
	assert.False(t, ReactionType("").Valid())
}

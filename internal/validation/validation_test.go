package validation

import (
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmail(t *testing.T) {
	assert.True(t, Email("user@example.com"))
	assert.True(t, Email("a.b+c@mail.co.uk"))
	assert.False(t, Email("user@example"))
	assert.False(t, Email("user example.com"))
	assert.False(t, Email("@example.com"))
	assert.False(t, Email("user@@example.com"))
	assert.False(t, Email("user@exa mple.com"))
	assert.False(t, Email(""))
}

func TestPhone(t *testing.T) {
	assert.True(t, Phone("89991234567"))
	assert.False(t, Phone("8999123456"))
	assert.False(t, Phone("899912345678"))
	assert.False(t, Phone("8-999-123-45"))
	assert.False(t, Phone("+8999123456"))
	assert.False(t, Phone("8999123456a"))
}

func TestPasswordPolicies(t *testing.T) {
	assert.False(t, PolicyBasic.Check("short"))
	assert.True(t, PolicyBasic.Check("longenough"))

	assert.False(t, PolicyStrict.Check("longenough"))
	assert.False(t, PolicyStrict.Check("Longenough1"))
	assert.False(t, PolicyStrict.Check("Sh0rt!"))
	assert.False(t, PolicyStrict.Check("Longenough1#")) // '#' is not in the symbol set
	assert.True(t, PolicyStrict.Check("Longenough1!"))
}

func TestParsePolicy(t *testing.T) {
	p, err := ParsePolicy("")
	require.NoError(t, err)
	assert.Equal(t, PolicyBasic, p)

	p, err = ParsePolicy(" Strict ")
	require.NoError(t, err)
	assert.Equal(t, PolicyStrict, p)

	_, err = ParsePolicy("paranoid")
	assert.Error(t, err)
}

func TestRegister(t *testing.T) {
	v := validator.New()
	require.NoError(t, Register(v, PolicyStrict))

	type form struct {
		Email    string `validate:"looseemail"`
		Phone    string `validate:"phone11"`
		Password string `validate:"password"`
	}
	assert.NoError(t, v.Struct(form{Email: "a@b.cd", Phone: "12345678901", Password: "Passw0rd!"}))

	err := v.Struct(form{Email: "nope", Phone: "123", Password: "password"})
	require.Error(t, err)
	var verrs validator.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Len(t, verrs, 3)
}

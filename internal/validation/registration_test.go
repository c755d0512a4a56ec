package validation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

var now = time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)

func valid() Input {
	return Input{
		Email:       "asha@example.com",
		Password:    "Str0ng!pass",
		Phone:       "+919812345678",
		DateOfBirth: "1994-03-12",
	}
}

func TestValidInput(t *testing.T) {
	res := ValidateRegistration(valid(), now)
	require.True(t, res.OK)
	require.Empty(t, res.Errors)
	require.Equal(t, 1994, res.DOB.Year())
}

func TestMissingFieldsAllReported(t *testing.T) {
	res := ValidateRegistration(Input{}, now)
	require.False(t, res.OK)
	require.Len(t, res.Errors, 4)
	fields := map[string]bool{}
	for _, e := range res.Errors {
		require.Equal(t, KindMissingField, e.Kind)
		fields[e.Field] = true
	}
	for _, f := range []string{"email", "password", "phone", "date_of_birth"} {
		require.True(t, fields[f], "missing report for %s", f)
	}
}

func TestEmailFormat(t *testing.T) {
	for _, bad := range []string{"plain", "a@b", "@example.com", "user@site.", "user @example.com"} {
		in := valid()
		in.Email = bad
		res := ValidateRegistration(in, now)
		require.False(t, res.OK, "email %q accepted", bad)
		require.Equal(t, KindInvalidFormat, res.Errors[0].Kind)
	}
}

func TestPasswordRulesEnumerated(t *testing.T) {
	cases := []struct {
		pw    string
		rules int
	}{
		{"Str0ng!pass", 0},
		{"short1!", 2},      // too short + no uppercase
		{"alllower1!", 1},   // no uppercase
		{"ALLUPPER1!", 1},   // no lowercase
		{"NoDigits!!", 1},   // no digit
		{"NoSpecial11", 1},  // no special character
		{"aaaaaaaa", 3},     // no uppercase, digit, special
		{"a", 4},            // everything but lowercase
	}
	for _, tc := range cases {
		in := valid()
		in.Password = tc.pw
		res := ValidateRegistration(in, now)
		got := 0
		for _, e := range res.Errors {
			if e.Kind == KindWeakPassword {
				got++
			}
		}
		require.Equal(t, tc.rules, got, "password %q", tc.pw)
	}
}

func TestPhoneFormat(t *testing.T) {
	good := []string{"9812345678", "919812345678", "+919812345678", "6000000000"}
	for _, p := range good {
		in := valid()
		in.Phone = p
		require.True(t, ValidateRegistration(in, now).OK, "phone %q rejected", p)
	}
	bad := []string{"5812345678", "98123", "98123456789", "+929812345678", "98-12345678", "abcdefghij"}
	for _, p := range bad {
		in := valid()
		in.Phone = p
		res := ValidateRegistration(in, now)
		require.False(t, res.OK, "phone %q accepted", p)
		require.Equal(t, KindInvalidPhone, res.Errors[0].Kind)
	}
}

func TestDateOfBirth(t *testing.T) {
	for _, bad := range []string{"12-03-1994", "1994/03/12", "2099-01-01", "not-a-date"} {
		in := valid()
		in.DateOfBirth = bad
		res := ValidateRegistration(in, now)
		require.False(t, res.OK, "dob %q accepted", bad)
		require.Equal(t, KindInvalidDOB, res.Errors[0].Kind)
	}
}

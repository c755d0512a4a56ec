package validation // package validation checks registration input before any account is created

import (
    "fmt"
    "regexp"
    "strings"
    "time"
    "unicode"
)

// Field error kinds surfaced to clients.  Every failed rule produces one
// entry in Result.Errors so the caller sees the complete picture instead
// of only the first problem.
const (
    KindMissingField  = "missing_field"
    KindInvalidFormat = "invalid_format"
    KindWeakPassword  = "weak_password"
    KindInvalidPhone  = "invalid_phone"
    KindInvalidDOB    = "invalid_dob"
)

// emailRe follows the usual pragmatic address grammar: local part, one
// "@", domain with at least one dot.
var emailRe = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// phoneRe matches Indian mobile numbers: optional +91/91 prefix followed
// by ten digits starting with 6-9.
var phoneRe = regexp.MustCompile(`^(\+91|91)?[6-9]\d{9}$`)

// DOBLayout is the accepted date-of-birth wire format.
const DOBLayout = "2006-01-02"

// Input carries the raw registration fields as submitted by the client.
type Input struct {
    Email       string
    Password    string
    Phone       string
    DateOfBirth string
}

// FieldError ties a failed rule to the field it applies to.
type FieldError struct {
    Field   string `json:"field"`
    Kind    string `json:"kind"`
    Message string `json:"message"`
}

// Result is the outcome of validating a registration request.  When OK is
// true, DOB holds the parsed date of birth.
type Result struct {
    OK     bool
    Errors []FieldError
    DOB    time.Time
}

// ValidateRegistration checks all registration rules and returns every
// violation found.  It is a pure function of its input: no lookups, no
// side effects.  Presence is checked first; format rules only run on
// fields that are present so a blank field is reported once, not twice.
func ValidateRegistration(in Input, now time.Time) Result {
    var res Result

    email := strings.TrimSpace(in.Email)
    phone := strings.TrimSpace(in.Phone)
    dob := strings.TrimSpace(in.DateOfBirth)

    for _, f := range []struct {
        name  string
        value string
    }{
        {"email", email},
        {"password", in.Password},
        {"phone", phone},
        {"date_of_birth", dob},
    } {
        if f.value == "" {
            res.Errors = append(res.Errors, FieldError{
                Field:   f.name,
                Kind:    KindMissingField,
                Message: fmt.Sprintf("%s is required", f.name),
            })
        }
    }

    if email != "" && !emailRe.MatchString(email) {
        res.Errors = append(res.Errors, FieldError{
            Field:   "email",
            Kind:    KindInvalidFormat,
            Message: "email is not a valid address",
        })
    }

    if in.Password != "" {
        for _, rule := range passwordRules(in.Password) {
            res.Errors = append(res.Errors, FieldError{
                Field:   "password",
                Kind:    KindWeakPassword,
                Message: rule,
            })
        }
    }

    if phone != "" && !phoneRe.MatchString(phone) {
        res.Errors = append(res.Errors, FieldError{
            Field:   "phone",
            Kind:    KindInvalidPhone,
            Message: "phone must be an Indian mobile number",
        })
    }

    if dob != "" {
        parsed, err := time.Parse(DOBLayout, dob)
        if err != nil || !parsed.Before(now) {
            res.Errors = append(res.Errors, FieldError{
                Field:   "date_of_birth",
                Kind:    KindInvalidDOB,
                Message: "date_of_birth must be a valid past date (YYYY-MM-DD)",
            })
        } else {
            res.DOB = parsed
        }
    }

    res.OK = len(res.Errors) == 0
    return res
}

// passwordRules returns a message for every strength rule the password
// fails: minimum length 8 plus at least one uppercase, lowercase, digit
// and special character.
func passwordRules(pw string) []string {
    var unmet []string
    if len(pw) < 8 {
        unmet = append(unmet, "password must be at least 8 characters")
    }
    var upper, lower, digit, special bool
    for _, r := range pw {
        switch {
        case unicode.IsUpper(r):
            upper = true
        case unicode.IsLower(r):
            lower = true
        case unicode.IsDigit(r):
            digit = true
        default:
            special = true
        }
    }
    if !upper {
        unmet = append(unmet, "password must contain an uppercase letter")
    }
    if !lower {
        unmet = append(unmet, "password must contain a lowercase letter")
    }
    if !digit {
        unmet = append(unmet, "password must contain a digit")
    }
    if !special {
        unmet = append(unmet, "password must contain a special character")
    }
    return unmet
}

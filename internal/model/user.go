package model

import "time"

// Role enumerates the closed set of roles a user can hold.  Authorization
// decisions are expressed over this type rather than ad-hoc string
// comparisons so the decision table can be tested exhaustively.
type Role string

const (
    RoleCustomer Role = "customer" // regular account, owns its orders
    RoleStaff    Role = "staff"    // operations staff, may act on any order
    RoleAdmin    Role = "admin"    // full administrative access
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
    switch r {
    case RoleCustomer, RoleStaff, RoleAdmin:
        return true
    }
    return false
}

// User represents an application user record as stored in the `users`
// table.  Each field corresponds to a column.  The password is kept only
// as a bcrypt hash; the plain value is never persisted or returned.
//
// Fields:
//  ID           – primary key identifier of the user.
//  Email        – unique email address (stored lower-cased).
//  PasswordHash – bcrypt hashed password.
//  Role         – role of the account (customer, staff, admin).
//  Phone        – Indian mobile number as submitted at registration.
//  DateOfBirth  – date of birth (date portion only).
//  IsActive     – whether the account is active.
//  CreatedAt    – timestamp of creation.
//  UpdatedAt    – timestamp of last update.
type User struct {
    ID           uint64    // users.id
    Email        string    // users.email
    PasswordHash string    // users.password_hash
    Role         Role      // users.role
    Phone        string    // users.phone
    DateOfBirth  time.Time // users.date_of_birth
    IsActive     bool      // users.is_active
    CreatedAt    time.Time // users.created_at
    UpdatedAt    time.Time // users.updated_at
}

// Identity is the resolved caller placed in the request context by the
// authentication middleware.  It deliberately omits the password hash so
// that downstream code never sees credential material.
type Identity struct {
    ID    uint64 `json:"id"`
    Email string `json:"email"`
    Role  Role   `json:"role"`
}

// RefreshToken models an entry in the `refresh_tokens` table.  The plain
// token is not stored; only its SHA-256 hash.
//
// Fields:
//  ID        – primary key identifier.
//  UserID    – owner of the token.
//  TokenHash – SHA-256 hex digest of the token value.
//  ExpiresAt – expiration timestamp of the token.
//  RevokedAt – when the token was revoked (null if still active).
//  CreatedAt – timestamp of creation.
type RefreshToken struct {
    ID        uint64     // refresh_tokens.id
    UserID    uint64     // refresh_tokens.user_id
    TokenHash string     // refresh_tokens.token_hash
    ExpiresAt time.Time  // refresh_tokens.expires_at
    RevokedAt *time.Time // refresh_tokens.revoked_at (nullable)
    CreatedAt time.Time  // refresh_tokens.created_at
}

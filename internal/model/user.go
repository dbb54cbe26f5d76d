package model

import "time"

// User represents an application user record as stored in the
// `users` table.  Authentication is handled outside this service;
// the booking core only needs identity and contact fields to
// attribute tickets and address confirmation emails.
//
// Fields:
//  ID        – primary key identifier of the user.
//  Name      – display name used in notification emails.
//  Email     – unique email address.
//  Role      – name of the role (e.g. CUSTOMER or OWNER).
//  IsActive  – whether the account is active.
//  CreatedAt – timestamp of creation.
type User struct {
    ID        uint64    // users.id
    Name      string    // users.name
    Email     string    // users.email
    Role      string    // users.role
    IsActive  bool      // users.is_active
    CreatedAt time.Time // users.created_at
}

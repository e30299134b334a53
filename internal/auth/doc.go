// Package auth provides staff authentication and authorisation.
//
// Staff accounts live in the staff table and are read through the data
// accessor. It implements:
//   - Argon2id password hashing in PHC format, with transparent rehash on
//     login when the cost parameters change
//   - Stateless HS256 access tokens carrying the staff id and role
//   - A static role to permission mapping (staff, manager)
package auth

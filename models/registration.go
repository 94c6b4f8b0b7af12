package models

// RegistrationRecord is a single join-flow submission. Records are append-only:
// once stored they are never updated or deleted.
type RegistrationRecord struct {
	ID        int64  `json:"id"`
	Role      string `json:"role"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Region    string `json:"region"`
	CreatedAt string `json:"createdAt"`
}

// RegistrationInput is the caller-supplied part of a registration. Role and
// Region are optional and defaulted on append.
type RegistrationInput struct {
	Role   string `json:"role"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Region string `json:"region"`
}

package seedmodels

// SeedUser defines a candidate account in the JSON seed file.
// An empty password creates an account that logs in by username alone.
type SeedUser struct {
	Username string `json:"username"`
	Password string `json:"password,omitempty"`
}

package hash

import "github.com/alexedwards/argon2id"

var params = &argon2id.Params{
	Memory:      64 * 1024, // 64 MiB
	Iterations:  2,
	Parallelism: 4,
	SaltLength:  16,
	KeyLength:   32,
}

// Hasher derives and verifies peppered argon2id password hashes.
type Hasher struct {
	pepper string
}

func New(pepper string) *Hasher {
	return &Hasher{pepper: pepper}
}

func (h *Hasher) Hash(password string) (string, error) {
	return argon2id.CreateHash(password+h.pepper, params)
}

// Verify reports whether password matches the stored hash. A malformed
// stored hash counts as a mismatch, never an error.
func (h *Hasher) Verify(password, hashed string) bool {
	ok, err := argon2id.ComparePasswordAndHash(password+h.pepper, hashed)
	if err != nil {
		return false
	}
	return ok
}

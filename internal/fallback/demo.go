// Package fallback holds the fixed demo accounts that keep login working
// while the primary store is down.
package fallback

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

type User struct {
	ID              string  `yaml:"id"`
	Email           string  `yaml:"email"`
	Password        string  `yaml:"password"`
	Nombre          string  `yaml:"nombre"`
	ApellidoPaterno string  `yaml:"apellido_paterno"`
	ApellidoMaterno *string `yaml:"apellido_materno"`
	Role            string  `yaml:"role"`
}

func (u User) FullName() string {
	return u.Nombre + " " + u.ApellidoPaterno
}

// Registry is read-only after construction and safe for concurrent use.
type Registry struct {
	byEmail map[string]User
	order   []string
}

func strPtr(s string) *string { return &s }

func defaultUsers() []User {
	return []User{
		{ID: "1", Email: "admin@mc.com", Password: "admin123", Nombre: "Administrador", ApellidoPaterno: "MC", ApellidoMaterno: strPtr("Sistema"), Role: "admin"},
		{ID: "2", Email: "user@mc.com", Password: "user123", Nombre: "Usuario", ApellidoPaterno: "Demo", Role: "user"},
		{ID: "3", Email: "grcarlos2005@gmail.com", Password: "Galletas", Nombre: "Carlos", ApellidoPaterno: "García", Role: "user"},
	}
}

func Default() *Registry {
	r, _ := New(defaultUsers())
	return r
}

func New(users []User) (*Registry, error) {
	r := &Registry{byEmail: make(map[string]User, len(users))}
	for i, u := range users {
		email := normalize(u.Email)
		if email == "" || u.Password == "" {
			return nil, fmt.Errorf("demo user %d: email and password are required", i)
		}
		if _, dup := r.byEmail[email]; dup {
			return nil, fmt.Errorf("demo user %d: duplicate email %s", i, email)
		}
		if u.ID == "" {
			u.ID = fmt.Sprint(i + 1)
		}
		if u.Role == "" {
			u.Role = "user"
		}
		u.Email = email
		r.byEmail[email] = u
		r.order = append(r.order, email)
	}
	return r, nil
}

// Load reads a YAML list of demo users that replaces the built-in table.
func Load(path string) (*Registry, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read demo users: %w", err)
	}
	var users []User
	if err := yaml.Unmarshal(raw, &users); err != nil {
		return nil, fmt.Errorf("decode demo users: %w", err)
	}
	return New(users)
}

func (r *Registry) Lookup(email string) (User, bool) {
	u, ok := r.byEmail[normalize(email)]
	return u, ok
}

func (r *Registry) Has(email string) bool {
	_, ok := r.byEmail[normalize(email)]
	return ok
}

// Authenticate compares the password verbatim.
func (r *Registry) Authenticate(email, password string) (User, bool) {
	u, ok := r.Lookup(email)
	if !ok || u.Password != password {
		return User{}, false
	}
	return u, true
}

func (r *Registry) Users() []User {
	out := make([]User, 0, len(r.order))
	for _, e := range r.order {
		out = append(out, r.byEmail[e])
	}
	return out
}

func normalize(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

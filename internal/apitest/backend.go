// Package apitest provides an in-memory Mottu backend for tests.
//
// The backend speaks the same JSON dialect as the production API: motorcycle
// lists come back paginated, single records come back wrapped in "data", and
// user endpoints insist on the x-api-version header. Route prefixes are
// configurable so tests can exercise the client's candidate-path fallback.
package apitest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/gorilla/mux"
)

// Moto is a stored motorcycle.
type Moto struct {
	ID     int    `json:"id"`
	Placa  string `json:"placa"`
	Modelo string `json:"modelo"`
	Ano    int    `json:"ano,omitempty"`
	IDArea int    `json:"idArea"`
}

// User is a stored user.
type User struct {
	ID       int    `json:"id"`
	Nome     string `json:"nome"`
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"-"`
	Role     string `json:"role"`
}

// Area is a stored area.
type Area struct {
	ID   int    `json:"id"`
	Nome string `json:"nome"`
}

// Options selects which route variants the backend exposes.
type Options struct {
	// MotosPath is the motorcycle collection route. Defaults to /api/Motos.
	MotosPath string
	// AreasPath defaults to /api/Areas.
	AreasPath string
	// LoginPath defaults to /api/auth/login.
	LoginPath string
	// RegisterPath is not served when empty.
	RegisterPath string
	// RegisterIssuesToken makes registration reply with a token.
	RegisterIssuesToken bool
	// RequireAuth rejects resource calls without a valid bearer token.
	RequireAuth bool
	// Secret signs issued tokens.
	Secret []byte
}

// Backend is the fake server state.
type Backend struct {
	opts Options

	mu     sync.Mutex
	motos  map[int]Moto
	users  map[int]User
	areas  []Area
	nextID int
	hits   []string
}

// New returns a backend seeded with two areas and an admin account
// (admin / admin123).
func New(opts Options) *Backend {
	if opts.MotosPath == "" {
		opts.MotosPath = "/api/Motos"
	}
	if opts.AreasPath == "" {
		opts.AreasPath = "/api/Areas"
	}
	if opts.LoginPath == "" {
		opts.LoginPath = "/api/auth/login"
	}
	if len(opts.Secret) == 0 {
		opts.Secret = []byte("apitest-secret")
	}
	b := &Backend{
		opts:   opts,
		motos:  make(map[int]Moto),
		users:  make(map[int]User),
		areas:  []Area{{ID: 1, Nome: "Pátio A"}, {ID: 2, Nome: "Oficina"}},
		nextID: 100,
	}
	b.users[1] = User{ID: 1, Nome: "Administrador", Email: "admin@mottu.com", Username: "admin", Password: "admin123", Role: "Admin"}
	return b
}

// Start serves the backend on a local listener. The server is closed when the
// test ends.
func Start(t interface{ Cleanup(func()) }, opts Options) (*Backend, *httptest.Server) {
	b := New(opts)
	srv := httptest.NewServer(b.Handler())
	t.Cleanup(srv.Close)
	return b, srv
}

// Handler returns the routes wrapped with request recording. Unmatched
// requests are recorded too.
func (b *Backend) Handler() http.Handler {
	return b.record(b.Router())
}

// Router builds the HTTP routes.
func (b *Backend) Router() *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc(b.opts.LoginPath, b.login).Methods(http.MethodPost)
	if b.opts.RegisterPath != "" {
		r.HandleFunc(b.opts.RegisterPath, b.register).Methods(http.MethodPost)
	}

	api := r.NewRoute().Subrouter()
	api.Use(b.authenticate)
	api.HandleFunc(b.opts.MotosPath, b.listMotos).Methods(http.MethodGet)
	api.HandleFunc(b.opts.MotosPath, b.createMoto).Methods(http.MethodPost)
	api.HandleFunc(b.opts.MotosPath+"/{id:[0-9]+}", b.getMoto).Methods(http.MethodGet)
	api.HandleFunc(b.opts.MotosPath+"/{id:[0-9]+}", b.updateMoto).Methods(http.MethodPut)
	api.HandleFunc(b.opts.MotosPath+"/{id:[0-9]+}", b.deleteMoto).Methods(http.MethodDelete)
	api.HandleFunc(b.opts.AreasPath, b.listAreas).Methods(http.MethodGet)

	users := api.PathPrefix("/api/Usuarios").Subrouter()
	users.Use(requireAPIVersion)
	users.HandleFunc("", b.listUsers).Methods(http.MethodGet)
	users.HandleFunc("", b.createUser).Methods(http.MethodPost)
	users.HandleFunc("/{id:[0-9]+}", b.updateUser).Methods(http.MethodPut)
	users.HandleFunc("/{id:[0-9]+}", b.deleteUser).Methods(http.MethodDelete)

	return r
}

// Hits returns "METHOD path" for every request received, in order.
func (b *Backend) Hits() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.hits...)
}

// AddMoto stores m, assigning an id when it has none.
func (b *Backend) AddMoto(m Moto) Moto {
	b.mu.Lock()
	defer b.mu.Unlock()
	if m.ID == 0 {
		m.ID = b.allocID()
	}
	b.motos[m.ID] = m
	return m
}

// Moto returns the stored motorcycle with id.
func (b *Backend) Moto(id int) (Moto, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	m, ok := b.motos[id]
	return m, ok
}

// User returns the stored user with id.
func (b *Backend) User(id int) (User, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	u, ok := b.users[id]
	return u, ok
}

// IssueToken signs a token for username.
func (b *Backend) IssueToken(username string) (string, error) {
	claims := jwt.RegisteredClaims{
		Subject:   username,
		IssuedAt:  jwt.NewNumericDate(time.Now()),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(b.opts.Secret)
}

func (b *Backend) allocID() int {
	b.nextID++
	return b.nextID
}

func (b *Backend) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		b.hits = append(b.hits, r.Method+" "+r.URL.Path)
		b.mu.Unlock()
		next.ServeHTTP(w, r)
	})
}

func (b *Backend) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !b.opts.RequireAuth {
			next.ServeHTTP(w, r)
			return
		}
		raw, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		if !ok {
			http.Error(w, "missing bearer token", http.StatusUnauthorized)
			return
		}
		_, err := jwt.ParseWithClaims(raw, &jwt.RegisteredClaims{}, func(*jwt.Token) (any, error) {
			return b.opts.Secret, nil
		}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
		if err != nil {
			http.Error(w, "invalid token", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func requireAPIVersion(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("x-api-version") == "" {
			http.Error(w, "x-api-version header is required", http.StatusBadRequest)
			return
		}
		next.ServeHTTP(w, r)
	})
}

type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (b *Backend) login(w http.ResponseWriter, r *http.Request) {
	var in credentials
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}
	b.mu.Lock()
	var found bool
	for _, u := range b.users {
		if u.Username == in.Username && u.Password == in.Password {
			found = true
			break
		}
	}
	b.mu.Unlock()
	if !found {
		http.Error(w, "invalid credentials", http.StatusUnauthorized)
		return
	}
	token, err := b.IssueToken(in.Username)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": map[string]string{"token": token}})
}

func (b *Backend) register(w http.ResponseWriter, r *http.Request) {
	var in credentials
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil || in.Username == "" {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}
	b.mu.Lock()
	for _, u := range b.users {
		if u.Username == in.Username {
			b.mu.Unlock()
			http.Error(w, "username taken", http.StatusConflict)
			return
		}
	}
	id := b.allocID()
	b.users[id] = User{ID: id, Username: in.Username, Password: in.Password, Role: "User"}
	b.mu.Unlock()

	if !b.opts.RegisterIssuesToken {
		w.WriteHeader(http.StatusCreated)
		return
	}
	token, err := b.IssueToken(in.Username)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"accessToken": token})
}

func (b *Backend) listMotos(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	items := make([]Moto, 0, len(b.motos))
	for _, m := range b.motos {
		items = append(items, m)
	}
	b.mu.Unlock()
	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })

	writeJSON(w, http.StatusOK, map[string]any{
		"items":    items,
		"total":    len(items),
		"page":     queryInt(r, "page", 1),
		"pageSize": queryInt(r, "pageSize", 10),
	})
}

func (b *Backend) getMoto(w http.ResponseWriter, r *http.Request) {
	m, ok := b.Moto(pathID(r))
	if !ok {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": m})
}

func (b *Backend) createMoto(w http.ResponseWriter, r *http.Request) {
	var m Moto
	if err := json.NewDecoder(r.Body).Decode(&m); err != nil || m.Placa == "" {
		http.Error(w, "placa is required", http.StatusBadRequest)
		return
	}
	m.ID = 0
	m = b.AddMoto(m)
	writeJSON(w, http.StatusCreated, map[string]any{"data": m})
}

func (b *Backend) updateMoto(w http.ResponseWriter, r *http.Request) {
	id := pathID(r)
	var m Moto
	if err := json.NewDecoder(r.Body).Decode(&m); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}
	if m.ID != id {
		http.Error(w, "id mismatch", http.StatusBadRequest)
		return
	}
	b.mu.Lock()
	_, ok := b.motos[id]
	if ok {
		b.motos[id] = m
	}
	b.mu.Unlock()
	if !ok {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (b *Backend) deleteMoto(w http.ResponseWriter, r *http.Request) {
	id := pathID(r)
	b.mu.Lock()
	_, ok := b.motos[id]
	delete(b.motos, id)
	b.mu.Unlock()
	if !ok {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (b *Backend) listAreas(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	areas := append([]Area(nil), b.areas...)
	b.mu.Unlock()
	writeJSON(w, http.StatusOK, areas)
}

type userBody struct {
	ID           int    `json:"id"`
	Nome         string `json:"nome"`
	Email        string `json:"email"`
	Username     string `json:"username"`
	PasswordHash string `json:"passwordhash"`
	Role         string `json:"role"`
}

func (b *Backend) listUsers(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	users := make([]User, 0, len(b.users))
	for _, u := range b.users {
		users = append(users, u)
	}
	b.mu.Unlock()
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	writeJSON(w, http.StatusOK, users)
}

func (b *Backend) createUser(w http.ResponseWriter, r *http.Request) {
	var in userBody
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil || in.Username == "" || in.PasswordHash == "" {
		http.Error(w, "username and passwordhash are required", http.StatusBadRequest)
		return
	}
	b.mu.Lock()
	u := User{ID: b.allocID(), Nome: in.Nome, Email: in.Email, Username: in.Username, Password: in.PasswordHash, Role: in.Role}
	b.users[u.ID] = u
	b.mu.Unlock()
	writeJSON(w, http.StatusCreated, map[string]any{"data": u})
}

func (b *Backend) updateUser(w http.ResponseWriter, r *http.Request) {
	id := pathID(r)
	var in userBody
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}
	b.mu.Lock()
	u, ok := b.users[id]
	if ok {
		if in.Nome != "" {
			u.Nome = in.Nome
		}
		if in.Email != "" {
			u.Email = in.Email
		}
		if in.Username != "" {
			u.Username = in.Username
		}
		if in.Role != "" {
			u.Role = in.Role
		}
		if in.PasswordHash != "" {
			u.Password = in.PasswordHash
		}
		b.users[id] = u
	}
	b.mu.Unlock()
	if !ok {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (b *Backend) deleteUser(w http.ResponseWriter, r *http.Request) {
	id := pathID(r)
	b.mu.Lock()
	_, ok := b.users[id]
	delete(b.users, id)
	b.mu.Unlock()
	if !ok {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func pathID(r *http.Request) int {
	id, _ := strconv.Atoi(mux.Vars(r)["id"])
	return id
}

func queryInt(r *http.Request, key string, def int) int {
	if n, err := strconv.Atoi(r.URL.Query().Get(key)); err == nil {
		return n
	}
	return def
}

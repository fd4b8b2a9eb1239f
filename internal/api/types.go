package api

// Motorcycle is the canonical motorcycle record.
type Motorcycle struct {
	ID        int    `json:"id"`
	Placa     string `json:"placa"`
	Modelo    string `json:"modelo"`
	Ano       int    `json:"ano,omitempty"`
	AreaID    int    `json:"areaId"`
	AreaNome  string `json:"areaNome,omitempty"`
	CreatedAt string `json:"createdAt,omitempty"`

	// Synthesized marks a record built from the request because the server's
	// reply could not be read as a motorcycle.
	Synthesized bool `json:"-"`
}

// MotorcycleInput is the writable part of a motorcycle.
type MotorcycleInput struct {
	Placa  string
	Modelo string
	Ano    int
	AreaID int
}

// motorcyclePayload is the wire body for motorcycle writes. The area is sent
// under the backend's name.
type motorcyclePayload struct {
	ID     int    `json:"id,omitempty"`
	Placa  string `json:"placa"`
	Modelo string `json:"modelo"`
	Ano    int    `json:"ano,omitempty"`
	IDArea int    `json:"idArea"`
}

// User is the canonical user record.
type User struct {
	ID       int    `json:"id"`
	Nome     string `json:"nome"`
	Email    string `json:"email"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

// UserInput is the body of a user creation.
type UserInput struct {
	Nome     string
	Email    string
	Username string
	Senha    string
	Role     string
}

// UserChanges is a partial user update. Empty fields are left unchanged; an
// empty Senha keeps the current password.
type UserChanges struct {
	Nome     string
	Email    string
	Username string
	Senha    string
	Role     string
}

type userPayload struct {
	ID           int    `json:"id,omitempty"`
	Nome         string `json:"nome,omitempty"`
	Email        string `json:"email,omitempty"`
	Username     string `json:"username,omitempty"`
	PasswordHash string `json:"passwordhash,omitempty"`
	Role         string `json:"role,omitempty"`
}

// Area is a yard area motorcycles are parked in.
type Area struct {
	ID   int    `json:"id"`
	Nome string `json:"nome"`
}

// Roles accepted by the backend.
var Roles = []string{"User", "Admin"}

package api

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Field aliases, modern name first. Dotted names reach into nested objects.
var (
	motorcycleIDKeys      = []string{"id", "ID_MOTO", "idMoto"}
	motorcyclePlacaKeys   = []string{"placa", "PLACA", "DS_PLACA", "plate"}
	motorcycleModeloKeys  = []string{"modelo", "MODELO", "DS_MODELO", "model"}
	motorcycleAnoKeys     = []string{"ano", "NR_ANO", "year"}
	motorcycleAreaIDKeys  = []string{"idArea", "areaId", "ID_AREA", "area.id"}
	motorcycleAreaNomeKey = []string{"areaNome", "nomeArea", "NM_AREA", "area.nome"}
	motorcycleCreatedKeys = []string{"createdAt", "dataCadastro", "DT_CADASTRO"}

	userIDKeys       = []string{"id", "ID_USUARIO", "userId"}
	userNomeKeys     = []string{"nome", "name", "NM_USUARIO"}
	userEmailKeys    = []string{"email", "DS_EMAIL"}
	userUsernameKeys = []string{"username", "DS_USERNAME"}
	userRoleKeys     = []string{"role", "DS_ROLE"}

	areaIDKeys   = []string{"id", "ID_AREA", "idArea"}
	areaNomeKeys = []string{"nome", "name", "NM_AREA"}
)

// Shapes used to recognize an entity inside an envelope.
var (
	motorcycleShape = shape{motorcycleIDKeys, motorcyclePlacaKeys, motorcycleModeloKeys, motorcycleAreaIDKeys}
	userShape       = shape{userIDKeys}
	areaShape       = shape{areaIDKeys, areaNomeKeys}
)

// DefaultRole is assigned to users created without a role.
const DefaultRole = "User"

// NormalizeMotorcycle extracts a motorcycle from any supported envelope.
// It reports false when the body holds no recognizable motorcycle.
func NormalizeMotorcycle(raw []byte) (*Motorcycle, bool) {
	obj, ok := decodeEnvelope(raw).entity(motorcycleShape)
	if !ok {
		return nil, false
	}
	m := mapMotorcycle(obj)
	return &m, true
}

// NormalizeMotorcycles extracts a motorcycle list from a bare array or a page.
func NormalizeMotorcycles(raw []byte) []Motorcycle {
	items := decodeEnvelope(raw).items()
	out := make([]Motorcycle, 0, len(items))
	for _, obj := range items {
		out = append(out, mapMotorcycle(obj))
	}
	return out
}

// NormalizeUser extracts a user from any supported envelope.
func NormalizeUser(raw []byte) (*User, bool) {
	obj, ok := decodeEnvelope(raw).entity(userShape)
	if !ok {
		return nil, false
	}
	u := mapUser(obj)
	return &u, true
}

// NormalizeUsers extracts a user list from a bare array or a page.
func NormalizeUsers(raw []byte) []User {
	items := decodeEnvelope(raw).items()
	out := make([]User, 0, len(items))
	for _, obj := range items {
		out = append(out, mapUser(obj))
	}
	return out
}

// NormalizeArea extracts an area from any supported envelope.
func NormalizeArea(raw []byte) (*Area, bool) {
	obj, ok := decodeEnvelope(raw).entity(areaShape)
	if !ok {
		return nil, false
	}
	a := mapArea(obj)
	return &a, true
}

// NormalizeAreas extracts an area list from a bare array or a page.
func NormalizeAreas(raw []byte) []Area {
	items := decodeEnvelope(raw).items()
	out := make([]Area, 0, len(items))
	for _, obj := range items {
		out = append(out, mapArea(obj))
	}
	return out
}

func mapMotorcycle(obj record) Motorcycle {
	return Motorcycle{
		ID:        intField(obj, motorcycleIDKeys...),
		Placa:     stringField(obj, motorcyclePlacaKeys...),
		Modelo:    stringField(obj, motorcycleModeloKeys...),
		Ano:       intField(obj, motorcycleAnoKeys...),
		AreaID:    intField(obj, motorcycleAreaIDKeys...),
		AreaNome:  stringField(obj, motorcycleAreaNomeKey...),
		CreatedAt: stringField(obj, motorcycleCreatedKeys...),
	}
}

func mapUser(obj record) User {
	role := stringField(obj, userRoleKeys...)
	if role == "" {
		role = DefaultRole
	}
	return User{
		ID:       intField(obj, userIDKeys...),
		Nome:     stringField(obj, userNomeKeys...),
		Email:    stringField(obj, userEmailKeys...),
		Username: stringField(obj, userUsernameKeys...),
		Role:     role,
	}
}

func mapArea(obj record) Area {
	return Area{
		ID:   intField(obj, areaIDKeys...),
		Nome: stringField(obj, areaNomeKeys...),
	}
}

// lookup resolves key in obj, following dots into nested objects. A present
// key holding null counts as absent.
func lookup(obj record, key string) (any, bool) {
	cur := obj
	parts := strings.Split(key, ".")
	for i, part := range parts {
		v, ok := cur[part]
		if !ok || v == nil {
			return nil, false
		}
		if i == len(parts)-1 {
			return v, true
		}
		next, ok := v.(record)
		if !ok {
			return nil, false
		}
		cur = next
	}
	return nil, false
}

// stringField returns the first alias holding a string or number.
func stringField(obj record, keys ...string) string {
	for _, k := range keys {
		v, ok := lookup(obj, k)
		if !ok {
			continue
		}
		switch t := v.(type) {
		case string:
			return t
		case json.Number:
			return t.String()
		case float64:
			return strconv.FormatFloat(t, 'f', -1, 64)
		case bool:
			return strconv.FormatBool(t)
		}
	}
	return ""
}

// intField returns the first alias holding an integer, accepting numeric
// strings. Values that cannot be read as an integer are skipped.
func intField(obj record, keys ...string) int {
	for _, k := range keys {
		v, ok := lookup(obj, k)
		if !ok {
			continue
		}
		if n, ok := toInt(v); ok {
			return n
		}
	}
	return 0
}

func toInt(v any) (int, bool) {
	switch t := v.(type) {
	case json.Number:
		if n, err := t.Int64(); err == nil {
			return int(n), true
		}
		if f, err := t.Float64(); err == nil {
			return int(math.Trunc(f)), true
		}
	case float64:
		return int(math.Trunc(t)), true
	case int:
		return t, true
	case string:
		s := strings.TrimSpace(t)
		if n, err := strconv.Atoi(s); err == nil {
			return n, true
		}
	}
	return 0, false
}

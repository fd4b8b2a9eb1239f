package api

import (
	"context"
	"net/http"
)

// userOptions attaches the x-api-version header every user endpoint requires.
func (s UsersService) userOptions(method string, body any) RequestOptions {
	version := s.APIVersion
	if version == "" {
		version = DefaultAPIVersion
	}
	header := http.Header{}
	header.Set("x-api-version", version)
	return RequestOptions{Method: method, Body: body, Header: header}
}

func (s UsersService) userPath(suffix string) string {
	base := s.Paths.Users
	if base == "" {
		base = DefaultPaths().Users
	}
	return base + suffix
}

// List retrieves every user.
func (s UsersService) List(ctx context.Context) ([]User, error) {
	resp, err := s.Do(ctx, s.userPath(listQuery), s.userOptions(http.MethodGet, nil))
	if err != nil {
		return nil, err
	}
	if !resp.OK() {
		return nil, newAPIError("list users", resp)
	}
	return NormalizeUsers(resp.Body), nil
}

// Create registers a user. Role defaults to DefaultRole.
func (s UsersService) Create(ctx context.Context, in UserInput) (*User, error) {
	role := in.Role
	if role == "" {
		role = DefaultRole
	}
	body := userPayload{
		Nome:         in.Nome,
		Email:        in.Email,
		Username:     in.Username,
		PasswordHash: in.Senha,
		Role:         role,
	}

	resp, err := s.Do(ctx, s.userPath(""), s.userOptions(http.MethodPost, body))
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, newAPIError("create user", resp)
	}
	return userOrRequest(resp, body), nil
}

// Update changes the given fields of a user. The password is only sent when
// changes.Senha is set.
func (s UsersService) Update(ctx context.Context, id int, changes UserChanges) (*User, error) {
	body := userPayload{
		ID:           id,
		Nome:         changes.Nome,
		Email:        changes.Email,
		Username:     changes.Username,
		PasswordHash: changes.Senha,
		Role:         changes.Role,
	}

	resp, err := s.Do(ctx, s.userPath(idSuffix(id)), s.userOptions(http.MethodPut, body))
	if err != nil {
		return nil, err
	}
	if !resp.OK() {
		return nil, newAPIError("update user", resp)
	}
	return userOrRequest(resp, body), nil
}

// Delete removes a user.
func (s UsersService) Delete(ctx context.Context, id int) error {
	resp, err := s.Do(ctx, s.userPath(idSuffix(id)), s.userOptions(http.MethodDelete, nil))
	if err != nil {
		return err
	}
	if !resp.OK() && resp.StatusCode != http.StatusNoContent {
		return newAPIError("delete user", resp)
	}
	return nil
}

// userOrRequest reads the echoed user, or maps the request body when the reply
// is not recognized.
func userOrRequest(resp *Response, body userPayload) *User {
	if u, ok := NormalizeUser(resp.Body); ok {
		return u
	}
	role := body.Role
	if role == "" {
		role = DefaultRole
	}
	return &User{
		ID:       body.ID,
		Nome:     body.Nome,
		Email:    body.Email,
		Username: body.Username,
		Role:     role,
	}
}

package api

// Service accessors group Client methods by resource.
// Each service embeds *Client so it shares the session and path configuration.

type AuthService struct{ *Client }

type MotorcyclesService struct{ *Client }

type UsersService struct{ *Client }

type AreasService struct{ *Client }

func (c *Client) Auth() AuthService {
	return AuthService{c}
}

func (c *Client) Motorcycles() MotorcyclesService {
	return MotorcyclesService{c}
}

func (c *Client) Users() UsersService {
	return UsersService{c}
}

func (c *Client) Areas() AreasService {
	return AreasService{c}
}

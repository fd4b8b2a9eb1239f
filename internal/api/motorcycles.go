package api

import (
	"context"
	"net/http"
	"time"
)

// List retrieves every motorcycle.
func (s MotorcyclesService) List(ctx context.Context) ([]Motorcycle, error) {
	resp, err := s.TryPaths(ctx, withSuffix(s.Paths.Motorcycles, listQuery), RequestOptions{})
	if err != nil {
		return nil, err
	}
	return NormalizeMotorcycles(resp.Body), nil
}

// Get retrieves a single motorcycle. A reply that does not hold a motorcycle is
// reported as not found.
func (s MotorcyclesService) Get(ctx context.Context, id int) (*Motorcycle, error) {
	resp, err := s.TryPaths(ctx, withSuffix(s.Paths.Motorcycles, idSuffix(id)), RequestOptions{})
	if err != nil {
		return nil, err
	}
	m, ok := NormalizeMotorcycle(resp.Body)
	if !ok {
		return nil, &APIError{Op: "get motorcycle", StatusCode: http.StatusNotFound, Body: "response did not contain a motorcycle"}
	}
	return m, nil
}

// Create registers a motorcycle. The plate is sanitized before sending.
func (s MotorcyclesService) Create(ctx context.Context, in MotorcycleInput) (*Motorcycle, error) {
	body := newMotorcyclePayload(0, in)
	resp, err := s.TryPaths(ctx, s.Paths.Motorcycles, RequestOptions{
		Method: http.MethodPost,
		Body:   body,
	})
	if err != nil {
		return nil, err
	}
	return s.motorcycleOrSynthesized(resp, body), nil
}

// Update replaces a motorcycle's fields. The plate is sanitized before sending.
func (s MotorcyclesService) Update(ctx context.Context, id int, in MotorcycleInput) (*Motorcycle, error) {
	body := newMotorcyclePayload(id, in)
	resp, err := s.TryPaths(ctx, withSuffix(s.Paths.Motorcycles, idSuffix(id)), RequestOptions{
		Method: http.MethodPut,
		Body:   body,
	})
	if err != nil {
		return nil, err
	}
	return s.motorcycleOrSynthesized(resp, body), nil
}

// Delete removes a motorcycle. Any 2xx, 204 included, is success.
func (s MotorcyclesService) Delete(ctx context.Context, id int) error {
	_, err := s.TryPaths(ctx, withSuffix(s.Paths.Motorcycles, idSuffix(id)), RequestOptions{
		Method: http.MethodDelete,
	})
	return err
}

func newMotorcyclePayload(id int, in MotorcycleInput) motorcyclePayload {
	return motorcyclePayload{
		ID:     id,
		Placa:  SanitizePlate(in.Placa),
		Modelo: in.Modelo,
		Ano:    in.Ano,
		IDArea: in.AreaID,
	}
}

// motorcycleOrSynthesized reads the echoed motorcycle, falling back to the
// request body when the reply is empty or unrecognized. A successful write
// always yields a usable record.
func (s MotorcyclesService) motorcycleOrSynthesized(resp *Response, body motorcyclePayload) *Motorcycle {
	if m, ok := NormalizeMotorcycle(resp.Body); ok {
		return m
	}
	s.logger().Debug("write response not recognized, using request body", "url", resp.URL, "status", resp.StatusCode)
	return synthesizeMotorcycle(body, s.clock())
}

func synthesizeMotorcycle(body motorcyclePayload, now time.Time) *Motorcycle {
	return &Motorcycle{
		ID:          body.ID,
		Placa:       body.Placa,
		Modelo:      body.Modelo,
		Ano:         body.Ano,
		AreaID:      body.IDArea,
		CreatedAt:   now.UTC().Format(time.RFC3339),
		Synthesized: true,
	}
}

package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestMotorcyclesList(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/Motos" {
			t.Errorf("Expected /api/v1/Motos, got %s", r.URL.Path)
		}
		if r.URL.Query().Get("page") != "1" || r.URL.Query().Get("pageSize") != "1000" {
			t.Errorf("unexpected query %q", r.URL.RawQuery)
		}
		_, _ = w.Write([]byte(`{"items":[{"id":1,"placa":"ABC1D23","modelo":"Sport","idArea":2}],"total":1,"page":1,"pageSize":1000}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL, "token")
	motos, err := client.Motorcycles().List(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(motos) != 1 || motos[0].Placa != "ABC1D23" || motos[0].AreaID != 2 {
		t.Errorf("unexpected result: %+v", motos)
	}
}

func TestMotorcyclesList_FallsBackToUnversionedPath(t *testing.T) {
	rec := &pathRecorder{
		statuses: map[string]int{"/api/Motos": 200},
		bodies:   map[string]string{"/api/Motos": `[]`},
	}
	server := httptest.NewServer(rec)
	defer server.Close()

	client := newTestClient(server.URL, "")
	motos, err := client.Motorcycles().List(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if motos == nil || len(motos) != 0 {
		t.Errorf("Expected empty non-nil list, got %#v", motos)
	}
	if calls := rec.Calls(); strings.Join(calls, ",") != "/api/v1/Motos,/api/Motos" {
		t.Errorf("calls = %v", calls)
	}
}

func TestMotorcyclesGet(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/Motos/7" {
			t.Errorf("Expected /api/v1/Motos/7, got %s", r.URL.Path)
		}
		_, _ = w.Write([]byte(`{"data":{"id":7,"placa":"XYZ1234","modelo":"Pop","idArea":1}}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL, "")
	m, err := client.Motorcycles().Get(context.Background(), 7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m.ID != 7 || m.Placa != "XYZ1234" {
		t.Errorf("unexpected result: %+v", m)
	}
}

func TestMotorcyclesGet_UnrecognizedIsNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"message":"ok"}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL, "")
	_, err := client.Motorcycles().Get(context.Background(), 7)
	if !IsNotFoundError(err) {
		t.Errorf("Expected not found error, got %v", err)
	}
}

func TestMotorcyclesCreate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("Expected POST, got %s", r.Method)
		}
		if r.Header.Get("Content-Type") != "application/json" {
			t.Errorf("Content-Type = %q", r.Header.Get("Content-Type"))
		}
		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode: %v", err)
		}
		if body["placa"] != "ABC1D23" {
			t.Errorf("placa = %v, want sanitized ABC1D23", body["placa"])
		}
		if body["idArea"] != float64(2) {
			t.Errorf("idArea = %v", body["idArea"])
		}
		if _, ok := body["id"]; ok {
			t.Error("create must not send an id")
		}
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"data":{"id":10,"placa":"ABC1D23","modelo":"Sport","ano":2024,"idArea":2}}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL, "token")
	m, err := client.Motorcycles().Create(context.Background(), MotorcycleInput{
		Placa:  "abc-1d23",
		Modelo: "Sport",
		Ano:    2024,
		AreaID: 2,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m.ID != 10 || m.Synthesized {
		t.Errorf("unexpected result: %+v", m)
	}
}

func TestMotorcyclesCreate_EmptyReplySynthesizes(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	}))
	defer server.Close()

	client := newTestClient(server.URL, "")
	m, err := client.Motorcycles().Create(context.Background(), MotorcycleInput{Placa: "abc1d23", Modelo: "Sport", AreaID: 3})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := Motorcycle{
		Placa:       "ABC1D23",
		Modelo:      "Sport",
		AreaID:      3,
		CreatedAt:   "2025-03-14T12:00:00Z",
		Synthesized: true,
	}
	if *m != want {
		t.Errorf("got %+v, want %+v", *m, want)
	}
}

func TestMotorcyclesUpdate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut {
			t.Errorf("Expected PUT, got %s", r.Method)
		}
		if r.URL.Path != "/api/v1/Motos/5" {
			t.Errorf("Expected /api/v1/Motos/5, got %s", r.URL.Path)
		}
		data, _ := io.ReadAll(r.Body)
		var body map[string]any
		_ = json.Unmarshal(data, &body)
		if body["id"] != float64(5) {
			t.Errorf("id = %v, want 5", body["id"])
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	client := newTestClient(server.URL, "")
	m, err := client.Motorcycles().Update(context.Background(), 5, MotorcycleInput{Placa: "XYZ9A88", Modelo: "Pop", AreaID: 1})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m.ID != 5 || !m.Synthesized {
		t.Errorf("unexpected result: %+v", m)
	}
}

func TestMotorcyclesDelete(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		body      string
		expectErr bool
	}{
		{"no content", http.StatusNoContent, "", false},
		{"ok", http.StatusOK, `{"deleted":true}`, false},
		{"not found", http.StatusNotFound, "not found", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.Method != http.MethodDelete {
					t.Errorf("Expected DELETE, got %s", r.Method)
				}
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			client := newTestClient(server.URL, "")
			err := client.Motorcycles().Delete(context.Background(), 9)
			if tt.expectErr {
				if err == nil {
					t.Fatal("Expected error")
				}
				if !strings.Contains(err.Error(), "404") || !strings.Contains(err.Error(), "not found") {
					t.Errorf("error = %q, want status and body", err.Error())
				}
				if !IsNotFoundError(err) {
					t.Error("IsNotFoundError should return true")
				}
				return
			}
			if err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

package infra

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// CasheaClient polls the BNPL provider for orders created in a date window.
// Calls go through a circuit breaker so a provider outage fails fast.
type CasheaClient struct {
	baseURL string
	apiKey  string
	http    *http.Client
	cb      *CircuitBreaker
}

func NewCasheaClient(baseURL, apiKey string, cb *CircuitBreaker) *CasheaClient {
	return &CasheaClient{
		baseURL: baseURL,
		apiKey:  apiKey,
		http:    &http.Client{Timeout: 30 * time.Second},
		cb:      cb,
	}
}

// Breaker exposes the breaker for the health endpoint.
func (c *CasheaClient) Breaker() *CircuitBreaker { return c.cb }

// respuestaCashea is column-oriented: every key maps to a parallel array with
// one entry per order line.
type respuestaCashea struct {
	Columns map[string][]json.RawMessage `json:"columns"`
}

// Ordenes returns the order lines created between desde and hasta, one map per
// line keyed by column name.
func (c *CasheaClient) Ordenes(ctx context.Context, desde, hasta time.Time) ([]map[string]json.RawMessage, error) {
	var filas []map[string]json.RawMessage
	err := c.cb.Execute(func() error {
		var err error
		filas, err = c.ordenes(ctx, desde, hasta)
		return err
	})
	return filas, err
}

func (c *CasheaClient) ordenes(ctx context.Context, desde, hasta time.Time) ([]map[string]json.RawMessage, error) {
	q := url.Values{}
	q.Set("desde", desde.Format("2006-01-02"))
	q.Set("hasta", hasta.Format("2006-01-02"))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/orders?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("X-API-Key", c.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("cashea: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("cashea: status %d: %s", resp.StatusCode, body)
	}

	var r respuestaCashea
	if err := json.NewDecoder(resp.Body).Decode(&r); err != nil {
		return nil, fmt.Errorf("cashea: respuesta invalida: %w", err)
	}
	return TransponerColumnas(r.Columns)
}

// TransponerColumnas turns parallel arrays into one record per index. Every
// column must have the same length.
func TransponerColumnas(columnas map[string][]json.RawMessage) ([]map[string]json.RawMessage, error) {
	n := -1
	for nombre, valores := range columnas {
		if n == -1 {
			n = len(valores)
			continue
		}
		if len(valores) != n {
			return nil, fmt.Errorf("cashea: columna %q con %d valores, se esperaban %d", nombre, len(valores), n)
		}
	}
	if n <= 0 {
		return nil, nil
	}
	filas := make([]map[string]json.RawMessage, n)
	for i := range filas {
		filas[i] = make(map[string]json.RawMessage, len(columnas))
	}
	for nombre, valores := range columnas {
		for i, v := range valores {
			filas[i][nombre] = v
		}
	}
	return filas, nil
}

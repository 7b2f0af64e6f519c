package integration

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"os"
	"strconv"
	"testing"
	"time"

	"ovation/internal/models"
)

// TestClient drives the API over HTTP against a running instance. Tests are
// skipped when no server is reachable.
type TestClient struct {
	BaseURL    string
	Email      string
	Password   string
	HTTPClient *http.Client
}

func NewTestClient() *TestClient {
	baseURL := os.Getenv("API_BASE_URL")
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}
	email := os.Getenv("API_TEST_EMAIL")
	if email == "" {
		email = "buyer@ovation.dev"
	}
	password := os.Getenv("API_TEST_PASSWORD")
	if password == "" {
		password = "buyer123"
	}

	return &TestClient{
		BaseURL:  baseURL,
		Email:    email,
		Password: password,
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// SkipUnlessAvailable skips the calling test when the server does not answer
// the health check.
func (c *TestClient) SkipUnlessAvailable(t *testing.T) {
	t.Helper()
	resp, err := c.HTTPClient.Get(c.BaseURL + "/health")
	if err != nil {
		t.Skipf("API not reachable at %s: %v", c.BaseURL, err)
	}
	resp.Body.Close()
}

func (c *TestClient) makeRequest(t *testing.T, method, path string, body interface{}) *http.Response {
	t.Helper()

	var reqBody io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("Failed to marshal request body: %v", err)
		}
		reqBody = bytes.NewBuffer(jsonBody)
	}

	req, err := http.NewRequest(method, c.BaseURL+path, reqBody)
	if err != nil {
		t.Fatalf("Failed to create request: %v", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.SetBasicAuth(c.Email, c.Password)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		t.Fatalf("Failed to make request: %v", err)
	}

	return resp
}

func decode[T any](t *testing.T, resp *http.Response, wantStatus int) T {
	t.Helper()
	defer resp.Body.Close()

	if resp.StatusCode != wantStatus {
		raw, _ := io.ReadAll(resp.Body)
		t.Fatalf("Expected status %d, got %d: %s", wantStatus, resp.StatusCode, raw)
	}

	var out T
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	return out
}

// ListEvents lists the approved events.
func (c *TestClient) ListEvents(t *testing.T) models.ListEventsResponse {
	resp := c.makeRequest(t, "GET", "/api/events", nil)
	return decode[models.ListEventsResponse](t, resp, http.StatusOK)
}

// GetEvent fetches one event with its priced tiers.
func (c *TestClient) GetEvent(t *testing.T, id int64) models.EventDetailResponse {
	resp := c.makeRequest(t, "GET", "/api/events/"+strconv.FormatInt(id, 10), nil)
	return decode[models.EventDetailResponse](t, resp, http.StatusOK)
}

// InitiateReservation starts a checkout for a ticket tier.
func (c *TestClient) InitiateReservation(t *testing.T, eventID int64, ticketType string, quantity int) models.InitiateReservationResponse {
	resp := c.makeRequest(t, "POST", "/api/reservations", models.InitiateReservationRequest{
		EventID:    eventID,
		TicketType: ticketType,
		Quantity:   quantity,
	})
	return decode[models.InitiateReservationResponse](t, resp, http.StatusCreated)
}

// ConfirmReservation settles a reservation and returns its tickets.
func (c *TestClient) ConfirmReservation(t *testing.T, transactionID, paymentRef string) models.ConfirmReservationResponse {
	resp := c.makeRequest(t, "POST", "/api/reservations/confirm", models.ConfirmReservationRequest{
		TransactionID: transactionID,
		PaymentRef:    paymentRef,
	})
	return decode[models.ConfirmReservationResponse](t, resp, http.StatusOK)
}

// ListMyTickets returns the authenticated buyer's tickets.
func (c *TestClient) ListMyTickets(t *testing.T) []models.TicketView {
	resp := c.makeRequest(t, "GET", "/api/tickets", nil)
	return decode[[]models.TicketView](t, resp, http.StatusOK)
}

// VerifyTicket runs the scan-side QR check.
func (c *TestClient) VerifyTicket(t *testing.T, payload string) models.VerifyTicketResponse {
	resp := c.makeRequest(t, "POST", "/api/tickets/verify", models.VerifyTicketRequest{
		QRPayload: payload,
	})
	return decode[models.VerifyTicketResponse](t, resp, http.StatusOK)
}

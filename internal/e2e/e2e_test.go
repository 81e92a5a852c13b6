package e2e

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	authdomain "github.com/parceltrail/parceltrail/internal/auth/domain"
	authrepository "github.com/parceltrail/parceltrail/internal/auth/repository"
	authservice "github.com/parceltrail/parceltrail/internal/auth/service"
	"github.com/parceltrail/parceltrail/internal/auth/session"
	"github.com/parceltrail/parceltrail/internal/config"
	invitationdomain "github.com/parceltrail/parceltrail/internal/invitation/domain"
	invitationrepository "github.com/parceltrail/parceltrail/internal/invitation/repository"
	invitationservice "github.com/parceltrail/parceltrail/internal/invitation/service"
	"github.com/parceltrail/parceltrail/internal/observability"
	"github.com/parceltrail/parceltrail/internal/observability/metrics"
	orgdomain "github.com/parceltrail/parceltrail/internal/organization/domain"
	orgrepository "github.com/parceltrail/parceltrail/internal/organization/repository"
	orgservice "github.com/parceltrail/parceltrail/internal/organization/service"
	"github.com/parceltrail/parceltrail/internal/providers/email"
	"github.com/parceltrail/parceltrail/internal/server"
	shipmentdomain "github.com/parceltrail/parceltrail/internal/shipment/domain"
	shipmentrepository "github.com/parceltrail/parceltrail/internal/shipment/repository"
	shipmentservice "github.com/parceltrail/parceltrail/internal/shipment/service"
	"github.com/parceltrail/parceltrail/internal/signup"
	"go.opentelemetry.io/otel/metric/noop"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type testEnv struct {
	baseURL string
	client  *http.Client
}

// startEnv wires the real services against an in-memory database and serves
// them over a real listener.
func startEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	if err := conn.AutoMigrate(
		&orgdomain.Organization{},
		&authdomain.User{},
		&authdomain.Session{},
		&shipmentdomain.Shipment{},
		&shipmentdomain.TravelEvent{},
		&invitationdomain.Invitation{},
	); err != nil {
		t.Fatalf("migrate schema: %v", err)
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		t.Fatalf("snowflake node: %v", err)
	}
	m, err := metrics.New(metrics.Config{}, noop.NewMeterProvider())
	if err != nil {
		t.Fatalf("metrics: %v", err)
	}

	log := zap.NewNop()
	cfg := config.Config{PublicBaseURL: "http://localhost:8080"}

	orgRepo := orgrepository.New(conn)
	authRepo := authrepository.New(conn)
	sessionRepo := authrepository.NewSessionRepository(conn)
	shipRepo := shipmentrepository.New(conn)
	invRepo := invitationrepository.New(conn)

	authsvc := authservice.New(log, authRepo, sessionRepo, node)
	orgsvc := orgservice.New(orgRepo)
	shipsvc := shipmentservice.New(conn, shipRepo, orgRepo, node, m)
	invsvc := invitationservice.New(log, conn, invRepo, authRepo, orgRepo, &email.NoOpProvider{}, node, m, cfg)
	signupsvc := signup.NewService(conn, orgRepo, authRepo, authsvc, node)

	srv := server.NewServer(server.ServerParams{
		Gin:             server.NewEngine(observability.Config{}),
		Cfg:             cfg,
		Sessions:        session.NewManager(cfg),
		Authsvc:         authsvc,
		OrganizationSvc: orgsvc,
		ShipmentSvc:     shipsvc,
		InvitationSvc:   invsvc,
		Signupsvc:       signupsvc,
	})

	httpSrv := httptest.NewServer(srv.Engine())
	t.Cleanup(httpSrv.Close)

	return &testEnv{
		baseURL: httpSrv.URL,
		client:  httpSrv.Client(),
	}
}

func (e *testEnv) doJSON(t *testing.T, method, path, token string, payload any) (*http.Response, []byte) {
	t.Helper()

	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("encode json: %v", err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequest(method, e.baseURL+path, body)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := e.client.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read response: %v", err)
	}
	return resp, data
}

func TestE2E_HealthCheck(t *testing.T) {
	env := startEnv(t)

	resp, _ := env.doJSON(t, http.MethodGet, "/health", "", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.StatusCode)
	}
}

func TestE2E_SignupToPublicTracking(t *testing.T) {
	env := startEnv(t)

	resp, body := env.doJSON(t, http.MethodPost, "/auth/signup", "", map[string]any{
		"organization_name": "Test Corp",
		"email":             "owner@testcorp.example",
		"password":          "super-secret",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("signup failed: %d: %s", resp.StatusCode, string(body))
	}
	var signupResp struct {
		Token        string `json:"token"`
		Organization struct {
			Slug string `json:"slug"`
		} `json:"organization"`
	}
	if err := json.Unmarshal(body, &signupResp); err != nil {
		t.Fatalf("decode signup response: %v", err)
	}
	if signupResp.Token == "" {
		t.Fatal("expected a session token")
	}
	if signupResp.Organization.Slug != "test-corp" {
		t.Fatalf("expected slug %q, got %q", "test-corp", signupResp.Organization.Slug)
	}
	token := signupResp.Token

	resp, body = env.doJSON(t, http.MethodPost, "/shipments", token, map[string]any{
		"tracking_suffix": "X1",
		"origin":          "Rotterdam",
		"destination":     "Oslo",
		"weight_kg":       12.5,
		"piece_count":     2,
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create shipment failed: %d: %s", resp.StatusCode, string(body))
	}
	var shipment struct {
		ID             string `json:"id"`
		TrackingNumber string `json:"tracking_number"`
		Status         string `json:"status"`
	}
	if err := json.Unmarshal(body, &shipment); err != nil {
		t.Fatalf("decode shipment response: %v", err)
	}
	if shipment.TrackingNumber != "TC-X1" {
		t.Fatalf("expected tracking number %q, got %q", "TC-X1", shipment.TrackingNumber)
	}
	if shipment.Status != "Created" {
		t.Fatalf("expected status %q, got %q", "Created", shipment.Status)
	}

	resp, body = env.doJSON(t, http.MethodPost, "/shipments/"+shipment.ID+"/events", token, map[string]any{
		"status":   "in-transit",
		"type":     "in-transit",
		"location": "Hamburg",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("add event failed: %d: %s", resp.StatusCode, string(body))
	}

	// The public endpoint needs no credentials and reflects the new event.
	resp, body = env.doJSON(t, http.MethodGet, "/track/TC-X1", "", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("track failed: %d: %s", resp.StatusCode, string(body))
	}
	var tracked struct {
		TrackingNumber string `json:"tracking_number"`
		Status         string `json:"status"`
		Events         []struct {
			Status   string `json:"status"`
			Location string `json:"location"`
		} `json:"events"`
	}
	if err := json.Unmarshal(body, &tracked); err != nil {
		t.Fatalf("decode track response: %v", err)
	}
	if tracked.Status != "in-transit" {
		t.Fatalf("expected status %q, got %q", "in-transit", tracked.Status)
	}
	if len(tracked.Events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(tracked.Events))
	}
	if tracked.Events[0].Location != "Hamburg" {
		t.Fatalf("expected location %q, got %q", "Hamburg", tracked.Events[0].Location)
	}
}

func TestE2E_InvitationFlow(t *testing.T) {
	env := startEnv(t)

	resp, body := env.doJSON(t, http.MethodPost, "/auth/signup", "", map[string]any{
		"organization_name": "Reus Logistics",
		"email":             "owner@reus.example",
		"password":          "super-secret",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("signup failed: %d: %s", resp.StatusCode, string(body))
	}
	var signupResp struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(body, &signupResp); err != nil {
		t.Fatalf("decode signup response: %v", err)
	}
	token := signupResp.Token

	resp, body = env.doJSON(t, http.MethodPost, "/users/invite", token, map[string]any{
		"email": "colleague@reus.example",
		"role":  "member",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("invite failed: %d: %s", resp.StatusCode, string(body))
	}
	var invite struct {
		Invitation struct {
			Token string `json:"token"`
		} `json:"invitation"`
	}
	if err := json.Unmarshal(body, &invite); err != nil {
		t.Fatalf("decode invite response: %v", err)
	}
	if invite.Invitation.Token == "" {
		t.Fatal("expected an invitation token")
	}

	resp, body = env.doJSON(t, http.MethodPost, "/invitations/"+invite.Invitation.Token+"/accept", "", map[string]any{
		"password": "another-secret",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("accept failed: %d: %s", resp.StatusCode, string(body))
	}

	// The new member can log in and see shipments for the organization.
	resp, body = env.doJSON(t, http.MethodPost, "/auth/login", "", map[string]any{
		"email":    "colleague@reus.example",
		"password": "another-secret",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("member login failed: %d: %s", resp.StatusCode, string(body))
	}
	var loginResp struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(body, &loginResp); err != nil {
		t.Fatalf("decode login response: %v", err)
	}

	resp, body = env.doJSON(t, http.MethodGet, "/shipments", loginResp.Token, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("list shipments failed: %d: %s", resp.StatusCode, string(body))
	}

	// Members cannot invite.
	resp, _ = env.doJSON(t, http.MethodPost, "/users/invite", loginResp.Token, map[string]any{
		"email": "third@reus.example",
		"role":  "member",
	})
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected status 403 for a member, got %d", resp.StatusCode)
	}
}

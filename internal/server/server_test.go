package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	authdomain "github.com/parceltrail/parceltrail/internal/auth/domain"
	"github.com/parceltrail/parceltrail/internal/auth/session"
	"github.com/parceltrail/parceltrail/internal/config"
	invitationdomain "github.com/parceltrail/parceltrail/internal/invitation/domain"
	"github.com/parceltrail/parceltrail/internal/orgcontext"
	"github.com/parceltrail/parceltrail/internal/ratelimit"
	shipmentdomain "github.com/parceltrail/parceltrail/internal/shipment/domain"
)

type fakeAuthService struct {
	user *authdomain.User
}

func (f *fakeAuthService) CreateUser(ctx context.Context, req authdomain.CreateUserRequest) (*authdomain.User, error) {
	return nil, nil
}

func (f *fakeAuthService) Login(ctx context.Context, req authdomain.LoginRequest) (*authdomain.LoginResult, error) {
	return nil, authdomain.ErrInvalidCredentials
}

func (f *fakeAuthService) Logout(ctx context.Context, rawToken string) error {
	return nil
}

func (f *fakeAuthService) ChangePassword(ctx context.Context, userID snowflake.ID, current, updated string) error {
	return nil
}

func (f *fakeAuthService) Authenticate(ctx context.Context, rawToken string) (*authdomain.User, error) {
	if f.user != nil && rawToken == "good-token" {
		return f.user, nil
	}
	return nil, authdomain.ErrInvalidSession
}

func (f *fakeAuthService) GetUser(ctx context.Context, id snowflake.ID) (*authdomain.User, error) {
	return f.user, nil
}

func (f *fakeAuthService) ListOrgUsers(ctx context.Context, orgID snowflake.ID) ([]authdomain.User, error) {
	return nil, nil
}

func (f *fakeAuthService) RemoveUser(ctx context.Context, identity orgcontext.Identity, userID snowflake.ID) error {
	return nil
}

type fakeShipmentService struct {
	view      *shipmentdomain.ShipmentView
	createErr error
	lookupErr error
}

func (f *fakeShipmentService) Create(ctx context.Context, identity orgcontext.Identity, req shipmentdomain.CreateShipmentRequest) (*shipmentdomain.ShipmentView, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	return f.view, nil
}

func (f *fakeShipmentService) GetByTrackingNumber(ctx context.Context, trackingNumber string) (*shipmentdomain.ShipmentView, error) {
	if f.lookupErr != nil {
		return nil, f.lookupErr
	}
	return f.view, nil
}

func (f *fakeShipmentService) ListByOrg(ctx context.Context, identity orgcontext.Identity) ([]shipmentdomain.ShipmentView, error) {
	return nil, nil
}

func (f *fakeShipmentService) AddEvent(ctx context.Context, identity orgcontext.Identity, shipmentID snowflake.ID, req shipmentdomain.AddEventRequest) (*shipmentdomain.TravelEventView, error) {
	return nil, shipmentdomain.ErrShipmentNotFound
}

func (f *fakeShipmentService) UpdateEvent(ctx context.Context, identity orgcontext.Identity, eventID snowflake.ID, patch shipmentdomain.UpdateEventRequest) (*shipmentdomain.TravelEventView, error) {
	return nil, shipmentdomain.ErrEventNotFound
}

func (f *fakeShipmentService) DeleteEvent(ctx context.Context, identity orgcontext.Identity, eventID snowflake.ID) error {
	return shipmentdomain.ErrEventNotFound
}

type fakeInvitationService struct {
	acceptErr error
}

func (f *fakeInvitationService) Create(ctx context.Context, identity orgcontext.Identity, req invitationdomain.CreateInvitationRequest) (*invitationdomain.InvitationResult, error) {
	return &invitationdomain.InvitationResult{}, nil
}

func (f *fakeInvitationService) List(ctx context.Context, identity orgcontext.Identity) ([]invitationdomain.InvitationView, error) {
	return nil, nil
}

func (f *fakeInvitationService) Accept(ctx context.Context, token string, req invitationdomain.AcceptInvitationRequest) (*invitationdomain.AcceptResult, error) {
	if f.acceptErr != nil {
		return nil, f.acceptErr
	}
	return &invitationdomain.AcceptResult{}, nil
}

func (f *fakeInvitationService) Resend(ctx context.Context, identity orgcontext.Identity, id snowflake.ID) (*invitationdomain.InvitationResult, error) {
	return nil, nil
}

func (f *fakeInvitationService) Cancel(ctx context.Context, identity orgcontext.Identity, id snowflake.ID) error {
	return nil
}

func newTestServer(role string) (*Server, *gin.Engine, *fakeShipmentService, *fakeInvitationService) {
	gin.SetMode(gin.TestMode)

	auth := &fakeAuthService{
		user: &authdomain.User{
			ID:    snowflake.ID(200),
			Email: "user@reus.example",
			OrgID: snowflake.ID(100),
			Role:  role,
		},
	}
	shipments := &fakeShipmentService{}
	invitations := &fakeInvitationService{}

	engine := gin.New()
	engine.Use(ErrorHandlingMiddleware())

	srv := &Server{
		engine:        engine,
		sessions:      session.NewManager(config.Config{}),
		authsvc:       auth,
		shipmentSvc:   shipments,
		invitationSvc: invitations,
	}
	srv.registerShipmentRoutes()
	srv.registerMemberRoutes()
	srv.registerPublicRoutes()

	return srv, engine, shipments, invitations
}

func doJSON(engine *gin.Engine, method, path, token, body string) *httptest.ResponseRecorder {
	var reader *bytes.Buffer
	if body == "" {
		reader = bytes.NewBufferString("{}")
	} else {
		reader = bytes.NewBufferString(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp := httptest.NewRecorder()
	engine.ServeHTTP(resp, req)
	return resp
}

func TestTrackRejectsShortNumbers(t *testing.T) {
	_, engine, _, _ := newTestServer(orgcontext.RoleMember)

	resp := doJSON(engine, http.MethodGet, "/track/RL", "", "")
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", resp.Code)
	}
}

func TestTrackUnknownNumberReturns404(t *testing.T) {
	_, engine, shipments, _ := newTestServer(orgcontext.RoleMember)
	shipments.lookupErr = shipmentdomain.ErrShipmentNotFound

	resp := doJSON(engine, http.MethodGet, "/track/RL-404", "", "")
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", resp.Code)
	}
}

func TestTrackRendersStatusField(t *testing.T) {
	_, engine, shipments, _ := newTestServer(orgcontext.RoleMember)
	shipments.view = &shipmentdomain.ShipmentView{
		TrackingNumber: "RL-001",
		Status:         "in-transit",
		Events:         []shipmentdomain.TravelEventView{},
	}

	resp := doJSON(engine, http.MethodGet, "/track/RL-001", "", "")
	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.Code)
	}

	var body map[string]any
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if body["status"] != "in-transit" {
		t.Fatalf("expected status field %q, got %v", "in-transit", body["status"])
	}
	if _, ok := body["currentStatus"]; ok {
		t.Fatal("currentStatus must not leak into the response")
	}
}

func TestTrackRateLimitReturns429(t *testing.T) {
	srv, engine, shipments, _ := newTestServer(orgcontext.RoleMember)
	srv.limiter = ratelimit.NewTokenBucket(2, time.Minute)
	shipments.view = &shipmentdomain.ShipmentView{
		TrackingNumber: "RL-001",
		Status:         "Created",
	}

	for i := 0; i < 2; i++ {
		if resp := doJSON(engine, http.MethodGet, "/track/RL-001", "", ""); resp.Code != http.StatusOK {
			t.Fatalf("request %d: expected status 200, got %d", i+1, resp.Code)
		}
	}
	if resp := doJSON(engine, http.MethodGet, "/track/RL-001", "", ""); resp.Code != http.StatusTooManyRequests {
		t.Fatalf("expected status 429, got %d", resp.Code)
	}
}

func TestShipmentRoutesRequireAuth(t *testing.T) {
	_, engine, _, _ := newTestServer(orgcontext.RoleMember)

	if resp := doJSON(engine, http.MethodPost, "/shipments", "", "{}"); resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401 without token, got %d", resp.Code)
	}
	if resp := doJSON(engine, http.MethodPost, "/shipments", "bad-token", "{}"); resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401 with a bad token, got %d", resp.Code)
	}
}

func TestCreateShipmentDuplicateReturns400(t *testing.T) {
	_, engine, shipments, _ := newTestServer(orgcontext.RoleMember)
	shipments.createErr = shipmentdomain.ErrTrackingNumberExists

	resp := doJSON(engine, http.MethodPost, "/shipments", "good-token",
		`{"tracking_suffix":"001","origin":"A","destination":"B","weight_kg":1,"piece_count":1}`)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", resp.Code)
	}
	if !strings.Contains(resp.Body.String(), "exists") {
		t.Fatalf("duplicate error must contain %q, body: %s", "exists", resp.Body.String())
	}
}

func TestInviteRequiresOwnerRole(t *testing.T) {
	_, engine, _, _ := newTestServer(orgcontext.RoleMember)

	resp := doJSON(engine, http.MethodPost, "/users/invite", "good-token",
		`{"email":"new@reus.example","role":"member"}`)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected status 403 for a member, got %d", resp.Code)
	}
}

func TestInviteAllowedForOwner(t *testing.T) {
	_, engine, _, _ := newTestServer(orgcontext.RoleOwner)

	resp := doJSON(engine, http.MethodPost, "/users/invite", "good-token",
		`{"email":"new@reus.example","role":"member"}`)
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected status 201 for an owner, got %d", resp.Code)
	}
}

func TestAcceptInvitationIsPublic(t *testing.T) {
	_, engine, _, invitations := newTestServer(orgcontext.RoleMember)

	resp := doJSON(engine, http.MethodPost, "/invitations/some-token/accept", "",
		`{"password":"super-secret"}`)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.Code)
	}

	invitations.acceptErr = invitationdomain.ErrInviteExpired
	resp = doJSON(engine, http.MethodPost, "/invitations/some-token/accept", "",
		`{"password":"super-secret"}`)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400 for an expired invite, got %d", resp.Code)
	}
}

func TestCrossTenantEventLooksLikeMissing(t *testing.T) {
	_, engine, _, _ := newTestServer(orgcontext.RoleMember)

	resp := doJSON(engine, http.MethodPut, "/events/123", "good-token", `{}`)
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", resp.Code)
	}
}

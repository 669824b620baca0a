package server

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	admindomain "github.com/nexusverde/console/internal/adminregistry/domain"
	gatepkg "github.com/nexusverde/console/internal/adminregistry/gate"
	auditdomain "github.com/nexusverde/console/internal/audit/domain"
	authdomain "github.com/nexusverde/console/internal/auth/domain"
	"github.com/nexusverde/console/internal/auth/identity"
	"github.com/nexusverde/console/internal/auth/session"
	companydomain "github.com/nexusverde/console/internal/company/domain"
	"github.com/nexusverde/console/internal/config"
	provisioningdomain "github.com/nexusverde/console/internal/provisioning/domain"
	"go.uber.org/zap"
)

type fakeAuthService struct {
	loginResult *authdomain.LoginResult
	loginErr    error
	session     *authdomain.Session
	authErr     error
	loginCalls  int
}

func (f *fakeAuthService) CreateUser(ctx context.Context, req authdomain.CreateUserRequest) (*authdomain.User, error) {
	_ = ctx
	_ = req
	return nil, nil
}

func (f *fakeAuthService) Login(ctx context.Context, req authdomain.LoginRequest) (*authdomain.LoginResult, error) {
	f.loginCalls++
	_ = ctx
	_ = req
	if f.loginErr != nil {
		return nil, f.loginErr
	}
	return f.loginResult, nil
}

func (f *fakeAuthService) Logout(ctx context.Context, rawToken string) error {
	_ = ctx
	_ = rawToken
	return nil
}

func (f *fakeAuthService) Authenticate(ctx context.Context, rawToken string) (*authdomain.Session, error) {
	_ = ctx
	_ = rawToken
	if f.authErr != nil {
		return nil, f.authErr
	}
	return f.session, nil
}

type fakeProvisioningService struct {
	result *provisioningdomain.Result
	err    error
	forms  []provisioningdomain.Form
}

func (f *fakeProvisioningService) Provision(ctx context.Context, form provisioningdomain.Form) (*provisioningdomain.Result, error) {
	_ = ctx
	f.forms = append(f.forms, form)
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

type fakeCompanyService struct {
	company *companydomain.CompanyResponse
	getErr  error
}

func (f *fakeCompanyService) Create(ctx context.Context, req companydomain.CreateCompanyRequest) (*companydomain.Company, error) {
	_ = ctx
	_ = req
	return nil, nil
}

func (f *fakeCompanyService) GetByID(ctx context.Context, id string) (*companydomain.CompanyResponse, error) {
	_ = ctx
	_ = id
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.company, nil
}

func (f *fakeCompanyService) List(ctx context.Context, filter companydomain.ListFilter) ([]companydomain.CompanyResponse, error) {
	_ = ctx
	_ = filter
	if f.company == nil {
		return nil, nil
	}
	return []companydomain.CompanyResponse{*f.company}, nil
}

type fakeAuditService struct {
	actions []string
}

func (f *fakeAuditService) Record(ctx context.Context, action string, targetType string, targetID *string, metadata map[string]any) error {
	_ = ctx
	_ = targetType
	_ = targetID
	_ = metadata
	f.actions = append(f.actions, action)
	return nil
}

func (f *fakeAuditService) List(ctx context.Context, filter auditdomain.ListFilter) ([]auditdomain.AuditLog, error) {
	_ = ctx
	_ = filter
	return nil, nil
}

type memberRegistry struct {
	members map[snowflake.ID]bool
}

func (m *memberRegistry) Count(ctx context.Context) (int64, error) {
	_ = ctx
	return int64(len(m.members)), nil
}

func (m *memberRegistry) Create(ctx context.Context, admin *admindomain.Administrator) error {
	_ = ctx
	m.members[admin.UserID] = true
	return nil
}

func (m *memberRegistry) Exists(ctx context.Context, userID snowflake.ID) (bool, error) {
	_ = ctx
	return m.members[userID], nil
}

func newTestGate(members ...snowflake.ID) *gatepkg.Gate {
	registry := &memberRegistry{members: make(map[snowflake.ID]bool)}
	for _, id := range members {
		registry.members[id] = true
	}
	return gatepkg.New(registry, identity.NewHub(), nil, zap.NewNop())
}

func newTestServer(srv *Server) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(ErrorHandlingMiddleware())
	srv.engine = router
	srv.registerAuthRoutes()
	srv.registerAdminRoutes()
	srv.registerUIRoutes()
	return router
}

func getPath(router *gin.Engine, path string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for _, cookie := range cookies {
		req.AddCookie(cookie)
	}
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	return resp
}

func postJSON(router *gin.Engine, path, body string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	for _, cookie := range cookies {
		req.AddCookie(cookie)
	}
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	return resp
}

func sessionCookie() *http.Cookie {
	return &http.Cookie{Name: session.DefaultCookieName, Value: "session-token"}
}

func TestLoginSetsSessionCookie(t *testing.T) {
	authsvc := &fakeAuthService{
		loginResult: &authdomain.LoginResult{
			Session:   &authdomain.SessionView{Metadata: map[string]any{"user_id": "200"}},
			User:      &authdomain.User{ID: snowflake.ID(200), Email: "ops@example.com"},
			RawToken:  "session-token",
			ExpiresAt: time.Now().Add(time.Hour),
		},
	}
	audits := &fakeAuditService{}
	router := newTestServer(&Server{
		cfg:      config.Config{},
		authsvc:  authsvc,
		sessions: session.NewManager(config.Config{}),
		auditSvc: audits,
		gate:     newTestGate(),
	})

	resp := postJSON(router, "/auth/login", `{"email":"ops@example.com","password":"secret1"}`)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.Code)
	}
	setCookie := resp.Header().Get("Set-Cookie")
	if !strings.Contains(setCookie, session.DefaultCookieName+"=session-token") {
		t.Fatalf("expected session cookie, got %q", setCookie)
	}
	if len(audits.actions) != 1 || audits.actions[0] != auditdomain.ActionUserLogin {
		t.Fatalf("expected user.login audit entry, got %v", audits.actions)
	}
}

func TestLoginRejectedCredentialsReturn401(t *testing.T) {
	audits := &fakeAuditService{}
	router := newTestServer(&Server{
		authsvc:  &fakeAuthService{loginErr: authdomain.ErrInvalidCredentials},
		sessions: session.NewManager(config.Config{}),
		auditSvc: audits,
		gate:     newTestGate(),
	})

	resp := postJSON(router, "/auth/login", `{"email":"ops@example.com","password":"wrong"}`)

	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401, got %d", resp.Code)
	}
	if len(audits.actions) != 1 || audits.actions[0] != auditdomain.ActionUserLoginFailed {
		t.Fatalf("expected user.login_failed audit entry, got %v", audits.actions)
	}
}

func TestLoginBackendFailureReturns503(t *testing.T) {
	router := newTestServer(&Server{
		authsvc:  &fakeAuthService{loginErr: context.DeadlineExceeded},
		sessions: session.NewManager(config.Config{}),
		gate:     newTestGate(),
	})

	resp := postJSON(router, "/auth/login", `{"email":"ops@example.com","password":"secret1"}`)

	if resp.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected status 503, got %d", resp.Code)
	}
	if strings.Contains(resp.Body.String(), "deadline") {
		t.Fatalf("expected opaque error body, got %s", resp.Body.String())
	}
}

func TestAdminRoutesRequireSession(t *testing.T) {
	router := newTestServer(&Server{
		authsvc:  &fakeAuthService{authErr: authdomain.ErrInvalidSession},
		sessions: session.NewManager(config.Config{}),
		gate:     newTestGate(),
	})

	resp := postJSON(router, "/admin/companies", `{}`)

	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401, got %d", resp.Code)
	}
}

func TestAdminRoutesDenyNonAdministrators(t *testing.T) {
	provisioning := &fakeProvisioningService{result: &provisioningdomain.Result{}}
	router := newTestServer(&Server{
		authsvc:         &fakeAuthService{session: &authdomain.Session{UserID: snowflake.ID(42)}},
		sessions:        session.NewManager(config.Config{}),
		gate:            newTestGate(),
		provisioningSvc: provisioning,
	})

	resp := postJSON(router, "/admin/companies", `{}`, sessionCookie())

	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected status 403, got %d", resp.Code)
	}
	if len(provisioning.forms) != 0 {
		t.Fatal("expected provisioning service not to be called")
	}
}

func TestProvisionCompanyReturnsResult(t *testing.T) {
	provisioning := &fakeProvisioningService{
		result: &provisioningdomain.Result{
			CompanyID:  "7001",
			AccountIDs: []string{"9001"},
		},
	}
	router := newTestServer(&Server{
		authsvc:         &fakeAuthService{session: &authdomain.Session{UserID: snowflake.ID(42)}},
		sessions:        session.NewManager(config.Config{}),
		gate:            newTestGate(snowflake.ID(42)),
		provisioningSvc: provisioning,
	})

	body := `{"company_name":"Acme Ltda","tax_id":"12.345.678/0001-95","admin_email":"admin@acme.com","admin_password":"secret1"}`
	resp := postJSON(router, "/admin/companies", body, sessionCookie())

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", resp.Code, resp.Body.String())
	}
	if len(provisioning.forms) != 1 {
		t.Fatalf("expected one provisioning call, got %d", len(provisioning.forms))
	}
	if provisioning.forms[0].CompanyName != "Acme Ltda" {
		t.Fatalf("unexpected company name %q", provisioning.forms[0].CompanyName)
	}
	if !strings.Contains(resp.Body.String(), "7001") {
		t.Fatalf("expected company id in body, got %s", resp.Body.String())
	}
}

func TestProvisionCompanyInvalidFormReturns400(t *testing.T) {
	router := newTestServer(&Server{
		authsvc:         &fakeAuthService{session: &authdomain.Session{UserID: snowflake.ID(42)}},
		sessions:        session.NewManager(config.Config{}),
		gate:            newTestGate(snowflake.ID(42)),
		provisioningSvc: &fakeProvisioningService{err: provisioningdomain.ErrInvalidForm},
	})

	resp := postJSON(router, "/admin/companies", `{"company_name":""}`, sessionCookie())

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", resp.Code)
	}
	if !strings.Contains(resp.Body.String(), "validation_error") {
		t.Fatalf("expected validation error body, got %s", resp.Body.String())
	}
}

func TestProvisionCompanyInFlightReturns409(t *testing.T) {
	router := newTestServer(&Server{
		authsvc:         &fakeAuthService{session: &authdomain.Session{UserID: snowflake.ID(42)}},
		sessions:        session.NewManager(config.Config{}),
		gate:            newTestGate(snowflake.ID(42)),
		provisioningSvc: &fakeProvisioningService{err: provisioningdomain.ErrAttemptInFlight},
	})

	resp := postJSON(router, "/admin/companies", `{}`, sessionCookie())

	if resp.Code != http.StatusConflict {
		t.Fatalf("expected status 409, got %d", resp.Code)
	}
}

func TestProvisionCompanyStepTwoFailureIncludesCompanyID(t *testing.T) {
	provErr := &provisioningdomain.ProvisionError{
		Step:      provisioningdomain.StepProvisionUsers,
		CompanyID: "7001",
		Message:   "quota exceeded",
	}
	router := newTestServer(&Server{
		authsvc:         &fakeAuthService{session: &authdomain.Session{UserID: snowflake.ID(42)}},
		sessions:        session.NewManager(config.Config{}),
		gate:            newTestGate(snowflake.ID(42)),
		provisioningSvc: &fakeProvisioningService{err: provErr},
	})

	resp := postJSON(router, "/admin/companies", `{}`, sessionCookie())

	if resp.Code != http.StatusBadGateway {
		t.Fatalf("expected status 502, got %d", resp.Code)
	}
	body := resp.Body.String()
	if !strings.Contains(body, "quota exceeded") {
		t.Fatalf("expected backend message in body, got %s", body)
	}
	if !strings.Contains(body, `"company_id":"7001"`) {
		t.Fatalf("expected company id in body, got %s", body)
	}
}

func TestProtectedPageRedirectsDeniedUser(t *testing.T) {
	// Signed in, but not in the administrators registry.
	router := newTestServer(&Server{
		authsvc:  &fakeAuthService{session: &authdomain.Session{UserID: snowflake.ID(42)}},
		sessions: session.NewManager(config.Config{}),
		gate:     newTestGate(),
	})

	resp := getPath(router, "/register-company", sessionCookie())

	if resp.Code != http.StatusFound {
		t.Fatalf("expected status 302, got %d", resp.Code)
	}
	if location := resp.Header().Get("Location"); location != "/login" {
		t.Fatalf("expected redirect to /login, got %q", location)
	}
}

func TestProtectedPageRedirectsAnonymousVisitor(t *testing.T) {
	router := newTestServer(&Server{
		authsvc:  &fakeAuthService{authErr: authdomain.ErrInvalidSession},
		sessions: session.NewManager(config.Config{}),
		gate:     newTestGate(),
	})

	resp := getPath(router, "/")

	if resp.Code != http.StatusFound {
		t.Fatalf("expected status 302, got %d", resp.Code)
	}
	if location := resp.Header().Get("Location"); location != "/login" {
		t.Fatalf("expected redirect to /login, got %q", location)
	}
}

func TestLoginPageRedirectsSignedInUser(t *testing.T) {
	router := newTestServer(&Server{
		authsvc:  &fakeAuthService{session: &authdomain.Session{UserID: snowflake.ID(42)}},
		sessions: session.NewManager(config.Config{}),
		gate:     newTestGate(snowflake.ID(42)),
	})

	resp := getPath(router, "/login", sessionCookie())

	if resp.Code != http.StatusFound {
		t.Fatalf("expected status 302, got %d", resp.Code)
	}
	if location := resp.Header().Get("Location"); location != "/" {
		t.Fatalf("expected redirect to /, got %q", location)
	}
}

func TestGetCompanyByIDNotFoundReturns404(t *testing.T) {
	router := newTestServer(&Server{
		authsvc:    &fakeAuthService{session: &authdomain.Session{UserID: snowflake.ID(42)}},
		sessions:   session.NewManager(config.Config{}),
		gate:       newTestGate(snowflake.ID(42)),
		companySvc: &fakeCompanyService{getErr: companydomain.ErrCompanyNotFound},
	})

	req := httptest.NewRequest(http.MethodGet, "/admin/companies/999", nil)
	req.AddCookie(sessionCookie())
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", resp.Code)
	}
}

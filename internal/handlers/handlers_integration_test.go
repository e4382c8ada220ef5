package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"datafarm/internal/handlers"
	"datafarm/internal/models"
	"datafarm/internal/repositories"
	"datafarm/internal/schema"
	"datafarm/internal/services"
	"datafarm/internal/storage"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// MockSender is a mock implementation of mailer.Sender
type MockSender struct {
	mock.Mock
}

func (m *MockSender) Send(to, subject, htmlBody string) error {
	args := m.Called(to, subject, htmlBody)
	return args.Error(0)
}

type testEnv struct {
	app     *fiber.App
	db      *gorm.DB
	binding schema.Binding
	sender  *MockSender
}

// setupApp sets up a Fiber app for testing with in-memory SQLite and all
// handlers/services wired against real repositories.
func setupApp(t *testing.T) *testEnv {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	assert.NoError(t, err)
	err = db.AutoMigrate(&models.User{}, &models.EmailToken{}, &models.Location{}, &models.ProduceLog{})
	assert.NoError(t, err)

	binding := schema.DefaultBinding()
	userRepo := repositories.NewGORMUserRepository(db, binding)
	tokenRepo := repositories.NewGORMEmailTokenRepository(db, binding)
	locationRepo := repositories.NewGORMLocationRepository(db, binding)
	produceLogRepo := repositories.NewGORMProduceLogRepository(db, binding)

	images, err := storage.NewImageStore(t.TempDir())
	assert.NoError(t, err)

	sender := new(MockSender)
	sender.On("Send", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	otpService := services.NewOTPService(tokenRepo)
	signupService := services.NewSignupService(db, userRepo, locationRepo, otpService, sender, images, nil)
	produceLogService := services.NewProduceLogService(produceLogRepo, nil)

	app := fiber.New()
	handlers.NewAuthHandler(signupService).RegisterRoutes(app)
	api := app.Group("/api")
	handlers.NewProduceLogHandler(produceLogService).RegisterRoutes(api)

	return &testEnv{app: app, db: db, binding: binding, sender: sender}
}

// TestMain runs setup and teardown for all tests
func TestMain(m *testing.M) {
	log.SetOutput(io.Discard)
	code := m.Run()
	os.Exit(code)
}

func postJSON(t *testing.T, app *fiber.App, path string, body interface{}) *http.Response {
	t.Helper()
	jsonBody, err := json.Marshal(body)
	assert.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(jsonBody))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	assert.NoError(t, err)
	return resp
}

func decodeBody(t *testing.T, resp *http.Response) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	assert.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	resp.Body.Close()
	return out
}

// currentCode reads the outstanding OTP for the email, standing in for the
// verification mail.
func (e *testEnv) currentCode(t *testing.T, email string) string {
	t.Helper()
	var user models.User
	assert.NoError(t, e.db.Table(e.binding.Users).Where("LOWER(email) = LOWER(?)", email).Take(&user).Error)
	var token models.EmailToken
	err := e.db.Table(e.binding.EmailTokens).
		Where("user_id = ? AND purpose = ? AND used_at IS NULL", user.ID, models.PurposeOTP).
		Take(&token).Error
	assert.NoError(t, err)
	return token.Token
}

func signUpForm(t *testing.T, email string, withImage bool) (*bytes.Buffer, string) {
	t.Helper()
	buf := &bytes.Buffer{}
	w := multipart.NewWriter(buf)
	fields := map[string]string{
		"username":       "farmer-lee",
		"email":          email,
		"phone_number":   "010-9876-5432",
		"password":       "password123",
		"si_do":          "Jeju",
		"si_gun_gu":      "Seogwipo-si",
		"dong":           "Beophwan-dong",
		"detail_address": "45-6",
	}
	for k, v := range fields {
		assert.NoError(t, w.WriteField(k, v))
	}
	if withImage {
		fw, err := w.CreateFormFile("psa", "profile.png")
		assert.NoError(t, err)
		_, err = fw.Write([]byte("fake-png-bytes"))
		assert.NoError(t, err)
	}
	assert.NoError(t, w.Close())
	return buf, w.FormDataContentType()
}

func (e *testEnv) signUp(t *testing.T, email string, withImage bool) *http.Response {
	t.Helper()
	body, contentType := signUpForm(t, email, withImage)
	req := httptest.NewRequest(http.MethodPost, "/users/sign-up", body)
	req.Header.Set("Content-Type", contentType)
	resp, err := e.app.Test(req, -1)
	assert.NoError(t, err)
	return resp
}

func TestSignupFlow(t *testing.T) {
	env := setupApp(t)

	// Request a verification code.
	resp := postJSON(t, env.app, "/users/auth-email", map[string]string{"email": "a@x.com"})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	// Confirm it.
	code := env.currentCode(t, "a@x.com")
	resp = postJSON(t, env.app, "/users/verify-otp", map[string]string{"email": "a@x.com", "code": code})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	// Complete the profile with an image.
	resp = env.signUp(t, "a@x.com", true)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	// A second attempt conflicts.
	resp = env.signUp(t, "a@x.com", false)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	resp.Body.Close()

	// Login succeeds and returns the identity.
	resp = postJSON(t, env.app, "/users/login", map[string]string{"email": "a@x.com", "password": "password123"})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body := decodeBody(t, resp)
	assert.Equal(t, "a@x.com", body["email"])
	assert.NotNil(t, body["user_id"])
}

func TestSignUpGuards(t *testing.T) {
	env := setupApp(t)

	// No account yet: sign-up is rejected with 404.
	resp := env.signUp(t, "new@x.com", false)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()

	// Pending verification: sign-up is rejected with 403.
	resp = postJSON(t, env.app, "/users/auth-email", map[string]string{"email": "new@x.com"})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()
	resp = env.signUp(t, "new@x.com", false)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp.Body.Close()
}

func TestVerifyOTPErrors(t *testing.T) {
	env := setupApp(t)

	// Unknown email.
	resp := postJSON(t, env.app, "/users/verify-otp", map[string]string{"email": "ghost@x.com", "code": "000000"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()

	// Wrong code for a pending account.
	resp = postJSON(t, env.app, "/users/auth-email", map[string]string{"email": "b@x.com"})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()
	wrong := "000000"
	if env.currentCode(t, "b@x.com") == wrong {
		wrong = "000001"
	}
	resp = postJSON(t, env.app, "/users/verify-otp", map[string]string{"email": "b@x.com", "code": wrong})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()

	// Malformed email fails validation.
	resp = postJSON(t, env.app, "/users/verify-otp", map[string]string{"email": "not-an-email", "code": "123456"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()
}

func TestLoginIndistinguishableResponses(t *testing.T) {
	env := setupApp(t)

	resp := postJSON(t, env.app, "/users/auth-email", map[string]string{"email": "c@x.com"})
	resp.Body.Close()
	code := env.currentCode(t, "c@x.com")
	resp = postJSON(t, env.app, "/users/verify-otp", map[string]string{"email": "c@x.com", "code": code})
	resp.Body.Close()
	resp = env.signUp(t, "c@x.com", false)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	// Unknown email and wrong password are byte-for-byte identical responses.
	respUnknown := postJSON(t, env.app, "/users/login", map[string]string{"email": "ghost@x.com", "password": "password123"})
	respWrong := postJSON(t, env.app, "/users/login", map[string]string{"email": "c@x.com", "password": "nope-wrong"})
	assert.Equal(t, http.StatusUnauthorized, respUnknown.StatusCode)
	assert.Equal(t, http.StatusUnauthorized, respWrong.StatusCode)
	assert.Equal(t, decodeBody(t, respUnknown), decodeBody(t, respWrong))
}

func TestProduceLogEndpoints(t *testing.T) {
	env := setupApp(t)

	// Add two records.
	resp := postJSON(t, env.app, "/api/produce-logs", map[string]interface{}{
		"userId": 1, "cropName": "rice", "quantity": 120.5, "productionDate": "2026-05-01",
	})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()
	resp = postJSON(t, env.app, "/api/produce-logs", map[string]interface{}{
		"userId": 1, "cropName": "strawberry", "quantity": 30, "productionDate": "2026-07-15",
	})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	created := decodeBody(t, resp)

	// List newest first.
	req := httptest.NewRequest(http.MethodGet, "/api/produce-logs?user_id=1", nil)
	listResp, err := env.app.Test(req, -1)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, listResp.StatusCode)
	listBody := decodeBody(t, listResp)
	logs := listBody["logs"].([]interface{})
	assert.Len(t, logs, 2)
	assert.Equal(t, "strawberry", logs[0].(map[string]interface{})["crop_name"])

	// Delete one, then the same id again 404s.
	logID := created["log"].(map[string]interface{})["id"].(float64)
	req = httptest.NewRequest(http.MethodDelete, fmt.Sprintf("/api/produce-logs/%d", int(logID)), nil)
	delResp, err := env.app.Test(req, -1)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, delResp.StatusCode)
	delResp.Body.Close()

	req = httptest.NewRequest(http.MethodDelete, fmt.Sprintf("/api/produce-logs/%d", int(logID)), nil)
	delResp, err = env.app.Test(req, -1)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, delResp.StatusCode)
	delResp.Body.Close()

	// Bad date is rejected before it reaches the store.
	resp = postJSON(t, env.app, "/api/produce-logs", map[string]interface{}{
		"userId": 1, "cropName": "rice", "quantity": 10, "productionDate": "05/01/2026",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()
}

func TestRecommendCropEndpoint(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"main":{"temp":16},"rain":{"1h":70}}`)
	}))
	defer srv.Close()

	app := fiber.New()
	cropService := services.NewCropService("test-key", srv.URL)
	handlers.NewCropHandler(cropService).RegisterRoutes(app.Group("/api"))

	req := httptest.NewRequest(http.MethodGet, "/api/recommend-crop?location=seoul", nil)
	resp, err := app.Test(req, -1)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body := decodeBody(t, resp)
	assert.Equal(t, []interface{}{"rice"}, body["recommendations"])

	req = httptest.NewRequest(http.MethodGet, "/api/recommend-crop?location=atlantis", nil)
	resp, err = app.Test(req, -1)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()
}

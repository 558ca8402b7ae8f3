package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"gorent/internal/gateway/ccavenue"
	"gorent/internal/handlers"
	"gorent/internal/middleware"
	"gorent/internal/models"
	"gorent/internal/repositories"
	"gorent/internal/services"
	"gorent/pkg/docstore"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

const integrationWorkingKey = "4D8E1B2C3F5A697B8C9D0E1F2A3B4C5D"

type testEnv struct {
	app      *fiber.App
	db       *gorm.DB
	carRepo  repositories.CarRepository
	userRepo repositories.UserRepository
}

// setupEnv wires the full application against an in-memory SQLite database,
// mirroring the production wiring minus the broker and mailer.
func setupEnv(t *testing.T) *testEnv {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{}, &models.Car{}, &models.Order{}, &models.Coupon{},
		&models.Review{}, &models.SupportTicket{}, &models.TicketMessage{},
	))

	gateway, err := ccavenue.NewClient(ccavenue.Config{
		MerchantID:  "123456",
		AccessCode:  "AVXX00XX00XX00",
		WorkingKey:  integrationWorkingKey,
		Environment: "test",
		RedirectURL: "http://localhost:8080/api/v1/payments/callback",
		CancelURL:   "http://localhost:8080/api/v1/payments/callback",
	})
	require.NoError(t, err)

	docsDir := t.TempDir()
	store, err := docstore.NewLocalStore(docsDir, "/api/v1/documents")
	require.NoError(t, err)

	userRepo := repositories.NewGORMUserRepository(db)
	carRepo := repositories.NewGORMCarRepository(db)
	orderRepo := repositories.NewGORMOrderRepository(db)
	couponRepo := repositories.NewGORMCouponRepository(db)
	reviewRepo := repositories.NewGORMReviewRepository(db)
	ticketRepo := repositories.NewGORMTicketRepository(db)

	authService := services.NewAuthService(userRepo, "test_jwt_secret")
	pricingService := services.NewPricingService()
	couponService := services.NewCouponService(couponRepo)
	carService := services.NewCarService(carRepo, orderRepo)
	bookingService := services.NewBookingService(orderRepo, carRepo, userRepo, pricingService, couponService)
	paymentService := services.NewPaymentService(orderRepo, userRepo, carRepo, gateway, couponService, nil, nil)
	kycService := services.NewKYCService(userRepo, store, nil, nil)
	reviewService := services.NewReviewService(reviewRepo, orderRepo)
	ticketService := services.NewTicketService(ticketRepo)

	app := fiber.New()
	apiV1 := app.Group("/api/v1")

	handlers.NewAuthHandler(authService).RegisterRoutes(apiV1)
	handlers.NewCarHandler(carService, reviewService).RegisterRoutes(apiV1)
	handlers.NewCouponHandler(couponService, carService).RegisterRoutes(apiV1)
	paymentHandler := handlers.NewPaymentHandler(paymentService)
	paymentHandler.RegisterCallbackRoutes(apiV1)

	protected := apiV1.Group("", middleware.AuthRequired(authService))
	handlers.NewBookingHandler(bookingService).RegisterRoutes(protected)
	paymentHandler.RegisterRoutes(protected)
	handlers.NewKYCHandler(kycService).RegisterRoutes(protected)
	handlers.NewReviewHandler(reviewService).RegisterRoutes(protected)
	handlers.NewTicketHandler(ticketService).RegisterRoutes(protected)

	admin := apiV1.Group("", middleware.AuthRequired(authService), middleware.AdminRequired())
	handlers.NewAdminHandler(
		bookingService, authService, kycService, carService,
		couponService, reviewService, ticketService,
	).RegisterRoutes(admin)

	// Uploaded KYC identity documents: staff eyes only.
	admin.Static("/documents", docsDir)

	return &testEnv{app: app, db: db, carRepo: carRepo, userRepo: userRepo}
}

func (e *testEnv) request(t *testing.T, method, path, token string, body interface{}) (*http.Response, map[string]interface{}) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := e.app.Test(req, 5000)
	require.NoError(t, err)

	var decoded map[string]interface{}
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(raw) > 0 && strings.Contains(resp.Header.Get("Content-Type"), "json") {
		// Arrays decode to nil here; tests that need them decode separately.
		json.Unmarshal(raw, &decoded)
	}
	return resp, decoded
}

func (e *testEnv) registerAndLogin(t *testing.T, username string) string {
	t.Helper()

	resp, _ := e.request(t, http.MethodPost, "/api/v1/auth/register", "", map[string]interface{}{
		"username":   username,
		"first_name": "Test",
		"email":      username + "@example.com",
		"password":   "password123",
		"phone":      "9876543210",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, body := e.request(t, http.MethodPost, "/api/v1/auth/login", "", map[string]interface{}{
		"username": username,
		"password": "password123",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	token, _ := body["token"].(string)
	require.NotEmpty(t, token)
	return token
}

// seedAdmin creates a staff account directly in the database and logs it in.
func (e *testEnv) seedAdmin(t *testing.T) string {
	t.Helper()

	hashed, err := bcrypt.GenerateFromPassword([]byte("admin-pass"), bcrypt.DefaultCost)
	require.NoError(t, err)
	require.NoError(t, e.userRepo.Create(&models.User{
		Username:  "backoffice",
		FirstName: "Back",
		LastName:  "Office",
		Email:     "staff@example.com",
		Password:  string(hashed),
		IsAdmin:   true,
		IsActive:  true,
	}))

	resp, body := e.request(t, http.MethodPost, "/api/v1/auth/login", "", map[string]interface{}{
		"username": "backoffice",
		"password": "admin-pass",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	return body["token"].(string)
}

func (e *testEnv) seedCar(t *testing.T) *models.Car {
	t.Helper()
	car := &models.Car{
		Brand:        "Maruti",
		CarModel:     "Swift",
		Registration: "KA01AB1234",
		HourlyPrice:  120,
		Deposit:      2000,
		FuelType:     "PETROL",
		Transmission: "MANUAL",
		Seats:        5,
		CarType:      "HATCHBACK",
		Active:       true,
	}
	require.NoError(t, e.carRepo.Create(car))
	return car
}

// uploadDocuments posts both Aadhaar sides as one multipart request.
func (e *testEnv) uploadDocuments(t *testing.T, token string) {
	t.Helper()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	for _, field := range []string{"aadhaar_front", "aadhaar_back"} {
		part, err := writer.CreateFormFile(field, field+".jpg")
		require.NoError(t, err)
		_, err = part.Write([]byte("fake image bytes"))
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/kyc/upload", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := e.app.Test(req, 5000)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func (e *testEnv) approveKYC(t *testing.T, adminToken, username string) {
	t.Helper()
	user, err := e.userRepo.GetByUsername(username)
	require.NoError(t, err)

	resp, _ := e.request(t, http.MethodPost, "/api/v1/admin/users/"+user.ID+"/kyc-review", adminToken,
		map[string]interface{}{"approve": true})
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestAuthAndAccessControl(t *testing.T) {
	env := setupEnv(t)

	// Protected routes reject anonymous requests.
	resp, _ := env.request(t, http.MethodGet, "/api/v1/bookings/", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	// The fleet listing is public.
	resp, _ = env.request(t, http.MethodGet, "/api/v1/cars/", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	// A customer token does not open the back office.
	token := env.registerAndLogin(t, "customer")
	resp, _ = env.request(t, http.MethodGet, "/api/v1/admin/bookings", token, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	// A staff token does.
	adminToken := env.seedAdmin(t)
	resp, _ = env.request(t, http.MethodGet, "/api/v1/admin/bookings", adminToken, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestBookingRequiresApprovedKYC(t *testing.T) {
	env := setupEnv(t)
	token := env.registerAndLogin(t, "newrenter")
	car := env.seedCar(t)

	start := time.Now().Add(24 * time.Hour).UTC().Truncate(time.Hour)
	resp, body := env.request(t, http.MethodPost, "/api/v1/bookings/", token, map[string]interface{}{
		"car_id":     car.ID,
		"start_time": start.Format(time.RFC3339),
		"end_time":   start.Add(24 * time.Hour).Format(time.RFC3339),
	})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Contains(t, body["error"], "identity verification")
}

func TestBookingAndPaymentFlow(t *testing.T) {
	env := setupEnv(t)
	adminToken := env.seedAdmin(t)
	token := env.registerAndLogin(t, "renter")
	car := env.seedCar(t)

	// KYC: upload both Aadhaar sides, then the back office approves.
	env.uploadDocuments(t, token)
	resp, body := env.request(t, http.MethodGet, "/api/v1/kyc/status", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "PENDING", body["kyc_status"])
	env.approveKYC(t, adminToken, "renter")

	// Quote first, then book.
	start := time.Now().Add(24 * time.Hour).UTC().Truncate(time.Hour)
	bookingReq := map[string]interface{}{
		"car_id":           car.ID,
		"start_time":       start.Format(time.RFC3339),
		"end_time":         start.Add(24 * time.Hour).Format(time.RFC3339),
		"protection_level": 277,
	}
	resp, body = env.request(t, http.MethodPost, "/api/v1/bookings/quote", token, bookingReq)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 3157.0, body["total"]) // 24h*120 + 277

	resp, body = env.request(t, http.MethodPost, "/api/v1/bookings/", token, bookingReq)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	orderID := body["id"].(string)
	assert.Equal(t, "INITIATED", body["payment_status"])
	assert.Equal(t, "PENDING", body["booking_status"])
	assert.Equal(t, 3157.0, body["total_amount"])

	// The same window is now blocked for everyone.
	resp, _ = env.request(t, http.MethodPost, "/api/v1/bookings/", token, bookingReq)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// Initiate payment; ask for JSON rather than the redirect form.
	req := httptest.NewRequest(http.MethodPost, "/api/v1/payments/"+orderID+"/initiate", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")
	rawResp, err := env.app.Test(req, 5000)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, rawResp.StatusCode)
	var form struct {
		PaymentURL string `json:"payment_url"`
		EncRequest string `json:"enc_request"`
		AccessCode string `json:"access_code"`
	}
	require.NoError(t, json.NewDecoder(rawResp.Body).Decode(&form))
	assert.Contains(t, form.PaymentURL, "test.ccavenue.com")
	assert.NotEmpty(t, form.EncRequest)

	// Pull the gateway reference the initiation recorded.
	resp, body = env.request(t, http.MethodGet, "/api/v1/bookings/"+orderID, token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "ORDER_CREATED", body["payment_status"])
	gatewayOrderID := body["gateway_order_id"].(string)

	// The gateway settles and posts its encrypted callback.
	callback := encryptCallback(t, map[string]string{
		"order_id":        gatewayOrderID,
		"order_status":    "Success",
		"tracking_id":     "TRK-100",
		"payment_mode":    "Net Banking",
		"amount":          "3157.00",
		"merchant_param1": orderID,
	})
	resp = postCallback(t, env, callback)
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Location"), "/payments/success/"+orderID)

	resp, body = env.request(t, http.MethodGet, "/api/v1/bookings/"+orderID, token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "SUCCESSFUL", body["payment_status"])
	assert.Equal(t, "BOOKED", body["booking_status"])
	assert.Equal(t, "TRK-100", body["tracking_id"])

	// A replayed callback changes nothing.
	resp = postCallback(t, env, callback)
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	resp, body = env.request(t, http.MethodGet, "/api/v1/bookings/"+orderID, token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "SUCCESSFUL", body["payment_status"])

	// A tampered callback is rejected outright.
	tampered := []byte(callback)
	tampered[0] ^= 0x01
	resp = postCallback(t, env, string(tampered))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

// A stray GET carrying only an order ID must never move an order: cancels
// happen through the owner's booking endpoint or the encrypted gateway
// callback, nothing else.
func TestAnonymousCancelRequestCannotFailOrder(t *testing.T) {
	env := setupEnv(t)
	adminToken := env.seedAdmin(t)
	token := env.registerAndLogin(t, "renter")
	car := env.seedCar(t)

	env.uploadDocuments(t, token)
	env.approveKYC(t, adminToken, "renter")

	start := time.Now().Add(24 * time.Hour).UTC().Truncate(time.Hour)
	resp, body := env.request(t, http.MethodPost, "/api/v1/bookings/", token, map[string]interface{}{
		"car_id":     car.ID,
		"start_time": start.Format(time.RFC3339),
		"end_time":   start.Add(24 * time.Hour).Format(time.RFC3339),
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	orderID := body["id"].(string)

	// Order IDs show up in browser-visible URLs, so knowing one must not be
	// enough to kill the booking.
	resp, _ = env.request(t, http.MethodGet, "/api/v1/payments/cancel/"+orderID, "", nil)
	assert.GreaterOrEqual(t, resp.StatusCode, http.StatusBadRequest)
	assert.NotEqual(t, http.StatusFound, resp.StatusCode)

	resp, body = env.request(t, http.MethodGet, "/api/v1/bookings/"+orderID, token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "INITIATED", body["payment_status"])
	assert.Equal(t, "PENDING", body["booking_status"])
}

// Identity documents are only readable by staff; the public never sees the
// document mount, not even the uploader.
func TestDocumentAccessRestrictedToStaff(t *testing.T) {
	env := setupEnv(t)
	adminToken := env.seedAdmin(t)
	token := env.registerAndLogin(t, "renter")

	env.uploadDocuments(t, token)
	user, err := env.userRepo.GetByUsername("renter")
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(user.AadhaarFront, "/api/v1/documents/"))

	resp, _ := env.request(t, http.MethodGet, user.AadhaarFront, "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, _ = env.request(t, http.MethodGet, user.AadhaarFront, token, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	req := httptest.NewRequest(http.MethodGet, user.AadhaarFront, nil)
	req.Header.Set("Authorization", "Bearer "+adminToken)
	raw, err := env.app.Test(req, 5000)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, raw.StatusCode)
	content, err := io.ReadAll(raw.Body)
	require.NoError(t, err)
	assert.Equal(t, "fake image bytes", string(content))
}

func encryptCallback(t *testing.T, values map[string]string) string {
	t.Helper()
	var b strings.Builder
	for k, v := range values {
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(v)
		b.WriteByte('&')
	}
	enc, err := ccavenue.Encrypt(b.String(), integrationWorkingKey)
	require.NoError(t, err)
	return enc
}

func postCallback(t *testing.T, env *testEnv, encResp string) *http.Response {
	t.Helper()
	form := "encResp=" + encResp
	req := httptest.NewRequest(http.MethodPost, "/api/v1/payments/callback", strings.NewReader(form))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	resp, err := env.app.Test(req, 5000)
	require.NoError(t, err)
	return resp
}

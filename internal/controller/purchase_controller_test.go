package controller

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"neonclub_backend/internal/config"
	"neonclub_backend/internal/middleware"
	"neonclub_backend/internal/model"
	"neonclub_backend/internal/repository"
	"neonclub_backend/internal/service"
	"neonclub_backend/internal/testutil"
	"neonclub_backend/internal/util"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const testSecret = "test-secret-test-secret-test-secret"

func init() {
	gin.SetMode(gin.TestMode)
	if err := util.RegisterValidators(); err != nil {
		panic(err)
	}
}

func newTestRouter(t *testing.T, db *gorm.DB) *gin.Engine {
	t.Helper()
	cfg := &config.Config{JWT: config.JWTConfig{Secret: testSecret, ExpireTime: time.Hour}}

	purchaseRepo := repository.NewPurchaseRepository(db)
	courseRepo := repository.NewCourseRepository(db)
	workshopRepo := repository.NewWorkshopRepository(db)
	eventRepo := repository.NewEventRepository(db)
	coupons := service.NewCouponService(config.DefaultCoupons)
	eventSvc := service.NewEventService(eventRepo)
	purchaseSvc := service.NewPurchaseService(db, purchaseRepo, courseRepo, workshopRepo, eventRepo, coupons, service.NewCatalogCache(nil, 0))

	pc := NewPurchaseController(purchaseSvc, eventSvc)
	cc := NewCouponController(coupons)

	r := gin.New()
	r.POST("/api/coupons/apply", cc.ApplyCoupon)
	auth := r.Group("/api", middleware.AuthMiddleware(cfg))
	auth.POST("/courses/:id/purchase", pc.PurchaseCourse)
	auth.POST("/workshops/:id/purchase", pc.PurchaseWorkshop)
	auth.GET("/purchases/:id", pc.GetPurchase)
	return r
}

func bearer(t *testing.T, u *model.User) string {
	t.Helper()
	token, err := util.GenerateJWT(u, testSecret, time.Hour)
	if err != nil {
		t.Fatalf("GenerateJWT: %v", err)
	}
	return "Bearer " + token
}

func doJSON(r http.Handler, method, path, auth string, body interface{}) (*httptest.ResponseRecorder, util.Response) {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var resp util.Response
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	return w, resp
}

func TestPurchaseCourseTwiceReturns400(t *testing.T) {
	db := testutil.DB(t)
	mentor := testutil.SeedUser(t, db, "mentor@neon.test", model.Mentor)
	nurse := testutil.SeedUser(t, db, "nurse@neon.test", model.Nurse)
	course := testutil.SeedCourse(t, db, mentor.ID, 0, 1)
	r := newTestRouter(t, db)
	path := "/api/courses/" + itoa(course.ID) + "/purchase"

	w, resp := doJSON(r, http.MethodPost, path, bearer(t, nurse), nil)
	if w.Code != http.StatusCreated || !resp.Success {
		t.Fatalf("first purchase: %d %s", w.Code, w.Body.String())
	}

	w, resp = doJSON(r, http.MethodPost, path, bearer(t, nurse), nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("second purchase status = %d, want 400", w.Code)
	}
	if resp.Success || resp.Message != "already purchased" {
		t.Fatalf("unexpected body: %s", w.Body.String())
	}
}

func TestPurchaseRequiresAuth(t *testing.T) {
	db := testutil.DB(t)
	r := newTestRouter(t, db)

	w, _ := doJSON(r, http.MethodPost, "/api/courses/1/purchase", "", nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}
}

func TestPurchaseRejectsUnknownPaymentMethod(t *testing.T) {
	db := testutil.DB(t)
	mentor := testutil.SeedUser(t, db, "mentor@neon.test", model.Mentor)
	nurse := testutil.SeedUser(t, db, "nurse@neon.test", model.Nurse)
	course := testutil.SeedCourse(t, db, mentor.ID, 100, 1)
	r := newTestRouter(t, db)

	w, _ := doJSON(r, http.MethodPost, "/api/courses/"+itoa(course.ID)+"/purchase", bearer(t, nurse),
		map[string]string{"paymentMethod": "bitcoin"})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400: %s", w.Code, w.Body.String())
	}
}

func TestFreeCourseIgnoresInvalidPaymentFields(t *testing.T) {
	db := testutil.DB(t)
	mentor := testutil.SeedUser(t, db, "mentor@neon.test", model.Mentor)
	nurse := testutil.SeedUser(t, db, "nurse@neon.test", model.Nurse)
	course := testutil.SeedCourse(t, db, mentor.ID, 0, 1)
	r := newTestRouter(t, db)

	w, resp := doJSON(r, http.MethodPost, "/api/courses/"+itoa(course.ID)+"/purchase", bearer(t, nurse),
		map[string]string{
			"paymentMethod": "bitcoin",
			"paymentId":     strings.Repeat("x", 150),
			"couponCode":    strings.Repeat("c", 80),
		})
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", w.Code, w.Body.String())
	}
	data, ok := resp.Data.(map[string]interface{})
	if !ok {
		t.Fatalf("unexpected data: %s", w.Body.String())
	}
	if data["paymentMethod"] != model.PaymentFree || data["paymentId"] != model.PaymentFree || data["status"] != string(model.PurchaseCompleted) {
		t.Fatalf("free purchase recorded as %v/%v/%v", data["paymentMethod"], data["paymentId"], data["status"])
	}
}

func TestPaidCourseRejectsLongPaymentID(t *testing.T) {
	db := testutil.DB(t)
	mentor := testutil.SeedUser(t, db, "mentor@neon.test", model.Mentor)
	nurse := testutil.SeedUser(t, db, "nurse@neon.test", model.Nurse)
	course := testutil.SeedCourse(t, db, mentor.ID, 100, 1)
	r := newTestRouter(t, db)

	w, resp := doJSON(r, http.MethodPost, "/api/courses/"+itoa(course.ID)+"/purchase", bearer(t, nurse),
		map[string]string{"paymentMethod": model.PaymentCard, "paymentId": strings.Repeat("x", 150)})
	if w.Code != http.StatusBadRequest || resp.Message != util.ErrInvalidPaymentID.Error() {
		t.Fatalf("status = %d, want 400: %s", w.Code, w.Body.String())
	}
}

func TestWorkshopFullReturns409(t *testing.T) {
	db := testutil.DB(t)
	mentor := testutil.SeedUser(t, db, "mentor@neon.test", model.Mentor)
	a := testutil.SeedUser(t, db, "a@neon.test", model.Nurse)
	b := testutil.SeedUser(t, db, "b@neon.test", model.Nurse)
	workshop := testutil.SeedWorkshop(t, db, mentor.ID, 0, 1)
	r := newTestRouter(t, db)
	path := "/api/workshops/" + itoa(workshop.ID) + "/purchase"

	if w, _ := doJSON(r, http.MethodPost, path, bearer(t, a), nil); w.Code != http.StatusCreated {
		t.Fatalf("first seat: %d %s", w.Code, w.Body.String())
	}
	if w, _ := doJSON(r, http.MethodPost, path, bearer(t, b), nil); w.Code != http.StatusConflict {
		t.Fatalf("second seat status = %d, want 409", w.Code)
	}
}

func TestGetPurchaseHidesOtherUsers(t *testing.T) {
	db := testutil.DB(t)
	mentor := testutil.SeedUser(t, db, "mentor@neon.test", model.Mentor)
	nurse := testutil.SeedUser(t, db, "nurse@neon.test", model.Nurse)
	other := testutil.SeedUser(t, db, "other@neon.test", model.Nurse)
	admin := testutil.SeedUser(t, db, "admin@neon.test", model.Admin)
	course := testutil.SeedCourse(t, db, mentor.ID, 0, 1)
	r := newTestRouter(t, db)

	_, resp := doJSON(r, http.MethodPost, "/api/courses/"+itoa(course.ID)+"/purchase", bearer(t, nurse), nil)
	data, _ := resp.Data.(map[string]interface{})
	id := uint(data["id"].(float64))
	path := "/api/purchases/" + itoa(id)

	if w, _ := doJSON(r, http.MethodGet, path, bearer(t, other), nil); w.Code != http.StatusNotFound {
		t.Fatalf("other user status = %d, want 404", w.Code)
	}
	if w, _ := doJSON(r, http.MethodGet, path, bearer(t, admin), nil); w.Code != http.StatusOK {
		t.Fatalf("admin status = %d, want 200", w.Code)
	}
}

func TestApplyCoupon(t *testing.T) {
	r := newTestRouter(t, testutil.DB(t))

	w, resp := doJSON(r, http.MethodPost, "/api/coupons/apply", "", map[string]interface{}{"code": "welcome200", "amount": 1500})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}
	data := resp.Data.(map[string]interface{})
	if data["total"].(float64) != 1300 || data["code"] != "WELCOME200" {
		t.Fatalf("unexpected quote: %v", data)
	}

	w, resp = doJSON(r, http.MethodPost, "/api/coupons/apply", "", map[string]interface{}{"code": "FAKE", "amount": 1500})
	if w.Code != http.StatusBadRequest || resp.Message != "invalid coupon code" {
		t.Fatalf("invalid coupon: %d %s", w.Code, w.Body.String())
	}
	data = resp.Data.(map[string]interface{})
	if data["total"].(float64) != 1500 {
		t.Fatalf("total changed for invalid coupon: %v", data["total"])
	}
}

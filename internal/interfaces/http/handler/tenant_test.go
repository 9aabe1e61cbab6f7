package handler

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Ayibatonye-ikemike/suoops-backend-sub000/internal/application/identity"
	domidentity "github.com/Ayibatonye-ikemike/suoops-backend-sub000/internal/domain/identity"
	"github.com/Ayibatonye-ikemike/suoops-backend-sub000/internal/domain/shared"
	"github.com/Ayibatonye-ikemike/suoops-backend-sub000/internal/domain/shared/valueobject"
	"github.com/Ayibatonye-ikemike/suoops-backend-sub000/internal/interfaces/http/middleware"
)

func newTenantRouter(repo *MockTenantRepository, tenantID uuid.UUID) *gin.Engine {
	h := NewTenantHandler(identity.NewTenantService(repo, nil))

	router := gin.New()
	api := router.Group("/api/v1")
	api.Use(func(c *gin.Context) {
		c.Set(middleware.JWTTenantIDKey, tenantID.String())
		c.Next()
	})
	h.RegisterRoutes(api)
	return router
}

func TestTenantHandler_GetProfile(t *testing.T) {
	repo := new(MockTenantRepository)
	tenant, err := domidentity.NewTenant("whatsapp:+2348012345678", "Ada Stores", valueobject.NGN)
	require.NoError(t, err)

	router := newTenantRouter(repo, tenant.ID)
	repo.On("FindByID", mock.Anything, tenant.ID).Return(tenant, nil)

	req := httptest.NewRequest("GET", "/api/v1/tenants/me", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Ada Stores")
	assert.Contains(t, w.Body.String(), "2348012345678")
}

func TestTenantHandler_GetProfile_NotFound(t *testing.T) {
	repo := new(MockTenantRepository)
	tenantID := uuid.New()

	router := newTenantRouter(repo, tenantID)
	repo.On("FindByID", mock.Anything, tenantID).Return(nil, shared.ErrNotFound)

	req := httptest.NewRequest("GET", "/api/v1/tenants/me", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestTenantHandler_UpdatePayout(t *testing.T) {
	repo := new(MockTenantRepository)
	tenant, err := domidentity.NewTenant("whatsapp:+2348012345678", "Ada Stores", valueobject.NGN)
	require.NoError(t, err)

	router := newTenantRouter(repo, tenant.ID)
	repo.On("FindByID", mock.Anything, tenant.ID).Return(tenant, nil)
	repo.On("Save", mock.Anything, mock.AnythingOfType("*identity.Tenant")).Return(nil)

	body := []byte(`{"bank_name":"GTBank","account_name":"Ada Stores Ltd","account_number":"0123456789"}`)
	req := httptest.NewRequest("PUT", "/api/v1/tenants/me/payout", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "GTBank")
	repo.AssertExpectations(t)
}

func TestTenantHandler_UpdatePayout_MissingFields(t *testing.T) {
	repo := new(MockTenantRepository)
	router := newTenantRouter(repo, uuid.New())

	body := []byte(`{"bank_name":"GTBank"}`)
	req := httptest.NewRequest("PUT", "/api/v1/tenants/me/payout", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	repo.AssertNotCalled(t, "Save")
}

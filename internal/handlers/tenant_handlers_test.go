package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"wegroup/internal/models"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetTenantIDByUserID(ctx context.Context, userID uuid.UUID) (*uuid.UUID, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*uuid.UUID), args.Error(1)
}

func (m *MockUserRepository) AssignTenant(ctx context.Context, userID, tenantID uuid.UUID) error {
	args := m.Called(ctx, userID, tenantID)
	return args.Error(0)
}

func (m *MockUserRepository) Update(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) List(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.User, error) {
	args := m.Called(ctx, tenantID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.User), args.Error(1)
}

type MockRBACService struct {
	mock.Mock
}

func (m *MockRBACService) AssignRole(ctx context.Context, tenantID, userID, roleID uuid.UUID) error {
	args := m.Called(ctx, tenantID, userID, roleID)
	return args.Error(0)
}

func (m *MockRBACService) AssignRoleByName(ctx context.Context, tenantID, userID uuid.UUID, roleName string) error {
	args := m.Called(ctx, tenantID, userID, roleName)
	return args.Error(0)
}

func (m *MockRBACService) RemoveRole(ctx context.Context, tenantID, userID, roleID uuid.UUID) error {
	args := m.Called(ctx, tenantID, userID, roleID)
	return args.Error(0)
}

func (m *MockRBACService) ResolveEffectiveRoles(ctx context.Context, tenantID, userID uuid.UUID) ([]*models.Role, error) {
	args := m.Called(ctx, tenantID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Role), args.Error(1)
}

func (m *MockRBACService) HasRole(ctx context.Context, tenantID, userID uuid.UUID, roleName string) (bool, error) {
	args := m.Called(ctx, tenantID, userID, roleName)
	return args.Bool(0), args.Error(1)
}

type TenantHandlersTestSuite struct {
	suite.Suite
	mockUsers *MockUserRepository
	mockRBAC  *MockRBACService
	handlers  *TenantHandlers
	e         *echo.Echo
	tenantID  uuid.UUID
	userID    uuid.UUID
}

func (suite *TenantHandlersTestSuite) SetupTest() {
	suite.mockUsers = &MockUserRepository{}
	suite.mockRBAC = &MockRBACService{}
	suite.mockUsers.Test(suite.T())
	suite.mockRBAC.Test(suite.T())
	// AddMember never touches the tenant service.
	suite.handlers = NewTenantHandlers(nil, suite.mockUsers, suite.mockRBAC)
	suite.e = echo.New()
	suite.tenantID = uuid.New()
	suite.userID = uuid.New()
}

func (suite *TenantHandlersTestSuite) TearDownTest() {
	suite.mockUsers.AssertExpectations(suite.T())
	suite.mockRBAC.AssertExpectations(suite.T())
}

func TestTenantHandlersTestSuite(t *testing.T) {
	suite.Run(t, new(TenantHandlersTestSuite))
}

func (suite *TenantHandlersTestSuite) addMember(body string) (*httptest.ResponseRecorder, error) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/tenants/"+suite.tenantID.String()+"/members", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)

	c := suite.e.NewContext(req, rec)
	c.SetPath("/v1/tenants/:id/members")
	c.SetParamNames("id")
	c.SetParamValues(suite.tenantID.String())

	return rec, suite.handlers.AddMember(c)
}

func (suite *TenantHandlersTestSuite) TestAddMember_BindsPreTenantUser() {
	suite.mockUsers.On("GetTenantIDByUserID", mock.Anything, suite.userID).Return(nil, nil).Once()
	suite.mockUsers.On("AssignTenant", mock.Anything, suite.userID, suite.tenantID).Return(nil).Once()
	suite.mockRBAC.On("AssignRoleByName", mock.Anything, suite.tenantID, suite.userID, models.RoleEmployee).Return(nil).Once()

	rec, err := suite.addMember(`{"user_id":"` + suite.userID.String() + `"}`)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), http.StatusOK, rec.Code)
}

func (suite *TenantHandlersTestSuite) TestAddMember_ExistingMemberIsNoOp() {
	current := suite.tenantID
	suite.mockUsers.On("GetTenantIDByUserID", mock.Anything, suite.userID).Return(&current, nil).Once()
	suite.mockRBAC.On("AssignRoleByName", mock.Anything, suite.tenantID, suite.userID, models.RoleEmployee).Return(nil).Once()

	rec, err := suite.addMember(`{"user_id":"` + suite.userID.String() + `"}`)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), http.StatusOK, rec.Code)
	suite.mockUsers.AssertNotCalled(suite.T(), "AssignTenant", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *TenantHandlersTestSuite) TestAddMember_MemberOfAnotherTenantConflicts() {
	other := uuid.New()
	suite.mockUsers.On("GetTenantIDByUserID", mock.Anything, suite.userID).Return(&other, nil).Once()

	_, err := suite.addMember(`{"user_id":"` + suite.userID.String() + `"}`)
	httpErr, ok := err.(*echo.HTTPError)
	assert.True(suite.T(), ok)
	assert.Equal(suite.T(), http.StatusConflict, httpErr.Code)
	suite.mockUsers.AssertNotCalled(suite.T(), "AssignTenant", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *TenantHandlersTestSuite) TestAddMember_UnknownUserNotFound() {
	suite.mockUsers.On("GetTenantIDByUserID", mock.Anything, suite.userID).Return(nil, assert.AnError).Once()

	rec, err := suite.addMember(`{"user_id":"` + suite.userID.String() + `"}`)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), http.StatusNotFound, rec.Code)
}

func (suite *TenantHandlersTestSuite) TestAddMember_InvalidUserIDRejected() {
	rec, err := suite.addMember(`{"user_id":"nope"}`)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), http.StatusBadRequest, rec.Code)
}

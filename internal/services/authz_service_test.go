package services

import (
	"context"
	"errors"
	"testing"

	"wegroup/internal/common"
	"wegroup/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

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

type AuthzServiceTestSuite struct {
	suite.Suite
	mockRBAC *MockRBACService
	service  AuthzService
	tenantID uuid.UUID
	userID   uuid.UUID
}

func (suite *AuthzServiceTestSuite) SetupTest() {
	suite.mockRBAC = &MockRBACService{}
	suite.service = NewAuthzService(suite.mockRBAC)
	suite.tenantID = uuid.New()
	suite.userID = uuid.New()

	suite.mockRBAC.Test(suite.T())
}

func (suite *AuthzServiceTestSuite) TearDownTest() {
	suite.mockRBAC.AssertExpectations(suite.T())
}

func TestAuthzServiceTestSuite(t *testing.T) {
	suite.Run(t, new(AuthzServiceTestSuite))
}

func (suite *AuthzServiceTestSuite) session() Session {
	return Session{UserID: suite.userID, TenantID: suite.tenantID, Authenticated: true}
}

func rolesNamed(tenantID uuid.UUID, names ...string) []*models.Role {
	roles := make([]*models.Role, 0, len(names))
	for _, name := range names {
		roles = append(roles, &models.Role{ID: uuid.New(), TenantID: tenantID, Name: name})
	}
	return roles
}

func (suite *AuthzServiceTestSuite) TestAuthorize_UnauthenticatedSession() {
	ctx := context.Background()

	decision, err := suite.service.Authorize(ctx, Session{}, RequireAuthenticated())
	assert.NoError(suite.T(), err)
	assert.False(suite.T(), decision.Allowed)
	assert.Equal(suite.T(), DenyUnauthenticated, decision.Reason)
	assert.ErrorIs(suite.T(), decision.Err(), common.ErrUnauthenticated)
}

func (suite *AuthzServiceTestSuite) TestAuthorize_MissingUserIDIsUnauthenticated() {
	ctx := context.Background()
	session := Session{TenantID: suite.tenantID, Authenticated: true}

	decision, err := suite.service.Authorize(ctx, session, RequireAuthenticated())
	assert.NoError(suite.T(), err)
	assert.False(suite.T(), decision.Allowed)
	assert.Equal(suite.T(), DenyUnauthenticated, decision.Reason)
}

func (suite *AuthzServiceTestSuite) TestAuthorize_AuthenticatedOnly() {
	ctx := context.Background()

	suite.mockRBAC.On("ResolveEffectiveRoles", ctx, suite.tenantID, suite.userID).
		Return(rolesNamed(suite.tenantID, models.RoleEmployee), nil).Once()

	decision, err := suite.service.Authorize(ctx, suite.session(), RequireAuthenticated())
	assert.NoError(suite.T(), err)
	assert.True(suite.T(), decision.Allowed)
	assert.Equal(suite.T(), suite.tenantID, decision.TenantID)
	assert.Equal(suite.T(), []string{models.RoleEmployee}, decision.Roles)
	assert.NoError(suite.T(), decision.Err())
}

func (suite *AuthzServiceTestSuite) TestAuthorize_EmployeeDeniedSuperAdminRequirement() {
	ctx := context.Background()

	suite.mockRBAC.On("ResolveEffectiveRoles", ctx, suite.tenantID, suite.userID).
		Return(rolesNamed(suite.tenantID, models.RoleEmployee), nil).Once()

	decision, err := suite.service.Authorize(ctx, suite.session(), RequireRole(models.RoleSuperAdmin))
	assert.NoError(suite.T(), err)
	assert.False(suite.T(), decision.Allowed)
	assert.Equal(suite.T(), DenyForbidden, decision.Reason)
	assert.ErrorIs(suite.T(), decision.Err(), common.ErrForbidden)
}

func (suite *AuthzServiceTestSuite) TestAuthorize_AllowedAfterRoleGrant() {
	ctx := context.Background()

	// First check: employee only, denied. After the grant the next decision is
	// computed from a fresh role resolution and passes. Nothing is cached
	// between the two calls.
	suite.mockRBAC.On("ResolveEffectiveRoles", ctx, suite.tenantID, suite.userID).
		Return(rolesNamed(suite.tenantID, models.RoleEmployee), nil).Once()
	suite.mockRBAC.On("ResolveEffectiveRoles", ctx, suite.tenantID, suite.userID).
		Return(rolesNamed(suite.tenantID, models.RoleEmployee, models.RoleSuperAdmin), nil).Once()

	denied, err := suite.service.Authorize(ctx, suite.session(), RequireRole(models.RoleSuperAdmin))
	assert.NoError(suite.T(), err)
	assert.False(suite.T(), denied.Allowed)

	allowed, err := suite.service.Authorize(ctx, suite.session(), RequireRole(models.RoleSuperAdmin))
	assert.NoError(suite.T(), err)
	assert.True(suite.T(), allowed.Allowed)
	assert.Contains(suite.T(), allowed.Roles, models.RoleSuperAdmin)
}

func (suite *AuthzServiceTestSuite) TestAuthorize_CrossTenantDeniedWithoutOverrideRole() {
	ctx := context.Background()
	otherTenant := uuid.New()

	suite.mockRBAC.On("ResolveEffectiveRoles", ctx, suite.tenantID, suite.userID).
		Return(rolesNamed(suite.tenantID, models.RoleAdmin), nil).Once()

	decision, err := suite.service.Authorize(ctx, suite.session(), RequireTenant(otherTenant))
	assert.NoError(suite.T(), err)
	assert.False(suite.T(), decision.Allowed)
	assert.Equal(suite.T(), DenyForbidden, decision.Reason)
}

func (suite *AuthzServiceTestSuite) TestAuthorize_CrossTenantAllowedForSuperAdmin() {
	ctx := context.Background()
	otherTenant := uuid.New()

	suite.mockRBAC.On("ResolveEffectiveRoles", ctx, suite.tenantID, suite.userID).
		Return(rolesNamed(suite.tenantID, models.RoleSuperAdmin), nil).Once()

	decision, err := suite.service.Authorize(ctx, suite.session(), RequireTenant(otherTenant))
	assert.NoError(suite.T(), err)
	assert.True(suite.T(), decision.Allowed)
}

func (suite *AuthzServiceTestSuite) TestAuthorize_SameTenantNeedsNoOverride() {
	ctx := context.Background()

	suite.mockRBAC.On("ResolveEffectiveRoles", ctx, suite.tenantID, suite.userID).
		Return(rolesNamed(suite.tenantID, models.RoleEmployee), nil).Once()

	decision, err := suite.service.Authorize(ctx, suite.session(), RequireTenant(suite.tenantID))
	assert.NoError(suite.T(), err)
	assert.True(suite.T(), decision.Allowed)
}

func (suite *AuthzServiceTestSuite) TestAuthorize_NoRolesAtAll() {
	ctx := context.Background()

	suite.mockRBAC.On("ResolveEffectiveRoles", ctx, suite.tenantID, suite.userID).
		Return([]*models.Role{}, nil).Once()

	decision, err := suite.service.Authorize(ctx, suite.session(), RequireRole(models.RoleEmployee))
	assert.NoError(suite.T(), err)
	assert.False(suite.T(), decision.Allowed)
	assert.Equal(suite.T(), DenyForbidden, decision.Reason)
}

func (suite *AuthzServiceTestSuite) TestAuthorize_StoreFailureSurfaces() {
	ctx := context.Background()

	suite.mockRBAC.On("ResolveEffectiveRoles", ctx, suite.tenantID, suite.userID).
		Return(nil, errors.New("database connection failed")).Once()

	decision, err := suite.service.Authorize(ctx, suite.session(), RequireAuthenticated())
	assert.Error(suite.T(), err)
	assert.False(suite.T(), decision.Allowed)

	var storeErr *common.StoreError
	assert.ErrorAs(suite.T(), err, &storeErr)
}

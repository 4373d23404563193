package services

import (
	"context"
	"errors"
	"testing"

	"wegroup/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type MockRoleRepository struct {
	mock.Mock
}

func (m *MockRoleRepository) Upsert(ctx context.Context, role *models.Role) error {
	args := m.Called(ctx, role)
	return args.Error(0)
}

func (m *MockRoleRepository) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Role, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Role), args.Error(1)
}

func (m *MockRoleRepository) GetByName(ctx context.Context, tenantID uuid.UUID, name string) (*models.Role, error) {
	args := m.Called(ctx, tenantID, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Role), args.Error(1)
}

func (m *MockRoleRepository) List(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.Role, error) {
	args := m.Called(ctx, tenantID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Role), args.Error(1)
}

func (m *MockRoleRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	args := m.Called(ctx, tenantID, id)
	return args.Error(0)
}

type ProvisioningServiceTestSuite struct {
	suite.Suite
	mockRepo *MockRoleRepository
	service  ProvisioningService
}

func (suite *ProvisioningServiceTestSuite) SetupTest() {
	suite.mockRepo = &MockRoleRepository{}
	suite.service = NewProvisioningService(suite.mockRepo, nil)

	suite.mockRepo.Test(suite.T())
}

func (suite *ProvisioningServiceTestSuite) TearDownTest() {
	suite.mockRepo.AssertExpectations(suite.T())
}

func TestProvisioningServiceTestSuite(t *testing.T) {
	suite.Run(t, new(ProvisioningServiceTestSuite))
}

func (suite *ProvisioningServiceTestSuite) TestEnsureSystemRoles_UpsertsFullCatalog() {
	ctx := context.Background()
	tenantID := uuid.New()

	seen := map[string]bool{}
	suite.mockRepo.On("Upsert", ctx, mock.AnythingOfType("*models.Role")).Return(nil).Times(4).Run(func(args mock.Arguments) {
		role := args.Get(1).(*models.Role)
		assert.Equal(suite.T(), tenantID, role.TenantID)
		assert.NotEqual(suite.T(), uuid.Nil, role.ID)
		seen[role.Name] = true
	})

	err := suite.service.EnsureSystemRoles(ctx, tenantID)
	assert.NoError(suite.T(), err)

	for _, name := range models.SystemRoleCatalog() {
		assert.True(suite.T(), seen[name], "catalog role %s was not provisioned", name)
	}
}

func (suite *ProvisioningServiceTestSuite) TestEnsureSystemRoles_RepeatedCallsSucceed() {
	ctx := context.Background()
	tenantID := uuid.New()

	// The underlying upsert is conflict-safe, so a second run converges to the
	// same four rows without erroring.
	suite.mockRepo.On("Upsert", ctx, mock.AnythingOfType("*models.Role")).Return(nil).Times(8)

	err := suite.service.EnsureSystemRoles(ctx, tenantID)
	assert.NoError(suite.T(), err)

	err = suite.service.EnsureSystemRoles(ctx, tenantID)
	assert.NoError(suite.T(), err)
}

func (suite *ProvisioningServiceTestSuite) TestEnsureSystemRoles_StoreUnavailable() {
	ctx := context.Background()
	tenantID := uuid.New()

	suite.mockRepo.On("Upsert", ctx, mock.AnythingOfType("*models.Role")).Return(errors.New("database connection failed")).Once()

	err := suite.service.EnsureSystemRoles(ctx, tenantID)
	assert.Error(suite.T(), err)
	assert.Contains(suite.T(), err.Error(), "database connection failed")
}

func (suite *ProvisioningServiceTestSuite) TestEnsureSystemRoles_CustomCatalog() {
	ctx := context.Background()
	tenantID := uuid.New()
	service := NewProvisioningService(suite.mockRepo, []string{"auditor"})

	suite.mockRepo.On("Upsert", ctx, mock.AnythingOfType("*models.Role")).Return(nil).Once().Run(func(args mock.Arguments) {
		role := args.Get(1).(*models.Role)
		assert.Equal(suite.T(), "auditor", role.Name)
	})

	err := service.EnsureSystemRoles(ctx, tenantID)
	assert.NoError(suite.T(), err)
}

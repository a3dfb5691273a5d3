package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"

	"github.com/cardano-insights/agent-service/config"
	"github.com/cardano-insights/agent-service/internal/data"
	"github.com/cardano-insights/agent-service/internal/domain/model"
	"github.com/cardano-insights/agent-service/internal/mocks"
	"github.com/cardano-insights/agent-service/internal/testutil"
)

func TestAvailabilityCheckAvailable(t *testing.T) {
	svc := NewAvailabilityService(AvailabilityServiceOptions{
		Repo:   data.NewMemoryJobRepo(),
		Agent:  config.AgentConfig{Identifier: "cardano-insights-agent"},
		Logger: testutil.NewTestLogger(),
	})

	resp := svc.Check(context.Background())
	assert.Equal(t, model.AvailabilityAvailable, resp.Status)
	assert.Equal(t, "cardano-insights-agent", resp.AgentIdentifier)
	assert.NotEmpty(t, resp.Message)
}

func TestAvailabilityCheckBackendDown(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	repo := mocks.NewMockJobRepository(ctrl)
	repo.EXPECT().Ping(gomock.Any()).Return(errors.New("connection refused"))

	svc := NewAvailabilityService(AvailabilityServiceOptions{
		Repo:   repo,
		Agent:  config.AgentConfig{Identifier: "cardano-insights-agent"},
		Logger: testutil.NewTestLogger(),
	})

	resp := svc.Check(context.Background())
	assert.Equal(t, model.AvailabilityUnavailable, resp.Status)
	assert.Equal(t, "job registry backend unreachable", resp.Message)
}

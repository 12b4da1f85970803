package provider

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Stars1233/pollinations/internal/minimax"
)

type mockMiniMaxClient struct {
	mock.Mock
}

func (m *mockMiniMaxClient) CreateTask(ctx context.Context, req minimax.TaskRequest) (string, error) {
	args := m.Called(ctx, req)
	return args.String(0), args.Error(1)
}

func (m *mockMiniMaxClient) GetTask(ctx context.Context, taskID string) (minimax.PollResult, error) {
	args := m.Called(ctx, taskID)
	return args.Get(0).(minimax.PollResult), args.Error(1)
}

func (m *mockMiniMaxClient) RetrieveFile(ctx context.Context, fileID string) (string, error) {
	args := m.Called(ctx, fileID)
	return args.String(0), args.Error(1)
}

func (m *mockMiniMaxClient) Download(ctx context.Context, downloadURL string) ([]byte, error) {
	args := m.Called(ctx, downloadURL)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func TestMiniMaxAdapter_SubmitSnapsDuration(t *testing.T) {
	ctx := context.Background()
	client := &mockMiniMaxClient{}
	adapter := NewMiniMaxAdapter(client, "MiniMax-Hailuo-02")

	client.On("CreateTask", ctx, mock.MatchedBy(func(r minimax.TaskRequest) bool {
		return r.Model == "MiniMax-Hailuo-02" && r.DurationSec == 6
	})).Return("task-9", nil)

	handle, err := adapter.Submit(ctx, Request{Prompt: "a red fox", DurationSec: 7})

	require.NoError(t, err)
	assert.Equal(t, "task-9", handle.ID)
	client.AssertExpectations(t)
}

func TestMiniMaxAdapter_FetchArtifactResolvesFileID(t *testing.T) {
	ctx := context.Background()
	client := &mockMiniMaxClient{}
	adapter := NewMiniMaxAdapter(client, "MiniMax-Hailuo-02")

	client.On("RetrieveFile", ctx, "file-7").Return("https://files/video.mp4", nil)
	client.On("Download", ctx, "https://files/video.mp4").Return([]byte("mp4"), nil)

	data, err := adapter.FetchArtifact(ctx, "file-7")

	require.NoError(t, err)
	assert.Equal(t, []byte("mp4"), data)
	client.AssertExpectations(t)
}

func TestMiniMaxAdapter_PollOnceSuccessCarriesFileID(t *testing.T) {
	ctx := context.Background()
	client := &mockMiniMaxClient{}
	adapter := NewMiniMaxAdapter(client, "MiniMax-Hailuo-02")

	client.On("GetTask", ctx, "task-9").Return(minimax.PollResult{
		Status: minimax.StatusSuccess,
		FileID: "file-7",
	}, nil)

	got, err := adapter.PollOnce(ctx, TaskHandle{ID: "task-9"})

	require.NoError(t, err)
	assert.Equal(t, StateSucceeded, got.State)
	assert.Equal(t, "file-7", got.Artifact)
}

func TestSnapMiniMaxDuration(t *testing.T) {
	assert.Equal(t, 6, snapMiniMaxDuration(6))
	assert.Equal(t, 6, snapMiniMaxDuration(8))
	assert.Equal(t, 10, snapMiniMaxDuration(9))
	assert.Equal(t, 10, snapMiniMaxDuration(10))
}

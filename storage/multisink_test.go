package storage

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/surveyintake/envelope-ingest-backend/interfaces"
)

type mockSink struct {
	mock.Mock
}

func (m *mockSink) AppendRecord(ctx context.Context, rec interfaces.PlaintextRecord, receivedAt time.Time) error {
	args := m.Called(ctx, rec, receivedAt)
	return args.Error(0)
}

func (m *mockSink) AppendFailure(ctx context.Context, receivedAt time.Time, message string) error {
	args := m.Called(ctx, receivedAt, message)
	return args.Error(0)
}

func (m *mockSink) Available(ctx context.Context) bool {
	return m.Called(ctx).Bool(0)
}

func (m *mockSink) Name() string        { return m.Called().String(0) }
func (m *mockSink) LocationURI() string { return m.Called().String(0) }

func TestMultiSinkAppendsToAllAvailable(t *testing.T) {
	first := new(mockSink)
	second := new(mockSink)
	first.On("Available", mock.Anything).Return(true)
	second.On("Available", mock.Anything).Return(true)
	first.On("AppendRecord", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	second.On("AppendRecord", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	multi, err := NewMultiSink([]interfaces.RecordSink{first, second}, testLogger())
	require.NoError(t, err)

	require.NoError(t, multi.AppendRecord(context.Background(), testRecord(), time.Now()))
	first.AssertExpectations(t)
	second.AssertExpectations(t)
}

func TestMultiSinkSkipsUnavailable(t *testing.T) {
	down := new(mockSink)
	up := new(mockSink)
	down.On("Available", mock.Anything).Return(false)
	down.On("Name").Return("down")
	up.On("Available", mock.Anything).Return(true)
	up.On("AppendRecord", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	multi, err := NewMultiSink([]interfaces.RecordSink{down, up}, testLogger())
	require.NoError(t, err)

	require.NoError(t, multi.AppendRecord(context.Background(), testRecord(), time.Now()))
	down.AssertNotCalled(t, "AppendRecord", mock.Anything, mock.Anything, mock.Anything)
}

func TestMultiSinkAllFail(t *testing.T) {
	failing := new(mockSink)
	failing.On("Available", mock.Anything).Return(true)
	failing.On("Name").Return("failing")
	failing.On("AppendRecord", mock.Anything, mock.Anything, mock.Anything).Return(errors.New("disk full"))

	multi, err := NewMultiSink([]interfaces.RecordSink{failing}, testLogger())
	require.NoError(t, err)

	err = multi.AppendRecord(context.Background(), testRecord(), time.Now())
	require.ErrorIs(t, err, interfaces.ErrSinkUnavailable)
}

func TestMultiSinkPartialFailureSucceeds(t *testing.T) {
	failing := new(mockSink)
	working := new(mockSink)
	failing.On("Available", mock.Anything).Return(true)
	failing.On("Name").Return("failing")
	failing.On("AppendFailure", mock.Anything, mock.Anything, mock.Anything).Return(errors.New("disk full"))
	working.On("Available", mock.Anything).Return(true)
	working.On("AppendFailure", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	multi, err := NewMultiSink([]interfaces.RecordSink{failing, working}, testLogger())
	require.NoError(t, err)

	require.NoError(t, multi.AppendFailure(context.Background(), time.Now(), "oops"))
}

func TestMultiSinkAvailable(t *testing.T) {
	down := new(mockSink)
	up := new(mockSink)
	down.On("Available", mock.Anything).Return(false)
	up.On("Available", mock.Anything).Return(true)

	multi, err := NewMultiSink([]interfaces.RecordSink{down, up}, testLogger())
	require.NoError(t, err)
	require.True(t, multi.Available(context.Background()))

	onlyDown, err := NewMultiSink([]interfaces.RecordSink{down}, testLogger())
	require.NoError(t, err)
	require.False(t, onlyDown.Available(context.Background()))
}

func TestNewMultiSinkEmpty(t *testing.T) {
	_, err := NewMultiSink(nil, testLogger())
	require.Error(t, err)
}

package settings

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/sessionshell/internal/interfaces"
	"github.com/ternarybob/sessionshell/internal/models"
)

const instructionURL = "http://127.0.0.1:8095/instruction"

// MockSettingsStore mocks interfaces.SettingsStore
type MockSettingsStore struct {
	mock.Mock
}

func (m *MockSettingsStore) Load(ctx context.Context) (*models.Settings, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Settings), args.Error(1)
}

func (m *MockSettingsStore) Save(ctx context.Context, settings models.Settings) error {
	return m.Called(ctx, settings).Error(0)
}

func (m *MockSettingsStore) LoadURL(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

func (m *MockSettingsStore) SaveURL(ctx context.Context, url string) error {
	return m.Called(ctx, url).Error(0)
}

// MockNavigator mocks interfaces.Navigator
type MockNavigator struct {
	mock.Mock
}

func (m *MockNavigator) Navigate(ctx context.Context, url string) error {
	return m.Called(ctx, url).Error(0)
}

func newTestService(store *MockSettingsStore, navigator *MockNavigator) *Service {
	return NewService(store, navigator, instructionURL, arbor.NewLogger())
}

func TestGetSettings(t *testing.T) {
	store := new(MockSettingsStore)
	store.On("Load", mock.Anything).Return(&models.Settings{URL: "https://x/app", Username: "a"}, nil)

	got, err := newTestService(store, new(MockNavigator)).GetSettings(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "https://x/app", got.URL)
}

func TestGetSettings_FirstRun(t *testing.T) {
	store := new(MockSettingsStore)
	store.On("Load", mock.Anything).Return(nil, nil)
	store.On("LoadURL", mock.Anything).Return("", nil)
	service := newTestService(store, new(MockNavigator))

	got, err := service.GetSettings(context.Background())
	require.NoError(t, err)
	assert.Nil(t, got)

	url, err := service.GetURL(context.Background())
	require.NoError(t, err)
	assert.Empty(t, url)
}

func TestSetSettings_PersistsThenNavigates(t *testing.T) {
	settings := models.Settings{URL: "https://x/app", Username: "a", Password: "b"}

	var order []string
	store := new(MockSettingsStore)
	store.On("Save", mock.Anything, settings).Run(func(mock.Arguments) { order = append(order, "save") }).Return(nil)
	navigator := new(MockNavigator)
	navigator.On("Navigate", mock.Anything, "https://x/app").Run(func(mock.Arguments) { order = append(order, "navigate") }).Return(nil)

	require.NoError(t, newTestService(store, navigator).SetSettings(context.Background(), settings))

	assert.Equal(t, []string{"save", "navigate"}, order)
	store.AssertExpectations(t)
	navigator.AssertExpectations(t)
}

func TestSetSettings_EmptyURLNavigatesToInstructions(t *testing.T) {
	settings := models.Settings{Username: "a", Password: "b"}
	store := new(MockSettingsStore)
	store.On("Save", mock.Anything, settings).Return(nil)
	navigator := new(MockNavigator)
	navigator.On("Navigate", mock.Anything, instructionURL).Return(nil)

	require.NoError(t, newTestService(store, navigator).SetSettings(context.Background(), settings))
	navigator.AssertExpectations(t)
}

func TestSetSettings_WriteFailureAbortsNavigation(t *testing.T) {
	writeErr := &interfaces.StorageWriteError{Resource: "settings.json", Err: errors.New("read-only file system")}
	store := new(MockSettingsStore)
	store.On("Save", mock.Anything, mock.Anything).Return(writeErr)
	navigator := new(MockNavigator)

	err := newTestService(store, navigator).SetSettings(context.Background(), models.Settings{URL: "https://x/app"})

	assert.ErrorIs(t, err, interfaces.ErrStorageWrite)
	navigator.AssertNotCalled(t, "Navigate", mock.Anything, mock.Anything)
}

func TestSetSettings_InvalidURLRejected(t *testing.T) {
	store := new(MockSettingsStore)
	navigator := new(MockNavigator)

	err := newTestService(store, navigator).SetSettings(context.Background(), models.Settings{URL: "not a url"})

	assert.ErrorIs(t, err, ErrInvalidSettings)
	store.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	navigator.AssertNotCalled(t, "Navigate", mock.Anything, mock.Anything)
}

func TestSetSettings_NavigationFailureKeepsSavedSettings(t *testing.T) {
	store := new(MockSettingsStore)
	store.On("Save", mock.Anything, mock.Anything).Return(nil)
	navigator := new(MockNavigator)
	navigator.On("Navigate", mock.Anything, mock.Anything).Return(errors.New("browser closed"))

	err := newTestService(store, navigator).SetSettings(context.Background(), models.Settings{URL: "https://x/app"})

	assert.ErrorIs(t, err, ErrNavigation)
	store.AssertCalled(t, "Save", mock.Anything, models.Settings{URL: "https://x/app"})
}

func TestSetURL_PersistsURLOnlyThenNavigates(t *testing.T) {
	store := new(MockSettingsStore)
	store.On("SaveURL", mock.Anything, "https://y/app").Return(nil)
	navigator := new(MockNavigator)
	navigator.On("Navigate", mock.Anything, "https://y/app").Return(nil)

	require.NoError(t, newTestService(store, navigator).SetURL(context.Background(), "https://y/app"))

	store.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	store.AssertExpectations(t)
	navigator.AssertExpectations(t)
}

func TestSetURL_RequiresURL(t *testing.T) {
	store := new(MockSettingsStore)
	navigator := new(MockNavigator)
	service := newTestService(store, navigator)

	assert.ErrorIs(t, service.SetURL(context.Background(), ""), ErrInvalidSettings)
	assert.ErrorIs(t, service.SetURL(context.Background(), "x/app"), ErrInvalidSettings)
	store.AssertNotCalled(t, "SaveURL", mock.Anything, mock.Anything)
}

func TestSetURL_WriteFailureAbortsNavigation(t *testing.T) {
	store := new(MockSettingsStore)
	store.On("SaveURL", mock.Anything, mock.Anything).Return(&interfaces.StorageWriteError{Resource: "settings.json", Err: errors.New("no space")})
	navigator := new(MockNavigator)

	err := newTestService(store, navigator).SetURL(context.Background(), "https://y/app")

	assert.ErrorIs(t, err, interfaces.ErrStorageWrite)
	navigator.AssertNotCalled(t, "Navigate", mock.Anything, mock.Anything)
}

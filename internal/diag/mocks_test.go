package diag

import (
	"context"

	"stats_bot/internal/bot"
	"stats_bot/internal/cmc"

	"github.com/stretchr/testify/mock"
)

type mockMessenger struct {
	mock.Mock
}

func (m *mockMessenger) Identify(ctx context.Context) (bot.Identity, error) {
	args := m.Called(ctx)
	return args.Get(0).(bot.Identity), args.Error(1)
}

func (m *mockMessenger) ResolveDestination(ctx context.Context, chatID string) (bot.Destination, error) {
	args := m.Called(ctx, chatID)
	return args.Get(0).(bot.Destination), args.Error(1)
}

func (m *mockMessenger) Publish(ctx context.Context, chatID string, text string) error {
	args := m.Called(ctx, chatID, text)
	return args.Error(0)
}

type mockMarket struct {
	mock.Mock
}

func (m *mockMarket) LatestListings(ctx context.Context, limit int, convert string) ([]cmc.Listing, error) {
	args := m.Called(ctx, limit, convert)
	listings, _ := args.Get(0).([]cmc.Listing)
	return listings, args.Error(1)
}

package ecoledger

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/proplanet/ecoledger/adapters/memory"
	"github.com/proplanet/ecoledger/core"
)

type captureHTTP struct {
	ledger *Ledger
	err    error
}

func (c *captureHTTP) RegisterRoutes(ledger *Ledger) error {
	c.ledger = ledger
	return c.err
}

type nopChat struct{}

func (nopChat) StreamChat(ctx context.Context, messages []core.ChatMessage) (core.ChatStream, error) {
	return nil, errors.New("not used")
}

// Requirement: New validates required adapters
func TestNew_RequiredAdapters(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr error
	}{
		{
			name:    "missing database",
			config:  Config{HTTP: &captureHTTP{}},
			wantErr: ErrDBAdapterRequired,
		},
		{
			name:    "missing http adapter",
			config:  Config{Database: memory.New()},
			wantErr: ErrHTTPAdapterRequired,
		},
	}

	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			// Act
			_, err := New(test.config)

			// Assert
			if !errors.Is(err, test.wantErr) {
				t.Fatalf("New() error = %v; want %v", err, test.wantErr)
			}
		})
	}
}

// Requirement: New applies defaults and hands the ledger to the HTTP adapter
func TestNew_Defaults(t *testing.T) {
	// Arrange
	http := &captureHTTP{}

	// Act
	ledger, err := New(Config{Database: memory.New(), HTTP: http})

	// Assert
	if err != nil {
		t.Fatalf("New() unexpected error: %v", err)
	}
	if http.ledger != ledger {
		t.Fatalf("RegisterRoutes should receive the built ledger")
	}
	if ledger.BasePath != defaultBasePath {
		t.Errorf("BasePath = %q; want %q", ledger.BasePath, defaultBasePath)
	}
	if ledger.Cache == nil {
		t.Errorf("Cache should default to the in-memory cache")
	}
	if ledger.Assistant != nil {
		t.Errorf("Assistant should be nil without a chat gateway")
	}
	for name, svc := range map[string]any{
		"Auth": ledger.Auth, "Boards": ledger.Boards, "Tasks": ledger.Tasks,
		"Redemptions": ledger.Redemptions, "Feedback": ledger.Feedback, "Facilities": ledger.Facilities,
	} {
		if svc == nil {
			t.Errorf("%s should be wired", name)
		}
	}
}

// Requirement: optional settings override the defaults
func TestNew_Overrides(t *testing.T) {
	// Arrange
	delay := time.Duration(0)
	config := Config{
		Database:        memory.New(),
		HTTP:            &captureHTTP{},
		DisableCache:    true,
		Chat:            nopChat{},
		BasePath:        "/v1",
		RedemptionDelay: &delay,
	}

	// Act
	ledger, err := New(config)

	// Assert
	if err != nil {
		t.Fatalf("New() unexpected error: %v", err)
	}
	if ledger.BasePath != "/v1" {
		t.Errorf("BasePath = %q; want /v1", ledger.BasePath)
	}
	if ledger.Cache != nil {
		t.Errorf("Cache should be nil when disabled")
	}
	if ledger.Assistant == nil {
		t.Errorf("Assistant should be wired when a chat gateway is set")
	}
}

// Requirement: route registration failures are returned
func TestNew_RegisterRoutesError(t *testing.T) {
	// Arrange
	wantErr := errors.New("route conflict")

	// Act
	_, err := New(Config{Database: memory.New(), HTTP: &captureHTTP{err: wantErr}})

	// Assert
	if !errors.Is(err, wantErr) {
		t.Fatalf("New() error = %v; want %v", err, wantErr)
	}
}

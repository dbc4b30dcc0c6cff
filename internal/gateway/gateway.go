// Package gateway provides the client surface for the AI Foundry project:
// rubric evaluation through the agents API and photo correction through
// image edits. All calls are single-attempt; retry policy belongs to callers.
package gateway

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/azure"
)

// RunOutcome is the terminal result of an agent run.
type RunOutcome struct {
	// Status is the terminal run status reported by the service.
	Status string
	// Output is the text of the latest assistant message, populated only
	// when the run completed.
	Output string
}

// System is the remote agent and image-edit surface.
type System interface {
	CreateAgent(ctx context.Context) (string, error)
	UploadFile(ctx context.Context, filename string, data []byte) (string, error)
	CreateThreadMessage(ctx context.Context, fileID, prompt string) (string, error)
	RunAndPoll(ctx context.Context, threadID, agentID string) (*RunOutcome, error)
	EditImage(ctx context.Context, image []byte, filename, prompt, size string) ([]byte, error)
}

// New creates a gateway System authenticated with the default Azure
// credential chain.
func New(cfg *Config, logger *slog.Logger) (System, error) {
	credential, err := azidentity.NewDefaultAzureCredential(nil)
	if err != nil {
		return nil, err
	}
	return NewWithCredential(cfg, logger, credential), nil
}

// NewWithCredential creates a gateway System with an explicit credential.
func NewWithCredential(cfg *Config, logger *slog.Logger, credential azcore.TokenCredential) System {
	images := openai.NewClient(
		azure.WithEndpoint(cfg.Endpoint, cfg.ImageAPIVersion),
		azure.WithTokenCredential(credential),
	)

	return &azureGateway{
		config:     cfg,
		logger:     logger.With("system", "gateway"),
		client:     &http.Client{},
		credential: credential,
		images:     &images,
	}
}
